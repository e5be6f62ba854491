package service

import (
	"context"
	"strings"

	"batilink/internal/model"
	"batilink/internal/repository"
	"batilink/pkg/apierror"
)

type ProfessionService struct {
	professions *repository.ProfessionRepository
}

func NewProfessionService(professions *repository.ProfessionRepository) *ProfessionService {
	return &ProfessionService{professions: professions}
}

func (s *ProfessionService) Create(ctx context.Context, req model.CreateProfessionRequest) (model.Profession, error) {
	name := strings.ToLower(strings.TrimSpace(req.ProfessionName))
	if name == "" {
		return model.Profession{}, apierror.BadRequest("profession_name is required", "profession_name")
	}
	return s.professions.Create(ctx, name)
}

func (s *ProfessionService) Get(ctx context.Context, id int64) (model.Profession, error) {
	return s.professions.FindByID(ctx, id)
}

func (s *ProfessionService) List(ctx context.Context) ([]model.Profession, error) {
	return s.professions.List(ctx)
}

func (s *ProfessionService) Update(ctx context.Context, id int64, req model.CreateProfessionRequest) (model.Profession, error) {
	name := strings.ToLower(strings.TrimSpace(req.ProfessionName))
	if name == "" {
		return model.Profession{}, apierror.BadRequest("profession_name is required", "profession_name")
	}
	return s.professions.Update(ctx, id, name)
}

func (s *ProfessionService) Delete(ctx context.Context, id int64) error {
	return s.professions.Delete(ctx, id)
}
