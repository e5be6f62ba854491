package service

import (
	"context"

	"batilink/internal/model"
	"batilink/internal/repository"
)

type ProfileService struct {
	profiles *repository.ProfileRepository
}

func NewProfileService(profiles *repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

func (s *ProfileService) GetByUser(ctx context.Context, userID int64) (model.ProfileView, error) {
	profile, err := s.profiles.FindByUser(ctx, userID)
	if err != nil {
		return model.ProfileView{}, err
	}
	professions, err := s.profiles.Professions(ctx, profile.ID)
	if err != nil {
		return model.ProfileView{}, err
	}
	return model.ProfileView{Profile: profile, Professions: professions}, nil
}

// Update applies partial changes to the caller's profile. The siret is
// immutable once set; it identifies the company legally.
func (s *ProfileService) Update(ctx context.Context, userID int64, req model.UpdateProfileRequest) (model.Profile, error) {
	profile, err := s.profiles.FindByUser(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.Telephone != nil {
		profile.Telephone = req.Telephone
	}
	if req.IsNewbie != nil {
		profile.IsNewbie = *req.IsNewbie
	}
	if req.RaisonSociale != nil {
		profile.RaisonSociale = req.RaisonSociale
	}

	return s.profiles.Update(ctx, profile)
}

func (s *ProfileService) AttachProfession(ctx context.Context, userID, professionID int64) error {
	profile, err := s.profiles.FindByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.profiles.AttachProfession(ctx, profile.ID, professionID)
}

func (s *ProfileService) DetachProfession(ctx context.Context, userID, professionID int64) error {
	profile, err := s.profiles.FindByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.profiles.DetachProfession(ctx, profile.ID, professionID)
}
