package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"batilink/internal/event"
	"batilink/internal/model"
	"batilink/internal/repository"
	"batilink/pkg/apierror"
)

type ProjectService struct {
	projects *repository.ProjectRepository
	tasks    *repository.TaskRepository
	bus      event.Bus
	log      *slog.Logger
}

func NewProjectService(projects *repository.ProjectRepository, tasks *repository.TaskRepository, bus event.Bus, log *slog.Logger) *ProjectService {
	return &ProjectService{projects: projects, tasks: tasks, bus: bus, log: log}
}

func (s *ProjectService) Create(ctx context.Context, req model.CreateProjectRequest, customerID int64) (model.Project, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Project{}, apierror.BadRequest("title is required", "title")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return model.Project{}, apierror.BadRequest("start_date must be an RFC 3339 date", "start_date")
	}

	return s.projects.Create(ctx, model.Project{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   start,
		AddressID:   req.AddressID,
		CustomerID:  customerID,
	})
}

func (s *ProjectService) Get(ctx context.Context, id int64) (model.ProjectView, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return model.ProjectView{}, err
	}
	tasks, err := s.tasks.ListByProject(ctx, id)
	if err != nil {
		return model.ProjectView{}, err
	}
	return model.ProjectView{Project: project, Tasks: tasks}, nil
}

func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	return s.projects.List(ctx)
}

func (s *ProjectService) ListByUser(ctx context.Context, userID int64) ([]model.Project, error) {
	return s.projects.ListByUser(ctx, userID)
}

// Search finds open projects by profession and city so entreprises can
// browse work near them. Blank filters match everything.
func (s *ProjectService) Search(ctx context.Context, professionName string, city string) ([]model.Project, error) {
	return s.projects.Search(ctx, strings.TrimSpace(professionName), strings.TrimSpace(city))
}

func (s *ProjectService) Update(ctx context.Context, id int64, req model.UpdateProjectRequest) (model.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return model.Project{}, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return model.Project{}, apierror.BadRequest("title cannot be empty", "title")
		}
		project.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			return model.Project{}, apierror.BadRequest("start_date must be an RFC 3339 date", "start_date")
		}
		project.StartDate = start
	}
	if req.AddressID != nil {
		project.AddressID = req.AddressID
	}
	if req.EntrepriseID != nil {
		project.EntrepriseID = req.EntrepriseID
	}
	if req.IsFinished != nil {
		project.IsFinished = *req.IsFinished
	}

	updated, err := s.projects.Update(ctx, project)
	if err != nil {
		return model.Project{}, err
	}
	if req.IsFinished != nil && *req.IsFinished {
		s.bus.Publish(event.Event{
			Type:       event.TypeProjectFinished,
			Payload:    updated,
			Recipients: projectParties(updated),
		})
	}
	return updated, nil
}

// Accept assigns the calling entreprise to an open project. A project
// that already has an entreprise cannot be accepted again.
func (s *ProjectService) Accept(ctx context.Context, id int64, entrepriseID int64) (model.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	if project.EntrepriseID != nil {
		return model.Project{}, apierror.Conflict("entreprise")
	}

	accepted, err := s.projects.Accept(ctx, id, entrepriseID)
	if err != nil {
		return model.Project{}, err
	}

	s.bus.Publish(event.Event{
		Type:       event.TypeProjectAccepted,
		Payload:    accepted,
		ActorID:    entrepriseID,
		Recipients: []int64{accepted.CustomerID},
	})
	s.log.Info("project accepted",
		slog.Int64("project_id", id),
		slog.Int64("entreprise_id", entrepriseID))
	return accepted, nil
}

func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	return s.projects.Delete(ctx, id)
}

func projectParties(p model.Project) []int64 {
	parties := []int64{p.CustomerID}
	if p.EntrepriseID != nil {
		parties = append(parties, *p.EntrepriseID)
	}
	return parties
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
