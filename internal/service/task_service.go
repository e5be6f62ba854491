package service

import (
	"context"
	"strings"

	"batilink/internal/model"
	"batilink/internal/repository"
	"batilink/pkg/apierror"
)

type TaskService struct {
	tasks    *repository.TaskRepository
	projects *repository.ProjectRepository
}

func NewTaskService(tasks *repository.TaskRepository, projects *repository.ProjectRepository) *TaskService {
	return &TaskService{tasks: tasks, projects: projects}
}

func (s *TaskService) Create(ctx context.Context, projectID int64, req model.CreateTaskRequest) (model.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Task{}, apierror.BadRequest("title is required", "title")
	}
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return model.Task{}, err
	}

	status := req.Status
	if status == "" {
		status = model.TaskStatusPending
	}
	if !model.ValidTaskStatus(status) {
		return model.Task{}, apierror.BadRequest("unknown task status", status)
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return model.Task{}, apierror.BadRequest("start_date must be an RFC 3339 date", "start_date")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return model.Task{}, apierror.BadRequest("end_date must be an RFC 3339 date", "end_date")
	}

	return s.tasks.Create(ctx, model.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Status:      status,
		UserID:      req.UserID,
		ProjectID:   projectID,
	})
}

func (s *TaskService) Get(ctx context.Context, id int64) (model.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

func (s *TaskService) ListByProject(ctx context.Context, projectID int64) ([]model.Task, error) {
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *TaskService) Update(ctx context.Context, id int64, req model.UpdateTaskRequest) (model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return model.Task{}, apierror.BadRequest("title cannot be empty", "title")
		}
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			return model.Task{}, apierror.BadRequest("start_date must be an RFC 3339 date", "start_date")
		}
		task.StartDate = start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			return model.Task{}, apierror.BadRequest("end_date must be an RFC 3339 date", "end_date")
		}
		task.EndDate = end
	}
	if req.Status != nil {
		if !model.ValidTaskStatus(*req.Status) {
			return model.Task{}, apierror.BadRequest("unknown task status", *req.Status)
		}
		task.Status = *req.Status
	}
	if req.UserID != nil {
		task.UserID = req.UserID
	}

	return s.tasks.Update(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.tasks.Delete(ctx, id)
}

func (s *TaskService) Professions(ctx context.Context, taskID int64) ([]model.Profession, error) {
	return s.tasks.Professions(ctx, taskID)
}

func (s *TaskService) AttachProfession(ctx context.Context, taskID int64, professionID int64) error {
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		return err
	}
	return s.tasks.AttachProfession(ctx, taskID, professionID)
}

func (s *TaskService) DetachProfession(ctx context.Context, taskID int64, professionID int64) error {
	return s.tasks.DetachProfession(ctx, taskID, professionID)
}
