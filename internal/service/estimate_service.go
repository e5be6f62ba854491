package service

import (
	"context"
	"log/slog"
	"strings"

	"batilink/internal/event"
	"batilink/internal/model"
	"batilink/internal/repository"
	"batilink/pkg/apierror"
)

type EstimateService struct {
	estimates *repository.EstimateRepository
	projects  *repository.ProjectRepository
	bus       event.Bus
	log       *slog.Logger
}

func NewEstimateService(estimates *repository.EstimateRepository, projects *repository.ProjectRepository, bus event.Bus, log *slog.Logger) *EstimateService {
	return &EstimateService{estimates: estimates, projects: projects, bus: bus, log: log}
}

func validPaymentType(s string) bool {
	switch s {
	case model.PaymentTypeBankTransfer, model.PaymentTypeCreditCard, model.PaymentTypeCheck, model.PaymentTypeCash:
		return true
	}
	return false
}

func (s *EstimateService) buildEstimate(ctx context.Context, req model.CreateEstimateRequest, userID int64) (model.Estimate, error) {
	if strings.TrimSpace(req.Object) == "" {
		return model.Estimate{}, apierror.BadRequest("object is required", "object")
	}
	if !validPaymentType(req.PaymentType) {
		return model.Estimate{}, apierror.BadRequest("unknown payment type", req.PaymentType)
	}
	limit, err := parseDate(req.LimitDate)
	if err != nil {
		return model.Estimate{}, apierror.BadRequest("limit_date must be an RFC 3339 date", "limit_date")
	}

	project, err := s.projects.FindByID(ctx, req.ProjectID)
	if err != nil {
		return model.Estimate{}, err
	}

	number := req.EstimateNumber
	if number == 0 {
		number, err = s.estimates.NextNumber(ctx)
		if err != nil {
			return model.Estimate{}, err
		}
	}

	return model.Estimate{
		Object:         strings.TrimSpace(req.Object),
		EstimateNumber: number,
		PaymentType:    req.PaymentType,
		LimitDate:      limit,
		ProjectID:      project.ID,
		UserID:         userID,
	}, nil
}

func (s *EstimateService) Create(ctx context.Context, req model.CreateEstimateRequest, userID int64) (model.Estimate, error) {
	estimate, err := s.buildEstimate(ctx, req, userID)
	if err != nil {
		return model.Estimate{}, err
	}
	created, err := s.estimates.Create(ctx, estimate)
	if err != nil {
		return model.Estimate{}, err
	}
	s.publishSubmitted(ctx, created)
	return created, nil
}

// CreateWithLines creates an estimate together with its lines in one
// transaction, so a failed line never leaves a half-built estimate.
func (s *EstimateService) CreateWithLines(ctx context.Context, req model.CreateEstimateWithLinesRequest, userID int64) (model.EstimateWithLines, error) {
	estimate, err := s.buildEstimate(ctx, req.CreateEstimateRequest, userID)
	if err != nil {
		return model.EstimateWithLines{}, err
	}

	lines := make([]model.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		if strings.TrimSpace(l.Description) == "" {
			return model.EstimateWithLines{}, apierror.BadRequest("line description is required", "description")
		}
		if l.Quantity <= 0 {
			return model.EstimateWithLines{}, apierror.BadRequest("line quantity must be positive", "quantity")
		}
		lines = append(lines, model.Line{
			Description: strings.TrimSpace(l.Description),
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}

	created, err := s.estimates.CreateWithLines(ctx, estimate, lines)
	if err != nil {
		return model.EstimateWithLines{}, err
	}
	s.publishSubmitted(ctx, created.Estimate)
	return created, nil
}

func (s *EstimateService) publishSubmitted(ctx context.Context, e model.Estimate) {
	project, err := s.projects.FindByID(ctx, e.ProjectID)
	if err != nil {
		s.log.Warn("estimate submitted for unresolvable project", slog.Int64("estimate_id", e.ID))
		return
	}
	s.bus.Publish(event.Event{
		Type:       event.TypeEstimateSubmitted,
		Payload:    e,
		ActorID:    e.UserID,
		Recipients: []int64{project.CustomerID},
	})
}

func (s *EstimateService) Get(ctx context.Context, id int64) (model.EstimateWithLines, error) {
	estimate, err := s.estimates.FindByID(ctx, id)
	if err != nil {
		return model.EstimateWithLines{}, err
	}
	lines, err := s.estimates.Lines(ctx, id)
	if err != nil {
		return model.EstimateWithLines{}, err
	}
	return model.EstimateWithLines{Estimate: estimate, Lines: lines}, nil
}

func (s *EstimateService) List(ctx context.Context) ([]model.Estimate, error) {
	return s.estimates.List(ctx)
}

func (s *EstimateService) Update(ctx context.Context, id int64, req model.UpdateEstimateRequest) (model.Estimate, error) {
	estimate, err := s.estimates.FindByID(ctx, id)
	if err != nil {
		return model.Estimate{}, err
	}

	wasValidated := estimate.IsValidatedByCustomer
	if req.Object != nil {
		if strings.TrimSpace(*req.Object) == "" {
			return model.Estimate{}, apierror.BadRequest("object cannot be empty", "object")
		}
		estimate.Object = strings.TrimSpace(*req.Object)
	}
	if req.PaymentType != nil {
		if !validPaymentType(*req.PaymentType) {
			return model.Estimate{}, apierror.BadRequest("unknown payment type", *req.PaymentType)
		}
		estimate.PaymentType = *req.PaymentType
	}
	if req.IsValidatedByCustomer != nil {
		estimate.IsValidatedByCustomer = *req.IsValidatedByCustomer
	}
	if req.LimitDate != nil {
		limit, err := parseDate(*req.LimitDate)
		if err != nil {
			return model.Estimate{}, apierror.BadRequest("limit_date must be an RFC 3339 date", "limit_date")
		}
		estimate.LimitDate = limit
	}

	updated, err := s.estimates.Update(ctx, estimate)
	if err != nil {
		return model.Estimate{}, err
	}

	if !wasValidated && updated.IsValidatedByCustomer {
		s.bus.Publish(event.Event{
			Type:       event.TypeEstimateValidated,
			Payload:    updated,
			Recipients: []int64{updated.UserID},
		})
	}
	return updated, nil
}

func (s *EstimateService) Delete(ctx context.Context, id int64) error {
	return s.estimates.Delete(ctx, id)
}

func (s *EstimateService) AddLine(ctx context.Context, estimateID int64, req model.CreateLineRequest) (model.Line, error) {
	if _, err := s.estimates.FindByID(ctx, estimateID); err != nil {
		return model.Line{}, err
	}
	if strings.TrimSpace(req.Description) == "" {
		return model.Line{}, apierror.BadRequest("line description is required", "description")
	}
	if req.Quantity <= 0 {
		return model.Line{}, apierror.BadRequest("line quantity must be positive", "quantity")
	}
	return s.estimates.AddLine(ctx, model.Line{
		Description: strings.TrimSpace(req.Description),
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		EstimateID:  estimateID,
	})
}

func (s *EstimateService) UpdateLine(ctx context.Context, estimateID, lineID int64, req model.CreateLineRequest) (model.Line, error) {
	line, err := s.estimates.FindLine(ctx, estimateID, lineID)
	if err != nil {
		return model.Line{}, err
	}
	if strings.TrimSpace(req.Description) != "" {
		line.Description = strings.TrimSpace(req.Description)
	}
	if req.Quantity > 0 {
		line.Quantity = req.Quantity
	}
	if req.UnitPrice != 0 {
		line.UnitPrice = req.UnitPrice
	}
	return s.estimates.UpdateLine(ctx, line)
}

func (s *EstimateService) DeleteLine(ctx context.Context, estimateID, lineID int64) error {
	return s.estimates.DeleteLine(ctx, estimateID, lineID)
}
