package service

import (
	"context"
	"time"

	"batilink/internal/event"
	"batilink/internal/model"
	"batilink/internal/repository"
	"batilink/pkg/apierror"
)

type InvoiceService struct {
	invoices  *repository.InvoiceRepository
	estimates *repository.EstimateRepository
	projects  *repository.ProjectRepository
	bus       event.Bus
}

func NewInvoiceService(invoices *repository.InvoiceRepository, estimates *repository.EstimateRepository, projects *repository.ProjectRepository, bus event.Bus) *InvoiceService {
	return &InvoiceService{invoices: invoices, estimates: estimates, projects: projects, bus: bus}
}

// Create bills a validated estimate. Invoicing an estimate the customer
// has not validated yet is refused.
func (s *InvoiceService) Create(ctx context.Context, req model.CreateInvoiceRequest) (model.Invoice, error) {
	estimate, err := s.estimates.FindByID(ctx, req.EstimateID)
	if err != nil {
		return model.Invoice{}, err
	}
	if !estimate.IsValidatedByCustomer {
		return model.Invoice{}, apierror.BadRequest("estimate is not validated by the customer", "estimate_id")
	}

	billing := time.Now()
	if req.BillingDate != "" {
		billing, err = parseDate(req.BillingDate)
		if err != nil {
			return model.Invoice{}, apierror.BadRequest("billing_date must be an RFC 3339 date", "billing_date")
		}
	}
	number := req.InvoiceNumber
	if number == 0 {
		number, err = s.invoices.NextNumber(ctx)
		if err != nil {
			return model.Invoice{}, err
		}
	}

	created, err := s.invoices.Create(ctx, model.Invoice{
		InvoiceNumber: number,
		BillingDate:   billing,
		EstimateID:    estimate.ID,
	})
	if err != nil {
		return model.Invoice{}, err
	}

	if project, err := s.projects.FindByID(ctx, estimate.ProjectID); err == nil {
		s.bus.Publish(event.Event{
			Type:       event.TypeInvoiceCreated,
			Payload:    created,
			Recipients: []int64{project.CustomerID},
		})
	}
	return created, nil
}

func (s *InvoiceService) Get(ctx context.Context, id int64) (model.Invoice, error) {
	return s.invoices.FindByID(ctx, id)
}

func (s *InvoiceService) List(ctx context.Context) ([]model.Invoice, error) {
	return s.invoices.List(ctx)
}

func (s *InvoiceService) Update(ctx context.Context, id int64, req model.UpdateInvoiceRequest) (model.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return model.Invoice{}, err
	}

	wasPaid := invoice.IsPaid
	if req.BillingDate != nil {
		billing, err := parseDate(*req.BillingDate)
		if err != nil {
			return model.Invoice{}, apierror.BadRequest("billing_date must be an RFC 3339 date", "billing_date")
		}
		invoice.BillingDate = billing
	}
	if req.IsPaid != nil {
		invoice.IsPaid = *req.IsPaid
		if *req.IsPaid && invoice.PaidAt == nil {
			now := time.Now()
			invoice.PaidAt = &now
		}
		if !*req.IsPaid {
			invoice.PaidAt = nil
		}
	}

	updated, err := s.invoices.Update(ctx, invoice)
	if err != nil {
		return model.Invoice{}, err
	}

	if !wasPaid && updated.IsPaid {
		if estimate, err := s.estimates.FindByID(ctx, updated.EstimateID); err == nil {
			s.bus.Publish(event.Event{
				Type:       event.TypeInvoicePaid,
				Payload:    updated,
				Recipients: []int64{estimate.UserID},
			})
		}
	}
	return updated, nil
}

func (s *InvoiceService) Delete(ctx context.Context, id int64) error {
	return s.invoices.Delete(ctx, id)
}
