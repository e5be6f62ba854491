package service

import (
	"context"
	"fmt"
	"log/slog"

	"batilink/internal/event"
	"batilink/internal/model"
	"batilink/internal/repository"
	"batilink/pkg/apierror"
)

type NotificationService struct {
	notifications *repository.NotificationRepository
	log           *slog.Logger
}

func NewNotificationService(notifications *repository.NotificationRepository, log *slog.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, log: log}
}

func (s *NotificationService) Create(ctx context.Context, req model.CreateNotificationRequest) (model.Notification, error) {
	if req.Title == "" {
		return model.Notification{}, apierror.BadRequest("title is required", "title")
	}
	if len(req.Recipients) == 0 {
		return model.Notification{}, apierror.BadRequest("at least one recipient is required", "recipients")
	}
	kind := req.Kind
	if kind == "" {
		kind = "info"
	}
	return s.notifications.CreateFor(ctx, model.Notification{
		Title: req.Title,
		Body:  req.Body,
		Kind:  kind,
	}, req.Recipients)
}

func (s *NotificationService) ListByUser(ctx context.Context, userID int64) ([]model.UserNotification, error) {
	return s.notifications.ListByUser(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.notifications.MarkRead(ctx, userID, notificationID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID int64) error {
	return s.notifications.Delete(ctx, userID, notificationID)
}

// Dispatch consumes domain events from the bus and persists them as
// notifications for their recipients. Runs until ctx is cancelled or the
// bus closes the channel.
func (s *NotificationService) Dispatch(ctx context.Context, bus event.Bus) {
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			s.deliver(ctx, e)
		}
	}
}

func (s *NotificationService) deliver(ctx context.Context, e event.Event) {
	if len(e.Recipients) == 0 {
		return
	}
	title, body := notificationText(e)
	if title == "" {
		return
	}
	_, err := s.notifications.CreateFor(ctx, model.Notification{
		Title: title,
		Body:  body,
		Kind:  string(e.Type),
	}, e.Recipients)
	if err != nil {
		s.log.Error("deliver notification", slog.String("event", string(e.Type)), slog.Any("error", err))
	}
}

func notificationText(e event.Event) (string, string) {
	switch e.Type {
	case event.TypeProjectAccepted:
		return "Project accepted", "An entreprise accepted your project."
	case event.TypeProjectFinished:
		return "Project finished", "A project you are part of was marked finished."
	case event.TypeEstimateSubmitted:
		return "New estimate", "An entreprise submitted an estimate for your project."
	case event.TypeEstimateValidated:
		return "Estimate validated", "The customer validated your estimate."
	case event.TypeInvoiceCreated:
		return "New invoice", "An invoice was issued for your project."
	case event.TypeInvoicePaid:
		return "Invoice paid", fmt.Sprintf("Invoice %v was paid.", invoiceNumber(e.Payload))
	}
	return "", ""
}

func invoiceNumber(payload any) any {
	if inv, ok := payload.(model.Invoice); ok {
		return inv.InvoiceNumber
	}
	return "?"
}
