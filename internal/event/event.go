package event

import "time"

type Type string

const (
	TypeProjectAccepted   Type = "project.accepted"
	TypeProjectFinished   Type = "project.finished"
	TypeEstimateSubmitted Type = "estimate.submitted"
	TypeEstimateValidated Type = "estimate.validated"
	TypeInvoiceCreated    Type = "invoice.created"
	TypeInvoicePaid       Type = "invoice.paid"
)

// Event is a domain fact published after its transaction committed.
// Recipients lists the users a notification should be fanned out to.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Payload    any       `json:"payload"`
	ActorID    int64     `json:"actor_id,omitempty"`
	Recipients []int64   `json:"recipients,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
