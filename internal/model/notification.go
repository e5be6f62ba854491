package model

import "time"

type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserNotification is a notification as seen by one recipient, including
// the per-recipient read flag from the join table.
type UserNotification struct {
	Notification
	UserID int64      `json:"user_id"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}
