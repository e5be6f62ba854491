package model

import "time"

const (
	TaskStatusPending  = "pending"
	TaskStatusStarted  = "started"
	TaskStatusFinished = "finished"
)

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status"`
	// UserID is the entreprise user assigned to the task; nil once the
	// assignee is deleted.
	UserID    *int64    `json:"user_id,omitempty"`
	ProjectID int64     `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusPending, TaskStatusStarted, TaskStatusFinished:
		return true
	}
	return false
}
