package model

import "time"

type Project struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartDate    time.Time `json:"start_date"`
	IsFinished   bool      `json:"is_finished"`
	AddressID    *int64    `json:"address_id,omitempty"`
	CustomerID   int64     `json:"customer_id"`
	EntrepriseID *int64    `json:"entreprise_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProjectView carries the project together with its tasks for list and
// detail endpoints.
type ProjectView struct {
	Project
	Address *Address `json:"address,omitempty"`
	Tasks   []Task   `json:"tasks,omitempty"`
}
