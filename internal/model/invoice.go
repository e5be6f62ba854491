package model

import "time"

type Invoice struct {
	ID            int64      `json:"id"`
	InvoiceNumber int64      `json:"invoice_number"`
	BillingDate   time.Time  `json:"billing_date"`
	IsPaid        bool       `json:"is_paid"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	EstimateID    int64      `json:"estimate_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
