package model

import "time"

const (
	PaymentTypeBankTransfer = "bank_transfer"
	PaymentTypeCreditCard   = "credit_card"
	PaymentTypeCheck        = "check"
	PaymentTypeCash         = "cash"
)

type Estimate struct {
	ID                    int64     `json:"id"`
	Object                string    `json:"object"`
	EstimateNumber        int64     `json:"estimate_number"`
	PaymentType           string    `json:"payment_type"`
	IsValidatedByCustomer bool      `json:"is_validated_by_customer"`
	LimitDate             time.Time `json:"limit_date"`
	ProjectID             int64     `json:"project_id"`
	UserID                int64     `json:"user_id"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type Line struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	EstimateID  int64     `json:"estimate_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type EstimateWithLines struct {
	Estimate
	Lines []Line `json:"lines"`
}
