package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"batilink/internal/model"
)

type InvoiceRepository struct {
	db DBTX
}

func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{db: pool}
}

const invoiceColumns = `id, invoice_number, billing_date, is_paid, paid_at, estimate_id, created_at, updated_at`

func (r *InvoiceRepository) Create(ctx context.Context, inv model.Invoice) (model.Invoice, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO invoices (invoice_number, billing_date, is_paid, paid_at, estimate_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		inv.InvoiceNumber, inv.BillingDate, inv.IsPaid, inv.PaidAt, inv.EstimateID).
		Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return model.Invoice{}, conflict
		}
		return model.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id int64) (model.Invoice, error) {
	var inv model.Invoice
	err := r.db.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id).
		Scan(&inv.ID, &inv.InvoiceNumber, &inv.BillingDate, &inv.IsPaid, &inv.PaidAt,
			&inv.EstimateID, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Invoice{}, model.ErrNotFound
	}
	if err != nil {
		return model.Invoice{}, fmt.Errorf("find invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) List(ctx context.Context) ([]model.Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY invoice_number`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]model.Invoice, 0)
	for rows.Next() {
		var inv model.Invoice
		if err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.BillingDate, &inv.IsPaid, &inv.PaidAt,
			&inv.EstimateID, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// NextNumber returns the next free invoice number, starting at 5001.
func (r *InvoiceRepository) NextNumber(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(invoice_number), 5000) + 1 FROM invoices`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next invoice number: %w", err)
	}
	return next, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv model.Invoice) (model.Invoice, error) {
	err := r.db.QueryRow(ctx,
		`UPDATE invoices
		 SET billing_date = $2, is_paid = $3, paid_at = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		inv.ID, inv.BillingDate, inv.IsPaid, inv.PaidAt).
		Scan(&inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Invoice{}, model.ErrNotFound
	}
	if err != nil {
		return model.Invoice{}, fmt.Errorf("update invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
