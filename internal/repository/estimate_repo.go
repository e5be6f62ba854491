package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"batilink/internal/model"
)

type EstimateRepository struct {
	db   DBTX
	pool *pgxpool.Pool
}

func NewEstimateRepository(pool *pgxpool.Pool) *EstimateRepository {
	return &EstimateRepository{db: pool, pool: pool}
}

const estimateColumns = `id, object, estimate_number, payment_type, is_validated_by_customer, limit_date, project_id, user_id, created_at, updated_at`

func (r *EstimateRepository) Create(ctx context.Context, e model.Estimate) (model.Estimate, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO estimates (object, estimate_number, payment_type, is_validated_by_customer, limit_date, project_id, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		e.Object, e.EstimateNumber, e.PaymentType, e.IsValidatedByCustomer, e.LimitDate, e.ProjectID, e.UserID).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return model.Estimate{}, conflict
		}
		return model.Estimate{}, fmt.Errorf("create estimate: %w", err)
	}
	return e, nil
}

// CreateWithLines inserts an estimate and its lines atomically.
func (r *EstimateRepository) CreateWithLines(ctx context.Context, e model.Estimate, lines []model.Line) (model.EstimateWithLines, error) {
	var out model.EstimateWithLines
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		bound := &EstimateRepository{db: tx}

		created, err := bound.Create(ctx, e)
		if err != nil {
			return err
		}
		out.Estimate = created

		for _, line := range lines {
			line.EstimateID = created.ID
			inserted, err := bound.AddLine(ctx, line)
			if err != nil {
				return err
			}
			out.Lines = append(out.Lines, inserted)
		}
		return nil
	})
	if err != nil {
		return model.EstimateWithLines{}, err
	}
	return out, nil
}

func (r *EstimateRepository) FindByID(ctx context.Context, id int64) (model.Estimate, error) {
	var e model.Estimate
	err := r.db.QueryRow(ctx,
		`SELECT `+estimateColumns+` FROM estimates WHERE id = $1`, id).
		Scan(&e.ID, &e.Object, &e.EstimateNumber, &e.PaymentType, &e.IsValidatedByCustomer,
			&e.LimitDate, &e.ProjectID, &e.UserID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Estimate{}, model.ErrNotFound
	}
	if err != nil {
		return model.Estimate{}, fmt.Errorf("find estimate: %w", err)
	}
	return e, nil
}

func (r *EstimateRepository) List(ctx context.Context) ([]model.Estimate, error) {
	rows, err := r.db.Query(ctx, `SELECT `+estimateColumns+` FROM estimates ORDER BY estimate_number`)
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	defer rows.Close()

	estimates := make([]model.Estimate, 0)
	for rows.Next() {
		var e model.Estimate
		if err := rows.Scan(&e.ID, &e.Object, &e.EstimateNumber, &e.PaymentType, &e.IsValidatedByCustomer,
			&e.LimitDate, &e.ProjectID, &e.UserID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		estimates = append(estimates, e)
	}
	return estimates, rows.Err()
}

// NextNumber returns the next free estimate number, starting at 1001.
func (r *EstimateRepository) NextNumber(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(estimate_number), 1000) + 1 FROM estimates`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next estimate number: %w", err)
	}
	return next, nil
}

func (r *EstimateRepository) Update(ctx context.Context, e model.Estimate) (model.Estimate, error) {
	err := r.db.QueryRow(ctx,
		`UPDATE estimates
		 SET object = $2, payment_type = $3, is_validated_by_customer = $4, limit_date = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		e.ID, e.Object, e.PaymentType, e.IsValidatedByCustomer, e.LimitDate).
		Scan(&e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Estimate{}, model.ErrNotFound
	}
	if err != nil {
		return model.Estimate{}, fmt.Errorf("update estimate: %w", err)
	}
	return e, nil
}

func (r *EstimateRepository) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM invoices WHERE estimate_id = $1`, id); err != nil {
			return fmt.Errorf("delete estimate invoices: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM lines WHERE estimate_id = $1`, id); err != nil {
			return fmt.Errorf("delete estimate lines: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM estimates WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete estimate: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrNotFound
		}
		return nil
	})
}

const lineColumns = `id, description, quantity, unit_price, estimate_id, created_at, updated_at`

func (r *EstimateRepository) Lines(ctx context.Context, estimateID int64) ([]model.Line, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+lineColumns+` FROM lines WHERE estimate_id = $1 ORDER BY id`, estimateID)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	defer rows.Close()

	lines := make([]model.Line, 0)
	for rows.Next() {
		var l model.Line
		if err := rows.Scan(&l.ID, &l.Description, &l.Quantity, &l.UnitPrice, &l.EstimateID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *EstimateRepository) FindLine(ctx context.Context, estimateID int64, lineID int64) (model.Line, error) {
	var l model.Line
	err := r.db.QueryRow(ctx,
		`SELECT `+lineColumns+` FROM lines WHERE id = $1 AND estimate_id = $2`, lineID, estimateID).
		Scan(&l.ID, &l.Description, &l.Quantity, &l.UnitPrice, &l.EstimateID, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Line{}, model.ErrNotFound
	}
	if err != nil {
		return model.Line{}, fmt.Errorf("find line: %w", err)
	}
	return l, nil
}

func (r *EstimateRepository) AddLine(ctx context.Context, l model.Line) (model.Line, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO lines (description, quantity, unit_price, estimate_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		l.Description, l.Quantity, l.UnitPrice, l.EstimateID).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return model.Line{}, fmt.Errorf("add line: %w", err)
	}
	return l, nil
}

func (r *EstimateRepository) UpdateLine(ctx context.Context, l model.Line) (model.Line, error) {
	err := r.db.QueryRow(ctx,
		`UPDATE lines SET description = $3, quantity = $4, unit_price = $5, updated_at = now()
		 WHERE id = $1 AND estimate_id = $2
		 RETURNING updated_at`,
		l.ID, l.EstimateID, l.Description, l.Quantity, l.UnitPrice).
		Scan(&l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Line{}, model.ErrNotFound
	}
	if err != nil {
		return model.Line{}, fmt.Errorf("update line: %w", err)
	}
	return l, nil
}

func (r *EstimateRepository) DeleteLine(ctx context.Context, estimateID int64, lineID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM lines WHERE id = $1 AND estimate_id = $2`, lineID, estimateID)
	if err != nil {
		return fmt.Errorf("delete line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
