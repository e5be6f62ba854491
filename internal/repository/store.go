package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"batilink/pkg/apierror"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, letting
// every repository run against the pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const pgUniqueViolation = "23505"

// conflictError maps a unique-constraint violation to the CONFLICT error
// naming the colliding field. Email outranks siret when both could apply.
func conflictError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}

	constraint := strings.ToLower(pgErr.ConstraintName)
	switch {
	case strings.Contains(constraint, "email"):
		return apierror.Conflict("email")
	case strings.Contains(constraint, "siret"):
		return apierror.Conflict("siret")
	case strings.Contains(constraint, "profession_name"):
		return apierror.Conflict("profession_name")
	case strings.Contains(constraint, "estimate_number"):
		return apierror.Conflict("estimate_number")
	case strings.Contains(constraint, "invoice_number"):
		return apierror.Conflict("invoice_number")
	default:
		return apierror.Conflict(pgErr.ConstraintName)
	}
}

// inTx runs fn inside a transaction on the given pool, committing on nil
// and rolling back on error or panic.
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	if err := pgx.BeginFunc(ctx, pool, fn); err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}
