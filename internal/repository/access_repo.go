package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"batilink/internal/access"
	"batilink/internal/model"
)

// AccessRepository resolves owner-candidate fields for the authorization
// engine. Each resource type maps to one narrow query selecting only the
// columns policies can name.
type AccessRepository struct {
	db DBTX
}

func NewAccessRepository(pool *pgxpool.Pool) *AccessRepository {
	return &AccessRepository{db: pool}
}

func (r *AccessRepository) OwnerFields(ctx context.Context, resource access.Resource, id int64) (map[string]int64, error) {
	switch resource {
	case access.ResourceProject:
		return r.projectOwners(ctx, id)
	case access.ResourceTask:
		return r.taskOwners(ctx, id)
	case access.ResourceAddress:
		return r.addressOwners(ctx, id)
	default:
		return nil, fmt.Errorf("unknown resource type %q", resource)
	}
}

func (r *AccessRepository) projectOwners(ctx context.Context, id int64) (map[string]int64, error) {
	var customerID int64
	var entrepriseID *int64
	err := r.db.QueryRow(ctx,
		`SELECT customer_id, entreprise_id FROM projects WHERE id = $1`, id).
		Scan(&customerID, &entrepriseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load project owners: %w", err)
	}

	fields := map[string]int64{access.FieldCustomerID: customerID}
	if entrepriseID != nil {
		fields[access.FieldEntrepriseID] = *entrepriseID
	}
	return fields, nil
}

func (r *AccessRepository) taskOwners(ctx context.Context, id int64) (map[string]int64, error) {
	var userID *int64
	err := r.db.QueryRow(ctx, `SELECT user_id FROM tasks WHERE id = $1`, id).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load task owner: %w", err)
	}

	fields := map[string]int64{}
	if userID != nil {
		fields[access.FieldUserID] = *userID
	}
	return fields, nil
}

// addressOwners resolves address ownership transitively through the
// profile that holds the address.
func (r *AccessRepository) addressOwners(ctx context.Context, id int64) (map[string]int64, error) {
	var userID int64
	err := r.db.QueryRow(ctx,
		`SELECT user_id FROM profiles WHERE address_id = $1 ORDER BY id LIMIT 1`, id).
		Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load address owner: %w", err)
	}

	return map[string]int64{access.FieldUserID: userID}, nil
}
