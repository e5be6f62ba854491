package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"batilink/internal/model"
)

type AddressRepository struct {
	db DBTX
}

func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{db: pool}
}

const addressColumns = `id, address_line_1, zip_code, city, country, created_at, updated_at`

func (r *AddressRepository) Create(ctx context.Context, a model.Address) (model.Address, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO addresses (address_line_1, zip_code, city, country)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		a.AddressLine1, a.ZipCode, a.City, a.Country).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Address{}, fmt.Errorf("create address: %w", err)
	}
	return a, nil
}

func (r *AddressRepository) FindByID(ctx context.Context, id int64) (model.Address, error) {
	var a model.Address
	err := r.db.QueryRow(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1`, id).
		Scan(&a.ID, &a.AddressLine1, &a.ZipCode, &a.City, &a.Country, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Address{}, model.ErrNotFound
	}
	if err != nil {
		return model.Address{}, fmt.Errorf("find address: %w", err)
	}
	return a, nil
}

func (r *AddressRepository) List(ctx context.Context) ([]model.Address, error) {
	rows, err := r.db.Query(ctx, `SELECT `+addressColumns+` FROM addresses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]model.Address, 0)
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.AddressLine1, &a.ZipCode, &a.City, &a.Country, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (r *AddressRepository) Update(ctx context.Context, a model.Address) (model.Address, error) {
	err := r.db.QueryRow(ctx,
		`UPDATE addresses
		 SET address_line_1 = $2, zip_code = $3, city = $4, country = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		a.ID, a.AddressLine1, a.ZipCode, a.City, a.Country).
		Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Address{}, model.ErrNotFound
	}
	if err != nil {
		return model.Address{}, fmt.Errorf("update address: %w", err)
	}
	return a, nil
}

func (r *AddressRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
