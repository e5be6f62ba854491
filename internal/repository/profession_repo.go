package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"batilink/internal/model"
)

type ProfessionRepository struct {
	db DBTX
}

func NewProfessionRepository(pool *pgxpool.Pool) *ProfessionRepository {
	return &ProfessionRepository{db: pool}
}

func (r *ProfessionRepository) Create(ctx context.Context, name string) (model.Profession, error) {
	var p model.Profession
	err := r.db.QueryRow(ctx,
		`INSERT INTO professions (profession_name) VALUES ($1)
		 RETURNING id, profession_name, created_at, updated_at`, name).
		Scan(&p.ID, &p.ProfessionName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return model.Profession{}, conflict
		}
		return model.Profession{}, fmt.Errorf("create profession: %w", err)
	}
	return p, nil
}

func (r *ProfessionRepository) FindByID(ctx context.Context, id int64) (model.Profession, error) {
	var p model.Profession
	err := r.db.QueryRow(ctx,
		`SELECT id, profession_name, created_at, updated_at FROM professions WHERE id = $1`, id).
		Scan(&p.ID, &p.ProfessionName, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Profession{}, model.ErrNotFound
	}
	if err != nil {
		return model.Profession{}, fmt.Errorf("find profession: %w", err)
	}
	return p, nil
}

func (r *ProfessionRepository) List(ctx context.Context) ([]model.Profession, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, profession_name, created_at, updated_at FROM professions ORDER BY profession_name`)
	if err != nil {
		return nil, fmt.Errorf("list professions: %w", err)
	}
	defer rows.Close()

	professions := make([]model.Profession, 0)
	for rows.Next() {
		var p model.Profession
		if err := rows.Scan(&p.ID, &p.ProfessionName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profession: %w", err)
		}
		professions = append(professions, p)
	}
	return professions, rows.Err()
}

func (r *ProfessionRepository) Update(ctx context.Context, id int64, name string) (model.Profession, error) {
	var p model.Profession
	err := r.db.QueryRow(ctx,
		`UPDATE professions SET profession_name = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING id, profession_name, created_at, updated_at`, id, name).
		Scan(&p.ID, &p.ProfessionName, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Profession{}, model.ErrNotFound
	}
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return model.Profession{}, conflict
		}
		return model.Profession{}, fmt.Errorf("update profession: %w", err)
	}
	return p, nil
}

func (r *ProfessionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM professions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profession: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
