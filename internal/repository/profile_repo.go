package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"batilink/internal/model"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: pool}
}

const profileColumns = `id, name, first_name, telephone, is_newbie, raison_sociale, siret, user_id, address_id, created_at, updated_at`

func (r *ProfileRepository) FindByUser(ctx context.Context, userID int64) (model.Profile, error) {
	var p model.Profile
	err := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.ID, &p.Name, &p.FirstName, &p.Telephone, &p.IsNewbie, &p.RaisonSociale, &p.Siret,
			&p.UserID, &p.AddressID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, model.ErrNotFound
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p model.Profile) (model.Profile, error) {
	err := r.db.QueryRow(ctx,
		`UPDATE profiles
		 SET name = $2, first_name = $3, telephone = $4, is_newbie = $5, raison_sociale = $6, updated_at = now()
		 WHERE user_id = $1
		 RETURNING `+profileColumns,
		p.UserID, p.Name, p.FirstName, p.Telephone, p.IsNewbie, p.RaisonSociale).
		Scan(&p.ID, &p.Name, &p.FirstName, &p.Telephone, &p.IsNewbie, &p.RaisonSociale, &p.Siret,
			&p.UserID, &p.AddressID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, model.ErrNotFound
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) Professions(ctx context.Context, profileID int64) ([]model.Profession, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.profession_name, p.created_at, p.updated_at
		 FROM professions p
		 JOIN profile_has_profession php ON php.profession_id = p.id
		 WHERE php.profile_id = $1
		 ORDER BY p.profession_name`, profileID)
	if err != nil {
		return nil, fmt.Errorf("profile professions: %w", err)
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

func (r *ProfileRepository) AttachProfession(ctx context.Context, profileID, professionID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO profile_has_profession (profile_id, profession_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`, profileID, professionID)
	if err != nil {
		return fmt.Errorf("attach profession: %w", err)
	}
	return nil
}

func (r *ProfileRepository) DetachProfession(ctx context.Context, profileID, professionID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM profile_has_profession WHERE profile_id = $1 AND profession_id = $2`,
		profileID, professionID)
	if err != nil {
		return fmt.Errorf("detach profession: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
