package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"batilink/internal/model"
)

// SignupOps is the store surface used by the atomic signup transaction.
type SignupOps interface {
	CreateUser(ctx context.Context, email string, passwordHash string, role string) (model.User, error)
	CreateAddress(ctx context.Context, a model.Address) (model.Address, error)
	CreateProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	ProfessionsByName(ctx context.Context, names []string) ([]model.Profession, error)
	AttachProfileProfession(ctx context.Context, profileID int64, professionID int64) error
}

type UserRepository struct {
	db   DBTX
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: pool, pool: pool}
}

// InTx runs fn against a transaction-bound view of the repository.
func (r *UserRepository) InTx(ctx context.Context, fn func(SignupOps) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&UserRepository{db: tx})
	})
}

const userColumns = `id, email, password_hash, role, is_validated, created_at, updated_at`

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	return r.scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
}

func (r *UserRepository) scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsValidated, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, email string, passwordHash string, role string) (model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, role, is_validated)
		 VALUES ($1, $2, $3, FALSE)
		 RETURNING `+userColumns,
		strings.TrimSpace(email), passwordHash, role).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsValidated, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return model.User{}, conflict
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) CreateAddress(ctx context.Context, a model.Address) (model.Address, error) {
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

func (r *UserRepository) CreateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO profiles (name, first_name, telephone, is_newbie, raison_sociale, siret, user_id, address_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.FirstName, p.Telephone, p.IsNewbie, p.RaisonSociale, p.Siret, p.UserID, p.AddressID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return model.Profile{}, conflict
		}
		return model.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

func (r *UserRepository) ProfessionsByName(ctx context.Context, names []string) ([]model.Profession, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, profession_name, created_at, updated_at
		 FROM professions WHERE profession_name = ANY($1)`, names)
	if err != nil {
		return nil, fmt.Errorf("find professions by name: %w", err)
	}
	defer rows.Close()

	out := make([]model.Profession, 0, len(names))
	for rows.Next() {
		var p model.Profession
		if err := rows.Scan(&p.ID, &p.ProfessionName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profession: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *UserRepository) AttachProfileProfession(ctx context.Context, profileID int64, professionID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO profile_has_profession (profile_id, profession_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, profileID, professionID)
	if err != nil {
		return fmt.Errorf("attach profession to profile: %w", err)
	}
	return nil
}

// CompleteByID returns the session view: user, profile, address and the
// profile's professions.
func (r *UserRepository) CompleteByID(ctx context.Context, id int64) (model.UserWithProfile, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return model.UserWithProfile{}, err
	}

	out := model.UserWithProfile{UserView: user.View()}

	var (
		p model.Profile
		a model.Address
	)
	err = r.db.QueryRow(ctx,
		`SELECT p.id, p.name, p.first_name, p.telephone, p.is_newbie, p.raison_sociale, p.siret,
		        p.user_id, p.address_id, p.created_at, p.updated_at,
		        a.id, a.address_line_1, a.zip_code, a.city, a.country, a.created_at, a.updated_at
		 FROM profiles p
		 JOIN addresses a ON a.id = p.address_id
		 WHERE p.user_id = $1
		 ORDER BY p.id
		 LIMIT 1`, id).
		Scan(&p.ID, &p.Name, &p.FirstName, &p.Telephone, &p.IsNewbie, &p.RaisonSociale, &p.Siret,
			&p.UserID, &p.AddressID, &p.CreatedAt, &p.UpdatedAt,
			&a.ID, &a.AddressLine1, &a.ZipCode, &a.City, &a.Country, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// A user without a profile is still a valid session subject.
		return out, nil
	}
	if err != nil {
		return model.UserWithProfile{}, fmt.Errorf("load profile for user: %w", err)
	}

	view := model.ProfileView{Profile: p, Address: &a}

	rows, err := r.db.Query(ctx,
		`SELECT pr.id, pr.profession_name, pr.created_at, pr.updated_at
		 FROM profile_has_profession php
		 JOIN professions pr ON pr.id = php.profession_id
		 WHERE php.profile_id = $1
		 ORDER BY pr.profession_name`, p.ID)
	if err != nil {
		return model.UserWithProfile{}, fmt.Errorf("load professions for profile: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pr model.Profession
		if err := rows.Scan(&pr.ID, &pr.ProfessionName, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
			return model.UserWithProfile{}, fmt.Errorf("scan profession: %w", err)
		}
		view.Professions = append(view.Professions, pr)
	}
	if err := rows.Err(); err != nil {
		return model.UserWithProfile{}, err
	}

	out.Profile = &view
	return out, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.UserView, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, email, role, is_validated, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.UserView, 0)
	for rows.Next() {
		var u model.UserView
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.IsValidated, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// DeleteCascade removes a user and everything hanging off it in one
// transaction: profession links, notifications, tokens, the tasks and
// projects the user owns, and the estimates/invoices under those
// projects. Task assignments to other people's projects are detached
// rather than deleted.
func (r *UserRepository) DeleteCascade(ctx context.Context, userID int64) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		steps := []string{
			`DELETE FROM profile_has_profession
			 WHERE profile_id IN (SELECT id FROM profiles WHERE user_id = $1)`,
			`DELETE FROM user_receives_notifications WHERE user_id = $1`,
			`DELETE FROM refresh_tokens WHERE user_id = $1`,
			`UPDATE tasks SET user_id = NULL, updated_at = now() WHERE user_id = $1`,
			`DELETE FROM task_has_profession
			 WHERE task_id IN (
				SELECT t.id FROM tasks t
				JOIN projects p ON p.id = t.project_id
				WHERE p.customer_id = $1 OR p.entreprise_id = $1)`,
			`DELETE FROM tasks
			 WHERE project_id IN (SELECT id FROM projects WHERE customer_id = $1 OR entreprise_id = $1)`,
			`DELETE FROM invoices
			 WHERE estimate_id IN (
				SELECT e.id FROM estimates e
				LEFT JOIN projects p ON p.id = e.project_id
				WHERE e.user_id = $1 OR p.customer_id = $1 OR p.entreprise_id = $1)`,
			`DELETE FROM lines
			 WHERE estimate_id IN (
				SELECT e.id FROM estimates e
				LEFT JOIN projects p ON p.id = e.project_id
				WHERE e.user_id = $1 OR p.customer_id = $1 OR p.entreprise_id = $1)`,
			`DELETE FROM estimates
			 WHERE user_id = $1
			    OR project_id IN (SELECT id FROM projects WHERE customer_id = $1 OR entreprise_id = $1)`,
			`DELETE FROM projects WHERE customer_id = $1 OR entreprise_id = $1`,
			`DELETE FROM profiles WHERE user_id = $1`,
		}

		for _, step := range steps {
			if _, err := tx.Exec(ctx, step, userID); err != nil {
				return fmt.Errorf("cascade delete user: %w", err)
			}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrUserNotFound
		}
		return nil
	})
}
