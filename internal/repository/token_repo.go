package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"batilink/internal/model"
)

// RefreshTokenOps is the per-record surface of the refresh-token table.
// Callers that need atomicity run a sequence of these inside InTx; reads
// never assume a single active record per user.
type RefreshTokenOps interface {
	ActiveByUser(ctx context.Context, userID int64) ([]model.RefreshTokenRecord, error)
	RevokedByUser(ctx context.Context, userID int64) ([]model.RefreshTokenRecord, error)
	Insert(ctx context.Context, rec model.RefreshTokenRecord) error
	MarkRevoked(ctx context.Context, id int64) (int64, error)
	RevokeAllActive(ctx context.Context, userID int64) (int64, error)
	DeleteDead(ctx context.Context, userID int64) (int64, error)
}

type TokenRepository struct {
	db   DBTX
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: pool, pool: pool}
}

// InTx runs fn against a transaction-bound view of the repository.
func (r *TokenRepository) InTx(ctx context.Context, fn func(RefreshTokenOps) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&TokenRepository{db: tx})
	})
}

const refreshTokenColumns = `id, user_id, token_hash, revoked, expires_at, created_at, updated_at`

func (r *TokenRepository) ActiveByUser(ctx context.Context, userID int64) ([]model.RefreshTokenRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens
		 WHERE user_id = $1 AND revoked = FALSE AND expires_at > now()`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active refresh tokens: %w", err)
	}
	return scanRefreshTokens(rows)
}

func (r *TokenRepository) RevokedByUser(ctx context.Context, userID int64) ([]model.RefreshTokenRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens
		 WHERE user_id = $1 AND revoked = TRUE`, userID)
	if err != nil {
		return nil, fmt.Errorf("list revoked refresh tokens: %w", err)
	}
	return scanRefreshTokens(rows)
}

func (r *TokenRepository) Insert(ctx context.Context, rec model.RefreshTokenRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, revoked, expires_at)
		 VALUES ($1, $2, FALSE, $3)`,
		rec.UserID, rec.TokenHash, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// MarkRevoked flips one active record to revoked and reports how many
// rows changed. Zero means a concurrent transaction spent the record
// first; callers deciding on the update must check the count.
func (r *TokenRepository) MarkRevoked(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE, updated_at = now()
		 WHERE id = $1 AND revoked = FALSE`, id)
	if err != nil {
		return 0, fmt.Errorf("revoke refresh token: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *TokenRepository) RevokeAllActive(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE, updated_at = now()
		 WHERE user_id = $1 AND revoked = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke all refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteDead purges rows that are revoked or expired for the user.
func (r *TokenRepository) DeleteDead(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM refresh_tokens
		 WHERE user_id = $1 AND (revoked = TRUE OR expires_at <= now())`, userID)
	if err != nil {
		return 0, fmt.Errorf("purge refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRefreshTokens(rows pgx.Rows) ([]model.RefreshTokenRecord, error) {
	defer rows.Close()

	records := make([]model.RefreshTokenRecord, 0, 2)
	for rows.Next() {
		var rec model.RefreshTokenRecord
		var expiresAt, createdAt, updatedAt time.Time
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TokenHash, &rec.Revoked, &expiresAt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan refresh token: %w", err)
		}
		rec.ExpiresAt = expiresAt
		rec.CreatedAt = createdAt
		rec.UpdatedAt = updatedAt
		records = append(records, rec)
	}
	return records, rows.Err()
}
