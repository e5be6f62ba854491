package model

import "time"

// RefreshTokenRecord is the persisted form of a refresh token. Only a
// one-way digest of the token value is stored; the raw value exists only
// in the client's hands.
//
// Lifecycle: active (not revoked, not expired) -> revoked via rotation,
// logout or reuse detection; expiry is computed from ExpiresAt, never
// written. Revoked and expired rows are purged opportunistically on the
// next issuance for the same user.
type RefreshTokenRecord struct {
	ID        int64
	UserID    int64
	TokenHash string
	Revoked   bool
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the record can still be exchanged at the given
// instant.
func (r RefreshTokenRecord) Active(now time.Time) bool {
	return !r.Revoked && now.Before(r.ExpiresAt)
}
