package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"batilink/internal/model"
	"batilink/internal/repository"
	"batilink/pkg/apierror"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// RefreshTokenStore is the slice of the token repository the lifecycle
// manager needs. Every mutation runs inside a single transaction.
type RefreshTokenStore interface {
	InTx(ctx context.Context, fn func(repository.RefreshTokenOps) error) error
}

type tokenClaims struct {
	Role string `json:"role,omitempty"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies JWTs and drives the refresh token
// rotation state machine. Refresh tokens are persisted only as SHA-256
// digests; presenting a value that matches a revoked record is treated
// as theft and revokes the user's whole session set.
type TokenService struct {
	tokens     RefreshTokenStore
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *slog.Logger
	now        func() time.Time
}

func NewTokenService(tokens RefreshTokenStore, secret string, accessTTL, refreshTTL time.Duration, log *slog.Logger) *TokenService {
	return &TokenService{
		tokens:     tokens,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
		now:        time.Now,
	}
}

// Issue mints a fresh access/refresh pair for the user. Any refresh
// tokens the user still holds are revoked first, so at most one lineage
// is live per user, and dead rows are purged on the way out. All three
// steps commit or roll back together.
func (s *TokenService) Issue(ctx context.Context, user model.User) (model.TokenPair, error) {
	pair, refresh, err := s.mintPair(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	err = s.tokens.InTx(ctx, func(ops repository.RefreshTokenOps) error {
		if _, err := ops.RevokeAllActive(ctx, user.ID); err != nil {
			return err
		}
		if err := ops.Insert(ctx, refresh); err != nil {
			return err
		}
		_, err := ops.DeleteDead(ctx, user.ID)
		return err
	})
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}

// Rotate exchanges a refresh token for a new pair. The presented value
// must match an active record for its user; a match against a revoked
// record means the value was already spent, so every active session for
// that user is revoked before the exchange is refused. All failure modes
// surface as the same rejection.
func (s *TokenService) Rotate(ctx context.Context, presented string) (model.TokenPair, error) {
	userID, err := s.parseRefresh(presented)
	if err != nil {
		return model.TokenPair{}, model.ErrRefreshRejected
	}

	digest := hashToken(presented)
	now := s.now()

	// The rejection is carried out of the closure as a flag, not an
	// error: returning an error would roll back the transaction and undo
	// the mass revocation that must outlive a refused exchange.
	var pair model.TokenPair
	var rejected bool
	err = s.tokens.InTx(ctx, func(ops repository.RefreshTokenOps) error {
		active, err := ops.ActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if matched, ok := matchRecord(active, digest, now); ok {
			newPair, refresh, err := s.mintPairFor(userID, s.roleFromToken(presented))
			if err != nil {
				return err
			}
			n, err := ops.MarkRevoked(ctx, matched.ID)
			if err != nil {
				return err
			}
			if n == 0 {
				// A concurrent rotation spent this record between our
				// read and the update. Refuse instead of inserting a
				// second active lineage.
				rejected = true
				return nil
			}
			if err := ops.Insert(ctx, refresh); err != nil {
				return err
			}
			pair = newPair
			return nil
		}

		revoked, err := ops.RevokedByUser(ctx, userID)
		if err != nil {
			return err
		}
		if _, reused := matchDigest(revoked, digest); reused {
			n, err := ops.RevokeAllActive(ctx, userID)
			if err != nil {
				return err
			}
			s.log.Warn("refresh token reuse detected, revoking sessions",
				slog.Int64("user_id", userID),
				slog.Int64("revoked", n))
		}
		rejected = true
		return nil
	})
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("rotate tokens: %w", err)
	}
	if rejected {
		return model.TokenPair{}, model.ErrRefreshRejected
	}
	return pair, nil
}

// Revoke invalidates the record matching the presented refresh token.
// Logout is best effort: unknown, malformed or already-dead tokens are
// ignored and the call never fails the caller.
func (s *TokenService) Revoke(ctx context.Context, presented string) {
	userID, err := s.parseRefresh(presented)
	if err != nil {
		return
	}
	digest := hashToken(presented)
	now := s.now()

	err = s.tokens.InTx(ctx, func(ops repository.RefreshTokenOps) error {
		active, err := ops.ActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if matched, ok := matchRecord(active, digest, now); ok {
			_, err := ops.MarkRevoked(ctx, matched.ID)
			return err
		}
		return nil
	})
	if err != nil {
		s.log.Warn("logout revocation failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}
}

// VerifyAccess validates an access token and returns the identity it
// carries. Every failure is reported as the same invalid-token error so
// callers cannot distinguish expired from forged.
func (s *TokenService) VerifyAccess(tokenString string) (model.AccessClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil || claims.Type != tokenTypeAccess {
		return model.AccessClaims{}, apierror.InvalidToken()
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return model.AccessClaims{}, apierror.InvalidToken()
	}
	return model.AccessClaims{
		UserID:    userID,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *TokenService) mintPair(user model.User) (model.TokenPair, model.RefreshTokenRecord, error) {
	return s.mintPairFor(user.ID, user.Role)
}

func (s *TokenService) mintPairFor(userID int64, role string) (model.TokenPair, model.RefreshTokenRecord, error) {
	now := s.now()
	subject := strconv.FormatInt(userID, 10)

	access, err := s.sign(tokenClaims{
		Role: role,
		Type: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	if err != nil {
		return model.TokenPair{}, model.RefreshTokenRecord{}, fmt.Errorf("sign access token: %w", err)
	}

	// The refresh token carries the role too so rotation can mint a new
	// access token without a user lookup.
	refreshExpiry := now.Add(s.refreshTTL)
	refresh, err := s.sign(tokenClaims{
		Role: role,
		Type: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
		},
	})
	if err != nil {
		return model.TokenPair{}, model.RefreshTokenRecord{}, fmt.Errorf("sign refresh token: %w", err)
	}

	pair := model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}
	record := model.RefreshTokenRecord{
		UserID:    userID,
		TokenHash: hashToken(refresh),
		ExpiresAt: refreshExpiry,
	}
	return pair, record, nil
}

func (s *TokenService) sign(claims tokenClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *TokenService) parse(tokenString string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// parseRefresh returns the user the refresh token was issued to, or an
// error for anything that is not a well-formed, unexpired refresh token.
func (s *TokenService) parseRefresh(tokenString string) (int64, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return 0, err
	}
	if claims.Type != tokenTypeRefresh {
		return 0, fmt.Errorf("not a refresh token")
	}
	return strconv.ParseInt(claims.Subject, 10, 64)
}

func (s *TokenService) roleFromToken(tokenString string) string {
	claims, err := s.parse(tokenString)
	if err != nil {
		return ""
	}
	return claims.Role
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// matchRecord finds the record whose stored digest matches, skipping
// rows that expired since they were loaded.
func matchRecord(records []model.RefreshTokenRecord, digest string, now time.Time) (model.RefreshTokenRecord, bool) {
	for _, rec := range records {
		if !rec.Active(now) {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(rec.TokenHash), []byte(digest)) == 1 {
			return rec, true
		}
	}
	return model.RefreshTokenRecord{}, false
}

func matchDigest(records []model.RefreshTokenRecord, digest string) (model.RefreshTokenRecord, bool) {
	for _, rec := range records {
		if subtle.ConstantTimeCompare([]byte(rec.TokenHash), []byte(digest)) == 1 {
			return rec, true
		}
	}
	return model.RefreshTokenRecord{}, false
}
