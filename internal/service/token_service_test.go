package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batilink/internal/model"
	"batilink/internal/repository"
	"batilink/pkg/apierror"
)

type fakeTokenStore struct {
	nextID  int64
	records []model.RefreshTokenRecord
	now     func() time.Time

	// Runs before MarkRevoked applies, standing in for a competing
	// transaction that commits first.
	beforeMarkRevoked func()
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{now: time.Now}
}

// InTx mirrors pgx.BeginFunc: an error from fn rolls every mutation
// back, nil commits.
func (f *fakeTokenStore) InTx(ctx context.Context, fn func(repository.RefreshTokenOps) error) error {
	snapshot := make([]model.RefreshTokenRecord, len(f.records))
	copy(snapshot, f.records)
	nextID := f.nextID
	if err := fn(f); err != nil {
		f.records = snapshot
		f.nextID = nextID
		return err
	}
	return nil
}

func (f *fakeTokenStore) ActiveByUser(_ context.Context, userID int64) ([]model.RefreshTokenRecord, error) {
	var out []model.RefreshTokenRecord
	for _, rec := range f.records {
		if rec.UserID == userID && rec.Active(f.now()) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeTokenStore) RevokedByUser(_ context.Context, userID int64) ([]model.RefreshTokenRecord, error) {
	var out []model.RefreshTokenRecord
	for _, rec := range f.records {
		if rec.UserID == userID && rec.Revoked {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeTokenStore) Insert(_ context.Context, rec model.RefreshTokenRecord) error {
	f.nextID++
	rec.ID = f.nextID
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeTokenStore) MarkRevoked(_ context.Context, id int64) (int64, error) {
	if f.beforeMarkRevoked != nil {
		f.beforeMarkRevoked()
	}
	for i := range f.records {
		if f.records[i].ID == id && !f.records[i].Revoked {
			f.records[i].Revoked = true
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeTokenStore) RevokeAllActive(_ context.Context, userID int64) (int64, error) {
	var n int64
	for i := range f.records {
		if f.records[i].UserID == userID && f.records[i].Active(f.now()) {
			f.records[i].Revoked = true
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenStore) DeleteDead(_ context.Context, userID int64) (int64, error) {
	var kept []model.RefreshTokenRecord
	var n int64
	for _, rec := range f.records {
		if rec.UserID == userID && !rec.Active(f.now()) {
			n++
			continue
		}
		kept = append(kept, rec)
	}
	f.records = kept
	return n, nil
}

func (f *fakeTokenStore) activeCount(userID int64) int {
	recs, _ := f.ActiveByUser(context.Background(), userID)
	return len(recs)
}

func newTestTokenService(store *fakeTokenStore) *TokenService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTokenService(store, "test-secret", 15*time.Minute, 7*24*time.Hour, log)
}

func testUser() model.User {
	return model.User{ID: 42, Email: "mason@example.com", Role: model.RoleEntreprise}
}

func TestIssueCreatesSingleActiveRecord(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestTokenService(store)

	pair, err := svc.Issue(context.Background(), testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, 1, store.activeCount(42))

	// The raw token value must never be persisted.
	for _, rec := range store.records {
		assert.NotEqual(t, pair.RefreshToken, rec.TokenHash)
	}
}

func TestIssueRevokesPreviousSessions(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestTokenService(store)
	ctx := context.Background()

	first, err := svc.Issue(ctx, testUser())
	require.NoError(t, err)
	second, err := svc.Issue(ctx, testUser())
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, 1, store.activeCount(42))

	// The first refresh token is dead after the second issuance.
	_, err = svc.Rotate(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, model.ErrRefreshRejected)
}

func TestRotateExchangesActiveToken(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestTokenService(store)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, testUser())
	require.NoError(t, err)

	rotated, err := svc.Rotate(ctx, issued.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, issued.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, 1, store.activeCount(42))

	// The role claim survives the exchange.
	claims, err := svc.VerifyAccess(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, model.RoleEntreprise, claims.Role)
}

func TestRotateReuseRevokesAllSessions(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestTokenService(store)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, testUser())
	require.NoError(t, err)

	rotated, err := svc.Rotate(ctx, issued.RefreshToken)
	require.NoError(t, err)

	// Replaying the spent token is treated as theft.
	_, err = svc.Rotate(ctx, issued.RefreshToken)
	assert.ErrorIs(t, err, model.ErrRefreshRejected)
	assert.Equal(t, 0, store.activeCount(42))

	// The successor issued to the (possibly stolen) session is dead too.
	_, err = svc.Rotate(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, model.ErrRefreshRejected)
}

func TestRotateLosingConcurrentExchangeRefuses(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestTokenService(store)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, testUser())
	require.NoError(t, err)

	// A competing rotation spends the record after ours read it as
	// active. The guarded update then matches nothing and the exchange
	// must refuse rather than insert a second active record.
	store.beforeMarkRevoked = func() {
		for i := range store.records {
			store.records[i].Revoked = true
		}
	}

	_, err = svc.Rotate(ctx, issued.RefreshToken)
	assert.ErrorIs(t, err, model.ErrRefreshRejected)
	assert.Equal(t, 0, store.activeCount(42))
	assert.Len(t, store.records, 1)
}

func TestRotateRejectsGarbage(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestTokenService(store)
	ctx := context.Background()

	_, err := svc.Rotate(ctx, "not-a-token")
	assert.ErrorIs(t, err, model.ErrRefreshRejected)

	// A structurally valid token signed with another secret.
	other := newTestTokenService(newFakeTokenStore())
	other.secret = []byte("other-secret")
	pair, _, err := other.mintPairFor(42, model.RoleCustomer)
	require.NoError(t, err)
	_, err = svc.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, model.ErrRefreshRejected)
}

func TestRotateRejectsAccessTokenAsRefresh(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestTokenService(store)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, testUser())
	require.NoError(t, err)

	_, err = svc.Rotate(ctx, issued.AccessToken)
	assert.ErrorIs(t, err, model.ErrRefreshRejected)
	// Presenting the wrong token kind is not a reuse signal.
	assert.Equal(t, 1, store.activeCount(42))
}

func TestRevokeIsIdempotent(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestTokenService(store)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, testUser())
	require.NoError(t, err)

	svc.Revoke(ctx, issued.RefreshToken)
	assert.Equal(t, 0, store.activeCount(42))

	// Repeat revocations and garbage are silently ignored.
	svc.Revoke(ctx, issued.RefreshToken)
	svc.Revoke(ctx, "garbage")
	assert.Equal(t, 0, store.activeCount(42))

	// A revoked-by-logout token cannot be exchanged.
	_, err = svc.Rotate(ctx, issued.RefreshToken)
	assert.ErrorIs(t, err, model.ErrRefreshRejected)
}

func TestVerifyAccess(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestTokenService(store)

	issued, err := svc.Issue(context.Background(), testUser())
	require.NoError(t, err)

	claims, err := svc.VerifyAccess(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, model.RoleEntreprise, claims.Role)
	assert.NotEmpty(t, claims.TokenID)
}

func TestVerifyAccessUniformRejection(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestTokenService(store)

	issued, err := svc.Issue(context.Background(), testUser())
	require.NoError(t, err)

	expired := newTestTokenService(store)
	expired.accessTTL = -time.Minute
	stale, _, err := expired.mintPairFor(42, model.RoleCustomer)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":           "garbage",
		"empty":             "",
		"refresh as access": issued.RefreshToken,
		"expired":           stale.AccessToken,
	} {
		_, err := svc.VerifyAccess(token)
		require.Error(t, err, name)
		apiErr, ok := err.(*apierror.APIError)
		require.True(t, ok, name)
		assert.Equal(t, apierror.CodeInvalidToken, apiErr.Code, name)
	}
}
