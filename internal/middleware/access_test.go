package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batilink/internal/access"
	"batilink/internal/model"
	"batilink/pkg/apierror"
)

type staticVerifier struct {
	claims map[string]model.AccessClaims
}

func (v *staticVerifier) VerifyAccess(token string) (model.AccessClaims, error) {
	claims, ok := v.claims[token]
	if !ok {
		return model.AccessClaims{}, apierror.InvalidToken()
	}
	return claims, nil
}

type mapLookup map[int64]map[string]int64

func (m mapLookup) OwnerFields(_ context.Context, _ access.Resource, id int64) (map[string]int64, error) {
	fields, ok := m[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return fields, nil
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func newPolicyRouter(lookup access.OwnerLookup) http.Handler {
	verifier := &staticVerifier{claims: map[string]model.AccessClaims{
		"customer-7": {UserID: 7, Role: model.RoleCustomer},
		"other-9":    {UserID: 9, Role: model.RoleCustomer},
		"admin-1":    {UserID: 1, Role: model.RoleAdmin},
	}}
	auth := NewAuthMiddleware(verifier)

	ownerOrAdmin := Authorize(access.NewResourceGate(access.Policy{
		AllowOwner:  true,
		OwnerParam:  "id",
		OwnerFields: []string{access.FieldCustomerID},
		Resource:    access.ResourceProject,
	}, lookup))

	r := chi.NewRouter()
	r.Use(auth.Authenticate)
	r.With(RequireAuth, ownerOrAdmin).Get("/projects/{id}", okHandler)
	// Policy references a parameter this route does not declare.
	r.With(RequireAuth, ownerOrAdmin).Get("/misconfigured", okHandler)
	return r
}

func doRequest(t *testing.T, handler http.Handler, path string, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRoutePolicyAnonymousUnauthorized(t *testing.T) {
	r := newPolicyRouter(mapLookup{5: {access.FieldCustomerID: 7}})
	rec := doRequest(t, r, "/projects/5", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutePolicyOwnerAllowed(t *testing.T) {
	r := newPolicyRouter(mapLookup{5: {access.FieldCustomerID: 7}})
	rec := doRequest(t, r, "/projects/5", "customer-7")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutePolicyNonOwnerForbidden(t *testing.T) {
	r := newPolicyRouter(mapLookup{5: {access.FieldCustomerID: 7}})
	rec := doRequest(t, r, "/projects/5", "other-9")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), apierror.CodeForbidden)
}

func TestRoutePolicyAdminOverride(t *testing.T) {
	r := newPolicyRouter(mapLookup{5: {access.FieldCustomerID: 7}})
	rec := doRequest(t, r, "/projects/5", "admin-1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutePolicyMissingResourceMasked(t *testing.T) {
	r := newPolicyRouter(mapLookup{})
	rec := doRequest(t, r, "/projects/5", "other-9")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), apierror.CodeForbidden)
}

func TestRoutePolicyMisconfiguredParam(t *testing.T) {
	r := newPolicyRouter(mapLookup{})
	rec := doRequest(t, r, "/misconfigured", "other-9")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), apierror.CodeConfiguration)
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	r := newPolicyRouter(mapLookup{})
	rec := doRequest(t, r, "/projects/5", "forged")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), apierror.CodeInvalidToken)
}

func TestAuthenticateReadsAccessCookie(t *testing.T) {
	r := newPolicyRouter(mapLookup{5: {access.FieldCustomerID: 7}})
	req := httptest.NewRequest(http.MethodGet, "/projects/5", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "customer-7"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
