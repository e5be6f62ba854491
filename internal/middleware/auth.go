package middleware

import (
	"context"
	"net/http"
	"strings"

	"batilink/internal/access"
	"batilink/internal/model"
	"batilink/pkg/apierror"
)

// AccessVerifier validates an access token and returns the identity it
// carries.
type AccessVerifier interface {
	VerifyAccess(tokenString string) (model.AccessClaims, error)
}

type contextKey string

const claimsContextKey contextKey = "access_claims"

// AccessCookie is the cookie browsers send the access token in; API
// clients use the Authorization header instead.
const AccessCookie = "access_token"

type AuthMiddleware struct {
	verifier AccessVerifier
}

func NewAuthMiddleware(verifier AccessVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate resolves the caller's identity from the access cookie or
// the Authorization header and stores it in the request context. Requests
// without a token pass through anonymous; each route's policy decides
// whether that is acceptable.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.verifier.VerifyAccess(token)
		if err != nil {
			writeAuthError(w, apierror.InvalidToken())
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			writeAuthError(w, apierror.Unauthenticated(""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func ClaimsFromContext(ctx context.Context) (model.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(model.AccessClaims)
	return claims, ok
}

// PrincipalFromContext adapts the stored claims into the authorization
// layer's principal. Nil means anonymous.
func PrincipalFromContext(ctx context.Context) *access.Principal {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil
	}
	return &access.Principal{ID: claims.UserID, Role: claims.Role}
}

func writeAuthError(w http.ResponseWriter, apiErr *apierror.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus)
	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
}
