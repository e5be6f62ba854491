package handler

import (
	"net/http"
	"strings"
	"time"

	"batilink/internal/middleware"
	"batilink/internal/model"
	"batilink/internal/service"
	"batilink/pkg/apierror"
)

const refreshCookie = "refresh_token"

// refreshCookiePath scopes the refresh cookie to the one endpoint that
// consumes it, so it never rides along on ordinary API calls.
const refreshCookiePath = "/api/v1/auth/refresh"

type AuthHandler struct {
	service      *service.AuthService
	cookieSecure bool
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

func NewAuthHandler(service *service.AuthService, cookieSecure bool, accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{service: service, cookieSecure: cookieSecure, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Signup registers a customer account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, model.RoleCustomer)
}

// SignupEntreprise registers a company account with its siret.
func (h *AuthHandler) SignupEntreprise(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, model.RoleEntreprise)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request, role string) {
	var payload model.SignupRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.service.Signup(r.Context(), payload, role)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, session.Tokens)
	writeSuccess(w, http.StatusCreated, session, nil)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var payload model.SigninRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.service.Signin(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, session.Tokens)
	writeSuccess(w, http.StatusOK, session, nil)
}

// Refresh exchanges the refresh token from the scoped cookie, falling
// back to the request body for non-browser clients.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	presented := h.presentedRefreshToken(r)
	if presented == "" {
		writeError(w, apierror.BadRequest("refresh_token is required", refreshCookie))
		return
	}

	pair, err := h.service.Refresh(r.Context(), presented)
	if err != nil {
		h.clearSessionCookies(w)
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, pair)
	writeSuccess(w, http.StatusOK, pair, nil)
}

// Logout revokes the presented refresh token and clears the session
// cookies. Always responds 204, even without a token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if presented := h.presentedRefreshToken(r); presented != "" {
		h.service.Logout(r.Context(), presented)
	}
	h.clearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's session view.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated(""))
		return
	}

	view, err := h.service.SessionUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, view, nil)
}

func (h *AuthHandler) presentedRefreshToken(r *http.Request) string {
	if cookie, err := r.Cookie(refreshCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var payload model.RefreshRequest
	if err := decodeBody(r, &payload); err == nil {
		return strings.TrimSpace(payload.RefreshToken)
	}
	return ""
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, pair model.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(h.accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath,
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name: middleware.AccessCookie, Value: "", Path: "/", MaxAge: -1,
		HttpOnly: true, Secure: h.cookieSecure, SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: refreshCookie, Value: "", Path: refreshCookiePath, MaxAge: -1,
		HttpOnly: true, Secure: h.cookieSecure, SameSite: http.SameSiteStrictMode,
	})
}
