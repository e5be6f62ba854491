package handler

import (
	"net/http"

	"batilink/internal/middleware"
	"batilink/internal/model"
	"batilink/internal/service"
	"batilink/pkg/apierror"
)

type ProfileHandler struct {
	service *service.ProfileService
}

func NewProfileHandler(service *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Mine returns the caller's own profile with its professions.
func (h *ProfileHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated(""))
		return
	}

	profile, err := h.service.GetByUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, profile, nil)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated(""))
		return
	}

	var payload model.UpdateProfileRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.service.Update(r.Context(), claims.UserID, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, profile, nil)
}

func (h *ProfileHandler) AttachProfession(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated(""))
		return
	}

	professionID, err := idParam(r, "professionID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.AttachProfession(r.Context(), claims.UserID, professionID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) DetachProfession(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated(""))
		return
	}

	professionID, err := idParam(r, "professionID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.DetachProfession(r.Context(), claims.UserID, professionID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
