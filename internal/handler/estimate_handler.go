package handler

import (
	"net/http"

	"batilink/internal/middleware"
	"batilink/internal/model"
	"batilink/internal/service"
	"batilink/pkg/apierror"
)

type EstimateHandler struct {
	service *service.EstimateService
}

func NewEstimateHandler(service *service.EstimateService) *EstimateHandler {
	return &EstimateHandler{service: service}
}

func (h *EstimateHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated(""))
		return
	}

	var payload model.CreateEstimateRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	estimate, err := h.service.Create(r.Context(), payload, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, estimate, nil)
}

// CreateWithLines creates an estimate and its lines in one call.
func (h *EstimateHandler) CreateWithLines(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated(""))
		return
	}

	var payload model.CreateEstimateWithLinesRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	estimate, err := h.service.CreateWithLines(r.Context(), payload, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, estimate, nil)
}

func (h *EstimateHandler) List(w http.ResponseWriter, r *http.Request) {
	estimates, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, estimates, &model.Meta{Total: len(estimates)})
}

func (h *EstimateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	estimate, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, estimate, nil)
}

func (h *EstimateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateEstimateRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	estimate, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, estimate, nil)
}

func (h *EstimateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EstimateHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.CreateLineRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	line, err := h.service.AddLine(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, line, nil)
}

func (h *EstimateHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	lineID, err := idParam(r, "lineID")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.CreateLineRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	line, err := h.service.UpdateLine(r.Context(), id, lineID, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, line, nil)
}

func (h *EstimateHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	lineID, err := idParam(r, "lineID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.DeleteLine(r.Context(), id, lineID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
