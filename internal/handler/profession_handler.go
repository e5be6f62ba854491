package handler

import (
	"net/http"

	"batilink/internal/model"
	"batilink/internal/service"
)

type ProfessionHandler struct {
	service *service.ProfessionService
}

func NewProfessionHandler(service *service.ProfessionService) *ProfessionHandler {
	return &ProfessionHandler{service: service}
}

func (h *ProfessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateProfessionRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	profession, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, profession, nil)
}

func (h *ProfessionHandler) List(w http.ResponseWriter, r *http.Request) {
	professions, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, professions, &model.Meta{Total: len(professions)})
}

func (h *ProfessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	profession, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, profession, nil)
}

func (h *ProfessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.CreateProfessionRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	profession, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, profession, nil)
}

func (h *ProfessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
