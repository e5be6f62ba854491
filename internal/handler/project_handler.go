package handler

import (
	"net/http"

	"batilink/internal/middleware"
	"batilink/internal/model"
	"batilink/internal/service"
	"batilink/pkg/apierror"
)

type ProjectHandler struct {
	service *service.ProjectService
}

func NewProjectHandler(service *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated(""))
		return
	}

	var payload model.CreateProjectRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	// A customer always creates the project as their own; an admin may
	// create on behalf of another customer.
	customerID := claims.UserID
	if claims.Role == model.RoleAdmin && payload.CustomerID != 0 {
		customerID = payload.CustomerID
	}

	project, err := h.service.Create(r.Context(), payload, customerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, project, nil)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, projects, &model.Meta{Total: len(projects)})
}

// Search filters open projects by profession and city query parameters.
func (h *ProjectHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	projects, err := h.service.Search(r.Context(), query.Get("profession"), query.Get("city"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, projects, &model.Meta{Total: len(projects)})
}

// Mine lists the projects the caller is part of, as customer or as
// entreprise.
func (h *ProjectHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated(""))
		return
	}

	projects, err := h.service.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, projects, &model.Meta{Total: len(projects)})
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	project, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, project, nil)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateProjectRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, project, nil)
}

// Accept assigns the calling entreprise to the project.
func (h *ProjectHandler) Accept(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated(""))
		return
	}

	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	project, err := h.service.Accept(r.Context(), id, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, project, nil)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
