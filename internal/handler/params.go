package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"batilink/pkg/apierror"
)

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest("invalid "+name+" parameter", raw)
	}
	return id, nil
}
