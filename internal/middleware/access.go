package middleware

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"batilink/internal/access"
	"batilink/pkg/apierror"
)

// Authorize runs the given evaluators against the request and denies on
// the first failure. Route parameters are handed to the evaluators so
// ownership policies can resolve the resource they guard.
func Authorize(evaluators ...access.Evaluator) func(http.Handler) http.Handler {
	chain := access.Chain(evaluators)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := access.Request{
				Principal: PrincipalFromContext(r.Context()),
				Params:    routeParams(r),
			}

			if err := chain.Evaluate(r.Context(), req); err != nil {
				var apiErr *apierror.APIError
				if !errors.As(err, &apiErr) {
					apiErr = apierror.New(apierror.CodeInternal, "authorization failed", "", http.StatusInternalServerError)
				}
				writeAuthError(w, apiErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func routeParams(r *http.Request) map[string]string {
	params := map[string]string{}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" {
				continue
			}
			params[key] = rctx.URLParams.Values[i]
		}
	}
	return params
}
