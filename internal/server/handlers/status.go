// Package handlers implements the HTTP endpoints of the embedded server.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/3leaps/verdict/internal/errors"
	"github.com/3leaps/verdict/pkg/query"
	"github.com/3leaps/verdict/pkg/status"
)

// StatusHandlers serves job status queries over a query.Service.
type StatusHandlers struct {
	svc query.Service
}

// NewStatusHandlers creates the handler set.
func NewStatusHandlers(svc query.Service) *StatusHandlers {
	return &StatusHandlers{svc: svc}
}

func scopeFromRequest(r *http.Request) (query.Scope, error) {
	scope := query.Scope{
		Repo:     r.URL.Query().Get("repo"),
		Revision: r.URL.Query().Get("revision"),
	}
	return scope, scope.Validate()
}

// MatchingStatuses handles GET /api/v1/status?repo=&revision=&builder=.
func (h *StatusHandlers) MatchingStatuses(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	builder := r.URL.Query().Get("builder")
	if builder == "" {
		apperrors.RespondWithError(w, r, &query.BackendError{
			Op: "MatchingStatuses", Err: fmt.Errorf("builder is required: %w", query.ErrConfig),
		})
		return
	}

	statuses, err := h.svc.MatchingStatuses(r.Context(), scope, builder)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"jobs": statuses})
}

// JobsByStatus handles GET /api/v1/jobs?repo=&revision=&status=.
func (h *StatusHandlers) JobsByStatus(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	target, err := status.Parse(r.URL.Query().Get("status"))
	if err != nil {
		apperrors.RespondWithError(w, r, &query.BackendError{
			Op: "JobsByStatus", Err: fmt.Errorf("%v: %w", err, query.ErrConfig),
		})
		return
	}

	agg, err := h.svc.JobsByStatus(r.Context(), scope, target)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	skipped := make([]map[string]string, 0, len(agg.Skipped))
	for _, s := range agg.Skipped {
		skipped = append(skipped, map[string]string{
			"builder": s.Builder,
			"reason":  s.Err.Error(),
		})
	}
	writeJSON(w, map[string]any{
		"request_ids": agg.RequestIDs,
		"skipped":     skipped,
	})
}

// Builders handles GET /api/v1/builders?repo=&revision=.
func (h *StatusHandlers) Builders(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	builders, err := h.svc.Builders(r.Context(), scope)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"builders": builders})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
