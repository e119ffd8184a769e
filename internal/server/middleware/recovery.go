// Package middleware provides HTTP middleware for the embedded server.
package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/3leaps/verdict/internal/observability"
)

// ErrorResponse is the JSON envelope emitted by middleware failures.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a stable machine code and a human message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Recovery converts handler panics into 500 responses.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				observability.ServerLogger.Error("Handler panicked",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(ErrorResponse{
					Error: ErrorBody{
						Code:    "INTERNAL_ERROR",
						Message: fmt.Sprintf("panic: %v", rec),
					},
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
