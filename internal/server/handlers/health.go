package handlers

import (
	"net/http"
)

// HealthResponse is the payload of the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health returns a handler reporting process liveness.
func Health(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, HealthResponse{Status: "healthy", Version: version})
	}
}
