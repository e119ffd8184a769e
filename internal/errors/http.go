// Package errors maps core errors onto the HTTP error envelope used by the
// embedded server.
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/3leaps/verdict/pkg/archive"
	"github.com/3leaps/verdict/pkg/query"
)

// HTTPErrorResponse is the JSON envelope for all error responses.
type HTTPErrorResponse struct {
	Error HTTPError `json:"error"`
}

// HTTPError carries a stable machine code and a human message.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes the envelope with the given status, code and message.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{
		Error: HTTPError{Code: code, Message: message},
	})
}

// RespondWithError maps a core error to an HTTP response.
//
// Configuration errors are the caller's fault (400); archive misses are 404;
// protocol errors mean the upstream data could not be interpreted (502);
// everything else is a 500.
func RespondWithError(w http.ResponseWriter, _ *http.Request, err error) {
	switch {
	case query.IsConfig(err):
		WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	case archive.IsNotFound(err):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case query.IsProtocol(err):
		WriteError(w, http.StatusBadGateway, "UPSTREAM_PROTOCOL", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// NotFoundHandler is the router fallback for unknown paths.
func NotFoundHandler(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowedHandler is the router fallback for unsupported methods.
func MethodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}
