package query

import (
	"errors"
	"fmt"
)

// Sentinel errors for backend operations.
var (
	// ErrProtocol indicates raw data encodes a status/result combination
	// the backend's translation table does not recognize.
	ErrProtocol = errors.New("unrecognized status encoding")

	// ErrConfig indicates malformed caller input (scope, status name).
	ErrConfig = errors.New("invalid query input")
)

// BackendError wraps backend failures with context.
type BackendError struct {
	// Op is the operation that failed (e.g. "Status", "MatchingJobs").
	Op string

	// Backend names the implementation ("selfserve", "resultset").
	Backend string

	// Builder is the builder name, if applicable.
	Builder string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Builder != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Backend, e.Op, e.Builder, e.Err)
	}
	if e.Backend != "" {
		return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsProtocol returns true if the error indicates an unrecognized raw status.
func IsProtocol(err error) bool {
	return errors.Is(err, ErrProtocol)
}

// IsConfig returns true if the error indicates malformed caller input.
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}
