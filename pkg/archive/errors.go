package archive

import (
	"errors"
	"fmt"
)

// Sentinel errors for archive lookups.
var (
	// ErrNotFound indicates no record for the request id exists in the
	// selected partition.
	ErrNotFound = errors.New("request id not found in archive")

	// ErrNotYetArchived indicates a rolling-window miss: the job may not
	// have finished yet and callers may treat it as still running. It
	// matches ErrNotFound under errors.Is.
	ErrNotYetArchived = fmt.Errorf("%w (rolling window has not caught up)", ErrNotFound)
)

// LookupError wraps archive resolution failures with context.
type LookupError struct {
	// RequestID is the scheduling identifier that was looked up.
	RequestID int64

	// Partition is the partition filename that was searched or fetched.
	Partition string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("archive %s: request %d: %v", e.Partition, e.RequestID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LookupError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error indicates an archive miss of any kind.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNotYetArchived returns true only for rolling-window misses.
func IsNotYetArchived(err error) bool {
	return errors.Is(err, ErrNotYetArchived)
}
