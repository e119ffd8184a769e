// Package query defines the backend-agnostic contract for resolving the
// scheduling outcome of CI jobs.
//
// Two backends implement the contract: a self-serve style polling API
// (pkg/selfserve) and a results-set jobs API (pkg/resultset). They share no
// state; each composes its own collaborators and caches.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/3leaps/verdict/pkg/status"
)

// Scope identifies the (repository, revision) pair a query runs against.
// Job lists fetched for a scope are treated as immutable for the lifetime
// of the backend instance that fetched them.
type Scope struct {
	Repo     string
	Revision string
}

// Validate checks that both scope components are present.
func (s Scope) Validate() error {
	if strings.TrimSpace(s.Repo) == "" {
		return &BackendError{Op: "Validate", Err: fmt.Errorf("repository is required: %w", ErrConfig)}
	}
	if strings.TrimSpace(s.Revision) == "" {
		return &BackendError{Op: "Validate", Err: fmt.Errorf("revision is required: %w", ErrConfig)}
	}
	return nil
}

func (s Scope) String() string {
	return s.Repo + "@" + s.Revision
}

// Backend resolves scheduling outcomes for one kind of job record.
//
// Implementations should:
//   - Never guess: unrecognized raw status encodings are ErrProtocol.
//   - Treat fetched job lists for a scope as immutable.
type Backend[J any] interface {
	// MatchingJobs returns all job records for the scope whose builder name
	// equals builder (exact, case-sensitive).
	MatchingJobs(ctx context.Context, scope Scope, builder string) ([]J, error)

	// SchedulingID extracts the identifier correlating the job with
	// archival or artifact data.
	SchedulingID(ctx context.Context, scope Scope, job J) (int64, error)

	// Status maps a single job record to the shared vocabulary.
	Status(ctx context.Context, job J) (status.Status, error)
}

// Source extends Backend with the bulk surface the aggregator needs.
type Source[J any] interface {
	Backend[J]

	// AllJobs returns every job record for the scope.
	AllJobs(ctx context.Context, scope Scope) ([]J, error)

	// JobName returns the builder name carried by the record.
	JobName(job J) string
}
