package resultset

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/3leaps/verdict/pkg/query"
	"github.com/3leaps/verdict/pkg/status"
)

const backendName = "resultset"

// MaxJobCount bounds how many job records are fetched per results-set.
const MaxJobCount = 2000

// SchedulerArtifactName is the artifact carrying the polling backend's
// request id for a job.
const SchedulerArtifactName = "selfserve"

// Client is the results-set API surface the backend consumes.
type Client interface {
	// ResultSets returns the results-sets for a revision.
	ResultSets(ctx context.Context, repo, revision string) ([]ResultSet, error)

	// Jobs returns up to count jobs belonging to a results-set.
	Jobs(ctx context.Context, repo string, resultSetID int64, count int) ([]Job, error)

	// Artifacts returns the named artifacts attached to a job.
	Artifacts(ctx context.Context, repo string, jobID int64, name string) ([]Artifact, error)

	// HiddenJobs returns jobs excluded from the default visibility set.
	HiddenJobs(ctx context.Context, repo, revision string) ([]Job, error)
}

// completedResults translates terminal result strings to the vocabulary.
var completedResults = map[string]status.Status{
	"success":    status.Success,
	"busted":     status.Failure,
	"testfailed": status.Failure,
	"skipped":    status.Skipped,
	"exception":  status.Exception,
	"retry":      status.Retry,
	"usercancel": status.Cancelled,
}

// Backend implements query.Source for the results-set jobs API.
type Backend struct {
	client Client
	log    *zap.Logger
}

var _ query.Source[Job] = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Backend) { b.log = log }
}

// New creates a results-set backend.
func New(client Client, opts ...Option) (*Backend, error) {
	if client == nil {
		return nil, fmt.Errorf("resultset client is required")
	}
	b := &Backend{client: client, log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// AllJobs returns every job for the scope's revision.
//
// The jobs API cannot be queried by revision directly; the revision is first
// resolved to its results-set id, then jobs are fetched for that id. An
// unknown revision yields an empty list, not an error.
func (b *Backend) AllJobs(ctx context.Context, scope query.Scope) ([]Job, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	sets, err := b.client.ResultSets(ctx, scope.Repo, scope.Revision)
	if err != nil {
		return nil, &query.BackendError{Op: "AllJobs", Backend: backendName, Err: err}
	}
	if len(sets) == 0 {
		return nil, nil
	}

	jobs, err := b.client.Jobs(ctx, scope.Repo, sets[0].ID, MaxJobCount)
	if err != nil {
		return nil, &query.BackendError{Op: "AllJobs", Backend: backendName, Err: err}
	}
	return jobs, nil
}

// HiddenJobs returns the jobs excluded from default visibility for a scope.
func (b *Backend) HiddenJobs(ctx context.Context, scope query.Scope) ([]Job, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	jobs, err := b.client.HiddenJobs(ctx, scope.Repo, scope.Revision)
	if err != nil {
		return nil, &query.BackendError{Op: "HiddenJobs", Backend: backendName, Err: err}
	}
	return jobs, nil
}

// MatchingJobs returns all jobs in scope whose reference name equals builder.
func (b *Backend) MatchingJobs(ctx context.Context, scope query.Scope, builder string) ([]Job, error) {
	b.log.Debug("Finding matching jobs", zap.String("builder", builder))
	all, err := b.AllJobs(ctx, scope)
	if err != nil {
		return nil, err
	}

	var matching []Job
	for _, j := range all {
		if j.RefDataName == builder {
			matching = append(matching, j)
		}
	}
	b.log.Debug("Matched jobs",
		zap.String("builder", builder),
		zap.Int("count", len(matching)))
	return matching, nil
}

// JobName returns the builder reference name of a job record.
func (b *Backend) JobName(job Job) string {
	return job.RefDataName
}

// SchedulingID recovers the polling backend's request id for a job from its
// scheduler artifact; results-set jobs do not carry the id directly.
func (b *Backend) SchedulingID(ctx context.Context, scope query.Scope, job Job) (int64, error) {
	b.log.Debug("Fetching request id from job artifacts", zap.Int64("job_id", job.ID))
	artifacts, err := b.client.Artifacts(ctx, scope.Repo, job.ID, SchedulerArtifactName)
	if err != nil {
		return 0, &query.BackendError{Op: "SchedulingID", Backend: backendName, Builder: job.RefDataName, Err: err}
	}
	if len(artifacts) == 0 {
		return 0, &query.BackendError{
			Op: "SchedulingID", Backend: backendName, Builder: job.RefDataName,
			Err: fmt.Errorf("job %d has no %q artifact", job.ID, SchedulerArtifactName),
		}
	}
	return artifacts[0].Blob.RequestID, nil
}

// Status maps a job record to the shared vocabulary.
func (b *Backend) Status(_ context.Context, job Job) (status.Status, error) {
	if job.CoalescedTo != nil {
		return status.Coalesced, nil
	}

	if job.Result == "unknown" {
		switch job.State {
		case "pending":
			return status.Pending, nil
		case "running":
			return status.Running, nil
		default:
			return status.Unknown, nil
		}
	}

	if job.State == "completed" {
		st, ok := completedResults[job.Result]
		if !ok {
			return status.Unknown, &query.BackendError{
				Op: "Status", Backend: backendName, Builder: job.RefDataName,
				Err: fmt.Errorf("completed result %q: %w", job.Result, query.ErrProtocol),
			}
		}
		return st, nil
	}

	b.log.Debug("Unexpected results-set state/result combination",
		zap.String("state", job.State),
		zap.String("result", job.Result),
		zap.String("builder", job.RefDataName))
	return status.Unknown, &query.BackendError{
		Op: "Status", Backend: backendName, Builder: job.RefDataName,
		Err: fmt.Errorf("state %q with result %q: %w", job.State, job.Result, query.ErrProtocol),
	}
}
