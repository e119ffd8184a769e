package selfserve

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/3leaps/verdict/pkg/archive"
	"github.com/3leaps/verdict/pkg/query"
	"github.com/3leaps/verdict/pkg/status"
)

const backendName = "selfserve"

// RevisionPrefixLen is the number of leading revision characters compared
// when checking whether an archived record belongs to a request.
const RevisionPrefixLen = 12

// DefaultScopeCacheSize bounds the per-scope job-list cache.
const DefaultScopeCacheSize = 64

// ScheduleClient fetches raw job lists from the self-serve API.
type ScheduleClient interface {
	// JobsSchedule returns every scheduled job for a revision.
	JobsSchedule(ctx context.Context, repo, revision string) ([]Job, error)

	// RepoURL returns the canonical URL of a repository.
	RepoURL(ctx context.Context, repo string) (string, error)
}

// ArchiveResolver is the slice of pkg/archive the backend depends on.
type ArchiveResolver interface {
	Resolve(ctx context.Context, completedAt time.Time, requestID int64) (*archive.Build, error)
}

// Backend implements query.Source for the self-serve polling API.
//
// Job lists are fetched once per scope and cached for the lifetime of the
// backend; the self-serve data for a revision only grows, so entries are
// never invalidated.
type Backend struct {
	client    ScheduleClient
	archive   ArchiveResolver
	jobs      *lru.Cache[query.Scope, []Job]
	cacheSize int
	log       *zap.Logger
}

var _ query.Source[Job] = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Backend) { b.log = log }
}

// WithScopeCacheSize bounds the per-scope job-list cache.
func WithScopeCacheSize(n int) Option {
	return func(b *Backend) { b.cacheSize = n }
}

// New creates a self-serve backend.
func New(client ScheduleClient, resolver ArchiveResolver, opts ...Option) (*Backend, error) {
	if client == nil {
		return nil, fmt.Errorf("schedule client is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("archive resolver is required")
	}
	b := &Backend{
		client:    client,
		archive:   resolver,
		cacheSize: DefaultScopeCacheSize,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	cache, err := lru.New[query.Scope, []Job](b.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("scope cache: %w", err)
	}
	b.jobs = cache
	return b, nil
}

// AllJobs returns every job record for the scope, fetching at most once.
func (b *Backend) AllJobs(ctx context.Context, scope query.Scope) ([]Job, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if jobs, ok := b.jobs.Get(scope); ok {
		return jobs, nil
	}
	jobs, err := b.client.JobsSchedule(ctx, scope.Repo, scope.Revision)
	if err != nil {
		return nil, &query.BackendError{Op: "AllJobs", Backend: backendName, Err: err}
	}
	b.jobs.Add(scope, jobs)
	return jobs, nil
}

// MatchingJobs returns all jobs in scope whose builder name equals builder.
func (b *Backend) MatchingJobs(ctx context.Context, scope query.Scope, builder string) ([]Job, error) {
	b.log.Debug("Finding matching jobs", zap.String("builder", builder))
	all, err := b.AllJobs(ctx, scope)
	if err != nil {
		return nil, err
	}

	var matching []Job
	for _, j := range all {
		if j.BuilderName == builder {
			matching = append(matching, j)
		}
	}
	b.log.Debug("Matched jobs",
		zap.String("builder", builder),
		zap.Int("count", len(matching)))
	return matching, nil
}

// JobName returns the builder name of a job record.
func (b *Backend) JobName(job Job) string {
	return job.BuilderName
}

// SchedulingID returns the request id used to correlate a job with the
// archive. Most jobs carry nested requests; some only a top-level id.
func (b *Backend) SchedulingID(_ context.Context, _ query.Scope, job Job) (int64, error) {
	if len(job.Requests) > 0 {
		return job.Requests[0].RequestID, nil
	}
	if job.RequestID != nil {
		return *job.RequestID, nil
	}
	return 0, &query.BackendError{
		Op:      "SchedulingID",
		Backend: backendName,
		Builder: job.BuilderName,
		Err:     fmt.Errorf("job carries no request id: %w", query.ErrProtocol),
	}
}

// Status maps a job record to the shared vocabulary.
//
// The self-serve API cannot express the whole granularity of states, so a
// reported success is disambiguated against the archive (it may have been
// coalesced away without running).
func (b *Backend) Status(ctx context.Context, job Job) (status.Status, error) {
	if !job.HasStatus() {
		return status.Pending, nil
	}

	if job.StatusIsNull() {
		if job.EndTime == nil {
			return status.Running, nil
		}
		return status.Unknown, nil
	}

	code, err := job.StatusCode()
	if err != nil {
		return status.Unknown, &query.BackendError{
			Op: "Status", Backend: backendName, Builder: job.BuilderName,
			Err: fmt.Errorf("%v: %w", err, query.ErrProtocol),
		}
	}

	switch st := status.Status(code); st {
	case status.Warning, status.Failure, status.Exception, status.Retry, status.Cancelled:
		return st, nil
	case status.Success:
		return b.resolveSuccess(ctx, job)
	}

	b.log.Debug("Unexpected self-serve status", zap.Int("code", code), zap.String("builder", job.BuilderName))
	return status.Unknown, &query.BackendError{
		Op: "Status", Backend: backendName, Builder: job.BuilderName,
		Err: fmt.Errorf("result code %d: %w", code, query.ErrProtocol),
	}
}

// resolveSuccess decides whether a reported success actually ran.
//
// The archived record's revision is compared to the request's declared
// revision by 12-character prefix: a mismatch means the slot was reused by
// an unrelated job and the original was coalesced.
func (b *Backend) resolveSuccess(ctx context.Context, job Job) (status.Status, error) {
	if len(job.Requests) == 0 {
		return status.Unknown, &query.BackendError{
			Op: "Status", Backend: backendName, Builder: job.BuilderName,
			Err: fmt.Errorf("successful job carries no requests: %w", query.ErrProtocol),
		}
	}

	req := job.Requests[0]
	build, err := b.archive.Resolve(ctx, time.Unix(req.CompleteAt, 0).UTC(), req.RequestID)
	if err != nil {
		if errors.Is(err, archive.ErrNotYetArchived) {
			// Transient race: the polling API reported success before the
			// archive saw the job finish.
			b.log.Info("Job not archived yet; assuming it is still running",
				zap.String("builder", job.BuilderName),
				zap.Int64("request_id", req.RequestID))
			return status.Running, nil
		}
		return status.Unknown, err
	}

	if revisionPrefix(build.Properties.Revision) != revisionPrefix(req.Revision) {
		return status.Coalesced, nil
	}
	return status.Success, nil
}

func revisionPrefix(rev string) string {
	if len(rev) > RevisionPrefixLen {
		return rev[:RevisionPrefixLen]
	}
	return rev
}
