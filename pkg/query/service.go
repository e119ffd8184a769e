package query

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/3leaps/verdict/pkg/archive"
	"github.com/3leaps/verdict/pkg/status"
)

// JobStatus is one resolved job instance under a builder name.
type JobStatus struct {
	Builder   string        `json:"builder"`
	RequestID int64         `json:"request_id"`
	Status    status.Status `json:"status"`
}

// BuilderOutcome summarizes every observed instance of one builder name.
type BuilderOutcome struct {
	Builder  string          `json:"builder"`
	Statuses []status.Status `json:"statuses"`
}

// Service is a non-generic facade over a Source for callers (CLI, HTTP)
// that do not care about the concrete job record type.
type Service interface {
	// MatchingStatuses resolves every instance of builder in scope.
	MatchingStatuses(ctx context.Context, scope Scope, builder string) ([]JobStatus, error)

	// JobsByStatus runs FindAllJobsByStatus against the source.
	JobsByStatus(ctx context.Context, scope Scope, target status.Status) (*Aggregate, error)

	// Builders lists every builder name in scope with its observed
	// statuses, sorted by name. Instances whose status cannot be resolved
	// due to an archival lookup failure are skipped with a notice.
	Builders(ctx context.Context, scope Scope) ([]BuilderOutcome, error)
}

type service[J any] struct {
	src Source[J]
	log *zap.Logger
}

// NewService wraps src in the caller-facing facade.
func NewService[J any](src Source[J], log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service[J]{src: src, log: log}
}

func (s *service[J]) MatchingStatuses(ctx context.Context, scope Scope, builder string) ([]JobStatus, error) {
	jobs, err := s.src.MatchingJobs(ctx, scope, builder)
	if err != nil {
		return nil, err
	}

	out := make([]JobStatus, 0, len(jobs))
	for _, job := range jobs {
		st, err := s.src.Status(ctx, job)
		if err != nil {
			return nil, err
		}
		id, err := s.src.SchedulingID(ctx, scope, job)
		if err != nil {
			return nil, err
		}
		out = append(out, JobStatus{Builder: builder, RequestID: id, Status: st})
	}
	return out, nil
}

func (s *service[J]) JobsByStatus(ctx context.Context, scope Scope, target status.Status) (*Aggregate, error) {
	return FindAllJobsByStatus(ctx, s.src, scope, target, s.log)
}

func (s *service[J]) Builders(ctx context.Context, scope Scope) ([]BuilderOutcome, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	jobs, err := s.src.AllJobs(ctx, scope)
	if err != nil {
		return nil, err
	}

	byName := make(map[string][]status.Status)
	for _, job := range jobs {
		name := s.src.JobName(job)
		st, err := s.src.Status(ctx, job)
		if err != nil {
			var le *archive.LookupError
			if errors.As(err, &le) {
				s.log.Info("Skipping unresolvable job instance",
					zap.String("builder", name),
					zap.Error(err))
				continue
			}
			return nil, err
		}
		byName[name] = append(byName[name], st)
	}

	out := make([]BuilderOutcome, 0, len(byName))
	for name, sts := range byName {
		out = append(out, BuilderOutcome{Builder: name, Statuses: sts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Builder < out[j].Builder })
	return out, nil
}
