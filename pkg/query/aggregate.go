package query

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/3leaps/verdict/pkg/archive"
	"github.com/3leaps/verdict/pkg/status"
)

// Aggregate is the result of FindAllJobsByStatus.
//
// RequestIDs holds the scheduling identifiers of all builders whose every
// observed instance resolved to the target status, sorted ascending.
// Skipped lists builders whose status could not be determined because of an
// archival lookup failure; they are excluded from RequestIDs but reported so
// partial results stay visible to callers, not only to logs. Each builder
// appears at most once, carrying the first failure observed.
type Aggregate struct {
	RequestIDs []int64
	Skipped    []SkippedBuilder
}

// SkippedBuilder records one builder dropped from a bulk aggregation.
type SkippedBuilder struct {
	Builder string
	Err     error
}

// FindAllJobsByStatus returns the scheduling ids of all jobs in scope whose
// builder resolved to exactly target across every observed instance.
//
// A builder retried under the same name is included only if all of its
// instances landed on target: one instance with a different status excludes
// the name even when another instance matches. Jobs whose status cannot be
// resolved due to an archival lookup failure are skipped with a notice; any
// other classification failure aborts the whole pass.
func FindAllJobsByStatus[J any](ctx context.Context, src Source[J], scope Scope, target status.Status, log *zap.Logger) (*Aggregate, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, &BackendError{Op: "FindAllJobsByStatus", Err: ErrConfig}
	}

	jobs, err := src.AllJobs(ctx, scope)
	if err != nil {
		return nil, err
	}

	requestIDByBuilder := make(map[string]int64)
	right := make(map[string]struct{})
	wrong := make(map[string]struct{})
	skippedSeen := make(map[string]struct{})
	var skipped []SkippedBuilder

	for _, job := range jobs {
		builder := src.JobName(job)

		st, err := src.Status(ctx, job)
		if err != nil {
			var le *archive.LookupError
			if errors.As(err, &le) {
				log.Info("No archival status information for builder; skipping",
					zap.String("builder", builder),
					zap.Error(err))
				if _, seen := skippedSeen[builder]; !seen {
					skippedSeen[builder] = struct{}{}
					skipped = append(skipped, SkippedBuilder{Builder: builder, Err: err})
				}
				continue
			}
			return nil, err
		}

		if st != target {
			wrong[builder] = struct{}{}
			continue
		}

		id, err := src.SchedulingID(ctx, scope, job)
		if err != nil {
			return nil, err
		}
		requestIDByBuilder[builder] = id
		right[builder] = struct{}{}
	}

	ids := make([]int64, 0, len(right))
	for builder := range right {
		if _, mixed := wrong[builder]; mixed {
			continue
		}
		ids = append(ids, requestIDByBuilder[builder])
	}
	slices.Sort(ids)

	return &Aggregate{RequestIDs: ids, Skipped: skipped}, nil
}
