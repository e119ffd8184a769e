// Package archive resolves authoritative historical job records from a
// date-partitioned external archive of scheduler dumps.
//
// The archive is published as day-sized compressed JSON files that are
// regenerated repeatedly until the UTC day ends, plus a rolling window file
// covering roughly the last four hours. Partition selection is deterministic
// from the job's completion time and the current wall clock:
//
//   - completed < 4h ago: re-fetch the rolling window every lookup
//   - completed today (UTC): re-fetch that day's file every lookup
//   - completed on a past UTC day: fetch once, cache in memory indefinitely
package archive

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	// RecentWindow is the span covered by the rolling partition.
	RecentWindow = 4 * time.Hour

	// RollingFile is the fixed filename of the rolling-window partition.
	RollingFile = "builds-4hr.js"

	// DayFormat is the UTC calendar day layout used in partition names.
	DayFormat = "2006-01-02"

	// DefaultDayCacheSize bounds the in-memory cache of past-day partitions.
	DefaultDayCacheSize = 32
)

// DayFile returns the filename of the partition for a UTC calendar day.
func DayFile(day string) string {
	return fmt.Sprintf("builds-%s.js", day)
}

// Source fetches decoded partition contents.
type Source interface {
	// Rolling returns the rolling-window partition.
	Rolling(ctx context.Context) ([]Build, error)

	// Day returns the partition for a UTC calendar day (DayFormat).
	Day(ctx context.Context, day string) ([]Build, error)
}

// Resolver locates job records across archive partitions.
//
// Past-day partitions are immutable once the represented day has elapsed and
// are cached in a bounded LRU. The rolling window and the current day are
// still being appended to externally and are never cached.
type Resolver struct {
	source  Source
	days    *lru.Cache[string, []Build]
	daySize int
	now     func() time.Time
	log     *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the wall clock used for partition selection.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithLogger sets the resolver logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// WithDayCacheSize bounds the past-day partition cache.
func WithDayCacheSize(n int) Option {
	return func(r *Resolver) { r.daySize = n }
}

// New creates a Resolver reading from source.
func New(source Source, opts ...Option) (*Resolver, error) {
	if source == nil {
		return nil, fmt.Errorf("archive source is required")
	}
	r := &Resolver{
		source:  source,
		daySize: DefaultDayCacheSize,
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	cache, err := lru.New[string, []Build](r.daySize)
	if err != nil {
		return nil, fmt.Errorf("day cache: %w", err)
	}
	r.days = cache
	return r, nil
}

// Resolve returns the archived record for a scheduling identifier.
//
// completedAt is the job's completion time and picks the partition searched;
// a request id is looked up in exactly one partition per call. A miss in the
// rolling window yields ErrNotYetArchived (the job may legitimately still be
// running); a miss in a day partition yields ErrNotFound. Both are wrapped
// in *LookupError.
func (r *Resolver) Resolve(ctx context.Context, completedAt time.Time, requestID int64) (*Build, error) {
	now := r.now().UTC()
	completedAt = completedAt.UTC()

	if now.Sub(completedAt) < RecentWindow {
		r.log.Debug("Searching rolling-window partition",
			zap.Int64("request_id", requestID),
			zap.Time("completed_at", completedAt))
		builds, err := r.source.Rolling(ctx)
		if err != nil {
			return nil, &LookupError{RequestID: requestID, Partition: RollingFile, Err: err}
		}
		if b := findBuild(requestID, builds); b != nil {
			return b, nil
		}
		return nil, &LookupError{RequestID: requestID, Partition: RollingFile, Err: ErrNotYetArchived}
	}

	day := completedAt.Format(DayFormat)
	partition := DayFile(day)

	var builds []Build
	if day == now.Format(DayFormat) {
		// Today's file is regenerated until midnight UTC; never cache it.
		var err error
		builds, err = r.source.Day(ctx, day)
		if err != nil {
			return nil, &LookupError{RequestID: requestID, Partition: partition, Err: err}
		}
	} else {
		var ok bool
		builds, ok = r.days.Get(day)
		if !ok {
			var err error
			builds, err = r.source.Day(ctx, day)
			if err != nil {
				return nil, &LookupError{RequestID: requestID, Partition: partition, Err: err}
			}
			r.days.Add(day, builds)
		} else {
			r.log.Debug("Day partition served from memory", zap.String("day", day))
		}
	}

	if b := findBuild(requestID, builds); b != nil {
		return b, nil
	}
	return nil, &LookupError{RequestID: requestID, Partition: partition, Err: ErrNotFound}
}

// findBuild scans a partition for a request id.
func findBuild(requestID int64, builds []Build) *Build {
	for i := range builds {
		if builds[i].MatchesRequest(requestID) {
			return &builds[i]
		}
	}
	return nil
}
