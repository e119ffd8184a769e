package query

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/verdict/pkg/archive"
	"github.com/3leaps/verdict/pkg/status"
)

// fakeJob is the minimal job record the aggregator tests need.
type fakeJob struct {
	builder   string
	requestID int64
	status    status.Status
	statusErr error
	idErr     error
}

type fakeSource struct {
	jobs    []fakeJob
	jobsErr error
}

var _ Source[fakeJob] = (*fakeSource)(nil)

func (f *fakeSource) AllJobs(ctx context.Context, scope Scope) ([]fakeJob, error) {
	if f.jobsErr != nil {
		return nil, f.jobsErr
	}
	return f.jobs, nil
}

func (f *fakeSource) MatchingJobs(ctx context.Context, scope Scope, builder string) ([]fakeJob, error) {
	var out []fakeJob
	for _, j := range f.jobs {
		if j.builder == builder {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeSource) JobName(job fakeJob) string { return job.builder }

func (f *fakeSource) SchedulingID(ctx context.Context, scope Scope, job fakeJob) (int64, error) {
	if job.idErr != nil {
		return 0, job.idErr
	}
	return job.requestID, nil
}

func (f *fakeSource) Status(ctx context.Context, job fakeJob) (status.Status, error) {
	if job.statusErr != nil {
		return status.Unknown, job.statusErr
	}
	return job.status, nil
}

var testScope = Scope{Repo: "projects/cedar", Revision: "abc123def456789"}

func lookupErr(id int64) error {
	return &archive.LookupError{RequestID: id, Partition: archive.RollingFile, Err: archive.ErrNotFound}
}

func TestFindAllJobsByStatus_SortedMatches(t *testing.T) {
	src := &fakeSource{jobs: []fakeJob{
		{builder: "win64-opt", requestID: 303, status: status.Failure},
		{builder: "linux64-opt", requestID: 101, status: status.Failure},
		{builder: "mac64-opt", requestID: 202, status: status.Success},
	}}

	agg, err := FindAllJobsByStatus(context.Background(), src, testScope, status.Failure, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 303}, agg.RequestIDs)
	assert.Empty(t, agg.Skipped)
}

func TestFindAllJobsByStatus_MixedBuilderExcluded(t *testing.T) {
	// Two instances under one name; one landed elsewhere, so the name is out.
	src := &fakeSource{jobs: []fakeJob{
		{builder: "linux64-opt", requestID: 101, status: status.Failure},
		{builder: "linux64-opt", requestID: 102, status: status.Success},
		{builder: "win64-opt", requestID: 303, status: status.Failure},
	}}

	agg, err := FindAllJobsByStatus(context.Background(), src, testScope, status.Failure, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{303}, agg.RequestIDs)
}

func TestFindAllJobsByStatus_RetriedOnTargetIncluded(t *testing.T) {
	// A retried builder stays in when every instance hit the target.
	src := &fakeSource{jobs: []fakeJob{
		{builder: "linux64-opt", requestID: 101, status: status.Failure},
		{builder: "linux64-opt", requestID: 102, status: status.Failure},
	}}

	agg, err := FindAllJobsByStatus(context.Background(), src, testScope, status.Failure, nil)
	require.NoError(t, err)
	require.Len(t, agg.RequestIDs, 1)
}

func TestFindAllJobsByStatus_ArchivalMissSkipsBuilder(t *testing.T) {
	src := &fakeSource{jobs: []fakeJob{
		{builder: "linux64-opt", requestID: 101, statusErr: lookupErr(101)},
		{builder: "win64-opt", requestID: 303, status: status.Failure},
	}}

	agg, err := FindAllJobsByStatus(context.Background(), src, testScope, status.Failure, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{303}, agg.RequestIDs)
	require.Len(t, agg.Skipped, 1)
	assert.Equal(t, "linux64-opt", agg.Skipped[0].Builder)
	assert.True(t, archive.IsNotFound(agg.Skipped[0].Err))
}

func TestFindAllJobsByStatus_SkippedBuilderReportedOnce(t *testing.T) {
	// A retried builder with several unresolvable instances yields a single
	// skipped entry.
	src := &fakeSource{jobs: []fakeJob{
		{builder: "linux64-opt", requestID: 101, statusErr: lookupErr(101)},
		{builder: "linux64-opt", requestID: 102, statusErr: lookupErr(102)},
		{builder: "win64-opt", requestID: 303, status: status.Failure},
	}}

	agg, err := FindAllJobsByStatus(context.Background(), src, testScope, status.Failure, nil)
	require.NoError(t, err)
	require.Len(t, agg.Skipped, 1)
	assert.Equal(t, "linux64-opt", agg.Skipped[0].Builder)
}

func TestFindAllJobsByStatus_OtherStatusErrorAborts(t *testing.T) {
	boom := &BackendError{Op: "Status", Backend: "selfserve", Err: fmt.Errorf("code 99: %w", ErrProtocol)}
	src := &fakeSource{jobs: []fakeJob{
		{builder: "linux64-opt", requestID: 101, statusErr: boom},
		{builder: "win64-opt", requestID: 303, status: status.Failure},
	}}

	_, err := FindAllJobsByStatus(context.Background(), src, testScope, status.Failure, nil)
	require.Error(t, err)
	assert.True(t, IsProtocol(err))
}

func TestFindAllJobsByStatus_SchedulingIDErrorAborts(t *testing.T) {
	boom := errors.New("artifact service down")
	src := &fakeSource{jobs: []fakeJob{
		{builder: "linux64-opt", requestID: 101, status: status.Failure, idErr: boom},
	}}

	_, err := FindAllJobsByStatus(context.Background(), src, testScope, status.Failure, nil)
	require.ErrorIs(t, err, boom)
}

func TestFindAllJobsByStatus_FetchErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	src := &fakeSource{jobsErr: boom}

	_, err := FindAllJobsByStatus(context.Background(), src, testScope, status.Failure, nil)
	require.ErrorIs(t, err, boom)
}

func TestFindAllJobsByStatus_RejectsBadInput(t *testing.T) {
	src := &fakeSource{}

	_, err := FindAllJobsByStatus(context.Background(), src, Scope{}, status.Failure, nil)
	require.Error(t, err)
	assert.True(t, IsConfig(err))

	_, err = FindAllJobsByStatus(context.Background(), src, testScope, status.Status(42), nil)
	require.Error(t, err)
	assert.True(t, IsConfig(err))
}
