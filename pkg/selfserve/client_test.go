package selfserve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_JobsSchedule(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[
			{"buildername": "Linux x64 opt", "status": 0,
			 "requests": [{"request_id": 101, "revision": "abc123def456789", "complete_at": 1718449000}]},
			{"buildername": "Linux x64 debug"}
		]`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	jobs, err := c.JobsSchedule(context.Background(), "cedar", "abc123def456789")
	require.NoError(t, err)
	assert.Equal(t, "/cedar/rev/abc123def456789", gotPath)
	assert.Equal(t, "format=json", gotQuery)

	require.Len(t, jobs, 2)
	assert.True(t, jobs[0].HasStatus())
	assert.False(t, jobs[1].HasStatus())
	require.Len(t, jobs[0].Requests, 1)
	assert.Equal(t, int64(101), jobs[0].Requests[0].RequestID)
}

func TestClient_RepoURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/branches", r.URL.Path)
		_, _ = w.Write([]byte(`{"cedar": {"repo": "https://hg.example.org/projects/cedar"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	u, err := c.RepoURL(context.Background(), "cedar")
	require.NoError(t, err)
	assert.Equal(t, "https://hg.example.org/projects/cedar", u)

	_, err = c.RepoURL(context.Background(), "missing")
	require.Error(t, err)
}

func TestClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.JobsSchedule(context.Background(), "cedar", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 503")
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	require.Error(t, err)
}
