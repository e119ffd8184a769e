package archive

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBody(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	gz := gzip.NewWriter(w)
	_, err := gz.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
}

func TestHTTPSource_Rolling(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gzipBody(t, w, `{"builds":[{"request_ids":[101],"properties":{"revision":"abc123def456789"}}]}`)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	builds, err := src.Rolling(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/builds-4hr.js.gz", gotPath)
	require.Len(t, builds, 1)
	assert.Equal(t, []int64{101}, builds[0].RequestIDs)
	assert.Equal(t, "abc123def456789", builds[0].Properties.Revision)
}

func TestHTTPSource_DayFilename(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gzipBody(t, w, `{"builds":[]}`)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	builds, err := src.Day(context.Background(), "2024-06-12")
	require.NoError(t, err)
	assert.Empty(t, builds)
	assert.Equal(t, "/builds-2024-06-12.js.gz", gotPath)
}

func TestHTTPSource_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = src.Rolling(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestHTTPSource_RejectsPlainJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"builds":[]}`))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = src.Rolling(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
}

func TestNewHTTPSource_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPSource(HTTPConfig{})
	require.Error(t, err)
}
