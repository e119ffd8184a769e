package archive

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	// BaseURL is the directory URL the partition files are published under
	// (required). Files are fetched as <BaseURL>/<name>.gz.
	BaseURL string

	// Client is the HTTP client to use. Nil uses http.DefaultClient.
	Client *http.Client

	// RateLimit is the maximum requests per second against the archive
	// host. Zero means unlimited.
	RateLimit float64
}

// Validate checks that required configuration is present.
func (c *HTTPConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("archive base URL is required")
	}
	return nil
}

// HTTPSource fetches partitions over HTTP.
//
// Partition files are gzip-compressed JSON documents with a single top-level
// "builds" key. The source decodes in memory; nothing is written to disk.
type HTTPSource struct {
	base    string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPSource creates an HTTPSource with the given configuration.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &HTTPSource{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		client: cfg.Client,
	}
	if s.client == nil {
		s.client = http.DefaultClient
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return s, nil
}

// Rolling returns the rolling-window partition.
func (s *HTTPSource) Rolling(ctx context.Context) ([]Build, error) {
	return s.fetch(ctx, RollingFile)
}

// Day returns the partition for a UTC calendar day.
func (s *HTTPSource) Day(ctx context.Context, day string) ([]Build, error) {
	return s.fetch(ctx, DayFile(day))
}

func (s *HTTPSource) fetch(ctx context.Context, name string) ([]Build, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	url := s.base + "/" + name + ".gz"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return decodePartition(resp.Body)
}

// decodePartition gunzips and decodes a partition document.
func decodePartition(r io.Reader) ([]Build, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer func() { _ = gz.Close() }()

	var doc struct {
		Builds []Build `json:"builds"`
	}
	if err := json.NewDecoder(gz).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode partition: %w", err)
	}
	return doc.Builds, nil
}
