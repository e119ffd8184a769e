package resultset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// ClientConfig configures the HTTP results-set client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "https://ci.example.org/api" (required).
	BaseURL string

	// Client is the HTTP client to use. Nil uses http.DefaultClient.
	Client *http.Client

	// RateLimit is the maximum requests per second. Zero means unlimited.
	RateLimit float64
}

// Validate checks that required configuration is present.
func (c *ClientConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("resultset base URL is required")
	}
	return nil
}

// HTTPClient is the HTTP implementation of Client.
//
// Collection endpoints wrap their payloads in a "results" envelope; the
// artifact endpoint returns a bare array.
type HTTPClient struct {
	base    string
	client  *http.Client
	limiter *rate.Limiter
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTP results-set client.
func NewHTTPClient(cfg ClientConfig) (*HTTPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &HTTPClient{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		client: cfg.Client,
	}
	if c.client == nil {
		c.client = http.DefaultClient
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c, nil
}

// ResultSets returns the results-sets for a revision.
func (c *HTTPClient) ResultSets(ctx context.Context, repo, revision string) ([]ResultSet, error) {
	q := url.Values{"revision": {revision}}

	var envelope struct {
		Results []ResultSet `json:"results"`
	}
	if err := c.getJSON(ctx, c.projectURL(repo, "resultset", q), &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

// Jobs returns up to count jobs belonging to a results-set.
func (c *HTTPClient) Jobs(ctx context.Context, repo string, resultSetID int64, count int) ([]Job, error) {
	q := url.Values{
		"result_set_id": {strconv.FormatInt(resultSetID, 10)},
		"count":         {strconv.Itoa(count)},
	}

	var envelope struct {
		Results []Job `json:"results"`
	}
	if err := c.getJSON(ctx, c.projectURL(repo, "jobs", q), &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

// Artifacts returns the named artifacts attached to a job.
func (c *HTTPClient) Artifacts(ctx context.Context, repo string, jobID int64, name string) ([]Artifact, error) {
	q := url.Values{
		"job_id": {strconv.FormatInt(jobID, 10)},
		"name":   {name},
		"type":   {"json"},
	}

	var artifacts []Artifact
	if err := c.getJSON(ctx, c.projectURL(repo, "artifact", q), &artifacts); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// HiddenJobs returns jobs excluded from the default visibility set.
func (c *HTTPClient) HiddenJobs(ctx context.Context, repo, revision string) ([]Job, error) {
	sets, err := c.ResultSets(ctx, repo, revision)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, nil
	}

	q := url.Values{
		"result_set_id": {strconv.FormatInt(sets[0].ID, 10)},
		"count":         {strconv.Itoa(MaxJobCount)},
		"visibility":    {"excluded"},
	}
	var envelope struct {
		Results []Job `json:"results"`
	}
	if err := c.getJSON(ctx, c.projectURL(repo, "jobs", q), &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

func (c *HTTPClient) projectURL(repo, resource string, q url.Values) string {
	return fmt.Sprintf("%s/project/%s/%s/?%s", c.base, url.PathEscape(repo), resource, q.Encode())
}

func (c *HTTPClient) getJSON(ctx context.Context, u string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", u, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", u, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}
