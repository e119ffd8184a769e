package selfserve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// ClientConfig configures the HTTP schedule client.
type ClientConfig struct {
	// BaseURL is the self-serve API root (required).
	BaseURL string

	// Client is the HTTP client to use. Nil uses http.DefaultClient.
	Client *http.Client

	// RateLimit is the maximum requests per second. Zero means unlimited.
	RateLimit float64
}

// Validate checks that required configuration is present.
func (c *ClientConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("self-serve base URL is required")
	}
	return nil
}

// Client is the HTTP implementation of ScheduleClient.
type Client struct {
	base    string
	client  *http.Client
	limiter *rate.Limiter
}

var _ ScheduleClient = (*Client)(nil)

// NewClient creates an HTTP schedule client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
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

// JobsSchedule returns every scheduled job for a revision.
func (c *Client) JobsSchedule(ctx context.Context, repo, revision string) ([]Job, error) {
	u := fmt.Sprintf("%s/%s/rev/%s?format=json", c.base, url.PathEscape(repo), url.PathEscape(revision))

	var jobs []Job
	if err := c.getJSON(ctx, u, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// RepoURL returns the canonical URL of a repository from the branches index.
func (c *Client) RepoURL(ctx context.Context, repo string) (string, error) {
	u := c.base + "/branches?format=json"

	var branches map[string]struct {
		RepoURL string `json:"repo"`
	}
	if err := c.getJSON(ctx, u, &branches); err != nil {
		return "", err
	}
	branch, ok := branches[repo]
	if !ok {
		return "", fmt.Errorf("repository %q not known to self-serve", repo)
	}
	return branch.RepoURL, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
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
