package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wlsexporter/wlsexporter/internal/config"
	"github.com/wlsexporter/wlsexporter/internal/query"
)

// searchPath is the management REST resource that answers selector-shaped
// search requests against the live server runtime.
const searchPath = "/management/weblogic/latest/serverRuntime/search"

const defaultScrapeTimeout = 10 * time.Second

// Client queries a server's management REST interface. It is built once
// per destination and reused across scrape cycles.
type Client struct {
	baseURL  string
	userName string
	password string
	client   *http.Client
}

// New returns a Client for the destination described by cfg.
func New(cfg *config.ExporterConfig) *Client {
	return &Client{
		baseURL:  fmt.Sprintf("http://%s:%d", cfg.Host(), cfg.Port()),
		userName: cfg.UserName(),
		password: cfg.Password(),
		client:   &http.Client{Timeout: defaultScrapeTimeout},
	}
}

// Query POSTs the search request for one top-level query and returns the
// decoded JSON response.
func (c *Client) Query(ctx context.Context, q *config.MBeanSelector) (map[string]any, error) {
	body, err := json.Marshal(query.SearchBody(q))
	if err != nil {
		return nil, fmt.Errorf("scraper: marshal search body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("scraper: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// The management interface rejects state-changing requests without
	// this anti-CSRF header.
	req.Header.Set("X-Requested-By", "wlsexporter")
	if c.userName != "" {
		req.SetBasicAuth(c.userName, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper: http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scraper: unexpected status %d", resp.StatusCode)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("scraper: decode response: %w", err)
	}
	return out, nil
}

// Scrape runs every query in order and returns the combined samples. A
// failed query fails the whole scrape — partial results would look like
// metrics silently disappearing.
func (c *Client) Scrape(ctx context.Context, queries config.QueryList) ([]query.Sample, error) {
	var samples []query.Sample
	for _, q := range queries {
		resp, err := c.Query(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", q.Name(), err)
		}
		samples = append(samples, query.Metrics(q, resp)...)
	}
	return samples, nil
}
