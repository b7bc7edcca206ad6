// Package qubic fetches tick and stats snapshots from the dashboard backend,
// or synthesises them when no backend is configured.
package qubic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/qdashboard/qdashboard/internal/model"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// Client talks to the dashboard backend over HTTP. An empty base URL puts it
// in demo mode: no network I/O, synthetic data, never an error.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	demo       *Demo
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		demo: NewDemo(uint64(time.Now().UnixNano())),
	}
}

// WithDemo replaces the synthetic generator, mainly for seeded tests.
func (c *Client) WithDemo(d *Demo) *Client {
	c.demo = d
	return c
}

func (c *Client) Demo() bool { return c.baseURL == "" }

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) DemoTick() model.TickSnapshot { return c.demo.Tick() }

func (c *Client) DemoStats() model.StatsSnapshot { return c.demo.Stats() }

// FetchTick retrieves the latest tick snapshot.
func (c *Client) FetchTick(ctx context.Context) (model.TickSnapshot, error) {
	if c.Demo() {
		return c.demo.Tick(), nil
	}
	var t model.TickSnapshot
	if err := c.get(ctx, "fetch tick", "/tick", &t); err != nil {
		return model.TickSnapshot{}, err
	}
	return t, nil
}

// FetchStats retrieves the latest network statistics.
func (c *Client) FetchStats(ctx context.Context) (model.StatsSnapshot, error) {
	if c.Demo() {
		return c.demo.Stats(), nil
	}
	var s model.StatsSnapshot
	if err := c.get(ctx, "fetch stats", "/stats", &s); err != nil {
		return model.StatsSnapshot{}, err
	}
	return s, nil
}

func (c *Client) get(ctx context.Context, op, path string, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, URL: url, Aborted: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{Op: op, URL: url, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		if isTimeout(err) {
			return &NetworkError{Op: op, URL: url, Aborted: true, Err: err}
		}
		return fmt.Errorf("decode %s: %w", op, err)
	}
	return nil
}
