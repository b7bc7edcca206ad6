// Package qubicrpc reads network statistics from the public Qubic RPC and
// serves them as dashboard tick and stats snapshots.
package qubicrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultURL is the public RPC endpoint.
const DefaultURL = "https://rpc.qubic.org/v1"

// LatestStats is the data object of GET /latest-stats. The RPC sends some
// fields as JSON strings and some as numbers; decimal accepts both.
type LatestStats struct {
	Timestamp                decimal.Decimal `json:"timestamp"`
	CirculatingSupply        decimal.Decimal `json:"circulatingSupply"`
	ActiveAddresses          decimal.Decimal `json:"activeAddresses"`
	Price                    decimal.Decimal `json:"price"`
	MarketCap                decimal.Decimal `json:"marketCap"`
	Epoch                    decimal.Decimal `json:"epoch"`
	CurrentTick              decimal.Decimal `json:"currentTick"`
	TicksInCurrentEpoch      decimal.Decimal `json:"ticksInCurrentEpoch"`
	EmptyTicksInCurrentEpoch decimal.Decimal `json:"emptyTicksInCurrentEpoch"`
	EpochTickQuality         decimal.Decimal `json:"epochTickQuality"`
	BurnedQus                decimal.Decimal `json:"burnedQus"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// LatestStats retrieves the current network statistics.
func (c *Client) LatestStats(ctx context.Context) (*LatestStats, error) {
	url := fmt.Sprintf("%s/latest-stats", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create latest-stats request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest-stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("latest-stats returned status %d", resp.StatusCode)
	}

	var result struct {
		Data *LatestStats `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode latest-stats: %w", err)
	}
	if result.Data == nil {
		return nil, fmt.Errorf("latest-stats response has no data")
	}
	return result.Data, nil
}
