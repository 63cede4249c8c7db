// Package liquidity looks up token liquidity on Dexscreener.
package liquidity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// DefaultBaseURL is the Dexscreener token endpoint; contract address is
// appended as a path segment.
const DefaultBaseURL = "https://api.dexscreener.com/latest/dex/tokens"

// Default configuration values. Lookups are kept short: the trending loop
// fails open on any miss, so slow answers are worth less than no answer.
const (
	DefaultTimeout = 5 * time.Second
	maxBodySize    = 1 << 20
)

// Client queries Dexscreener for pair liquidity.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.client = client }
}

// NewClient creates a Dexscreener client.
func NewClient(logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  logger.With("component", "dexscreener"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tokenResponse is the subset of the Dexscreener payload we read.
type tokenResponse struct {
	Pairs []struct {
		Liquidity struct {
			USD float64 `json:"usd"`
		} `json:"liquidity"`
	} `json:"pairs"`
}

// Liquidity returns the highest pair liquidity known for the contract.
// ok=false means the lookup could not be completed (transport error,
// non-200, malformed body) and the caller should fail open. A valid
// response with no pairs is a real answer: (0, true).
func (c *Client) Liquidity(ctx context.Context, contract, chain string) (float64, bool) {
	url := fmt.Sprintf("%s/%s", c.baseURL, contract)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("build liquidity request", "contract", contract, "error", err)
		return 0, false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("liquidity request failed", "contract", contract, "chain", chain, "error", err)
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("liquidity request rejected", "contract", contract, "status", resp.StatusCode)
		return 0, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.logger.Warn("read liquidity response", "contract", contract, "error", err)
		return 0, false
	}

	var parsed tokenResponse
	if err := sonnet.Unmarshal(body, &parsed); err != nil {
		c.logger.Warn("decode liquidity response", "contract", contract, "error", err)
		return 0, false
	}

	var max float64
	for _, pair := range parsed.Pairs {
		if pair.Liquidity.USD > max {
			max = pair.Liquidity.USD
		}
	}
	return max, true
}
