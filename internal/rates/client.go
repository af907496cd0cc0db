// Package rates looks up the current monthly inflation percentage from an
// external endpoint. Lookup failures never propagate: the advisor degrades to
// the last manually entered value.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Provider yields the current monthly inflation rate as a fraction.
type Provider interface {
	CurrentMonthlyRate(ctx context.Context) (decimal.Decimal, error)
}

type Client struct {
	httpClient *http.Client
	url        string
	fallback   decimal.Decimal
}

// NewClient builds a lookup client for the given endpoint. The fallback is
// the manually entered rate returned whenever the endpoint is unreachable or
// answers garbage.
func NewClient(url string, fallback decimal.Decimal) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 7 * time.Second},
		url:        url,
		fallback:   fallback,
	}
}

// rateResponse is the endpoint's wire shape: a single percentage, e.g.
// {"rate": "4.2"} for 4.2% per month.
type rateResponse struct {
	Rate decimal.Decimal `json:"rate"`
}

// CurrentMonthlyRate fetches the current rate and converts the percentage to
// a fraction. On any failure it returns the fallback and logs a warning; the
// error return stays nil so callers never have to branch.
func (c *Client) CurrentMonthlyRate(ctx context.Context) (decimal.Decimal, error) {
	rate, err := c.fetch(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Rate lookup failed, using manual fallback",
			"url", c.url,
			"fallback", c.fallback.String(),
			"error", err)
		return c.fallback, nil
	}
	return rate, nil
}

func (c *Client) fetch(ctx context.Context) (decimal.Decimal, error) {
	if c.url == "" {
		return decimal.Zero, fmt.Errorf("no rate endpoint configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build rate request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch rate: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate endpoint returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return decimal.Zero, fmt.Errorf("read rate response: %w", err)
	}
	var parsed rateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decimal.Zero, fmt.Errorf("decode rate response: %w", err)
	}
	// Percentage to per-period fraction.
	return parsed.Rate.Div(decimal.NewFromInt(100)), nil
}

// Static is a Provider that always returns a fixed rate; used when the
// operator configures no endpoint at all.
type Static struct {
	Rate decimal.Decimal
}

func (s Static) CurrentMonthlyRate(context.Context) (decimal.Decimal, error) {
	return s.Rate, nil
}
