package gold

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"resty.dev/v3"

	"dailybrief/internal/fetcher"
)

// SpotProvider returns the current gold price in USD per troy ounce.
// Providers are capability-equivalent and tried in order until one succeeds.
type SpotProvider interface {
	Name() string
	SpotUSD(ctx context.Context) (float64, error)
}

// PAXGProvider quotes the PAXG gold-backed token via CoinGecko. One PAXG is
// backed by one troy ounce, so the token price doubles as a spot price.
type PAXGProvider struct {
	client *resty.Client
}

// NewPAXGProvider creates the primary gold price provider
func NewPAXGProvider(baseURL string, limiter *rate.Limiter) *PAXGProvider {
	return &PAXGProvider{client: fetcher.NewHTTPClient(baseURL, limiter)}
}

// Name implements SpotProvider
func (p *PAXGProvider) Name() string { return "coingecko-paxg" }

// SpotUSD implements SpotProvider
func (p *PAXGProvider) SpotUSD(ctx context.Context) (float64, error) {
	var result map[string]struct {
		USD *float64 `json:"usd"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           "pax-gold",
			"vs_currencies": "usd",
		}).
		SetResult(&result).
		Get("/simple/price")
	if err != nil {
		return 0, fmt.Errorf("fetching PAXG price: %w", err)
	}
	if !resp.IsSuccess() {
		return 0, fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	paxg, ok := result["pax-gold"]
	if !ok || paxg.USD == nil {
		return 0, fetcher.NewValidationError("no PAXG price in response")
	}
	return *paxg.USD, nil
}

// SpotAPIProvider quotes spot XAU from gold-api.com
type SpotAPIProvider struct {
	client *resty.Client
}

// NewSpotAPIProvider creates the fallback gold price provider
func NewSpotAPIProvider(baseURL string, limiter *rate.Limiter) *SpotAPIProvider {
	return &SpotAPIProvider{client: fetcher.NewHTTPClient(baseURL, limiter)}
}

// Name implements SpotProvider
func (p *SpotAPIProvider) Name() string { return "gold-api" }

// SpotUSD implements SpotProvider
func (p *SpotAPIProvider) SpotUSD(ctx context.Context) (float64, error) {
	var result struct {
		Price *float64 `json:"price"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/price/XAU")
	if err != nil {
		return 0, fmt.Errorf("fetching spot gold: %w", err)
	}
	if !resp.IsSuccess() {
		return 0, fetcher.ClassifyHTTPError(resp.StatusCode())
	}
	if result.Price == nil || *result.Price <= 0 {
		return 0, fetcher.NewValidationError("no spot price in response")
	}
	return *result.Price, nil
}
