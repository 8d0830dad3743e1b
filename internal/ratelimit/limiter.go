package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// API represents the different external APIs we interact with
type API string

const (
	// APIOpenMeteo covers both the geocoding and forecast endpoints
	APIOpenMeteo API = "openmeteo"
	// APIEastmoney represents the eastmoney quote API
	APIEastmoney API = "eastmoney"
	// APICoinGecko represents the CoinGecko API
	APICoinGecko API = "coingecko"
	// APIBinance represents the Binance API
	APIBinance API = "binance"
	// APIGateio represents the Gate.io API
	APIGateio API = "gateio"
	// APIGoldAPI represents the gold-api.com spot price API
	APIGoldAPI API = "goldapi"
	// APIExchangeRate represents the open.er-api.com exchange rate API
	APIExchangeRate API = "exchangerate"
)

// Limiter manages rate limits for the different upstream APIs. It is built
// once in main and handed to each fetcher; there is no package-level state.
type Limiter struct {
	limiters map[API]*rate.Limiter
}

// New creates a Limiter with conservative production rates. All upstreams
// are free public endpoints; one short burst per run keeps us well inside
// their published limits.
func New() *Limiter {
	return &Limiter{
		limiters: map[API]*rate.Limiter{
			APIOpenMeteo: rate.NewLimiter(rate.Limit(4), 2),
			APIEastmoney: rate.NewLimiter(rate.Limit(4), 2),
			// CoinGecko free tier allows ~10-30 calls/minute
			APICoinGecko:    rate.NewLimiter(rate.Limit(0.5), 1),
			APIBinance:      rate.NewLimiter(rate.Limit(5), 2),
			APIGateio:       rate.NewLimiter(rate.Limit(5), 2),
			APIGoldAPI:      rate.NewLimiter(rate.Limit(2), 1),
			APIExchangeRate: rate.NewLimiter(rate.Limit(2), 1),
		},
	}
}

// NewUnlimited creates a Limiter that never blocks. Used by tests so mock
// upstreams are not throttled.
func NewUnlimited() *Limiter {
	l := &Limiter{limiters: make(map[API]*rate.Limiter)}
	for _, api := range []API{
		APIOpenMeteo, APIEastmoney, APICoinGecko,
		APIBinance, APIGateio, APIGoldAPI, APIExchangeRate,
	} {
		l.limiters[api] = rate.NewLimiter(rate.Inf, 1)
	}
	return l
}

// Get returns the limiter for the given API, or nil when none is configured.
// Fetchers wire the returned limiter into their HTTP client middleware.
func (l *Limiter) Get(api API) *rate.Limiter {
	return l.limiters[api]
}

// Wait blocks until the rate limiter permits an event for the given API.
// It returns an error if the context is canceled before the event can proceed.
func (l *Limiter) Wait(ctx context.Context, api API) error {
	limiter, exists := l.limiters[api]
	if !exists {
		return nil
	}
	return limiter.Wait(ctx)
}
