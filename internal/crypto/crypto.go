package crypto

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dailybrief/internal/fetcher"
)

// Quote is one symbol's normalized price. PriceCNY and Change24h are nil
// when the winning provider does not report them.
type Quote struct {
	Symbol    string
	PriceUSD  float64
	PriceCNY  *float64
	Change24h *float64
	Source    string
}

// QuoteResult pairs a requested symbol with its quote or the chain failure
type QuoteResult struct {
	Symbol string
	Quote  *Quote
	Err    error
}

// Fetcher resolves each symbol through an ordered provider fallback chain
type Fetcher struct {
	providers []Provider
	logger    zerolog.Logger
}

// NewFetcher creates a crypto fetcher. Providers are tried in the given order.
func NewFetcher(providers []Provider) *Fetcher {
	return &Fetcher{
		providers: providers,
		logger:    log.With().Str("component", "crypto").Logger(),
	}
}

// Fetch resolves every symbol independently. A symbol that exhausts all
// providers yields a QuoteResult with the joined chain error; the other
// symbols still resolve. Output order matches input order.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string) []QuoteResult {
	results := make([]QuoteResult, 0, len(symbols))
	for _, symbol := range symbols {
		quote, err := f.fetchOne(ctx, symbol)
		results = append(results, QuoteResult{
			Symbol: strings.ToUpper(symbol),
			Quote:  quote,
			Err:    err,
		})
	}
	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, symbol string) (*Quote, error) {
	attempts := make(map[string]error, len(f.providers))
	order := make([]string, 0, len(f.providers))

	for _, p := range f.providers {
		quote, err := p.Quote(ctx, symbol)
		if err == nil {
			f.logger.Debug().
				Str("symbol", quote.Symbol).
				Str("source", quote.Source).
				Float64("usd", quote.PriceUSD).
				Msg("fetched crypto quote")
			return quote, nil
		}
		f.logger.Warn().Err(err).Str("provider", p.Name()).Str("symbol", symbol).Msg("crypto provider failed")
		attempts[p.Name()] = err
		order = append(order, p.Name())
	}
	return nil, fetcher.NewExhaustedError(attempts, order)
}
