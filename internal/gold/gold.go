package gold

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"resty.dev/v3"

	"dailybrief/internal/fetcher"
)

// GramsPerTroyOunce converts ounce-quoted spot prices to per-gram prices
const GramsPerTroyOunce = 31.1034768

// Report holds the converted gold price and, when a holding is configured,
// the position valuation.
type Report struct {
	USDPerOunce float64
	CNYPerGram  float64
	Source      string
	Position    *Position
}

// Position is the valuation of a configured gold holding
type Position struct {
	HoldingGrams float64
	MarketValue  float64
	TotalCost    *float64
	Profit       *float64
	ProfitPct    *float64
}

type rateResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// Fetcher resolves the gold price through an ordered provider chain and
// converts it to CNY per gram via a live exchange rate lookup.
type Fetcher struct {
	providers []SpotProvider
	fx        *resty.Client
	logger    zerolog.Logger
}

// NewFetcher creates a gold fetcher. Providers are tried in the given order.
func NewFetcher(providers []SpotProvider, exchangeRateBaseURL string, limiter *rate.Limiter) *Fetcher {
	return &Fetcher{
		providers: providers,
		fx:        fetcher.NewHTTPClient(exchangeRateBaseURL, limiter),
		logger:    log.With().Str("component", "gold").Logger(),
	}
}

// Fetch resolves the current gold price and values the holding, if any.
// An exchange rate failure fails the section even when a spot price was found.
func (f *Fetcher) Fetch(ctx context.Context, holdingGrams, totalCostCNY, costPerGramCNY *float64) (*Report, error) {
	usdPerOunce, source, err := f.spotUSD(ctx)
	if err != nil {
		return nil, err
	}

	usdToCNY, err := f.usdToCNY(ctx)
	if err != nil {
		return nil, fmt.Errorf("exchange rate lookup: %w", err)
	}

	report := &Report{
		USDPerOunce: usdPerOunce,
		CNYPerGram:  usdPerOunce * usdToCNY / GramsPerTroyOunce,
		Source:      source,
	}
	report.Position = BuildPosition(report.CNYPerGram, holdingGrams, totalCostCNY, costPerGramCNY)

	f.logger.Debug().
		Str("source", source).
		Float64("usd_per_oz", usdPerOunce).
		Float64("cny_per_gram", report.CNYPerGram).
		Msg("fetched gold price")
	return report, nil
}

func (f *Fetcher) spotUSD(ctx context.Context) (float64, string, error) {
	attempts := make(map[string]error, len(f.providers))
	order := make([]string, 0, len(f.providers))

	for _, p := range f.providers {
		price, err := p.SpotUSD(ctx)
		if err == nil {
			return price, p.Name(), nil
		}
		f.logger.Warn().Err(err).Str("provider", p.Name()).Msg("gold provider failed")
		attempts[p.Name()] = err
		order = append(order, p.Name())
	}
	return 0, "", fetcher.NewExhaustedError(attempts, order)
}

func (f *Fetcher) usdToCNY(ctx context.Context) (float64, error) {
	var result rateResponse
	resp, err := f.fx.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/latest/USD")
	if err != nil {
		return 0, err
	}
	if !resp.IsSuccess() {
		return 0, fetcher.ClassifyHTTPError(resp.StatusCode())
	}
	if result.Result != "success" {
		return 0, fetcher.NewValidationError("exchange rate API reported " + result.Result)
	}
	cny, ok := result.Rates["CNY"]
	if !ok || cny <= 0 {
		return 0, fetcher.NewValidationError("no CNY rate in response")
	}
	return cny, nil
}

// BuildPosition values a gold holding at the given per-gram price. Returns
// nil when no holding is configured. Total cost takes precedence over
// per-gram cost; with neither, only the market value is reported.
func BuildPosition(cnyPerGram float64, holdingGrams, totalCostCNY, costPerGramCNY *float64) *Position {
	if holdingGrams == nil || *holdingGrams <= 0 {
		return nil
	}

	pos := &Position{
		HoldingGrams: *holdingGrams,
		MarketValue:  cnyPerGram * *holdingGrams,
	}

	var cost *float64
	switch {
	case totalCostCNY != nil:
		cost = totalCostCNY
	case costPerGramCNY != nil:
		c := *costPerGramCNY * *holdingGrams
		cost = &c
	}
	if cost == nil {
		return pos
	}

	profit := pos.MarketValue - *cost
	pos.TotalCost = cost
	pos.Profit = &profit
	if *cost > 0 {
		pct := profit / *cost * 100
		pos.ProfitPct = &pct
	}
	return pos
}
