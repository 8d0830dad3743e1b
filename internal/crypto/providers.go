package crypto

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
	"resty.dev/v3"

	"dailybrief/internal/fetcher"
)

// Provider resolves one symbol to a quote. Providers are tried in order per
// symbol until one succeeds.
type Provider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// coinIDs maps ticker symbols to CoinGecko coin ids
var coinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"DOGE": "dogecoin",
	"LTC":  "litecoin",
}

// CoinGeckoProvider is the primary aggregator. It is the only provider that
// also returns a CNY price.
type CoinGeckoProvider struct {
	client *resty.Client
}

// NewCoinGeckoProvider creates the primary crypto quote provider
func NewCoinGeckoProvider(baseURL string, limiter *rate.Limiter) *CoinGeckoProvider {
	return &CoinGeckoProvider{client: fetcher.NewHTTPClient(baseURL, limiter)}
}

// Name implements Provider
func (p *CoinGeckoProvider) Name() string { return "coingecko" }

// Quote implements Provider
func (p *CoinGeckoProvider) Quote(ctx context.Context, symbol string) (*Quote, error) {
	id, ok := coinIDs[strings.ToUpper(symbol)]
	if !ok {
		return nil, fetcher.NewValidationError("unknown coin symbol " + symbol)
	}

	var result map[string]struct {
		USD          *float64 `json:"usd"`
		CNY          *float64 `json:"cny"`
		USD24hChange *float64 `json:"usd_24h_change"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":                 id,
			"vs_currencies":       "usd,cny",
			"include_24hr_change": "true",
		}).
		SetResult(&result).
		Get("/simple/price")
	if err != nil {
		return nil, fmt.Errorf("fetching %s price: %w", symbol, err)
	}
	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	coin, ok := result[id]
	if !ok || coin.USD == nil {
		return nil, fetcher.NewValidationError("no price in response for " + symbol)
	}

	return &Quote{
		Symbol:    strings.ToUpper(symbol),
		PriceUSD:  *coin.USD,
		PriceCNY:  coin.CNY,
		Change24h: coin.USD24hChange,
		Source:    p.Name(),
	}, nil
}

// BinanceProvider quotes the <SYMBOL>USDT pair from the Binance 24h ticker
type BinanceProvider struct {
	client *resty.Client
}

// NewBinanceProvider creates the first fallback provider
func NewBinanceProvider(baseURL string, limiter *rate.Limiter) *BinanceProvider {
	return &BinanceProvider{client: fetcher.NewHTTPClient(baseURL, limiter)}
}

// Name implements Provider
func (p *BinanceProvider) Name() string { return "binance" }

// Quote implements Provider
func (p *BinanceProvider) Quote(ctx context.Context, symbol string) (*Quote, error) {
	var result struct {
		LastPrice          string `json:"lastPrice"`
		PriceChangePercent string `json:"priceChangePercent"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", strings.ToUpper(symbol)+"USDT").
		SetResult(&result).
		Get("/api/v3/ticker/24hr")
	if err != nil {
		return nil, fmt.Errorf("fetching %s ticker: %w", symbol, err)
	}
	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	price, err := parsePrice(result.LastPrice, symbol)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Symbol:    strings.ToUpper(symbol),
		PriceUSD:  price,
		Change24h: parseOptional(result.PriceChangePercent),
		Source:    p.Name(),
	}, nil
}

// GateioProvider quotes the <SYMBOL>_USDT pair from the Gate.io spot tickers
type GateioProvider struct {
	client *resty.Client
}

// NewGateioProvider creates the second fallback provider
func NewGateioProvider(baseURL string, limiter *rate.Limiter) *GateioProvider {
	return &GateioProvider{client: fetcher.NewHTTPClient(baseURL, limiter)}
}

// Name implements Provider
func (p *GateioProvider) Name() string { return "gateio" }

// Quote implements Provider
func (p *GateioProvider) Quote(ctx context.Context, symbol string) (*Quote, error) {
	var result []struct {
		Last             string `json:"last"`
		ChangePercentage string `json:"change_percentage"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("currency_pair", strings.ToUpper(symbol)+"_USDT").
		SetResult(&result).
		Get("/spot/tickers")
	if err != nil {
		return nil, fmt.Errorf("fetching %s ticker: %w", symbol, err)
	}
	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(resp.StatusCode())
	}
	if len(result) == 0 {
		return nil, fetcher.NewValidationError("empty ticker response for " + symbol)
	}

	price, err := parsePrice(result[0].Last, symbol)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Symbol:    strings.ToUpper(symbol),
		PriceUSD:  price,
		Change24h: parseOptional(result[0].ChangePercentage),
		Source:    p.Name(),
	}, nil
}

func parsePrice(raw, symbol string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || price <= 0 {
		return 0, fetcher.NewValidationError("no usable price in response for " + symbol)
	}
	return price, nil
}

func parseOptional(raw string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil
	}
	return &f
}
