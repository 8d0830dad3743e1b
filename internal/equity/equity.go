package equity

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"resty.dev/v3"

	"dailybrief/internal/fetcher"
)

var (
	prefixedCode = regexp.MustCompile(`^(sh|sz)\d{6}$`)
	bareCode     = regexp.MustCompile(`^\d{6}$`)
)

// Quote is one A-share quote. Price is nil when the upstream reported no
// usable price at all (not even a previous close).
type Quote struct {
	Code         string
	Name         string
	Price        *float64
	ChangeAmount *float64
	ChangePct    *float64
}

// QuoteResult pairs a requested code with its quote or failure. A slice of
// these preserves the configured code order.
type QuoteResult struct {
	Code  string
	Quote *Quote
	Err   error
}

// eastmoney returns f-field values as numbers or "-" when the market has no
// data, so the payload is decoded loosely.
type quoteResponse struct {
	Data map[string]any `json:"data"`
}

// NormalizeCode validates a stock code and derives the eastmoney secid.
//
// Explicit rule: "sh"/"sz" prefixes are authoritative; bare six-digit codes
// starting with 5, 6 or 9 map to Shanghai, everything else to Shenzhen.
// The secid market segment is "1" for Shanghai and "0" for Shenzhen.
func NormalizeCode(raw string) (normalized, secid string, err error) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if code == "" {
		return "", "", fmt.Errorf("empty stock code")
	}

	var market, digits string
	switch {
	case prefixedCode.MatchString(code):
		market, digits = code[:2], code[2:]
	case bareCode.MatchString(code):
		digits = code
		if strings.HasPrefix(digits, "5") || strings.HasPrefix(digits, "6") || strings.HasPrefix(digits, "9") {
			market = "sh"
		} else {
			market = "sz"
		}
	default:
		return "", "", fmt.Errorf("unsupported stock code format: %q", raw)
	}

	segment := "0"
	if market == "sh" {
		segment = "1"
	}
	return market + digits, segment + "." + digits, nil
}

// Fetcher retrieves A-share quotes from the eastmoney push2 API
type Fetcher struct {
	client *resty.Client
	logger zerolog.Logger
}

// NewFetcher creates an A-share quote fetcher
func NewFetcher(baseURL string, limiter *rate.Limiter) *Fetcher {
	return &Fetcher{
		client: fetcher.NewHTTPClient(baseURL, limiter),
		logger: log.With().Str("component", "equity").Logger(),
	}
}

// Fetch retrieves a quote per code. Each code is resolved independently; a
// failure becomes that code's QuoteResult while the rest still resolve.
// Output order matches input order.
func (f *Fetcher) Fetch(ctx context.Context, codes []string) []QuoteResult {
	results := make([]QuoteResult, 0, len(codes))
	for _, code := range codes {
		quote, err := f.fetchOne(ctx, code)
		if err != nil {
			f.logger.Warn().Err(err).Str("code", code).Msg("quote fetch failed")
		}
		results = append(results, QuoteResult{Code: code, Quote: quote, Err: err})
	}
	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, code string) (*Quote, error) {
	normalized, secid, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	var result quoteResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"secid":  secid,
			"fields": "f43,f57,f58,f60,f169,f170",
		}).
		SetResult(&result).
		Get("/api/qt/stock/get")
	if err != nil {
		return nil, fmt.Errorf("fetching quote for %s: %w", normalized, err)
	}
	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(resp.StatusCode())
	}
	if result.Data == nil {
		return nil, fetcher.NewValidationError("empty quote data")
	}

	name := asString(result.Data["f58"])
	if name == "" {
		name = strings.ToUpper(normalized)
	}

	quote := &Quote{
		Code: strings.ToUpper(normalized),
		Name: name,
		// Price fields arrive scaled by 100
		Price:        scaledFloat(result.Data["f43"], 100),
		ChangeAmount: scaledFloat(result.Data["f169"], 100),
		ChangePct:    scaledFloat(result.Data["f170"], 100),
	}

	// Outside trading hours the live price may be absent; fall back to the
	// previous close so the line still carries a number.
	if quote.Price == nil {
		quote.Price = scaledFloat(result.Data["f60"], 100)
	}

	return quote, nil
}

// scaledFloat converts an eastmoney field value to a float divided by scale.
// Numbers, numeric strings and nothing else; "-" and empty mean no data.
func scaledFloat(v any, scale float64) *float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" || trimmed == "-" {
			return nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	f /= scale
	return &f
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
