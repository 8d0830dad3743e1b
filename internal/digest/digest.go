// Package digest renders fetch results into the single text message that
// gets delivered. Rendering is a pure function of its inputs and never fails:
// a failed category contributes a placeholder line instead of data.
package digest

import (
	"fmt"
	"strings"
	"time"

	"dailybrief/internal/crypto"
	"dailybrief/internal/equity"
	"dailybrief/internal/gold"
	"dailybrief/internal/weather"
)

const rule = "----------------"

// Input carries every category's outcome. For weather and gold the
// value/error pair is the whole section; equities and crypto fail per entry.
type Input struct {
	Weather    *weather.Report
	WeatherErr error
	Equities   []equity.QuoteResult
	Gold       *gold.Report
	GoldErr    error
	Crypto     []crypto.QuoteResult
}

// Render produces the digest text. Section order is fixed: weather,
// equities, gold, crypto. The timestamp is rendered in the given zone,
// falling back to UTC when the zone cannot be loaded.
func Render(zone string, now time.Time, in Input) string {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		zone = "UTC"
		loc = time.UTC
	}

	lines := []string{
		"Daily Brief",
		fmt.Sprintf("%s (%s)", now.In(loc).Format("2006-01-02 15:04"), zone),
		rule,
		"[Weather]",
	}
	lines = append(lines, weatherLines(in.Weather, in.WeatherErr)...)

	lines = append(lines, rule, "[A-Shares]")
	lines = append(lines, equityLines(in.Equities)...)

	lines = append(lines, rule, "[Gold]")
	lines = append(lines, goldLines(in.Gold, in.GoldErr)...)

	lines = append(lines, rule, "[Crypto]")
	lines = append(lines, cryptoLines(in.Crypto)...)

	return strings.Join(lines, "\n")
}

func weatherLines(rep *weather.Report, err error) []string {
	if err != nil {
		return []string{fmt.Sprintf("weather unavailable: %v", err)}
	}

	line := fmt.Sprintf("%s: %s, %.1f°C", rep.City, rep.Description, rep.TempC)
	if rep.FeelsLikeC != nil {
		line += fmt.Sprintf(" (feels like %.1f°C)", *rep.FeelsLikeC)
	}
	if rep.HighC != nil && rep.LowC != nil {
		line += fmt.Sprintf(", high/low %.1f/%.1f°C", *rep.HighC, *rep.LowC)
	}
	if rep.WindKmh != nil {
		line += fmt.Sprintf(", wind %.1f km/h", *rep.WindKmh)
	}
	return []string{line}
}

func equityLines(results []equity.QuoteResult) []string {
	if len(results) == 0 {
		return []string{"no stock codes configured"}
	}

	lines := make([]string, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			lines = append(lines, fmt.Sprintf("- %s: quote failed (%v)", res.Code, res.Err))
			continue
		}
		lines = append(lines, equityLine(res.Quote))
	}
	return lines
}

func equityLine(q *equity.Quote) string {
	if q.Price == nil {
		return fmt.Sprintf("- %s (%s): no price data", q.Name, q.Code)
	}
	line := fmt.Sprintf("- %s (%s): %.2f CNY", q.Name, q.Code, *q.Price)
	if q.ChangePct == nil {
		return line
	}

	amount := "N/A"
	if q.ChangeAmount != nil {
		amount = signed(*q.ChangeAmount)
	}
	return fmt.Sprintf("%s (%s%%, %s)", line, signed(*q.ChangePct), amount)
}

func goldLines(rep *gold.Report, err error) []string {
	if err != nil {
		return []string{fmt.Sprintf("gold unavailable: %v", err)}
	}

	lines := []string{
		fmt.Sprintf("Gold: %.2f CNY/g ($%.2f/oz)", rep.CNYPerGram, rep.USDPerOunce),
	}
	pos := rep.Position
	if pos == nil {
		return lines
	}

	lines = append(lines, fmt.Sprintf("Position: %.1f g, value %.2f CNY", pos.HoldingGrams, pos.MarketValue))
	if pos.TotalCost != nil {
		lines = append(lines, fmt.Sprintf("Cost: %.2f CNY", *pos.TotalCost))
	}
	if pos.Profit != nil {
		line := fmt.Sprintf("P/L: %s CNY", signed(*pos.Profit))
		if pos.ProfitPct != nil {
			line += fmt.Sprintf(" (%s%%)", signed(*pos.ProfitPct))
		}
		lines = append(lines, line)
	}
	return lines
}

func cryptoLines(results []crypto.QuoteResult) []string {
	if len(results) == 0 {
		return []string{"no crypto symbols configured"}
	}

	lines := make([]string, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			lines = append(lines, fmt.Sprintf("- %s: quote failed (%v)", res.Symbol, res.Err))
			continue
		}

		q := res.Quote
		line := fmt.Sprintf("- %s: $%.2f", q.Symbol, q.PriceUSD)
		if q.PriceCNY != nil {
			line += fmt.Sprintf(" | ¥%.2f", *q.PriceCNY)
		}
		if q.Change24h != nil {
			line += fmt.Sprintf(" (%s%% / 24h)", signed(*q.Change24h))
		}
		lines = append(lines, line)
	}
	return lines
}

// signed formats a value with an explicit sign on positives
func signed(f float64) string {
	if f > 0 {
		return fmt.Sprintf("+%.2f", f)
	}
	return fmt.Sprintf("%.2f", f)
}
