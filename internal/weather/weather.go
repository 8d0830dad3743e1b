package weather

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"resty.dev/v3"

	"dailybrief/internal/fetcher"
)

// weatherCodes maps WMO weather interpretation codes to short descriptions
var weatherCodes = map[int]string{
	0:  "clear",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "rime fog",
	51: "light drizzle",
	53: "drizzle",
	55: "dense drizzle",
	56: "freezing drizzle",
	57: "dense freezing drizzle",
	61: "light rain",
	63: "rain",
	65: "heavy rain",
	66: "freezing rain",
	67: "heavy freezing rain",
	71: "light snow",
	73: "snow",
	75: "heavy snow",
	77: "snow grains",
	80: "light showers",
	81: "showers",
	82: "heavy showers",
	85: "snow showers",
	86: "heavy snow showers",
	95: "thunderstorm",
	96: "thunderstorm with light hail",
	99: "thunderstorm with heavy hail",
}

// Report holds current conditions for the configured location
type Report struct {
	City        string
	Description string
	TempC       float64
	FeelsLikeC  *float64
	HighC       *float64
	LowC        *float64
	WindKmh     *float64
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature2m       *float64 `json:"temperature_2m"`
		ApparentTemperature *float64 `json:"apparent_temperature"`
		WeatherCode         *int     `json:"weather_code"`
		WindSpeed10m        *float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Daily struct {
		Temperature2mMax []float64 `json:"temperature_2m_max"`
		Temperature2mMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// Fetcher resolves a location and retrieves current conditions from
// open-meteo. Single source, no fallback chain.
type Fetcher struct {
	geocoding *resty.Client
	forecast  *resty.Client
	logger    zerolog.Logger
}

// NewFetcher creates a weather fetcher against the given open-meteo endpoints
func NewFetcher(geocodingBaseURL, forecastBaseURL string, limiter *rate.Limiter) *Fetcher {
	return &Fetcher{
		geocoding: fetcher.NewHTTPClient(geocodingBaseURL, limiter),
		forecast:  fetcher.NewHTTPClient(forecastBaseURL, limiter),
		logger:    log.With().Str("component", "weather").Logger(),
	}
}

// Fetch retrieves current conditions. The city name is geocoded first unless
// both coordinates are provided. A geocoding miss fails the whole section.
func (f *Fetcher) Fetch(ctx context.Context, city string, lat, lon *float64, timezone string) (*Report, error) {
	resolvedName := city
	if lat == nil || lon == nil {
		var err error
		lat, lon, resolvedName, err = f.resolveCity(ctx, city)
		if err != nil {
			return nil, fmt.Errorf("geocoding %q: %w", city, err)
		}
	}

	var result forecastResponse
	resp, err := f.forecast.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":      fmt.Sprintf("%.4f", *lat),
			"longitude":     fmt.Sprintf("%.4f", *lon),
			"current":       "temperature_2m,apparent_temperature,weather_code,wind_speed_10m",
			"daily":         "temperature_2m_max,temperature_2m_min",
			"forecast_days": "1",
			"timezone":      timezone,
		}).
		SetResult(&result).
		Get("/forecast")
	if err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	if result.Current.Temperature2m == nil {
		return nil, fetcher.NewValidationError("no current temperature in response")
	}

	report := &Report{
		City:        resolvedName,
		Description: describeCode(result.Current.WeatherCode),
		TempC:       *result.Current.Temperature2m,
		FeelsLikeC:  result.Current.ApparentTemperature,
		WindKmh:     result.Current.WindSpeed10m,
	}
	if len(result.Daily.Temperature2mMax) > 0 {
		report.HighC = &result.Daily.Temperature2mMax[0]
	}
	if len(result.Daily.Temperature2mMin) > 0 {
		report.LowC = &result.Daily.Temperature2mMin[0]
	}

	f.logger.Debug().Str("city", report.City).Float64("temp_c", report.TempC).Msg("fetched weather")
	return report, nil
}

// resolveCity turns a city name into coordinates via the geocoding API
func (f *Fetcher) resolveCity(ctx context.Context, city string) (*float64, *float64, string, error) {
	var result geocodingResponse
	resp, err := f.geocoding.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"name":   city,
			"count":  "1",
			"format": "json",
		}).
		SetResult(&result).
		Get("/search")
	if err != nil {
		return nil, nil, "", err
	}
	if !resp.IsSuccess() {
		return nil, nil, "", fetcher.ClassifyHTTPError(resp.StatusCode())
	}
	if len(result.Results) == 0 {
		return nil, nil, "", fetcher.NewValidationError("city not found")
	}

	hit := result.Results[0]
	name := hit.Name
	if name == "" {
		name = city
	}
	return &hit.Latitude, &hit.Longitude, name, nil
}

func describeCode(code *int) string {
	if code == nil {
		return "unknown"
	}
	if desc, ok := weatherCodes[*code]; ok {
		return desc
	}
	return fmt.Sprintf("weather code %d", *code)
}
