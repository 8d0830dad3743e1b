package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for a single brief run. It is built once
// at startup from environment variables and never mutated afterwards.
type Config struct {
	// Delivery credentials
	TelegramBotToken  string
	TelegramChatID    string
	ServerChanSendKey string
	DingTalkWebhook   string
	DingTalkSecret    string

	// Weather location. When both coordinates are set, geocoding is skipped.
	CityName  string
	Latitude  *float64
	Longitude *float64

	Timezone string

	// Market data selection
	StockCodes    []string
	CryptoSymbols []string

	// Optional gold position. Total cost takes precedence over per-gram
	// cost when both are configured.
	GoldHoldingGrams   *float64
	GoldTotalCostCNY   *float64
	GoldCostPerGramCNY *float64

	DryRun   bool
	LogLevel string

	// Base URLs for upstream endpoints (configurable for testing)
	GeocodingBaseURL    string
	ForecastBaseURL     string
	EastmoneyBaseURL    string
	CoinGeckoBaseURL    string
	BinanceBaseURL      string
	GateioBaseURL       string
	GoldAPIBaseURL      string
	ExchangeRateBaseURL string
	TelegramBaseURL     string
	ServerChanBaseURL   string
}

// Load reads configuration from environment variables.
//
// Expected environment variables:
//   - TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID (required unless DRY_RUN)
//   - SERVERCHAN_SENDKEY, DINGTALK_WEBHOOK, DINGTALK_SECRET (optional relays)
//   - CITY_NAME, WEATHER_LATITUDE, WEATHER_LONGITUDE, TIMEZONE
//   - A_STOCK_CODES (comma-separated), CRYPTO_SYMBOLS (comma-separated)
//   - GOLD_HOLDING_GRAMS, GOLD_TOTAL_COST_CNY, GOLD_COST_PER_GRAM_CNY
//   - DRY_RUN, LOG_LEVEL
//   - *_BASE_URL overrides for every upstream (optional, default production)
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Defaults for everything optional
	v.SetDefault("city_name", "Shanghai")
	v.SetDefault("timezone", "Asia/Shanghai")
	v.SetDefault("a_stock_codes", "600519,002605,sh000001")
	v.SetDefault("crypto_symbols", "BTC")
	v.SetDefault("log_level", "info")

	v.SetDefault("geocoding_base_url", "https://geocoding-api.open-meteo.com/v1")
	v.SetDefault("forecast_base_url", "https://api.open-meteo.com/v1")
	v.SetDefault("eastmoney_base_url", "https://push2.eastmoney.com")
	v.SetDefault("coingecko_base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("binance_base_url", "https://api.binance.com")
	v.SetDefault("gateio_base_url", "https://api.gateio.ws/api/v4")
	v.SetDefault("goldapi_base_url", "https://api.gold-api.com")
	v.SetDefault("exchangerate_base_url", "https://open.er-api.com/v6")
	v.SetDefault("serverchan_base_url", "https://sctapi.ftqq.com")

	// Bind environment variables for credentials and data selection
	v.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram_chat_id", "TELEGRAM_CHAT_ID")
	v.BindEnv("serverchan_sendkey", "SERVERCHAN_SENDKEY")
	v.BindEnv("dingtalk_webhook", "DINGTALK_WEBHOOK")
	v.BindEnv("dingtalk_secret", "DINGTALK_SECRET")
	v.BindEnv("city_name", "CITY_NAME")
	v.BindEnv("weather_latitude", "WEATHER_LATITUDE")
	v.BindEnv("weather_longitude", "WEATHER_LONGITUDE")
	v.BindEnv("timezone", "TIMEZONE")
	v.BindEnv("a_stock_codes", "A_STOCK_CODES")
	v.BindEnv("crypto_symbols", "CRYPTO_SYMBOLS")
	v.BindEnv("gold_holding_grams", "GOLD_HOLDING_GRAMS")
	v.BindEnv("gold_total_cost_cny", "GOLD_TOTAL_COST_CNY")
	v.BindEnv("gold_cost_per_gram_cny", "GOLD_COST_PER_GRAM_CNY")
	v.BindEnv("dry_run", "DRY_RUN")
	v.BindEnv("log_level", "LOG_LEVEL")

	// Bind environment variables for base URLs
	v.BindEnv("geocoding_base_url", "GEOCODING_BASE_URL")
	v.BindEnv("forecast_base_url", "FORECAST_BASE_URL")
	v.BindEnv("eastmoney_base_url", "EASTMONEY_BASE_URL")
	v.BindEnv("coingecko_base_url", "COINGECKO_BASE_URL")
	v.BindEnv("binance_base_url", "BINANCE_BASE_URL")
	v.BindEnv("gateio_base_url", "GATEIO_BASE_URL")
	v.BindEnv("goldapi_base_url", "GOLDAPI_BASE_URL")
	v.BindEnv("exchangerate_base_url", "EXCHANGERATE_BASE_URL")
	v.BindEnv("telegram_base_url", "TELEGRAM_BASE_URL")
	v.BindEnv("serverchan_base_url", "SERVERCHAN_BASE_URL")

	cfg := &Config{
		TelegramBotToken:  strings.TrimSpace(v.GetString("telegram_bot_token")),
		TelegramChatID:    strings.TrimSpace(v.GetString("telegram_chat_id")),
		ServerChanSendKey: strings.TrimSpace(v.GetString("serverchan_sendkey")),
		DingTalkWebhook:   strings.TrimSpace(v.GetString("dingtalk_webhook")),
		DingTalkSecret:    strings.TrimSpace(v.GetString("dingtalk_secret")),

		CityName: strings.TrimSpace(v.GetString("city_name")),
		Timezone: strings.TrimSpace(v.GetString("timezone")),

		StockCodes:    splitList(v.GetString("a_stock_codes")),
		CryptoSymbols: splitList(v.GetString("crypto_symbols")),

		DryRun:   v.GetBool("dry_run"),
		LogLevel: v.GetString("log_level"),

		GeocodingBaseURL:    v.GetString("geocoding_base_url"),
		ForecastBaseURL:     v.GetString("forecast_base_url"),
		EastmoneyBaseURL:    v.GetString("eastmoney_base_url"),
		CoinGeckoBaseURL:    v.GetString("coingecko_base_url"),
		BinanceBaseURL:      v.GetString("binance_base_url"),
		GateioBaseURL:       v.GetString("gateio_base_url"),
		GoldAPIBaseURL:      v.GetString("goldapi_base_url"),
		ExchangeRateBaseURL: v.GetString("exchangerate_base_url"),
		TelegramBaseURL:     v.GetString("telegram_base_url"),
		ServerChanBaseURL:   v.GetString("serverchan_base_url"),
	}

	var err error
	if cfg.Latitude, err = optionalFloat(v, "weather_latitude", "WEATHER_LATITUDE"); err != nil {
		return nil, err
	}
	if cfg.Longitude, err = optionalFloat(v, "weather_longitude", "WEATHER_LONGITUDE"); err != nil {
		return nil, err
	}
	if cfg.GoldHoldingGrams, err = optionalFloat(v, "gold_holding_grams", "GOLD_HOLDING_GRAMS"); err != nil {
		return nil, err
	}
	if cfg.GoldTotalCostCNY, err = optionalFloat(v, "gold_total_cost_cny", "GOLD_TOTAL_COST_CNY"); err != nil {
		return nil, err
	}
	if cfg.GoldCostPerGramCNY, err = optionalFloat(v, "gold_cost_per_gram_cny", "GOLD_COST_PER_GRAM_CNY"); err != nil {
		return nil, err
	}

	// Delivery credentials are only required when we actually deliver
	if !cfg.DryRun {
		var missing []string
		if cfg.TelegramBotToken == "" {
			missing = append(missing, "TELEGRAM_BOT_TOKEN")
		}
		if cfg.TelegramChatID == "" {
			missing = append(missing, "TELEGRAM_CHAT_ID")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
		}
	}

	return cfg, nil
}

// splitList splits a comma- or whitespace-separated list, dropping empties.
func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// optionalFloat parses an optional float environment variable. An empty or
// unset value yields nil; a malformed value is a configuration error.
func optionalFloat(v *viper.Viper, key, envName string) (*float64, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid number: %q", envName, raw)
	}
	return &f, nil
}
