package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dailybrief/internal/config"
	"dailybrief/internal/crypto"
	"dailybrief/internal/digest"
	"dailybrief/internal/equity"
	"dailybrief/internal/gold"
	"dailybrief/internal/notify"
	"dailybrief/internal/ratelimit"
	"dailybrief/internal/weather"
)

const digestTitle = "Daily Brief"

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("configuration error")
		return 1
	}
	setupLogger(cfg.LogLevel)

	// Cancel in-flight fetches on interrupt so the scheduler sees a clean exit
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn().Msg("received interrupt signal, cancelling")
		cancel()
	}()

	text := collectDigest(ctx, cfg, ratelimit.New(), time.Now())

	if cfg.DryRun {
		fmt.Println(text)
		log.Info().Msg("dry run, skipping delivery")
		return 0
	}

	senders, err := buildSenders(cfg)
	if err != nil {
		log.Error().Err(err).Msg("notifier setup failed")
		return 1
	}

	if failed := deliver(ctx, senders, text); failed > 0 {
		return 1
	}
	return 0
}

// deliver pushes the digest to every channel and returns how many failed.
// One broken channel never blocks the others.
func deliver(ctx context.Context, senders []notify.Sender, text string) int {
	failed := 0
	for _, s := range senders {
		if err := s.Send(ctx, digestTitle, text); err != nil {
			log.Error().Err(err).Str("channel", s.Name()).Msg("delivery failed")
			failed++
			continue
		}
		log.Info().Str("channel", s.Name()).Msg("digest delivered")
	}
	return failed
}

// collectDigest runs every fetcher in sequence and renders the digest.
// Each category's failure is downgraded to its placeholder line; this
// function always produces a full message.
func collectDigest(ctx context.Context, cfg *config.Config, limits *ratelimit.Limiter, now time.Time) string {
	weatherFetcher := weather.NewFetcher(
		cfg.GeocodingBaseURL,
		cfg.ForecastBaseURL,
		limits.Get(ratelimit.APIOpenMeteo),
	)
	equityFetcher := equity.NewFetcher(cfg.EastmoneyBaseURL, limits.Get(ratelimit.APIEastmoney))
	goldFetcher := gold.NewFetcher(
		[]gold.SpotProvider{
			gold.NewPAXGProvider(cfg.CoinGeckoBaseURL, limits.Get(ratelimit.APICoinGecko)),
			gold.NewSpotAPIProvider(cfg.GoldAPIBaseURL, limits.Get(ratelimit.APIGoldAPI)),
		},
		cfg.ExchangeRateBaseURL,
		limits.Get(ratelimit.APIExchangeRate),
	)
	cryptoFetcher := crypto.NewFetcher([]crypto.Provider{
		crypto.NewCoinGeckoProvider(cfg.CoinGeckoBaseURL, limits.Get(ratelimit.APICoinGecko)),
		crypto.NewBinanceProvider(cfg.BinanceBaseURL, limits.Get(ratelimit.APIBinance)),
		crypto.NewGateioProvider(cfg.GateioBaseURL, limits.Get(ratelimit.APIGateio)),
	})

	var in digest.Input
	in.Weather, in.WeatherErr = weatherFetcher.Fetch(ctx, cfg.CityName, cfg.Latitude, cfg.Longitude, cfg.Timezone)
	if in.WeatherErr != nil {
		log.Warn().Err(in.WeatherErr).Msg("weather fetch failed")
	}
	in.Equities = equityFetcher.Fetch(ctx, cfg.StockCodes)
	in.Gold, in.GoldErr = goldFetcher.Fetch(ctx, cfg.GoldHoldingGrams, cfg.GoldTotalCostCNY, cfg.GoldCostPerGramCNY)
	if in.GoldErr != nil {
		log.Warn().Err(in.GoldErr).Msg("gold fetch failed")
	}
	in.Crypto = cryptoFetcher.Fetch(ctx, cfg.CryptoSymbols)

	return digest.Render(cfg.Timezone, now, in)
}

// buildSenders assembles the configured delivery channels. Telegram is
// always present by the time we get here; config.Load guarantees its
// credentials outside dry-run.
func buildSenders(cfg *config.Config) ([]notify.Sender, error) {
	telegram, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramBaseURL)
	if err != nil {
		return nil, err
	}

	senders := []notify.Sender{telegram}
	if cfg.ServerChanSendKey != "" {
		senders = append(senders, notify.NewServerChan(cfg.ServerChanSendKey, cfg.ServerChanBaseURL))
	}
	if cfg.DingTalkWebhook != "" {
		senders = append(senders, notify.NewDingTalk(cfg.DingTalkWebhook, cfg.DingTalkSecret))
	}
	return senders, nil
}

func setupLogger(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
