package crypto

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCoinGeckoProvider_Quote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "bitcoin" {
			t.Errorf("ids = %q, want bitcoin", got)
		}
		if got := r.URL.Query().Get("vs_currencies"); got != "usd,cny" {
			t.Errorf("vs_currencies = %q, want usd,cny", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin": {"usd": 65432.1, "cny": 470000.5, "usd_24h_change": 1.23}}`))
	}))
	defer server.Close()

	p := NewCoinGeckoProvider(server.URL, nil)
	q, err := p.Quote(context.Background(), "btc")
	if err != nil {
		t.Fatalf("Quote() returned unexpected error: %v", err)
	}

	if q.Symbol != "BTC" {
		t.Errorf("Symbol = %q, want BTC", q.Symbol)
	}
	if q.PriceUSD != 65432.1 {
		t.Errorf("PriceUSD = %v, want 65432.1", q.PriceUSD)
	}
	if q.PriceCNY == nil || *q.PriceCNY != 470000.5 {
		t.Errorf("PriceCNY = %v, want 470000.5", q.PriceCNY)
	}
	if q.Change24h == nil || *q.Change24h != 1.23 {
		t.Errorf("Change24h = %v, want 1.23", q.Change24h)
	}
}

func TestCoinGeckoProvider_UnknownSymbol(t *testing.T) {
	p := NewCoinGeckoProvider("http://127.0.0.1:1", nil)
	if _, err := p.Quote(context.Background(), "NOPE"); err == nil {
		t.Error("Quote() expected error for unknown symbol, got nil")
	}
}

func TestBinanceProvider_Quote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol = %q, want BTCUSDT", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lastPrice": "65001.20", "priceChangePercent": "-0.45"}`))
	}))
	defer server.Close()

	p := NewBinanceProvider(server.URL, nil)
	q, err := p.Quote(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("Quote() returned unexpected error: %v", err)
	}
	if q.PriceUSD != 65001.20 {
		t.Errorf("PriceUSD = %v, want 65001.20", q.PriceUSD)
	}
	if q.Change24h == nil || *q.Change24h != -0.45 {
		t.Errorf("Change24h = %v, want -0.45", q.Change24h)
	}
	if q.PriceCNY != nil {
		t.Error("PriceCNY should be nil from Binance")
	}
}

func TestBinanceProvider_EmptyPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lastPrice": "", "priceChangePercent": ""}`))
	}))
	defer server.Close()

	p := NewBinanceProvider(server.URL, nil)
	if _, err := p.Quote(context.Background(), "BTC"); err == nil {
		t.Error("Quote() expected error for empty price, got nil")
	}
}

func TestGateioProvider_Quote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("currency_pair"); got != "BTC_USDT" {
			t.Errorf("currency_pair = %q, want BTC_USDT", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"last": "64998.7", "change_percentage": "0.88"}]`))
	}))
	defer server.Close()

	p := NewGateioProvider(server.URL, nil)
	q, err := p.Quote(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("Quote() returned unexpected error: %v", err)
	}
	if q.PriceUSD != 64998.7 {
		t.Errorf("PriceUSD = %v, want 64998.7", q.PriceUSD)
	}
	if q.Change24h == nil || *q.Change24h != 0.88 {
		t.Errorf("Change24h = %v, want 0.88", q.Change24h)
	}
}

func TestGateioProvider_EmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	p := NewGateioProvider(server.URL, nil)
	if _, err := p.Quote(context.Background(), "BTC"); err == nil {
		t.Error("Quote() expected error for empty ticker list, got nil")
	}
}
