package ratelimit

import (
	"context"
	"testing"
	"time"
)

var allAPIs = []API{
	APIOpenMeteo, APIEastmoney, APICoinGecko,
	APIBinance, APIGateio, APIGoldAPI, APIExchangeRate,
}

func TestNew_CoversEveryAPI(t *testing.T) {
	l := New()
	for _, api := range allAPIs {
		if l.Get(api) == nil {
			t.Errorf("New() has no limiter for %s", api)
		}
	}
}

func TestGet_UnknownAPI(t *testing.T) {
	if got := New().Get(API("nope")); got != nil {
		t.Errorf("Get() = %v for unknown API, want nil", got)
	}
}

func TestNewUnlimited_NeverBlocks(t *testing.T) {
	l := NewUnlimited()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 100; i++ {
		for _, api := range allAPIs {
			if err := l.Wait(ctx, api); err != nil {
				t.Fatalf("Wait(%s) failed: %v", api, err)
			}
		}
	}
}

func TestWait_CanceledContext(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Burst is already spent after one event; the second must observe the
	// canceled context instead of blocking.
	_ = l.Wait(context.Background(), APICoinGecko)
	if err := l.Wait(ctx, APICoinGecko); err == nil {
		t.Error("Wait() should fail once the context is canceled")
	}
}
