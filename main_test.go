package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dailybrief/internal/config"
	"dailybrief/internal/notify"
	"dailybrief/internal/testutil"
)

func TestDeliver_AllChannels(t *testing.T) {
	first := &testutil.MockSender{NameValue: "first"}
	second := &testutil.MockSender{NameValue: "second"}

	failed := deliver(context.Background(), []notify.Sender{first, second}, "the digest")
	if failed != 0 {
		t.Fatalf("deliver() = %d failures, want 0", failed)
	}
	for _, m := range []*testutil.MockSender{first, second} {
		if len(m.Sent) != 1 || m.Sent[0] != "the digest" {
			t.Errorf("sender %s received %v, want the digest once", m.NameValue, m.Sent)
		}
	}
}

func TestDeliver_BrokenChannelDoesNotBlockOthers(t *testing.T) {
	broken := &testutil.MockSender{
		NameValue: "broken",
		SendFunc: func(ctx context.Context, title, text string) error {
			return errors.New("relay down")
		},
	}
	healthy := &testutil.MockSender{NameValue: "healthy"}

	failed := deliver(context.Background(), []notify.Sender{broken, healthy}, "the digest")
	if failed != 1 {
		t.Fatalf("deliver() = %d failures, want 1", failed)
	}
	if len(healthy.Sent) != 1 {
		t.Errorf("healthy channel should still be attempted, got %v", healthy.Sent)
	}
}

func TestBuildSenders(t *testing.T) {
	// tgbotapi verifies the token on construction
	tgServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true, "result": {"id": 1, "is_bot": true, "first_name": "brief", "username": "briefbot"}}`))
	}))
	defer tgServer.Close()

	base := config.Config{
		TelegramBotToken: "123:abc",
		TelegramChatID:   "42",
		TelegramBaseURL:  tgServer.URL,
	}

	t.Run("telegram only", func(t *testing.T) {
		cfg := base
		senders, err := buildSenders(&cfg)
		if err != nil {
			t.Fatalf("buildSenders() failed: %v", err)
		}
		if len(senders) != 1 || senders[0].Name() != "telegram" {
			t.Errorf("got %d senders, want just telegram", len(senders))
		}
	})

	t.Run("all relays configured", func(t *testing.T) {
		cfg := base
		cfg.ServerChanSendKey = "SCTKEY"
		cfg.DingTalkWebhook = "https://example.com/robot/send"
		senders, err := buildSenders(&cfg)
		if err != nil {
			t.Fatalf("buildSenders() failed: %v", err)
		}
		names := make([]string, len(senders))
		for i, s := range senders {
			names[i] = s.Name()
		}
		if got := strings.Join(names, ","); got != "telegram,serverchan,dingtalk" {
			t.Errorf("senders = %s, want telegram,serverchan,dingtalk", got)
		}
	})

	t.Run("bad chat id", func(t *testing.T) {
		cfg := base
		cfg.TelegramChatID = "not-a-chat"
		if _, err := buildSenders(&cfg); err == nil {
			t.Error("buildSenders() expected error for invalid chat id, got nil")
		}
	})
}
