package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSignWebhook(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	signed := SignWebhook("https://example.com/robot/send?access_token=tok", "secret1", at)
	if !strings.Contains(signed, "&timestamp=1700000000000") {
		t.Errorf("signed URL %q missing timestamp", signed)
	}
	if !strings.Contains(signed, "&sign=") {
		t.Errorf("signed URL %q missing signature", signed)
	}
	if !strings.HasPrefix(signed, "https://example.com/robot/send?access_token=tok&") {
		t.Errorf("signed URL %q should keep the original query", signed)
	}

	// No query string yet: parameters start with "?"
	bare := SignWebhook("https://example.com/robot/send", "secret1", at)
	if !strings.Contains(bare, "?timestamp=1700000000000") {
		t.Errorf("signed URL %q should start its query with ?", bare)
	}

	// Different secrets must produce different signatures
	other := SignWebhook("https://example.com/robot/send?access_token=tok", "secret2", at)
	if signed == other {
		t.Error("different secrets produced identical signatures")
	}
}

func TestDingTalk_Send(t *testing.T) {
	var gotBody map[string]any
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errcode": 0, "errmsg": "ok"}`))
	}))
	defer server.Close()

	d := NewDingTalk(server.URL+"/robot/send?access_token=tok", "shh")
	if err := d.Send(context.Background(), "Daily Brief", "digest body"); err != nil {
		t.Fatalf("Send() returned unexpected error: %v", err)
	}

	if gotBody["msgtype"] != "markdown" {
		t.Errorf("msgtype = %v, want markdown", gotBody["msgtype"])
	}
	markdown, _ := gotBody["markdown"].(map[string]any)
	if markdown["title"] != "Daily Brief" || markdown["text"] != "digest body" {
		t.Errorf("markdown payload = %v", markdown)
	}

	if len(gotQuery["timestamp"]) == 0 || len(gotQuery["sign"]) == 0 {
		t.Errorf("signed request missing timestamp/sign params: %v", gotQuery)
	}
	if len(gotQuery["access_token"]) == 0 {
		t.Errorf("original query should be preserved: %v", gotQuery)
	}
}

func TestDingTalk_NoSecretSkipsSignature(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errcode": 0, "errmsg": "ok"}`))
	}))
	defer server.Close()

	d := NewDingTalk(server.URL+"/robot/send?access_token=tok", "")
	if err := d.Send(context.Background(), "Daily Brief", "digest body"); err != nil {
		t.Fatalf("Send() returned unexpected error: %v", err)
	}
	if len(gotQuery["sign"]) != 0 {
		t.Errorf("unsigned request should not carry a sign param: %v", gotQuery)
	}
}

func TestDingTalk_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errcode": 310000, "errmsg": "sign not match"}`))
	}))
	defer server.Close()

	d := NewDingTalk(server.URL+"/robot/send", "shh")
	if err := d.Send(context.Background(), "Daily Brief", "digest body"); err == nil {
		t.Fatal("Send() expected error for non-zero errcode, got nil")
	}
}
