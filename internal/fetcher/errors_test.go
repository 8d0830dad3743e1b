package fetcher

import (
	"errors"
	"strings"
	"testing"
)

func TestFetchError_Error(t *testing.T) {
	withStatus := &FetchError{Type: ErrorTypeServer, StatusCode: 503, Message: "server returned an error"}
	if got := withStatus.Error(); got != "server error (status 503): server returned an error" {
		t.Errorf("Error() = %q", got)
	}

	withoutStatus := &FetchError{Type: ErrorTypeValidation, Message: "no price in response"}
	if got := withoutStatus.Error(); got != "validation error: no price in response" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError(cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the wrapped cause")
	}
	if !err.Retryable {
		t.Error("network errors should be retryable")
	}
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		wantType  ErrorType
		retryable bool
	}{
		{429, ErrorTypeRateLimit, true},
		{500, ErrorTypeServer, true},
		{503, ErrorTypeServer, true},
		{400, ErrorTypeClient, false},
		{404, ErrorTypeClient, false},
	}
	for _, tt := range tests {
		err := ClassifyHTTPError(tt.status)
		if err.Type != tt.wantType {
			t.Errorf("ClassifyHTTPError(%d).Type = %s, want %s", tt.status, err.Type, tt.wantType)
		}
		if err.Retryable != tt.retryable {
			t.Errorf("ClassifyHTTPError(%d).Retryable = %v, want %v", tt.status, err.Retryable, tt.retryable)
		}
		if err.StatusCode != tt.status {
			t.Errorf("ClassifyHTTPError(%d).StatusCode = %d", tt.status, err.StatusCode)
		}
	}
}

func TestNewExhaustedError(t *testing.T) {
	err := NewExhaustedError(map[string]error{
		"primary":   errors.New("timeout"),
		"secondary": errors.New("no data"),
	}, []string{"primary", "secondary"})

	msg := err.Error()
	if !strings.Contains(msg, "all providers failed") {
		t.Errorf("message %q missing summary", msg)
	}
	// Providers appear in attempt order
	first := strings.Index(msg, "primary: timeout")
	second := strings.Index(msg, "secondary: no data")
	if first < 0 || second < 0 || first > second {
		t.Errorf("message %q should list providers in order", msg)
	}
	if err.Retryable {
		t.Error("exhausted chain should not be retryable")
	}
}
