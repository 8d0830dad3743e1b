package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"resty.dev/v3"

	"dailybrief/internal/fetcher"
)

// ServerChan relays the digest to WeChat through the ServerChan push service
type ServerChan struct {
	sendKey string
	client  *resty.Client
	logger  zerolog.Logger
}

type serverChanResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewServerChan creates a ServerChan sender
func NewServerChan(sendKey, baseURL string) *ServerChan {
	return &ServerChan{
		sendKey: sendKey,
		client:  fetcher.NewHTTPClient(baseURL, nil),
		logger:  log.With().Str("component", "serverchan").Logger(),
	}
}

// Name implements Sender
func (s *ServerChan) Name() string { return "serverchan" }

// Send implements Sender
func (s *ServerChan) Send(ctx context.Context, title, text string) error {
	var result serverChanResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"title": title,
			"desp":  text,
		}).
		SetResult(&result).
		Post(fmt.Sprintf("/%s.send", s.sendKey))
	if err != nil {
		return fmt.Errorf("serverchan send failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("serverchan send failed: %w", fetcher.ClassifyHTTPError(resp.StatusCode()))
	}
	if result.Code != 0 {
		return fmt.Errorf("serverchan API error: %s", result.Message)
	}

	s.logger.Debug().Msg("digest relayed")
	return nil
}
