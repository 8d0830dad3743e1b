package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"resty.dev/v3"

	"dailybrief/internal/fetcher"
)

// DingTalk relays the digest to a DingTalk group robot webhook. When a
// secret is configured, each request carries the timestamp+HMAC signature
// the robot security setting requires.
type DingTalk struct {
	webhook string
	secret  string
	client  *resty.Client
	logger  zerolog.Logger
	now     func() time.Time
}

type dingTalkResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// NewDingTalk creates a DingTalk sender for the given webhook URL
func NewDingTalk(webhook, secret string) *DingTalk {
	return &DingTalk{
		webhook: webhook,
		secret:  secret,
		client:  fetcher.NewHTTPClient("", nil),
		logger:  log.With().Str("component", "dingtalk").Logger(),
		now:     time.Now,
	}
}

// Name implements Sender
func (d *DingTalk) Name() string { return "dingtalk" }

// Send implements Sender
func (d *DingTalk) Send(ctx context.Context, title, text string) error {
	target := d.webhook
	if d.secret != "" {
		target = SignWebhook(d.webhook, d.secret, d.now())
	}

	var result dingTalkResponse
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"msgtype": "markdown",
			"markdown": map[string]string{
				"title": title,
				"text":  text,
			},
		}).
		SetResult(&result).
		Post(target)
	if err != nil {
		return fmt.Errorf("dingtalk send failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("dingtalk send failed: %w", fetcher.ClassifyHTTPError(resp.StatusCode()))
	}
	if result.ErrCode != 0 {
		return fmt.Errorf("dingtalk API error: %s", result.ErrMsg)
	}

	d.logger.Debug().Msg("digest relayed")
	return nil
}

// SignWebhook appends the timestamp and HMAC-SHA256 signature DingTalk
// expects: base64(hmac(secret, "<timestamp>\n<secret>")), URL-escaped.
func SignWebhook(webhook, secret string, at time.Time) string {
	timestamp := fmt.Sprintf("%d", at.UnixMilli())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "\n" + secret))
	sign := url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	sep := "?"
	if strings.Contains(webhook, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%stimestamp=%s&sign=%s", webhook, sep, timestamp, sign)
}
