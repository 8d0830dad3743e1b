package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Telegram sends the digest through the Telegram bot API
type Telegram struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	channel string
	logger  zerolog.Logger
}

// NewTelegram creates a Telegram sender. chatID accepts a numeric chat id or
// an @channel name. baseURL overrides the API host for testing; empty means
// the production endpoint.
func NewTelegram(token, chatID, baseURL string) (*Telegram, error) {
	endpoint := tgbotapi.APIEndpoint
	if baseURL != "" {
		endpoint = strings.TrimRight(baseURL, "/") + "/bot%s/%s"
	}

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}

	t := &Telegram{
		bot:    bot,
		logger: log.With().Str("component", "telegram").Logger(),
	}
	if strings.HasPrefix(chatID, "@") {
		t.channel = chatID
	} else {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
		}
		t.chatID = id
	}
	return t, nil
}

// Name implements Sender
func (t *Telegram) Name() string { return "telegram" }

// Send implements Sender. The title is folded into the text by the digest
// already, so only the text is delivered.
func (t *Telegram) Send(ctx context.Context, title, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if t.channel != "" {
		msg.ChannelUsername = t.channel
	}

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	t.logger.Debug().Int("chars", len(text)).Msg("digest delivered")
	return nil
}
