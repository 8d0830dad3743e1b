// Package notify delivers the rendered digest. Telegram is the primary
// channel; ServerChan and DingTalk are optional relays carrying the same
// text. Sends are fire-and-forget with no retry.
package notify

import "context"

// Sender delivers one digest to one channel
type Sender interface {
	Name() string
	Send(ctx context.Context, title, text string) error
}
