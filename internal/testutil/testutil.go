// Package testutil provides shared test doubles and helpers
package testutil

import "context"

// MockSender is a mock implementation of notify.Sender for testing
type MockSender struct {
	NameValue string
	SendFunc  func(ctx context.Context, title, text string) error
	Sent      []string
}

// Name implements the Sender interface
func (m *MockSender) Name() string { return m.NameValue }

// Send implements the Sender interface, recording every delivered text
func (m *MockSender) Send(ctx context.Context, title, text string) error {
	m.Sent = append(m.Sent, text)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, title, text)
	}
	return nil
}

// FloatPtr returns a pointer to the given float, for optional fields
func FloatPtr(f float64) *float64 { return &f }
