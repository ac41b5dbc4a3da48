// Package notify relays order notifications to the configured messaging
// channel.
package notify

import (
	"context"

	"resepku/pkg/logger"
)

// Sender delivers one plain-text notification. Implementations own their
// timeout and retry behavior; callers treat any returned error as delivery
// failure.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// LogSender is the fallback when no bot is configured. Orders still succeed;
// they just land in the log.
type LogSender struct{}

func (LogSender) Send(_ context.Context, text string) error {
	logger.Sugar.Infof("ORDER (no relay configured):\n%s", text)
	return nil
}
