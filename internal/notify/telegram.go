package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"resepku/pkg/logger"
)

// attemptTimeouts bounds each delivery attempt; later attempts get more room
// before the relay gives up for good.
var attemptTimeouts = []time.Duration{8 * time.Second, 12 * time.Second, 15 * time.Second}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("telegram api returned status %d", e.code)
}

// TelegramSender posts sendMessage calls to the Bot API. Timeouts, 429 and
// 5xx responses are retried across the bounded attempt schedule; other
// non-2xx statuses fail immediately.
type TelegramSender struct {
	BotToken string
	ChatID   string
	BaseURL  string
	Client   *http.Client
}

func NewTelegramSender(botToken, chatID string) *TelegramSender {
	return &TelegramSender{
		BotToken: botToken,
		ChatID:   chatID,
		BaseURL:  "https://api.telegram.org",
		Client:   &http.Client{},
	}
}

func (s *TelegramSender) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": s.ChatID,
		"text":    text,
	})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", s.BaseURL, s.BotToken)

	var lastErr error
	for attempt, timeout := range attemptTimeouts {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		err := s.attempt(attemptCtx, url, payload)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) {
			return err
		}
		logger.Sugar.Warnf("Order relay attempt %d/%d failed: %v", attempt+1, len(attemptTimeouts), err)
	}
	return lastErr
}

func (s *TelegramSender) attempt(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode}
	}
	return nil
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	// Network errors and per-attempt timeouts are retryable by definition.
	return true
}
