// Package notify delivers chat notifications.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"argusBot/internal/ports"
)

const telegramAPI = "https://api.telegram.org"

// TelegramConfig holds Telegram configuration.
type TelegramConfig struct {
	BotToken string
	ChatID   string
	Enabled  bool
	BaseURL  string // API root, telegramAPI when empty
}

// Telegram sends notifications through the Bot API sendMessage method.
type Telegram struct {
	botToken string
	chatID   string
	enabled  bool
	baseURL  string
	client   *http.Client
}

// NewTelegram creates a notifier. It is disabled unless token and chat ID are set.
func NewTelegram(cfg TelegramConfig) *Telegram {
	base := cfg.BaseURL
	if base == "" {
		base = telegramAPI
	}
	return &Telegram{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		enabled:  cfg.Enabled && cfg.BotToken != "" && cfg.ChatID != "",
		baseURL:  base,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether messages are actually sent.
func (t *Telegram) Enabled() bool { return t.enabled }

// Notify posts a Markdown message with a bold title.
func (t *Telegram) Notify(ctx context.Context, title, message string) error {
	if !t.enabled {
		return nil
	}
	op := "Telegram.Notify"

	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       fmt.Sprintf("*%s*\n\n%s", title, message),
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("%s failed: %w: %w", op, ports.ErrNotifyFailed, err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s failed: %w: %w", op, ports.ErrNotifyFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s failed: %w: %w", op, ports.ErrNotifyFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s failed: %w: status %d", op, ports.ErrNotifyFailed, resp.StatusCode)
	}
	return nil
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(context.Context, string, string) error { return nil }
