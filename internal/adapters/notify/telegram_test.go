package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argusBot/internal/ports"
)

func TestTelegram_Notify(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram(TelegramConfig{BotToken: "TOKEN", ChatID: "42", Enabled: true, BaseURL: srv.URL})
	require.True(t, tg.Enabled())
	require.NoError(t, tg.Notify(context.Background(), "New signal", "BTCUSDT long @ 65000"))

	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "Markdown", got["parse_mode"])
	assert.Equal(t, "*New signal*\n\nBTCUSDT long @ 65000", got["text"])
}

func TestTelegram_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tg := NewTelegram(TelegramConfig{BotToken: "bad", ChatID: "42", Enabled: true, BaseURL: srv.URL})
	err := tg.Notify(context.Background(), "t", "m")
	assert.ErrorIs(t, err, ports.ErrNotifyFailed)
}

func TestTelegram_Disabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  TelegramConfig
	}{
		{"flag off", TelegramConfig{BotToken: "x", ChatID: "1"}},
		{"no token", TelegramConfig{ChatID: "1", Enabled: true}},
		{"no chat", TelegramConfig{BotToken: "x", Enabled: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := NewTelegram(tt.cfg)
			assert.False(t, tg.Enabled())
			assert.NoError(t, tg.Notify(context.Background(), "t", "m"))
		})
	}
}
