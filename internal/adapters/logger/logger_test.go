package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"Error", LevelError},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLoggerTo(&buf, LevelInfo, "engine")
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	l.Info(ctx, "placed", map[string]interface{}{"symbol": "EURUSD", "entry": 1.202})
	l.With("api").Error(ctx, errors.New("boom"), "failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] engine: placed | entry=1.202 symbol=EURUSD")
	assert.Contains(t, out, "[ERROR] api: failed | error: boom")
}

func TestZeroLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewZeroLogger(&buf, LevelWarn).With("news")
	ctx := context.Background()

	l.Info(ctx, "hidden")
	l.Warn(ctx, "calendar stale", map[string]interface{}{"age": 3})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var event map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
	assert.Equal(t, "warn", event["level"])
	assert.Equal(t, "news", event["component"])
	assert.Equal(t, "calendar stale", event["message"])
	assert.Equal(t, float64(3), event["age"])
}
