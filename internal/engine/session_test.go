package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argusBot/internal/ports"
)

func TestParseSessions(t *testing.T) {
	windows, err := ParseSessions(DefaultKillzones)
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Equal(t, SessionWindow{Name: "NY PM", Start: 13*60 + 30, End: 16 * 60}, windows[2])
	assert.Equal(t, "13:30", windows[2].Start.String())

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "missing name separator", input: "NY AM 07:00-10:00"},
		{name: "missing range", input: "NY AM=07:00"},
		{name: "bad hour", input: "NY AM=25:00-26:00"},
		{name: "empty window", input: "NY AM=07:00-07:00"},
		{name: "empty name", input: "=07:00-10:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSessions(tt.input)
			assert.ErrorIs(t, err, ports.ErrConfigurationError)
		})
	}
}

func TestLoadSessionsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.yaml")
	content := "sessions:\n  - name: Asia\n    start: \"20:00\"\n    end: \"00:00\"\n  - name: NY AM\n    start: \"07:00\"\n    end: \"10:00\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	windows, err := LoadSessionsFile(path)
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, "Asia", windows[0].Name)
	assert.Equal(t, Clock(0), windows[0].End)

	require.NoError(t, os.WriteFile(path, []byte("sessions: []\n"), 0o600))
	_, err = LoadSessionsFile(path)
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = LoadSessionsFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSessions_Active(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	windows, err := ParseSessions("NY AM=07:00-10:00,Asia=20:00-00:00")
	require.NoError(t, err)
	s := NewSessions(windows, ny)

	tests := []struct {
		name   string
		at     time.Time
		want   string
		active bool
	}{
		{name: "start is inclusive", at: time.Date(2024, 3, 4, 7, 0, 0, 0, ny), want: "NY AM", active: true},
		{name: "end is exclusive", at: time.Date(2024, 3, 4, 10, 0, 0, 0, ny)},
		{name: "utc input is converted", at: time.Date(2024, 3, 4, 13, 30, 0, 0, time.UTC), want: "NY AM", active: true},
		{name: "wrapping window", at: time.Date(2024, 3, 4, 23, 59, 0, 0, ny), want: "Asia", active: true},
		{name: "after wrap end", at: time.Date(2024, 3, 5, 0, 0, 0, 0, ny)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := s.Active(tt.at)
			assert.Equal(t, tt.active, ok)
			assert.Equal(t, tt.want, w.Name)
		})
	}
}

func TestSessions_MarketClosedAndEOD(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	s := NewSessions(nil, ny)
	eod, err := ParseClock("16:45")
	require.NoError(t, err)

	tests := []struct {
		name     string
		at       time.Time
		closed   bool
		afterEOD bool
	}{
		{name: "friday afternoon", at: time.Date(2024, 3, 8, 16, 59, 0, 0, ny), afterEOD: true},
		{name: "friday close", at: time.Date(2024, 3, 8, 17, 0, 0, 0, ny), closed: true, afterEOD: true},
		{name: "saturday", at: time.Date(2024, 3, 9, 12, 0, 0, 0, ny), closed: true},
		{name: "sunday before open", at: time.Date(2024, 3, 10, 16, 0, 0, 0, ny), closed: true},
		{name: "sunday open", at: time.Date(2024, 3, 10, 17, 0, 0, 0, ny)},
		{name: "monday morning", at: time.Date(2024, 3, 11, 9, 0, 0, 0, ny)},
		{name: "monday eod", at: time.Date(2024, 3, 11, 16, 45, 0, 0, ny), afterEOD: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.closed, s.MarketClosed(tt.at))
			assert.Equal(t, tt.afterEOD, s.AfterEOD(tt.at, eod))
		})
	}

	assert.Equal(t, "2024-03-10", s.Day(time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC)))
}

func TestLiquidityMemory(t *testing.T) {
	m := NewLiquidityMemory()
	assert.False(t, m.Contains(1.2))
	m.Add(1.3)
	m.Add(1.2)
	m.Add(1.2)
	assert.True(t, m.Contains(1.2))
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []float64{1.2, 1.3}, m.Levels())
	m.Clear()
	assert.Zero(t, m.Len())
	assert.False(t, m.Contains(1.2))
}
