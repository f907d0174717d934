package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"argusBot/internal/ports"
)

// TapLogger forwards to a Logger and mirrors Info and above into State's log ring.
type TapLogger struct {
	next  ports.Logger
	state *State
}

// NewTapLogger wraps next.
func NewTapLogger(next ports.Logger, state *State) *TapLogger {
	return &TapLogger{next: next, state: state}
}

func (l *TapLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.next.Debug(ctx, msg, fields...)
}

func (l *TapLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.next.Info(ctx, msg, fields...)
	l.state.AddLog("info", render(msg, fields))
}

func (l *TapLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.next.Warn(ctx, msg, fields...)
	l.state.AddLog("warn", render(msg, fields))
}

func (l *TapLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.next.Error(ctx, err, msg, fields...)
	line := render(msg, fields)
	if err != nil {
		line += " error=" + err.Error()
	}
	l.state.AddLog("error", line)
}

func render(msg string, fields []map[string]interface{}) string {
	if len(fields) == 0 || len(fields[0]) == 0 {
		return msg
	}
	keys := make([]string, 0, len(fields[0]))
	for k := range fields[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[0][k])
	}
	return b.String()
}
