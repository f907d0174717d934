package engine

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"argusBot/internal/ports"
)

// DefaultKillzones is used when no sessions are configured.
const DefaultKillzones = "London Open=02:00-05:00,NY AM=07:00-10:00,NY PM=13:30-16:00"

// Clock is a time of day in minutes after midnight.
type Clock int

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, ports.ErrConfigurationError)
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, ports.ErrConfigurationError)
	}
	return Clock(h*60 + m), nil
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func clockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// SessionWindow is a named half-open interval [Start, End) of the trading day.
// A window whose end is before its start wraps past midnight.
type SessionWindow struct {
	Name  string
	Start Clock
	End   Clock
}

// Contains reports whether the time of day falls inside the window.
func (w SessionWindow) Contains(c Clock) bool {
	if w.Start <= w.End {
		return c >= w.Start && c < w.End
	}
	return c >= w.Start || c < w.End
}

// ParseSessions parses "Name=HH:MM-HH:MM,Name=HH:MM-HH:MM".
func ParseSessions(s string) ([]SessionWindow, error) {
	var windows []SessionWindow
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, span, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("session %q must be Name=HH:MM-HH:MM: %w", item, ports.ErrConfigurationError)
		}
		start, end, ok := strings.Cut(span, "-")
		if !ok {
			return nil, fmt.Errorf("session %q must be Name=HH:MM-HH:MM: %w", item, ports.ErrConfigurationError)
		}
		w, err := newWindow(name, start, end)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("no sessions configured: %w", ports.ErrConfigurationError)
	}
	return windows, nil
}

type sessionFile struct {
	Sessions []struct {
		Name  string `yaml:"name"`
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"sessions"`
}

// LoadSessionsFile reads session windows from a YAML file:
//
//	sessions:
//	  - name: NY AM
//	    start: "07:00"
//	    end: "10:00"
func LoadSessionsFile(path string) ([]SessionWindow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions file %s: %w", path, err)
	}
	var file sessionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sessions file %s: %w: %w", path, ports.ErrConfigurationError, err)
	}
	windows := make([]SessionWindow, 0, len(file.Sessions))
	for _, s := range file.Sessions {
		w, err := newWindow(s.Name, s.Start, s.End)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("sessions file %s has no sessions: %w", path, ports.ErrConfigurationError)
	}
	return windows, nil
}

func newWindow(name, start, end string) (SessionWindow, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SessionWindow{}, fmt.Errorf("session name is empty: %w", ports.ErrConfigurationError)
	}
	s, err := ParseClock(start)
	if err != nil {
		return SessionWindow{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return SessionWindow{}, err
	}
	if s == e {
		return SessionWindow{}, fmt.Errorf("session %q is empty: %w", name, ports.ErrConfigurationError)
	}
	return SessionWindow{Name: name, Start: s, End: e}, nil
}

// Sessions evaluates session windows in a reference timezone.
type Sessions struct {
	Windows  []SessionWindow
	Location *time.Location
}

// NewSessions returns sessions evaluated in loc (UTC when nil).
func NewSessions(windows []SessionWindow, loc *time.Location) Sessions {
	if loc == nil {
		loc = time.UTC
	}
	return Sessions{Windows: windows, Location: loc}
}

func (s Sessions) local(now time.Time) time.Time {
	if s.Location == nil {
		return now.UTC()
	}
	return now.In(s.Location)
}

// Active returns the first window containing now.
func (s Sessions) Active(now time.Time) (SessionWindow, bool) {
	c := clockOf(s.local(now))
	for _, w := range s.Windows {
		if w.Contains(c) {
			return w, true
		}
	}
	return SessionWindow{}, false
}

// Day returns the calendar date of now in the reference timezone.
func (s Sessions) Day(now time.Time) string {
	return s.local(now).Format(time.DateOnly)
}

// MarketClosed reports the weekend break: Friday from 17:00 until Sunday 17:00.
func (s Sessions) MarketClosed(now time.Time) bool {
	t := s.local(now)
	switch t.Weekday() {
	case time.Saturday:
		return true
	case time.Friday:
		return t.Hour() >= 17
	case time.Sunday:
		return t.Hour() < 17
	default:
		return false
	}
}

// AfterEOD reports whether now is a weekday at or past the close time.
func (s Sessions) AfterEOD(now time.Time, closeAt Clock) bool {
	t := s.local(now)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return clockOf(t) >= closeAt
}
