// Package news implements the economic-calendar trading guard.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"argusBot/internal/ports"
)

// DefaultCalendarURL is the weekly ForexFactory calendar feed.
const DefaultCalendarURL = "https://nfs.faireconomy.media/ff_calendar_thisweek.json"

var impactLevels = map[string]int{"High": 3, "Medium": 2, "Low": 1}

// ImpactLevel maps an impact label to its rank. Unknown labels rank 0.
func ImpactLevel(impact string) int {
	return impactLevels[impact]
}

// Event is a scheduled calendar release.
type Event struct {
	Title   string    `json:"title"`
	Country string    `json:"country"`
	Impact  string    `json:"impact"`
	Time    time.Time `json:"date"`
}

// Config configures a Guard.
type Config struct {
	URL      string        // Calendar feed, DefaultCalendarURL when empty
	CacheTTL time.Duration // How long a filtered day stays cached
	Timeout  time.Duration // HTTP timeout
}

// Guard answers whether trading is safe around high-impact events.
type Guard struct {
	httpClient *http.Client
	url        string
	ttl        time.Duration
	cache      EventCache
	logger     ports.Logger
	now        func() time.Time
}

// NewGuard creates a calendar guard. A nil cache uses an in-memory one.
func NewGuard(cfg Config, cache EventCache, logger ports.Logger) (*Guard, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for news guard")
	}
	if cfg.URL == "" {
		cfg.URL = DefaultCalendarURL
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Guard{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		ttl:        cfg.CacheTTL,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// IsSafeToTrade reports false when now is within ± bufferMinutes of a
// relevant event today. A failed fetch reports safe together with the error.
func (g *Guard) IsSafeToTrade(ctx context.Context, currencies []string, minImpact string, bufferMinutes int) (bool, error) {
	if len(currencies) == 0 {
		return true, nil
	}
	now := g.now().UTC()
	events, err := g.TodaysEvents(ctx, now, currencies, minImpact)
	if err != nil {
		return true, err
	}
	buffer := time.Duration(bufferMinutes) * time.Minute
	for _, ev := range events {
		if !now.Before(ev.Time.Add(-buffer)) && !now.After(ev.Time.Add(buffer)) {
			g.logger.Info(ctx, "IsSafeToTrade: inside news window", map[string]interface{}{
				"event": ev.Title, "country": ev.Country, "eventTime": ev.Time.Format(time.RFC3339),
			})
			return false, nil
		}
	}
	return true, nil
}

// TodaysEvents returns the events of now's UTC day for the currencies at or
// above minImpact, ascending by time.
func (g *Guard) TodaysEvents(ctx context.Context, now time.Time, currencies []string, minImpact string) ([]Event, error) {
	op := "TodaysEvents"
	key := cacheKey(now, currencies, minImpact)

	events, err := g.cache.Get(ctx, key)
	if err == nil {
		return events, nil
	}
	if !errors.Is(err, ports.ErrCacheMiss) {
		g.logger.Warn(ctx, op+": cache read failed", map[string]interface{}{"error": err.Error()})
	}

	week, err := g.fetch(ctx)
	if err != nil {
		g.logger.Error(ctx, err, op+": calendar fetch failed")
		return nil, err
	}
	events = filterEvents(week, now, currencies, minImpact)
	if err := g.cache.Set(ctx, key, events, g.ttl); err != nil {
		g.logger.Warn(ctx, op+": cache write failed", map[string]interface{}{"error": err.Error()})
	}
	g.logger.Info(ctx, op+": calendar loaded", map[string]interface{}{"relevant": len(events), "week": len(week)})
	return events, nil
}

func (g *Guard) fetch(ctx context.Context) ([]Event, error) {
	op := "fetchCalendar"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w: %w", op, ports.ErrNewsUnavailable, err)
	}
	req.Header.Set("User-Agent", "argusBot/1.0")
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w: %w", op, ports.ErrNewsUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s failed: %w: status %d", op, ports.ErrNewsUnavailable, resp.StatusCode)
	}
	var week []Event
	if err := json.NewDecoder(resp.Body).Decode(&week); err != nil {
		return nil, fmt.Errorf("%s failed: %w: decode: %w", op, ports.ErrNewsUnavailable, err)
	}
	return week, nil
}

func filterEvents(week []Event, now time.Time, currencies []string, minImpact string) []Event {
	minLevel, ok := impactLevels[minImpact]
	if !ok {
		minLevel = impactLevels["High"]
	}
	want := make(map[string]bool, len(currencies))
	for _, c := range currencies {
		want[strings.ToUpper(c)] = true
	}
	y, m, d := now.UTC().Date()

	out := make([]Event, 0)
	for _, ev := range week {
		ey, em, ed := ev.Time.UTC().Date()
		if ey != y || em != m || ed != d {
			continue
		}
		if !want[strings.ToUpper(ev.Country)] || ImpactLevel(ev.Impact) < minLevel {
			continue
		}
		ev.Time = ev.Time.UTC()
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

func cacheKey(now time.Time, currencies []string, minImpact string) string {
	cs := make([]string, len(currencies))
	for i, c := range currencies {
		cs[i] = strings.ToUpper(c)
	}
	sort.Strings(cs)
	return now.UTC().Format(time.DateOnly) + "|" + strings.Join(cs, ",") + "|" + minImpact
}
