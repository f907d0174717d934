package app

import (
	"sync"
	"time"

	"argusBot/internal/domain"
	"argusBot/internal/engine"
)

// MaxLogEntries bounds the log ring kept in State.
const MaxLogEntries = 200

// LogEntry is one line of the observer log.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// SignalInfo describes the most recent pending order.
type SignalInfo struct {
	Symbol string              `json:"symbol"`
	Order  domain.PendingOrder `json:"order"`
	At     time.Time           `json:"at"`
}

// Snapshot is a consistent copy of State.
type Snapshot struct {
	Running    bool                `json:"running"`
	Paused     bool                `json:"paused"`
	Status     string              `json:"status"`
	Risk       RiskSettings        `json:"risk"`
	Session    string              `json:"session,omitempty"`
	Balance    float64             `json:"balance"`
	DailyPnL   float64             `json:"dailyPnl"`
	LastSignal *SignalInfo         `json:"lastSignal,omitempty"`
	Symbols    []engine.SymbolView `json:"symbols"`
	Logs       []LogEntry          `json:"logs"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// RiskSettings are the run parameters an operator can change live.
type RiskSettings struct {
	RiskPercent    float64 `json:"riskPercent"`
	RewardMultiple float64 `json:"rewardMultiple"`
}

// State is shared between the live loop and observers.
type State struct {
	mu         sync.Mutex
	running    bool
	paused     bool
	risk       RiskSettings
	status     string
	session    string
	balance    float64
	dailyPnL   float64
	lastSignal *SignalInfo
	symbols    []engine.SymbolView
	logs       []LogEntry // ring buffer, next write at logNext
	logNext    int
	updatedAt  time.Time
	now        func() time.Time
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		status: "starting",
		logs:   make([]LogEntry, 0, MaxLogEntries),
		now:    time.Now,
	}
}

func (s *State) touch() { s.updatedAt = s.now() }

// SetRunning sets the running flag and status message.
func (s *State) SetRunning(running bool, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
	s.status = status
	s.touch()
}

// SetStatus replaces the status message.
func (s *State) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.touch()
}

// SetControls records the pause flag and the active risk settings.
func (s *State) SetControls(paused bool, risk RiskSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
	s.risk = risk
	s.touch()
}

// SetAccount records balance and daily PnL.
func (s *State) SetAccount(balance, dailyPnL float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = balance
	s.dailyPnL = dailyPnL
	s.touch()
}

// SetSymbols stores the latest per-symbol views and the active session name.
func (s *State) SetSymbols(views []engine.SymbolView, session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols = views
	s.session = session
	s.touch()
}

// SetLastSignal records the most recent pending order.
func (s *State) SetLastSignal(symbol string, order domain.PendingOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSignal = &SignalInfo{Symbol: symbol, Order: order, At: s.now()}
	s.touch()
}

// AddLog appends to the log ring, dropping the oldest entry when full.
func (s *State) AddLog(level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := LogEntry{Time: s.now(), Level: level, Message: message}
	if len(s.logs) < MaxLogEntries {
		s.logs = append(s.logs, e)
		return
	}
	s.logs[s.logNext] = e
	s.logNext = (s.logNext + 1) % MaxLogEntries
}

// Logs returns the log ring oldest first.
func (s *State) Logs() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderedLogs()
}

func (s *State) orderedLogs() []LogEntry {
	out := make([]LogEntry, 0, len(s.logs))
	out = append(out, s.logs[s.logNext:]...)
	return append(out, s.logs[:s.logNext]...)
}

// Snapshot copies every field under a single lock.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Running:   s.running,
		Paused:    s.paused,
		Status:    s.status,
		Risk:      s.risk,
		Session:   s.session,
		Balance:   s.balance,
		DailyPnL:  s.dailyPnL,
		Symbols:   append([]engine.SymbolView(nil), s.symbols...),
		Logs:      s.orderedLogs(),
		UpdatedAt: s.updatedAt,
	}
	if s.lastSignal != nil {
		sig := *s.lastSignal
		snap.LastSignal = &sig
	}
	return snap
}
