package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argusBot/internal/domain"
	"argusBot/internal/utils"
)

type mockRepo struct {
	created []domain.Trade
}

func (m *mockRepo) CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error) {
	m.created = append(m.created, *trade)
	return int64(len(m.created)), nil
}

func (m *mockRepo) FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	return nil, nil
}

func (m *mockRepo) FindAll(ctx context.Context) ([]*domain.Trade, error) { return nil, nil }

func (m *mockRepo) CountTodayBySymbol(ctx context.Context, symbol string) (int, error) {
	return 0, nil
}

func (m *mockRepo) GetTotalProfit(ctx context.Context) (float64, error) { return 0, nil }

func TestJournal(t *testing.T) {
	state := NewState()
	repo := &mockRepo{}
	path := filepath.Join(t.TempDir(), "trades.csv")
	j := NewJournal(&mockLogger{}, state, repo, path, nil)

	var titles []string
	j.notify = func(title, message string) { titles = append(titles, title) }
	ctx := context.Background()

	order := domain.PendingOrder{ID: "s-1", Direction: domain.Long, EntryPrice: 100, StopLoss: 99, TakeProfit: 102}
	j.SignalCreated(ctx, "BTCUSDT", order)
	require.NotNil(t, state.Snapshot().LastSignal)
	assert.Equal(t, "s-1", state.Snapshot().LastSignal.Order.ID)

	trade := domain.Trade{
		SetupID: "s-1", Symbol: "BTCUSDT", Direction: domain.Long, EntryPrice: 100, StopLoss: 99, TakeProfit: 102,
		EntryTime: time.Date(2024, 3, 4, 8, 5, 0, 0, time.UTC), ClosePrice: 102,
		CloseTime: time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC), PnL: 200, CloseReason: domain.CloseReasonTakeProfit,
	}
	j.TradeClosed(ctx, trade, 10200)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "s-1", repo.created[0].SetupID)
	logged, err := utils.ReadTradesCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.Trade{trade}, logged)
	assert.Equal(t, []string{"New signal: BTCUSDT", "Trade closed: BTCUSDT"}, titles)
}
