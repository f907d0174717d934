package backtesting

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"argusBot/internal/domain"
	"argusBot/internal/ports"
)

type paperOrder struct {
	symbol string
	order  domain.PendingOrder
}

// PaperExecution accepts every order and keeps working orders in memory.
type PaperExecution struct {
	mu        sync.Mutex
	orders    map[domain.OrderHandle]paperOrder
	submitted int
	canceled  int
	closed    int
}

// NewPaperExecution creates an empty paper venue.
func NewPaperExecution() *PaperExecution {
	return &PaperExecution{orders: make(map[domain.OrderHandle]paperOrder)}
}

func (p *PaperExecution) SubmitPendingOrder(ctx context.Context, symbol string, order domain.PendingOrder) (domain.OrderHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	handle := domain.OrderHandle("paper-" + order.ID)
	if order.ID == "" {
		handle = domain.OrderHandle(fmt.Sprintf("paper-%d", p.submitted+1))
	}
	p.orders[handle] = paperOrder{symbol: symbol, order: order}
	p.submitted++
	return handle, nil
}

func (p *PaperExecution) CancelOrder(ctx context.Context, symbol string, handle domain.OrderHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.orders[handle]; !ok {
		return fmt.Errorf("CancelOrder failed: %w: %s", ports.ErrOrderNotFound, handle)
	}
	delete(p.orders, handle)
	p.canceled++
	return nil
}

func (p *PaperExecution) ClosePosition(ctx context.Context, symbol string, handle domain.OrderHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.orders[handle]; !ok {
		return fmt.Errorf("ClosePosition failed: %w: %s", ports.ErrPositionNotFound, handle)
	}
	delete(p.orders, handle)
	p.closed++
	return nil
}

// Settle forgets the order that produced a trade closed by its own stop or target.
func (p *PaperExecution) Settle(setupID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for h, o := range p.orders {
		if o.order.ID == setupID {
			delete(p.orders, h)
		}
	}
}

// OpenPositions is always empty: the engine tracks fills itself in replay.
func (p *PaperExecution) OpenPositions(ctx context.Context) ([]domain.VenuePosition, error) {
	return nil, nil
}

func (p *PaperExecution) OpenOrders(ctx context.Context) ([]domain.VenueOrder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.VenueOrder, 0, len(p.orders))
	for h, o := range p.orders {
		out = append(out, domain.VenueOrder{
			Symbol: o.symbol,
			Handle: h,
			Side:   o.order.Direction.EntrySide(),
			Type:   "LIMIT",
			Price:  o.order.EntryPrice,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out, nil
}

// Counts returns how many orders were submitted, canceled and closed.
func (p *PaperExecution) Counts() (submitted, canceled, closed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitted, p.canceled, p.closed
}
