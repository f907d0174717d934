// Package binanceclient adapts the Binance USDⓈ-M futures API to the engine's
// candle feed and execution ports.
package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"argusBot/internal/domain"
	"argusBot/internal/ports"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"
)

// Sizer computes order quantity from balance and stop distance.
type Sizer interface {
	PositionSize(balance, entry, stop float64) float64
}

// Client implements ports.CandleFeed and ports.Execution using the go-binance library.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
	sizer         Sizer
	quoteAsset    string
	tickSize      decimal.Decimal
	qtyStep       decimal.Decimal
	stopBuffer    decimal.Decimal
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	BaseURL    string // Overrides the production/testnet URL when set
	Logger     ports.Logger
	Sizer      Sizer
	QuoteAsset string  // Balance asset used for sizing, USDT by default
	TickSize   float64 // Price increment
	QtyStep    float64 // Quantity increment
	StopBuffer float64 // Points (in ticks) placed beyond the raw stop
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.TickSize <= 0 || cfg.QtyStep <= 0 {
		return nil, fmt.Errorf("tick size and quantity step must be positive: %w", ports.ErrConfigurationError)
	}
	if cfg.StopBuffer < 0 {
		return nil, fmt.Errorf("stop buffer must not be negative: %w", ports.ErrConfigurationError)
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Warn(context.Background(), "APIKey or SecretKey is empty. Client will only work for public endpoints.")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	// Set BaseURL directly instead of using global futures.UseTestnet
	switch {
	case cfg.BaseURL != "":
		client.BaseURL = cfg.BaseURL
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{"baseURL": client.BaseURL, "testnet": cfg.UseTestnet})

	quote := cfg.QuoteAsset
	if quote == "" {
		quote = "USDT"
	}
	tick := decimal.NewFromFloat(cfg.TickSize)
	return &Client{
		futuresClient: client,
		logger:        cfg.Logger,
		sizer:         cfg.Sizer,
		quoteAsset:    quote,
		tickSize:      tick,
		qtyStep:       decimal.NewFromFloat(cfg.QtyStep),
		stopBuffer:    decimal.NewFromFloat(cfg.StopBuffer).Mul(tick),
	}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		// Map specific Binance error codes to custom errors
		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp for this request is outside of the recvWindow
			mappedErr = ports.ErrTimeout // Or a specific timing error
		case -1022: // Signature for this request is not valid
			mappedErr = ports.ErrAuthenticationFailed
		case -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1121, -1125, -1127, -1128, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		case -2010: // New order rejected
			mappedErr = ports.ErrOrderPlacementFailed
		case -2011: // Cancel order rejected
			mappedErr = ports.ErrOrderCancelFailed
		case -2013: // Order does not exist
			mappedErr = ports.ErrOrderNotFound
		case -2014: // API-key format invalid
			mappedErr = ports.ErrInvalidAPIKeys
		case -2015: // Invalid API-key, IP, or permissions for action
			mappedErr = ports.ErrInvalidAPIKeys // Could also be PermissionDenied
		case -2019: // Margin is insufficient
			mappedErr = ports.ErrInsufficientFunds
		case -2022: // ReduceOnly Order is rejected
			mappedErr = ports.ErrOrderPlacementFailed // Or a more specific error
		case -3005: // Insufficient balance
			mappedErr = ports.ErrInsufficientFunds
		case -3041: // Position is not sufficient
			mappedErr = ports.ErrInsufficientFunds
		case -4003: // Qty not within permissible range
			mappedErr = ports.ErrInvalidRequest
		case -4014: // Price not within permissible range
			mappedErr = ports.ErrInvalidRequest
		case -4015: // Leverage is not valid
			mappedErr = ports.ErrInvalidRequest
		case -4044: // Position not found
			mappedErr = ports.ErrPositionNotFound
		case -4047: // Exceeded the maximum allowable position at current leverage.
			mappedErr = ports.ErrInsufficientFunds // Or a specific position limit error
		default:
			// General classification for unmapped API errors
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		// Default for other errors (e.g., parsing errors within the adapter)
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// SetServerTime synchronizes the client's time with the server's time.
func (c *Client) SetServerTime(ctx context.Context) error {
	op := "SetServerTime"
	_, err := c.futuresClient.NewSetServerTimeService().Do(ctx)
	if err != nil {
		return c.handleError(ctx, err, op)
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	if err := c.futuresClient.NewPingService().Do(ctx); err != nil {
		return c.handleError(ctx, fmt.Errorf("ping failed: %w", err), op)
	}
	return nil
}

// AccountBalance retrieves the wallet balance of the quote asset.
func (c *Client) AccountBalance(ctx context.Context) (float64, error) {
	op := "AccountBalance"
	account, err := c.futuresClient.NewGetAccountService().Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}

	for _, bal := range account.Assets {
		if bal.Asset == c.quoteAsset {
			balance, err := strconv.ParseFloat(bal.WalletBalance, 64)
			if err != nil {
				parseErr := fmt.Errorf("could not parse balance '%s' for asset %s: %w", bal.WalletBalance, c.quoteAsset, err)
				return 0, c.handleError(ctx, parseErr, op)
			}
			return balance, nil
		}
	}

	err = fmt.Errorf("asset %s not found in account balance: %w", c.quoteAsset, ports.ErrNotFound)
	return 0, c.handleError(ctx, err, op)
}

// Candles retrieves the most recent klines. The last one is the forming candle.
func (c *Client) Candles(ctx context.Context, symbol, timeframe string, count int) ([]domain.Candle, error) {
	op := "Candles"
	klines, err := c.futuresClient.NewKlinesService().Symbol(symbol).Interval(timeframe).Limit(count).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	return translateKlines(ctx, c, klines, op)
}

// CandlesRange fetches all klines for a symbol/interval between start and end time.
func (c *Client) CandlesRange(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]domain.Candle, error) {
	op := "CandlesRange"
	var all []domain.Candle
	const maxLimit = 1500
	from := start

	for {
		klines, err := c.futuresClient.NewKlinesService().
			Symbol(symbol).
			Interval(timeframe).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(maxLimit).
			Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(klines) == 0 {
			break
		}
		candles, err := translateKlines(ctx, c, klines, op)
		if err != nil {
			return nil, err
		}
		all = append(all, candles...)
		from = time.UnixMilli(klines[len(klines)-1].CloseTime + 1)
		if from.After(end) || len(klines) < maxLimit {
			break
		}
	}
	return all, nil
}

func translateKlines(ctx context.Context, c *Client, klines []*futures.Kline, op string) ([]domain.Candle, error) {
	candles := make([]domain.Candle, 0, len(klines))
	for _, bk := range klines {
		candle, err := translateBinanceKline(bk)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("failed to translate kline: %w", err), op)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// SubmitPendingOrder places a GTC limit entry with a STOP_MARKET stop and a
// TAKE_PROFIT_MARKET target, both closing the position. The stop is moved
// StopBuffer ticks beyond the raw extreme. If the protective orders cannot be
// placed the entry is canceled.
func (c *Client) SubmitPendingOrder(ctx context.Context, symbol string, order domain.PendingOrder) (domain.OrderHandle, error) {
	op := "SubmitPendingOrder"
	if c.sizer == nil {
		return "", fmt.Errorf("%s failed: %w: no position sizer configured", op, ports.ErrConfigurationError)
	}

	entry := c.roundPrice(order.EntryPrice)
	stop := c.bufferedStop(order.Direction, order.StopLoss)
	target := c.roundPrice(order.TakeProfit)

	balance, err := c.AccountBalance(ctx)
	if err != nil {
		return "", err
	}
	qty := c.roundQty(c.sizer.PositionSize(balance, entry.InexactFloat64(), stop.InexactFloat64()))
	if !qty.IsPositive() {
		return "", fmt.Errorf("%s failed: %w: quantity rounds to zero (balance %.2f)", op, ports.ErrInvalidRequest, balance)
	}

	entrySide := futures.SideType(order.Direction.EntrySide())
	exitSide := futures.SideType(order.Direction.ExitSide())

	entryOrder, err := c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(entrySide).
		Type(futures.OrderTypeLimit).
		TimeInForce(futures.TimeInForceTypeGTC).
		Quantity(qty.String()).
		Price(entry.String()).
		NewClientOrderID(clientID(order.ID, "e")).
		Do(ctx)
	if err != nil {
		return "", c.handleError(ctx, err, op)
	}

	stopOrder, err := c.placeCloseOrder(ctx, symbol, exitSide, futures.OrderTypeStopMarket, stop, clientID(order.ID, "s"))
	if err != nil {
		c.rollback(ctx, symbol, entryOrder.OrderID)
		return "", c.handleError(ctx, err, op+" stop")
	}
	targetOrder, err := c.placeCloseOrder(ctx, symbol, exitSide, futures.OrderTypeTakeProfitMarket, target, clientID(order.ID, "t"))
	if err != nil {
		c.rollback(ctx, symbol, entryOrder.OrderID, stopOrder.OrderID)
		return "", c.handleError(ctx, err, op+" target")
	}

	handle := encodeHandle(entryOrder.OrderID, stopOrder.OrderID, targetOrder.OrderID)
	c.logger.Info(ctx, op+" successful", map[string]interface{}{
		"symbol": symbol, "side": string(entrySide), "quantity": qty.String(), "entry": entry.String(),
		"stopLoss": stop.String(), "takeProfit": target.String(), "handle": string(handle),
	})
	return handle, nil
}

func (c *Client) placeCloseOrder(ctx context.Context, symbol string, side futures.SideType, typ futures.OrderType, price decimal.Decimal, clientOrderID string) (*futures.CreateOrderResponse, error) {
	return c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(side).
		Type(typ).
		StopPrice(price.String()).
		ClosePosition(true).
		WorkingType(futures.WorkingTypeMarkPrice).
		NewClientOrderID(clientOrderID).
		Do(ctx)
}

func (c *Client) rollback(ctx context.Context, symbol string, orderIDs ...int64) {
	for _, id := range orderIDs {
		if err := c.cancel(ctx, symbol, id); err != nil && !errors.Is(err, ports.ErrOrderNotFound) {
			c.logger.Error(ctx, err, "SubmitPendingOrder: rollback cancel failed", map[string]interface{}{"symbol": symbol, "orderID": id})
		}
	}
}

func (c *Client) cancel(ctx context.Context, symbol string, orderID int64) error {
	_, err := c.futuresClient.NewCancelOrderService().Symbol(symbol).OrderID(orderID).Do(ctx)
	if err != nil {
		return c.handleError(ctx, err, "CancelOrder")
	}
	return nil
}

// CancelOrder cancels the entry, stop and target referenced by the handle.
// Orders that no longer exist are skipped.
func (c *Client) CancelOrder(ctx context.Context, symbol string, handle domain.OrderHandle) error {
	op := "CancelOrder"
	ids, err := decodeHandle(handle)
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	// The protective legs stay in place unless the entry is known to be dead.
	if err := c.cancel(ctx, symbol, ids[0]); err != nil && !errors.Is(err, ports.ErrOrderNotFound) {
		return fmt.Errorf("%s failed: %w: %w", op, ports.ErrOrderCancelFailed, err)
	}
	entry, err := c.order(ctx, symbol, ids[0])
	if err != nil && !errors.Is(err, ports.ErrOrderNotFound) {
		return fmt.Errorf("%s failed: %w: %w", op, ports.ErrOrderCancelFailed, err)
	}
	if entry != nil && executed(entry) > 0 {
		return fmt.Errorf("%s failed: %w: entry %d already executed", op, ports.ErrOrderCancelFailed, ids[0])
	}
	for _, id := range ids[1:] {
		if err := c.cancel(ctx, symbol, id); err != nil && !errors.Is(err, ports.ErrOrderNotFound) {
			return fmt.Errorf("%s failed: %w: %w", op, ports.ErrOrderCancelFailed, err)
		}
	}
	c.logger.Info(ctx, op+" successful", map[string]interface{}{"symbol": symbol, "handle": string(handle)})
	return nil
}

// OrderState reports the venue side of an order group: whether the entry is
// still working, filled, or gone, and which protective leg closed the position.
func (c *Client) OrderState(ctx context.Context, symbol string, handle domain.OrderHandle) (domain.VenueState, error) {
	op := "OrderState"
	ids, err := decodeHandle(handle)
	if err != nil {
		return domain.VenueState{}, fmt.Errorf("%s failed: %w", op, err)
	}

	entry, err := c.order(ctx, symbol, ids[0])
	if errors.Is(err, ports.ErrOrderNotFound) {
		return domain.VenueState{Status: domain.VenueGone}, nil
	}
	if err != nil {
		return domain.VenueState{}, err
	}
	switch entry.Status {
	case futures.OrderStatusTypeNew:
		return domain.VenueState{Status: domain.VenueWorking}, nil
	case futures.OrderStatusTypeCanceled, futures.OrderStatusTypeRejected, futures.OrderStatusTypeExpired:
		if executed(entry) == 0 {
			return domain.VenueState{Status: domain.VenueGone}, nil
		}
	}

	state := domain.VenueState{Status: domain.VenueFilled, FillPrice: parseFloat(entry.AvgPrice)}
	legs := []domain.CloseReason{domain.CloseReasonStopLoss, domain.CloseReasonTakeProfit}
	for i, reason := range legs {
		leg, err := c.order(ctx, symbol, ids[i+1])
		if errors.Is(err, ports.ErrOrderNotFound) {
			continue
		}
		if err != nil {
			return domain.VenueState{}, err
		}
		if leg.Status == futures.OrderStatusTypeFilled {
			state.Status = domain.VenueClosed
			state.ExitReason = reason
			state.ExitPrice = parseFloat(leg.AvgPrice)
			return state, nil
		}
	}

	positions, err := c.futuresClient.NewGetPositionRiskService().Symbol(symbol).Do(ctx)
	if err != nil {
		return domain.VenueState{}, c.handleError(ctx, err, op)
	}
	for _, p := range positions {
		if _, ok := translatePosition(p); ok {
			return state, nil
		}
	}
	// Flattened outside the order group.
	state.Status = domain.VenueClosed
	state.ExitReason = domain.CloseReasonManual
	return state, nil
}

func (c *Client) order(ctx context.Context, symbol string, orderID int64) (*futures.Order, error) {
	o, err := c.futuresClient.NewGetOrderService().Symbol(symbol).OrderID(orderID).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, "GetOrder")
	}
	return o, nil
}

func executed(o *futures.Order) float64 {
	return parseFloat(o.ExecutedQuantity)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func (c *Client) ClosePosition(ctx context.Context, symbol string, handle domain.OrderHandle) error {
	op := "ClosePosition"
	ids, err := decodeHandle(handle)
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}

	positions, err := c.futuresClient.NewGetPositionRiskService().Symbol(symbol).Do(ctx)
	if err != nil {
		return c.handleError(ctx, err, op)
	}
	for _, p := range positions {
		vp, ok := translatePosition(p)
		if !ok {
			continue
		}
		if err := c.closeVenuePosition(ctx, vp); err != nil {
			return fmt.Errorf("%s failed: %w: %w", op, ports.ErrPositionCloseFailed, err)
		}
	}
	for _, id := range ids[1:] {
		if err := c.cancel(ctx, symbol, id); err != nil && !errors.Is(err, ports.ErrOrderNotFound) {
			c.logger.Warn(ctx, op+": protective order not canceled", map[string]interface{}{"symbol": symbol, "orderID": id, "error": err.Error()})
		}
	}
	return nil
}

// CloseVenuePosition flattens a position reported by OpenPositions.
func (c *Client) CloseVenuePosition(ctx context.Context, p domain.VenuePosition) error {
	if err := c.closeVenuePosition(ctx, p); err != nil {
		return fmt.Errorf("CloseVenuePosition failed: %w: %w", ports.ErrPositionCloseFailed, err)
	}
	return nil
}

func (c *Client) closeVenuePosition(ctx context.Context, p domain.VenuePosition) error {
	qty := c.roundQty(p.Quantity)
	if !qty.IsPositive() {
		return nil
	}
	_, err := c.futuresClient.NewCreateOrderService().
		Symbol(p.Symbol).
		Side(futures.SideType(p.Direction.ExitSide())).
		Type(futures.OrderTypeMarket).
		Quantity(qty.String()).
		ReduceOnly(true).
		Do(ctx)
	if err != nil {
		return c.handleError(ctx, err, "closeVenuePosition")
	}
	c.logger.Info(ctx, "closeVenuePosition successful", map[string]interface{}{"symbol": p.Symbol, "quantity": qty.String()})
	return nil
}

// CancelVenueOrder cancels a working order reported by OpenOrders.
func (c *Client) CancelVenueOrder(ctx context.Context, o domain.VenueOrder) error {
	id, err := strconv.ParseInt(string(o.Handle), 10, 64)
	if err != nil {
		return fmt.Errorf("CancelVenueOrder failed: %w: %w", ports.ErrInvalidRequest, err)
	}
	return c.cancel(ctx, o.Symbol, id)
}

// OpenPositions lists non-zero positions.
func (c *Client) OpenPositions(ctx context.Context) ([]domain.VenuePosition, error) {
	op := "OpenPositions"
	positions, err := c.futuresClient.NewGetPositionRiskService().Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	out := make([]domain.VenuePosition, 0)
	for _, p := range positions {
		if vp, ok := translatePosition(p); ok {
			out = append(out, vp)
		}
	}
	return out, nil
}

// OpenOrders lists working orders. Each order's handle is its venue ID.
func (c *Client) OpenOrders(ctx context.Context) ([]domain.VenueOrder, error) {
	op := "OpenOrders"
	orders, err := c.futuresClient.NewListOpenOrdersService().Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	out := make([]domain.VenueOrder, 0, len(orders))
	for _, o := range orders {
		price, _ := strconv.ParseFloat(o.Price, 64)
		if price == 0 {
			price, _ = strconv.ParseFloat(o.StopPrice, 64)
		}
		out = append(out, domain.VenueOrder{
			Symbol: o.Symbol,
			Handle: domain.OrderHandle(strconv.FormatInt(o.OrderID, 10)),
			Side:   domain.OrderSide(o.Side),
			Type:   string(o.Type),
			Price:  price,
		})
	}
	return out, nil
}

// --- Price and quantity helpers ---

func (c *Client) roundPrice(p float64) decimal.Decimal {
	return decimal.NewFromFloat(p).Div(c.tickSize).Round(0).Mul(c.tickSize)
}

func (c *Client) roundQty(q float64) decimal.Decimal {
	return decimal.NewFromFloat(q).Div(c.qtyStep).Floor().Mul(c.qtyStep)
}

func (c *Client) bufferedStop(d domain.Direction, stop float64) decimal.Decimal {
	s := c.roundPrice(stop)
	if d == domain.Short {
		return s.Add(c.stopBuffer)
	}
	return s.Sub(c.stopBuffer)
}

func clientID(setupID, suffix string) string {
	id := strings.ReplaceAll(setupID, "-", "")
	if len(id) > 30 {
		id = id[:30]
	}
	return "ag" + id + suffix
}

func encodeHandle(entry, stop, target int64) domain.OrderHandle {
	return domain.OrderHandle(fmt.Sprintf("%d:%d:%d", entry, stop, target))
}

func decodeHandle(h domain.OrderHandle) ([]int64, error) {
	parts := strings.Split(string(h), ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed order handle %q: %w", h, ports.ErrInvalidRequest)
	}
	ids := make([]int64, 0, 3)
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed order handle %q: %w", h, ports.ErrInvalidRequest)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// --- Translation Helpers ---

func translatePosition(p *futures.PositionRisk) (domain.VenuePosition, bool) {
	if p == nil {
		return domain.VenuePosition{}, false
	}
	amt, _ := strconv.ParseFloat(p.PositionAmt, 64)
	if amt == 0 {
		return domain.VenuePosition{}, false
	}
	entry, _ := strconv.ParseFloat(p.EntryPrice, 64)
	vp := domain.VenuePosition{Symbol: p.Symbol, Direction: domain.Long, Quantity: amt, EntryPrice: entry}
	if amt < 0 {
		vp.Direction = domain.Short
		vp.Quantity = -amt
	}
	return vp, true
}

func translateBinanceKline(bk *futures.Kline) (domain.Candle, error) {
	if bk == nil {
		return domain.Candle{}, errors.New("received nil historical kline")
	}
	open, err := strconv.ParseFloat(bk.Open, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing open price '%s': %w", bk.Open, err)
	}
	high, err := strconv.ParseFloat(bk.High, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing high price '%s': %w", bk.High, err)
	}
	low, err := strconv.ParseFloat(bk.Low, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing low price '%s': %w", bk.Low, err)
	}
	cls, err := strconv.ParseFloat(bk.Close, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing close price '%s': %w", bk.Close, err)
	}
	vol, err := strconv.ParseFloat(bk.Volume, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing volume '%s': %w", bk.Volume, err)
	}

	return domain.Candle{
		Time:   time.UnixMilli(bk.OpenTime).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  cls,
		Volume: vol,
	}, nil
}
