// Package utils holds CSV helpers for candle history and trade logs.
package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"argusBot/internal/domain"
)

// CandleHeader is the column layout of candle files.
var CandleHeader = []string{"time", "open", "high", "low", "close", "volume"}

// TradeHeader is the column layout of trade logs.
var TradeHeader = []string{
	"setup_id", "symbol", "direction", "entry_time", "entry_price", "stop_loss",
	"take_profit", "close_time", "close_price", "pnl", "close_reason",
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04"}

// ParseTime accepts RFC3339, common date-time layouts (read as UTC) and
// unix seconds or milliseconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ReadCandlesCSV loads candles from a file with a header row. Columns are
// located by name; volume is optional. The result is sorted by time.
func ReadCandlesCSV(filename string) ([]domain.Candle, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCandles(file)
}

// ReadCandles parses candle CSV from r.
func ReadCandles(r io.Reader) ([]domain.Candle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	idx := columnIndex(header)
	for _, col := range CandleHeader[:5] {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var candles []domain.Candle
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		c, err := parseCandle(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		candles = append(candles, c)
	}
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	return candles, nil
}

func parseCandle(rec []string, idx map[string]int) (domain.Candle, error) {
	var c domain.Candle
	var err error
	if c.Time, err = ParseTime(rec[idx["time"]]); err != nil {
		return c, err
	}
	fields := []struct {
		col string
		dst *float64
	}{{"open", &c.Open}, {"high", &c.High}, {"low", &c.Low}, {"close", &c.Close}, {"volume", &c.Volume}}
	for _, f := range fields {
		i, ok := idx[f.col]
		if !ok {
			continue
		}
		if *f.dst, err = strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); err != nil {
			return c, fmt.Errorf("parsing %s: %w", f.col, err)
		}
	}
	return c, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	// Accept the historical open_time column name.
	if i, ok := idx["open_time"]; ok {
		if _, has := idx["time"]; !has {
			idx["time"] = i
		}
	}
	return idx
}

// WriteCandlesCSV writes candles with CandleHeader.
func WriteCandlesCSV(candles []domain.Candle, filename string) error {
	file, err := createFile(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(CandleHeader); err != nil {
		return err
	}
	for _, c := range candles {
		if err := writer.Write([]string{
			c.Time.UTC().Format(time.RFC3339),
			formatFloat(c.Open),
			formatFloat(c.High),
			formatFloat(c.Low),
			formatFloat(c.Close),
			formatFloat(c.Volume),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// createFile truncates filename, creating missing parent directories.
func createFile(filename string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, err
	}
	return os.Create(filename)
}

func tradeRecord(t domain.Trade) []string {
	return []string{
		t.SetupID,
		t.Symbol,
		string(t.Direction),
		t.EntryTime.UTC().Format(time.RFC3339),
		formatFloat(t.EntryPrice),
		formatFloat(t.StopLoss),
		formatFloat(t.TakeProfit),
		t.CloseTime.UTC().Format(time.RFC3339),
		formatFloat(t.ClosePrice),
		strconv.FormatFloat(t.PnL, 'f', 2, 64),
		string(t.CloseReason),
	}
}

// WriteTradesCSV writes a complete trade log, replacing the file.
func WriteTradesCSV(trades []domain.Trade, filename string) error {
	file, err := createFile(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(TradeHeader); err != nil {
		return err
	}
	for _, t := range trades {
		if err := writer.Write(tradeRecord(t)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// AppendTradeCSV appends one trade, writing the header when the file is new or empty.
func AppendTradeCSV(trade domain.Trade, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := writer.Write(TradeHeader); err != nil {
			return err
		}
	}
	if err := writer.Write(tradeRecord(trade)); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// ReadTradesCSV loads a trade log written by WriteTradesCSV or AppendTradeCSV.
func ReadTradesCSV(filename string) ([]domain.Trade, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	idx := columnIndex(header)
	for _, col := range TradeHeader {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var trades []domain.Trade
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := parseTrade(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func parseTrade(rec []string, idx map[string]int) (domain.Trade, error) {
	t := domain.Trade{
		SetupID:     rec[idx["setup_id"]],
		Symbol:      rec[idx["symbol"]],
		Direction:   domain.Direction(rec[idx["direction"]]),
		CloseReason: domain.CloseReason(rec[idx["close_reason"]]),
	}
	var err error
	if t.EntryTime, err = ParseTime(rec[idx["entry_time"]]); err != nil {
		return t, err
	}
	if t.CloseTime, err = ParseTime(rec[idx["close_time"]]); err != nil {
		return t, err
	}
	fields := []struct {
		col string
		dst *float64
	}{
		{"entry_price", &t.EntryPrice}, {"stop_loss", &t.StopLoss}, {"take_profit", &t.TakeProfit},
		{"close_price", &t.ClosePrice}, {"pnl", &t.PnL},
	}
	for _, f := range fields {
		if *f.dst, err = strconv.ParseFloat(rec[idx[f.col]], 64); err != nil {
			return t, fmt.Errorf("parsing %s: %w", f.col, err)
		}
	}
	return t, nil
}
