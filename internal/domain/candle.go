package domain

import "time"

// Candle represents a single OHLC bar. Sequences are ordered ascending by Time.
type Candle struct {
	Time   time.Time // Open time of the interval
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
