package contracts

import (
	"strings"
	"time"
)

// InstrumentID is the exchange-assigned numeric identifier (Kite instrument_token).
// Valid for the current trading session only.
type InstrumentID int64

// Interval is a bar granularity as understood by the provider
type Interval string

const (
	IntervalMinute   Interval = "minute"
	Interval3Minute  Interval = "3minute"
	Interval5Minute  Interval = "5minute"
	Interval10Minute Interval = "10minute"
	Interval15Minute Interval = "15minute"
	Interval30Minute Interval = "30minute"
	Interval60Minute Interval = "60minute"
	IntervalDay      Interval = "day"
)

// IsValid reports whether the provider accepts this interval
func (i Interval) IsValid() bool {
	switch i {
	case IntervalMinute, Interval3Minute, Interval5Minute, Interval10Minute,
		Interval15Minute, Interval30Minute, Interval60Minute, IntervalDay:
		return true
	}
	return false
}

// NormalizeSymbol trims and upper-cases a user-typed symbol
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// QualifiedSymbol returns the "EXCHANGE:SYMBOL" form used by quote lookups
func QualifiedSymbol(exchange, symbol string) string {
	return exchange + ":" + symbol
}

// Instrument is one row of the provider's instrument catalog
// ⭐ SSOT: 종목 마스터 데이터 구조
type Instrument struct {
	InstrumentID   InstrumentID `json:"instrument_token"`
	TradingSymbol  string       `json:"tradingsymbol"`
	Name           string       `json:"name"`
	Exchange       string       `json:"exchange"`
	Segment        string       `json:"segment"`         // NSE, INDICES, NFO-FUT, NFO-OPT
	InstrumentType string       `json:"instrument_type"` // EQ, FUT, CE, PE
	Expiry         time.Time    `json:"expiry,omitempty"`
	LotSize        int          `json:"lot_size"`
}

// HasExpiry reports whether the instrument is a dated contract
func (i Instrument) HasExpiry() bool {
	return !i.Expiry.IsZero()
}

// IsFuture reports whether the instrument is a futures contract on the given derivatives exchange
func (i Instrument) IsFuture(derivativesExchange string) bool {
	return i.Segment == derivativesExchange+"-FUT"
}

// Bar is one OHLCV candle
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// BarSeries is an ascending-time sequence of bars for one (symbol, interval)
// ⭐ SSOT: 봉 데이터 구조 (open/high/low/close/volume 5개 컬럼 고정)
type BarSeries struct {
	Symbol   string   `json:"symbol"`
	Interval Interval `json:"interval"`
	Bars     []Bar    `json:"bars"`
}

// Len returns the number of bars
func (s BarSeries) Len() int {
	return len(s.Bars)
}

// Empty reports whether the series has no bars
func (s BarSeries) Empty() bool {
	return len(s.Bars) == 0
}

// First returns the earliest bar
func (s BarSeries) First() (Bar, bool) {
	if s.Empty() {
		return Bar{}, false
	}
	return s.Bars[0], true
}

// Last returns the latest bar
func (s BarSeries) Last() (Bar, bool) {
	if s.Empty() {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Closes returns the close column
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volume column as floats
func (s BarSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = float64(b.Volume)
	}
	return out
}

// Quote is a single-symbol snapshot; optional fields are nil when absent
type Quote struct {
	InstrumentID *InstrumentID `json:"instrument_token,omitempty"`
	LastPrice    float64       `json:"last_price"`
	OpenInterest *int64        `json:"oi,omitempty"`
	Volume       int64         `json:"volume"`
	Open         float64       `json:"open"`
	High         float64       `json:"high"`
	Low          float64       `json:"low"`
	Close        float64       `json:"close"`
	Timestamp    time.Time     `json:"timestamp"`
}
