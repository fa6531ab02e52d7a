package contracts

import (
	"context"
	"time"
)

// MarketDataProvider is the brokerage data feed consumed by the data-access layer
// ⭐ SSOT: 외부 시세 제공자 인터페이스
type MarketDataProvider interface {
	// ListInstruments returns the full catalog for an exchange
	ListInstruments(ctx context.Context, exchange string) ([]Instrument, error)

	// GetBars returns candles in [from, to] in provider order (ascending time)
	GetBars(ctx context.Context, id InstrumentID, from, to time.Time, interval Interval) ([]Bar, error)

	// GetQuote returns a snapshot for "EXCHANGE:SYMBOL".
	// A nil quote with nil error means the provider has no such symbol.
	GetQuote(ctx context.Context, qualifiedSymbol string) (*Quote, error)
}

// InstrumentResolver maps a symbol to its instrument identifier
type InstrumentResolver interface {
	Resolve(ctx context.Context, symbol string) (InstrumentID, error)
}

// BarFetcher retrieves normalized bar series
type BarFetcher interface {
	Intraday(ctx context.Context, symbol string) (BarSeries, error)
	Daily(ctx context.Context, symbol string) (BarSeries, error)
}
