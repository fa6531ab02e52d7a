// Package testutil holds in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/watchlist/internal/contracts"
)

// Provider is an in-memory contracts.MarketDataProvider that records calls
type Provider struct {
	mu sync.Mutex

	Catalogs map[string][]contracts.Instrument
	Bars     map[BarKey][]contracts.Bar
	Quotes   map[string]*contracts.Quote

	CatalogErr error
	BarsErr    error
	QuoteErr   error

	CatalogCalls int
	BarCalls     int
	QuoteCalls   int
	LastFrom     time.Time
	LastTo       time.Time
}

// BarKey selects a canned bar response
type BarKey struct {
	ID       contracts.InstrumentID
	Interval contracts.Interval
}

// NewProvider returns an empty fake
func NewProvider() *Provider {
	return &Provider{
		Catalogs: make(map[string][]contracts.Instrument),
		Bars:     make(map[BarKey][]contracts.Bar),
		Quotes:   make(map[string]*contracts.Quote),
	}
}

// AddInstrument appends an instrument to its exchange catalog
func (p *Provider) AddInstrument(exchange string, inst contracts.Instrument) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Catalogs[exchange] = append(p.Catalogs[exchange], inst)
}

// SetBars sets the canned candles for (id, interval)
func (p *Provider) SetBars(id contracts.InstrumentID, interval contracts.Interval, bars []contracts.Bar) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Bars[BarKey{ID: id, Interval: interval}] = bars
}

// SetQuote sets the canned quote for a qualified symbol
func (p *Provider) SetQuote(qualified string, q *contracts.Quote) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Quotes[qualified] = q
}

// ListInstruments implements contracts.MarketDataProvider
func (p *Provider) ListInstruments(_ context.Context, exchange string) ([]contracts.Instrument, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CatalogCalls++
	if p.CatalogErr != nil {
		return nil, p.CatalogErr
	}
	return append([]contracts.Instrument(nil), p.Catalogs[exchange]...), nil
}

// GetBars implements contracts.MarketDataProvider
func (p *Provider) GetBars(_ context.Context, id contracts.InstrumentID, from, to time.Time, interval contracts.Interval) ([]contracts.Bar, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.BarCalls++
	p.LastFrom, p.LastTo = from, to
	if p.BarsErr != nil {
		return nil, p.BarsErr
	}
	return append([]contracts.Bar(nil), p.Bars[BarKey{ID: id, Interval: interval}]...), nil
}

// GetQuote implements contracts.MarketDataProvider
func (p *Provider) GetQuote(_ context.Context, qualified string) (*contracts.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.QuoteCalls++
	if p.QuoteErr != nil {
		return nil, p.QuoteErr
	}
	return p.Quotes[qualified], nil
}

// QuoteWithID builds a quote carrying only an instrument id
func QuoteWithID(id contracts.InstrumentID) *contracts.Quote {
	return &contracts.Quote{InstrumentID: &id}
}

// QuoteWithOI builds a quote carrying only open interest
func QuoteWithOI(oi int64) *contracts.Quote {
	return &contracts.Quote{OpenInterest: &oi}
}

// Clock is a settable clock for memoized components
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at t
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ contracts.MarketDataProvider = (*Provider)(nil)
