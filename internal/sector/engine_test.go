package sector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/watchlist/internal/contracts"
)

type fakeBars struct {
	intraday map[string][]contracts.Bar
	daily    map[string][]contracts.Bar
	failing  map[string]bool
}

func newFakeBars() *fakeBars {
	return &fakeBars{
		intraday: map[string][]contracts.Bar{},
		daily:    map[string][]contracts.Bar{},
		failing:  map[string]bool{},
	}
}

func (f *fakeBars) Intraday(_ context.Context, symbol string) (contracts.BarSeries, error) {
	if f.failing[symbol] {
		return contracts.BarSeries{}, &contracts.UpstreamError{Op: "historical", Err: errors.New("down")}
	}
	return contracts.BarSeries{Symbol: symbol, Bars: f.intraday[symbol]}, nil
}

func (f *fakeBars) Daily(_ context.Context, symbol string) (contracts.BarSeries, error) {
	return contracts.BarSeries{Symbol: symbol, Bars: f.daily[symbol]}, nil
}

func closes(vals ...float64) []contracts.Bar {
	out := make([]contracts.Bar, len(vals))
	for i, v := range vals {
		out[i] = contracts.Bar{Open: v, Close: v}
	}
	return out
}

func TestIntradayChange(t *testing.T) {
	bars := newFakeBars()
	bars.intraday["UP"] = []contracts.Bar{{Open: 100, Close: 102}, {Open: 103, Close: 110}}
	bars.daily["DAILYONLY"] = closes(90, 100, 104)
	bars.intraday["ZEROOPEN"] = []contracts.Bar{{Open: 0, Close: 5}}
	bars.daily["ZEROOPEN"] = closes(50, 55)
	bars.failing["BROKEN"] = true
	bars.daily["BROKEN"] = closes(200, 190)
	bars.daily["ONEDAY"] = closes(100)
	bars.daily["ZEROPREV"] = closes(0, 10)

	tests := []struct {
		name       string
		symbol     string
		wantPct    float64
		wantSource string
	}{
		{"intraday first open to last close", "UP", 10.0, SourceIntraday},
		{"empty intraday falls back to daily", "DAILYONLY", 4.0, SourceDaily},
		{"zero first open falls back", "ZEROOPEN", 10.0, SourceDaily},
		{"intraday failure falls back", "BROKEN", -5.0, SourceDaily},
		{"single daily bar is unusable", "ONEDAY", 0.0, SourceNone},
		{"zero previous close is unusable", "ZEROPREV", 0.0, SourceNone},
		{"no data anywhere", "NOTHING", 0.0, SourceNone},
	}

	e := NewEngine(bars, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.IntradayChange(context.Background(), tt.symbol)
			assert.InDelta(t, tt.wantPct, got.Pct, 1e-9)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.InDelta(t, tt.wantPct, e.IntradayChangePct(context.Background(), tt.symbol), 1e-9)
		})
	}
}

func TestSectorDeviationPct(t *testing.T) {
	bars := newFakeBars()
	bars.intraday["INFY"] = []contracts.Bar{{Open: 100, Close: 100}, {Open: 100, Close: 110}}
	bars.daily["NIFTY IT"] = closes(100, 104)

	e := NewEngine(bars, DefaultMapping(), nil)

	d := e.SectorDeviation(context.Background(), "infy")
	assert.Equal(t, "INFY", d.Symbol)
	assert.Equal(t, "NIFTY IT", d.SectorIndex)
	assert.InDelta(t, 10.0, d.Equity.Pct, 1e-9)
	assert.InDelta(t, 4.0, d.Sector.Pct, 1e-9)
	assert.InDelta(t, 6.0, d.Pct, 1e-9)
	assert.InDelta(t, 6.0, e.SectorDeviationPct(context.Background(), "INFY"), 1e-9)
}

func TestSectorDeviationPct_UnmappedUsesDefaultIndex(t *testing.T) {
	bars := newFakeBars()
	bars.intraday["NEWCO"] = []contracts.Bar{{Open: 50, Close: 55}}
	bars.intraday["NIFTY 50"] = []contracts.Bar{{Open: 100, Close: 101}}

	e := NewEngine(bars, nil, nil)

	d := e.SectorDeviation(context.Background(), "NEWCO")
	assert.Equal(t, DefaultIndex, d.SectorIndex)
	assert.InDelta(t, 9.0, d.Pct, 1e-9)
}

func TestSectorDeviationPct_NoDataIsNeutral(t *testing.T) {
	e := NewEngine(newFakeBars(), nil, nil)
	assert.Zero(t, e.SectorDeviationPct(context.Background(), "GHOST"))
}

func TestMapping(t *testing.T) {
	m := DefaultMapping()

	tests := []struct {
		symbol string
		want   string
	}{
		{"MARUTI", "NIFTY AUTO"},
		{"icicibank", "NIFTY BANK"},
		{"RELIANCE", "NIFTY 50"},
		{"SUNPHARMA", "NIFTY PHARMA"},
		{"UNKNOWN", DefaultIndex},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.want, m.IndexFor(tt.symbol))
		})
	}
}

func TestMapping_OverridesDoNotMutate(t *testing.T) {
	base := DefaultMapping()
	custom := base.WithOverrides(map[string]string{"infy": "NIFTY 50", "NEWCO": "NIFTY IT"})

	assert.Equal(t, "NIFTY IT", base.IndexFor("INFY"))
	assert.Equal(t, DefaultIndex, base.IndexFor("NEWCO"))
	assert.Equal(t, "NIFTY 50", custom.IndexFor("INFY"))
	assert.Equal(t, "NIFTY IT", custom.IndexFor("NEWCO"))

	table := base.Table()
	table["INFY"] = "MUTATED"
	assert.Equal(t, "NIFTY IT", base.IndexFor("INFY"))

	src := map[string]string{"A": "NIFTY BANK"}
	m := NewMapping(src, "")
	src["A"] = "MUTATED"
	assert.Equal(t, "NIFTY BANK", m.IndexFor("A"))
	assert.Equal(t, DefaultIndex, m.Default())

	require.Equal(t, "NIFTY METAL", base.WithDefault("NIFTY METAL").IndexFor("UNKNOWN"))
}
