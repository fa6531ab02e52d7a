package sector

import (
	"context"

	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/pkg/logger"
)

// Change sources, in fallback order
const (
	SourceIntraday = "intraday"
	SourceDaily    = "daily"
	SourceNone     = "none"
)

// Change is a percentage move and the source that produced it
type Change struct {
	Pct    float64 `json:"pct"`
	Source string  `json:"source"`
}

// Deviation is an equity's change relative to its sector index
type Deviation struct {
	Symbol      string  `json:"symbol"`
	SectorIndex string  `json:"sector_index"`
	Equity      Change  `json:"equity"`
	Sector      Change  `json:"sector"`
	Pct         float64 `json:"deviation_pct"`
}

// changeSource computes a change, reporting ok=false when its data is unusable
type changeSource struct {
	name    string
	compute func(ctx context.Context, symbol string) (float64, bool)
}

// Engine computes price changes and sector deviations.
// Unusable inputs collapse to a neutral 0.0 rather than an error.
type Engine struct {
	bars    contracts.BarFetcher
	mapping *Mapping
	logger  *logger.Logger
	chain   []changeSource
}

// NewEngine creates an Engine; a nil mapping means DefaultMapping()
func NewEngine(bars contracts.BarFetcher, mapping *Mapping, log *logger.Logger) *Engine {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	if log == nil {
		log = logger.Nop()
	}
	e := &Engine{
		bars:    bars,
		mapping: mapping,
		logger:  log.WithComponent("sector"),
	}
	e.chain = []changeSource{
		{name: SourceIntraday, compute: e.intradayChange},
		{name: SourceDaily, compute: e.dailyChange},
	}
	return e
}

// Mapping returns the engine's sector table
func (e *Engine) Mapping() *Mapping {
	return e.mapping
}

// IntradayChange tries each source in order; Source is SourceNone when all fail
func (e *Engine) IntradayChange(ctx context.Context, symbol string) Change {
	for _, src := range e.chain {
		if pct, ok := src.compute(ctx, symbol); ok {
			return Change{Pct: pct, Source: src.name}
		}
	}
	return Change{Pct: 0, Source: SourceNone}
}

// IntradayChangePct returns the symbol's percentage move
func (e *Engine) IntradayChangePct(ctx context.Context, symbol string) float64 {
	return e.IntradayChange(ctx, symbol).Pct
}

// SectorDeviation compares symbol against its mapped sector index
func (e *Engine) SectorDeviation(ctx context.Context, symbol string) Deviation {
	symbol = contracts.NormalizeSymbol(symbol)
	index := e.mapping.IndexFor(symbol)

	eq := e.IntradayChange(ctx, symbol)
	sec := e.IntradayChange(ctx, index)

	return Deviation{
		Symbol:      symbol,
		SectorIndex: index,
		Equity:      eq,
		Sector:      sec,
		Pct:         eq.Pct - sec.Pct,
	}
}

// SectorDeviationPct returns equity change minus sector change
func (e *Engine) SectorDeviationPct(ctx context.Context, symbol string) float64 {
	return e.SectorDeviation(ctx, symbol).Pct
}

// intradayChange: (lastClose - firstOpen) / firstOpen * 100
func (e *Engine) intradayChange(ctx context.Context, symbol string) (float64, bool) {
	s, err := e.bars.Intraday(ctx, symbol)
	if err != nil {
		e.logger.WithError(err).WithField("symbol", symbol).Debug("Intraday bars unusable")
		return 0, false
	}
	first, ok := s.First()
	if !ok || first.Open == 0 {
		return 0, false
	}
	last, _ := s.Last()
	return (last.Close - first.Open) / first.Open * 100, true
}

// dailyChange: (latest - previous) / previous * 100 over the last two closes
func (e *Engine) dailyChange(ctx context.Context, symbol string) (float64, bool) {
	s, err := e.bars.Daily(ctx, symbol)
	if err != nil {
		e.logger.WithError(err).WithField("symbol", symbol).Debug("Daily bars unusable")
		return 0, false
	}
	if s.Len() < 2 {
		return 0, false
	}
	prev := s.Bars[s.Len()-2].Close
	latest := s.Bars[s.Len()-1].Close
	if prev == 0 {
		return 0, false
	}
	return (latest - prev) / prev * 100, true
}
