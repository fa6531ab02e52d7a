// Package watchlist assembles per-symbol metric rows for the dashboard.
package watchlist

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/internal/indicators"
	"github.com/wonny/watchlist/pkg/logger"
)

// DefaultConcurrency bounds parallel symbol builds
const DefaultConcurrency = 8

// Row is one dashboard line. Error is set when the symbol failed;
// the metric fields are then zero.
type Row struct {
	Symbol       string  `json:"symbol"`
	VWAP         float64 `json:"vwap"`
	Pivot        float64 `json:"pivot"`
	R1           float64 `json:"r1"`
	R2           float64 `json:"r2"`
	S1           float64 `json:"s1"`
	S2           float64 `json:"s2"`
	VolumeSurge  bool    `json:"volume_surge"`
	SectorIndex  string  `json:"sector_index,omitempty"`
	SectorDevPct float64 `json:"sector_dev_pct"`
	FuturesOI    *int64  `json:"futures_oi"`
	Error        string  `json:"error,omitempty"`
}

// OK reports whether the row was built without error
func (r Row) OK() bool {
	return r.Error == ""
}

// Snapshot is one full watchlist build
type Snapshot struct {
	GeneratedAt time.Time `json:"generated_at"`
	Rows        []Row     `json:"rows"`
	Failed      int       `json:"failed"`
}

// Deviations computes sector deviation
type Deviations interface {
	SectorDeviationPct(ctx context.Context, symbol string) float64
}

// SectorLookup names a symbol's sector index
type SectorLookup interface {
	IndexFor(symbol string) string
}

// OpenInterests reports futures open interest
type OpenInterests interface {
	OpenInterest(ctx context.Context, underlying string) (int64, bool, error)
}

// Options configures a Builder
type Options struct {
	Concurrency int
	SurgeWindow int
	SurgeFactor float64
	Location    *time.Location
	Clock       func() time.Time
	Logger      *logger.Logger
}

// Builder computes watchlist rows
type Builder struct {
	bars       contracts.BarFetcher
	deviations Deviations
	sectors    SectorLookup
	oi         OpenInterests
	opts       Options
	logger     *logger.Logger
}

// NewBuilder creates a Builder; sectors may be nil
func NewBuilder(bars contracts.BarFetcher, deviations Deviations, sectors SectorLookup, oi OpenInterests, opts Options) *Builder {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.SurgeWindow <= 0 {
		opts.SurgeWindow = indicators.DefaultSurgeWindow
	}
	if opts.SurgeFactor <= 0 {
		opts.SurgeFactor = indicators.DefaultSurgeFactor
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Builder{
		bars:       bars,
		deviations: deviations,
		sectors:    sectors,
		oi:         oi,
		opts:       opts,
		logger:     opts.Logger.WithComponent("watchlist"),
	}
}

// Build computes rows for symbols in input order.
// A failing symbol produces an error row; it never aborts the others.
func (b *Builder) Build(ctx context.Context, symbols []string) Snapshot {
	symbols = Normalize(symbols)
	rows := make([]Row, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)
	for i, sym := range symbols {
		g.Go(func() error {
			rows[i] = b.BuildRow(gctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range rows {
		if !r.OK() {
			failed++
		}
	}

	b.logger.WithFields(map[string]interface{}{
		"symbols": len(rows),
		"failed":  failed,
	}).Debug("Watchlist built")

	return Snapshot{
		GeneratedAt: b.opts.Clock().In(b.opts.Location),
		Rows:        rows,
		Failed:      failed,
	}
}

// BuildRow computes a single row
func (b *Builder) BuildRow(ctx context.Context, symbol string) Row {
	symbol = contracts.NormalizeSymbol(symbol)

	series, err := b.bars.Intraday(ctx, symbol)
	if err != nil {
		return b.failed(symbol, err)
	}

	pv := indicators.Pivots(series.Bars)
	row := Row{
		Symbol:       symbol,
		VWAP:         indicators.Round2(indicators.VWAP(series.Bars)),
		Pivot:        indicators.Round2(pv.Pivot),
		R1:           indicators.Round2(pv.R1),
		R2:           indicators.Round2(pv.R2),
		S1:           indicators.Round2(pv.S1),
		S2:           indicators.Round2(pv.S2),
		VolumeSurge:  indicators.VolumeSurge(series.Bars, b.opts.SurgeWindow, b.opts.SurgeFactor),
		SectorDevPct: indicators.Round2(b.deviations.SectorDeviationPct(ctx, symbol)),
	}
	if b.sectors != nil {
		row.SectorIndex = b.sectors.IndexFor(symbol)
	}

	oi, ok, err := b.oi.OpenInterest(ctx, symbol)
	if err != nil {
		return b.failed(symbol, err)
	}
	if ok {
		row.FuturesOI = &oi
	}

	return row
}

func (b *Builder) failed(symbol string, err error) Row {
	b.logger.WithError(err).WithField("symbol", symbol).Warn("Watchlist row failed")
	return Row{Symbol: symbol, Error: err.Error()}
}

// Normalize trims, upper-cases and de-duplicates symbols, keeping first occurrence order
func Normalize(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = contracts.NormalizeSymbol(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// ParseSymbols splits comma or newline separated input
func ParseSymbols(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	return Normalize(fields)
}
