// Package bars fetches OHLCV series and normalizes them to the market timezone.
package bars

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/internal/memo"
	"github.com/wonny/watchlist/pkg/logger"
)

// Default lookback windows in calendar days
const (
	DefaultIntradayWindowDays = 1
	DefaultDailyWindowDays    = 5
)

// Options configures a Fetcher
type Options struct {
	Location         *time.Location
	IntradayInterval contracts.Interval
	IntradayTTL      time.Duration
	DailyTTL         time.Duration
	IntradayWindow   int // days
	DailyWindow      int // days
	Clock            memo.Clock
	Logger           *logger.Logger
}

type seriesArgs struct {
	Symbol     string
	Interval   contracts.Interval
	WindowDays int
}

// Fetcher resolves a symbol and retrieves its bars.
// Intraday and daily series have separate caches.
// ⭐ SSOT: 봉 데이터 조회는 여기서만
type Fetcher struct {
	resolver contracts.InstrumentResolver
	provider contracts.MarketDataProvider
	loc      *time.Location
	now      memo.Clock
	logger   *logger.Logger

	intradayInterval contracts.Interval
	intradayWindow   int
	dailyWindow      int

	intraday *memo.Func[seriesArgs, contracts.BarSeries]
	daily    *memo.Func[seriesArgs, contracts.BarSeries]
}

// NewFetcher creates a Fetcher
func NewFetcher(resolver contracts.InstrumentResolver, provider contracts.MarketDataProvider, opts Options) *Fetcher {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.IntradayInterval == "" {
		opts.IntradayInterval = contracts.Interval5Minute
	}
	if opts.IntradayWindow <= 0 {
		opts.IntradayWindow = DefaultIntradayWindowDays
	}
	if opts.DailyWindow <= 0 {
		opts.DailyWindow = DefaultDailyWindowDays
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	f := &Fetcher{
		resolver:         resolver,
		provider:         provider,
		loc:              opts.Location,
		now:              opts.Clock,
		logger:           opts.Logger.WithComponent("bars"),
		intradayInterval: opts.IntradayInterval,
		intradayWindow:   opts.IntradayWindow,
		dailyWindow:      opts.DailyWindow,
	}
	clock := memo.WithClock(opts.Clock)
	f.intraday = memo.New("intraday_bars", opts.IntradayTTL, f.load, clock)
	f.daily = memo.New("daily_bars", opts.DailyTTL, f.load, clock)
	return f
}

func (f *Fetcher) load(ctx context.Context, args seriesArgs) (contracts.BarSeries, error) {
	return f.Fetch(ctx, args.Symbol, args.Interval, args.WindowDays)
}

// Intraday returns the configured intraday interval over the intraday window
func (f *Fetcher) Intraday(ctx context.Context, symbol string) (contracts.BarSeries, error) {
	return f.intraday.Get(ctx, seriesArgs{
		Symbol:     contracts.NormalizeSymbol(symbol),
		Interval:   f.intradayInterval,
		WindowDays: f.intradayWindow,
	})
}

// Daily returns day bars over the daily window
func (f *Fetcher) Daily(ctx context.Context, symbol string) (contracts.BarSeries, error) {
	return f.daily.Get(ctx, seriesArgs{
		Symbol:     contracts.NormalizeSymbol(symbol),
		Interval:   contracts.IntervalDay,
		WindowDays: f.dailyWindow,
	})
}

// Fetch retrieves bars in [now - windowDays, now] without caching.
// Bars keep provider order; timestamps are converted to the market timezone.
func (f *Fetcher) Fetch(ctx context.Context, symbol string, interval contracts.Interval, windowDays int) (contracts.BarSeries, error) {
	symbol = contracts.NormalizeSymbol(symbol)
	if !interval.IsValid() {
		return contracts.BarSeries{}, fmt.Errorf("invalid interval %q", interval)
	}
	if windowDays <= 0 {
		return contracts.BarSeries{}, fmt.Errorf("window must be positive, got %d days", windowDays)
	}

	id, err := f.resolver.Resolve(ctx, symbol)
	if err != nil {
		return contracts.BarSeries{}, err
	}

	to := f.now()
	from := to.AddDate(0, 0, -windowDays)

	raw, err := f.provider.GetBars(ctx, id, from, to, interval)
	if err != nil {
		return contracts.BarSeries{}, err
	}

	series := contracts.BarSeries{
		Symbol:   symbol,
		Interval: interval,
		Bars:     Normalize(raw, f.loc),
	}

	f.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"interval": interval,
		"bars":     series.Len(),
	}).Debug("Fetched bars")

	return series, nil
}

// Normalize returns a copy of bars with every timestamp expressed in loc
func Normalize(raw []contracts.Bar, loc *time.Location) []contracts.Bar {
	out := make([]contracts.Bar, len(raw))
	for i, b := range raw {
		b.Time = b.Time.In(loc)
		out[i] = b
	}
	return out
}

// Stats returns cache counters for both series caches
func (f *Fetcher) Stats() []memo.Stats {
	return memo.Collect(f.intraday, f.daily)
}

var _ contracts.BarFetcher = (*Fetcher)(nil)
