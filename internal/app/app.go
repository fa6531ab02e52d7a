// Package app wires configuration, provider clients and the data-access
// components into one graph shared by the CLI, API server and scheduler.
package app

import (
	"fmt"
	"time"

	"github.com/wonny/watchlist/internal/bars"
	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/internal/external/events"
	"github.com/wonny/watchlist/internal/external/ft"
	"github.com/wonny/watchlist/internal/external/kite"
	"github.com/wonny/watchlist/internal/futures"
	"github.com/wonny/watchlist/internal/instruments"
	"github.com/wonny/watchlist/internal/memo"
	"github.com/wonny/watchlist/internal/news"
	"github.com/wonny/watchlist/internal/sector"
	"github.com/wonny/watchlist/internal/watchlist"
	"github.com/wonny/watchlist/pkg/config"
	"github.com/wonny/watchlist/pkg/httputil"
	"github.com/wonny/watchlist/pkg/logger"
	"github.com/wonny/watchlist/pkg/redis"
)

// App holds every long-lived component
// ⭐ SSOT: 컴포넌트 조립은 여기서만
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Location *time.Location

	Catalog   *instruments.Catalog
	Quotes    *instruments.Quotes
	Resolver  *instruments.Resolver
	Bars      *bars.Fetcher
	Futures   *futures.Selector
	Sectors   *sector.Mapping
	Sector    *sector.Engine
	News      *news.Service
	Watchlist *watchlist.Builder

	// Symbols is the configured default watchlist
	Symbols []string

	redis *redis.Client
}

// Sources are the external feeds; New fills them from config
type Sources struct {
	Provider  contracts.MarketDataProvider
	Headlines news.HeadlineSource
	Actions   news.ActionSource
	Clock     memo.Clock
}

// New builds the production graph: Kite, FT and the corporate-actions page
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	limiter := redis.NewRateLimiter(rdb, "watchlist")
	loc := cfg.Location()

	kiteHTTP := func(perSecond float64, limit redis.RateLimitConfig) *httputil.Client {
		c := httputil.New(log).
			WithLimiter(perSecond, 1).
			WithRateLimiter(limiter, limit)
		if !cfg.Kite.Retry {
			c.DisableRetry()
		}
		return c
	}

	provider := kite.NewClient(cfg.Kite, kite.Transports{
		Default:    kiteHTTP(10, redis.KiteDefaultRateLimit),
		Historical: kiteHTTP(3, redis.KiteHistoricalRateLimit),
		Quote:      kiteHTTP(1, redis.KiteQuoteRateLimit),
	}, loc, log)

	newsHTTP := httputil.NewWithTimeout(log, 10*time.Second)

	a, err := NewWithSources(cfg, log, Sources{
		Provider:  provider,
		Headlines: ft.NewClient(cfg.News, newsHTTP, log),
		Actions:   events.NewClient(cfg.News.CorporateActionsURL, newsHTTP, loc, log),
	})
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	a.redis = rdb
	return a, nil
}

// NewWithSources builds the graph on top of the given feeds
func NewWithSources(cfg *config.Config, log *logger.Logger, src Sources) (*App, error) {
	if src.Clock == nil {
		src.Clock = time.Now
	}
	loc := cfg.Location()
	clock := memo.WithClock(src.Clock)

	interval := contracts.Interval(cfg.Market.IntradayInterval)
	if !interval.IsValid() {
		return nil, fmt.Errorf("INTRADAY_INTERVAL %q is not a provider interval", cfg.Market.IntradayInterval)
	}

	file, err := watchlist.LoadFile(cfg.Market.WatchlistFile)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Logger:   log,
		Location: loc,
		Symbols:  file.Symbols,
	}

	a.Catalog = instruments.NewCatalog(src.Provider, cfg.Cache.Catalog, clock, memo.WithLogger(log))
	a.Quotes = instruments.NewQuotes(src.Provider, cfg.Cache.Quote, clock)
	a.Resolver = instruments.NewResolver(cfg.Kite.Exchange, a.Catalog, a.Quotes, log)

	a.Bars = bars.NewFetcher(a.Resolver, src.Provider, bars.Options{
		Location:         loc,
		IntradayInterval: interval,
		IntradayTTL:      cfg.Cache.Intraday,
		DailyTTL:         cfg.Cache.Daily,
		Clock:            src.Clock,
		Logger:           log,
	})

	a.Futures = futures.NewSelector(a.Catalog, a.Quotes, futures.Options{
		DerivativesExchange: cfg.Kite.DerivativesExchange,
		Location:            loc,
		TTL:                 cfg.Cache.Quote,
		Clock:               src.Clock,
		Logger:              log,
	})

	a.Sectors = sector.DefaultMapping().
		WithDefault(cfg.Market.DefaultSectorIndex).
		WithOverrides(file.Sectors)
	a.Sector = sector.NewEngine(a.Bars, a.Sectors, log)

	a.News = news.NewService(src.Headlines, src.Actions, news.Options{
		Location:  loc,
		NewsTTL:   cfg.Cache.News,
		EventsTTL: cfg.Cache.Events,
		Clock:     src.Clock,
		Logger:    log,
	})

	a.Watchlist = watchlist.NewBuilder(a.Bars, a.Sector, a.Sectors, a.Futures, watchlist.Options{
		Location: loc,
		Clock:    src.Clock,
		Logger:   log,
	})

	return a, nil
}

// CacheStats reports every memoized function
func (a *App) CacheStats() []memo.Stats {
	stats := []memo.Stats{a.Catalog.Stats(), a.Quotes.Stats(), a.Futures.Stats()}
	stats = append(stats, a.Bars.Stats()...)
	stats = append(stats, a.News.Stats()...)
	return stats
}

// Close releases external connections
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
