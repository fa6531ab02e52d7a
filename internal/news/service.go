// Package news combines headlines and corporate actions per symbol.
package news

import (
	"context"
	"time"

	"github.com/wonny/watchlist/internal/external/events"
	"github.com/wonny/watchlist/internal/external/ft"
	"github.com/wonny/watchlist/internal/memo"
	"github.com/wonny/watchlist/pkg/logger"
)

// DefaultCount is the default number of headlines
const DefaultCount = 5

// Item is a headline with its publication time in the market timezone
type Item struct {
	Title       string     `json:"title"`
	PublishedAt *time.Time `json:"published_at"`
	Source      string     `json:"source"`
}

// Bundle is the combined news + events view for one symbol
type Bundle struct {
	News   []Item          `json:"news"`
	Events []events.Action `json:"events"`
}

// HeadlineSource searches headlines
type HeadlineSource interface {
	Search(ctx context.Context, query string, count int) ([]ft.Headline, error)
}

// ActionSource lists corporate actions
type ActionSource interface {
	Actions(ctx context.Context, symbol string) ([]events.Action, error)
}

type newsArgs struct {
	Symbol string
	Count  int
}

type eventArgs struct {
	Symbol string
}

// Options configures a Service
type Options struct {
	Location  *time.Location
	NewsTTL   time.Duration
	EventsTTL time.Duration
	Clock     memo.Clock
	Logger    *logger.Logger
}

// Service memoizes news, events and the combined bundle separately
type Service struct {
	headlines HeadlineSource
	actions   ActionSource
	loc       *time.Location
	logger    *logger.Logger

	recent   *memo.Func[newsArgs, []Item]
	corp     *memo.Func[eventArgs, []events.Action]
	combined *memo.Func[newsArgs, Bundle]
}

// NewService creates a Service
func NewService(headlines HeadlineSource, actions ActionSource, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	s := &Service{
		headlines: headlines,
		actions:   actions,
		loc:       opts.Location,
		logger:    opts.Logger.WithComponent("news"),
	}
	clock := memo.WithClock(opts.Clock)
	s.recent = memo.New("recent_news", opts.NewsTTL, s.loadNews, clock)
	s.corp = memo.New("corporate_actions", opts.EventsTTL, s.loadActions, clock)
	s.combined = memo.New("news_and_events", opts.NewsTTL, s.loadBundle, clock)
	return s
}

// RecentNews returns up to count headlines; count <= 0 means DefaultCount
func (s *Service) RecentNews(ctx context.Context, symbol string, count int) ([]Item, error) {
	if count <= 0 {
		count = DefaultCount
	}
	return s.recent.Get(ctx, newsArgs{Symbol: symbol, Count: count})
}

// CorporateActions returns upcoming corporate actions
func (s *Service) CorporateActions(ctx context.Context, symbol string) ([]events.Action, error) {
	return s.corp.Get(ctx, eventArgs{Symbol: symbol})
}

// NewsAndEvents returns both lists
func (s *Service) NewsAndEvents(ctx context.Context, symbol string, count int) (Bundle, error) {
	if count <= 0 {
		count = DefaultCount
	}
	return s.combined.Get(ctx, newsArgs{Symbol: symbol, Count: count})
}

func (s *Service) loadNews(ctx context.Context, args newsArgs) ([]Item, error) {
	raw, err := s.headlines.Search(ctx, args.Symbol, args.Count)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(raw))
	for _, h := range raw {
		item := Item{Title: h.Title, Source: h.Source}
		// unparseable dates are dropped rather than failing the list
		if t, err := time.Parse(time.RFC3339, h.PublishedAt); err == nil {
			local := t.In(s.loc)
			item.PublishedAt = &local
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) loadActions(ctx context.Context, args eventArgs) ([]events.Action, error) {
	raw, err := s.actions.Actions(ctx, args.Symbol)
	if err != nil {
		return nil, err
	}
	out := make([]events.Action, len(raw))
	for i, a := range raw {
		if !a.Date.IsZero() {
			a.Date = a.Date.In(s.loc)
		}
		out[i] = a
	}
	return out, nil
}

func (s *Service) loadBundle(ctx context.Context, args newsArgs) (Bundle, error) {
	items, err := s.RecentNews(ctx, args.Symbol, args.Count)
	if err != nil {
		return Bundle{}, err
	}
	acts, err := s.CorporateActions(ctx, args.Symbol)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{News: items, Events: acts}, nil
}

// Stats returns cache counters
func (s *Service) Stats() []memo.Stats {
	return memo.Collect(s.recent, s.corp, s.combined)
}
