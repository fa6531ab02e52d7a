// Package futures picks the nearest futures contract for an underlying
// and reports its open interest.
package futures

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/internal/instruments"
	"github.com/wonny/watchlist/internal/memo"
	"github.com/wonny/watchlist/pkg/logger"
)

// OpenInterest is the memoized result of an OI lookup
type OpenInterest struct {
	Contract  contracts.Instrument `json:"contract"`
	Value     int64                `json:"oi"`
	Available bool                 `json:"available"`
}

type oiArgs struct {
	Underlying string
}

// Selector finds the front-month future on the derivatives exchange
type Selector struct {
	catalog  *instruments.Catalog
	quotes   *instruments.Quotes
	exchange string
	loc      *time.Location
	now      memo.Clock
	logger   *logger.Logger

	oi *memo.Func[oiArgs, OpenInterest]
}

// Options configures a Selector
type Options struct {
	DerivativesExchange string
	Location            *time.Location
	TTL                 time.Duration // open-interest cache
	Clock               memo.Clock
	Logger              *logger.Logger
}

// NewSelector creates a Selector
func NewSelector(catalog *instruments.Catalog, quotes *instruments.Quotes, opts Options) *Selector {
	if opts.DerivativesExchange == "" {
		opts.DerivativesExchange = "NFO"
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

	s := &Selector{
		catalog:  catalog,
		quotes:   quotes,
		exchange: opts.DerivativesExchange,
		loc:      opts.Location,
		now:      opts.Clock,
		logger:   opts.Logger.WithComponent("futures"),
	}
	s.oi = memo.New("futures_oi", opts.TTL, s.load, memo.WithClock(opts.Clock))
	return s
}

// SelectNearest filters candidates to live futures on the underlying and
// returns the earliest expiry. Ties keep catalog order.
func SelectNearest(candidates []contracts.Instrument, underlying, derivativesExchange string, today time.Time) (contracts.Instrument, bool) {
	var live []contracts.Instrument
	for _, c := range candidates {
		if !strings.HasPrefix(c.TradingSymbol, underlying) {
			continue
		}
		if !c.IsFuture(derivativesExchange) || !c.HasExpiry() {
			continue
		}
		if c.Expiry.Before(today) {
			continue
		}
		live = append(live, c)
	}
	if len(live) == 0 {
		return contracts.Instrument{}, false
	}

	sort.SliceStable(live, func(i, j int) bool {
		return live[i].Expiry.Before(live[j].Expiry)
	})
	return live[0], true
}

// Today returns midnight of the current date in the market timezone
func (s *Selector) Today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc)
}

// NearestContract returns the front-month future for underlying
func (s *Selector) NearestContract(ctx context.Context, underlying string) (contracts.Instrument, bool, error) {
	underlying = contracts.NormalizeSymbol(underlying)
	if underlying == "" {
		return contracts.Instrument{}, false, nil
	}

	idx, err := s.catalog.Index(ctx, s.exchange)
	if err != nil {
		return contracts.Instrument{}, false, err
	}

	c, ok := SelectNearest(idx.Instruments, underlying, s.exchange, s.Today())
	return c, ok, nil
}

func (s *Selector) load(ctx context.Context, args oiArgs) (OpenInterest, error) {
	c, ok, err := s.NearestContract(ctx, args.Underlying)
	if err != nil || !ok {
		return OpenInterest{}, err
	}

	q, err := s.quotes.Get(ctx, s.exchange, c.TradingSymbol)
	if err != nil {
		return OpenInterest{}, err
	}

	out := OpenInterest{Contract: c}
	if q != nil && q.OpenInterest != nil {
		out.Value = *q.OpenInterest
		out.Available = true
	}

	s.logger.WithFields(map[string]interface{}{
		"underlying": args.Underlying,
		"contract":   c.TradingSymbol,
		"available":  out.Available,
	}).Debug("Open interest lookup")

	return out, nil
}

// OpenInterest returns the nearest contract's OI.
// ok is false when there is no live future or the quote carries no OI.
func (s *Selector) OpenInterest(ctx context.Context, underlying string) (int64, bool, error) {
	r, err := s.Lookup(ctx, underlying)
	if err != nil {
		return 0, false, err
	}
	return r.Value, r.Available, nil
}

// Lookup returns the full OI result including the chosen contract
func (s *Selector) Lookup(ctx context.Context, underlying string) (OpenInterest, error) {
	return s.oi.Get(ctx, oiArgs{Underlying: contracts.NormalizeSymbol(underlying)})
}

// Stats returns cache counters
func (s *Selector) Stats() memo.Stats {
	return s.oi.Stats()
}
