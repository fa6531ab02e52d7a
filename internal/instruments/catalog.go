// Package instruments resolves trading symbols to provider instrument ids.
package instruments

import (
	"context"
	"time"

	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/internal/memo"
)

// Index is one exchange's catalog indexed by trading symbol
type Index struct {
	Exchange    string
	Instruments []contracts.Instrument
	bySymbol    map[string]int
}

// NewIndex indexes instruments; the first row wins on duplicate symbols
func NewIndex(exchange string, instruments []contracts.Instrument) *Index {
	idx := &Index{
		Exchange:    exchange,
		Instruments: instruments,
		bySymbol:    make(map[string]int, len(instruments)),
	}
	for i, inst := range instruments {
		if _, dup := idx.bySymbol[inst.TradingSymbol]; !dup {
			idx.bySymbol[inst.TradingSymbol] = i
		}
	}
	return idx
}

// Lookup finds an instrument by exact trading symbol
func (i *Index) Lookup(symbol string) (contracts.Instrument, bool) {
	n, ok := i.bySymbol[symbol]
	if !ok {
		return contracts.Instrument{}, false
	}
	return i.Instruments[n], true
}

// Len returns the number of instruments
func (i *Index) Len() int {
	return len(i.Instruments)
}

type catalogArgs struct {
	Exchange string
}

// Catalog memoizes instrument dumps per exchange
// ⭐ SSOT: 종목 마스터 캐시
type Catalog struct {
	provider contracts.MarketDataProvider
	memo     *memo.Func[catalogArgs, *Index]
}

// NewCatalog creates a memoized catalog with the given TTL
func NewCatalog(provider contracts.MarketDataProvider, ttl time.Duration, opts ...memo.Option) *Catalog {
	c := &Catalog{provider: provider}
	c.memo = memo.New("catalog", ttl, c.load, opts...)
	return c
}

func (c *Catalog) load(ctx context.Context, args catalogArgs) (*Index, error) {
	list, err := c.provider.ListInstruments(ctx, args.Exchange)
	if err != nil {
		return nil, err
	}
	return NewIndex(args.Exchange, list), nil
}

// Index returns the (possibly cached) catalog for an exchange
func (c *Catalog) Index(ctx context.Context, exchange string) (*Index, error) {
	return c.memo.Get(ctx, catalogArgs{Exchange: exchange})
}

// Refresh reloads the catalog regardless of age
func (c *Catalog) Refresh(ctx context.Context, exchange string) (*Index, error) {
	return c.memo.Refresh(ctx, catalogArgs{Exchange: exchange})
}

// Stats returns cache counters
func (c *Catalog) Stats() memo.Stats {
	return c.memo.Stats()
}
