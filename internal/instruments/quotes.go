package instruments

import (
	"context"
	"time"

	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/internal/memo"
)

type quoteArgs struct {
	Exchange string
	Symbol   string
}

// Quotes memoizes single-symbol quote lookups.
// A missing symbol (nil quote) is a valid result and is cached like any other.
type Quotes struct {
	provider contracts.MarketDataProvider
	memo     *memo.Func[quoteArgs, *contracts.Quote]
}

// NewQuotes creates a memoized quote source
func NewQuotes(provider contracts.MarketDataProvider, ttl time.Duration, opts ...memo.Option) *Quotes {
	q := &Quotes{provider: provider}
	q.memo = memo.New("quote", ttl, q.load, opts...)
	return q
}

func (q *Quotes) load(ctx context.Context, args quoteArgs) (*contracts.Quote, error) {
	return q.provider.GetQuote(ctx, contracts.QualifiedSymbol(args.Exchange, args.Symbol))
}

// Get returns the quote for exchange:symbol, nil when the provider has none
func (q *Quotes) Get(ctx context.Context, exchange, symbol string) (*contracts.Quote, error) {
	return q.memo.Get(ctx, quoteArgs{Exchange: exchange, Symbol: symbol})
}

// Stats returns cache counters
func (q *Quotes) Stats() memo.Stats {
	return q.memo.Stats()
}
