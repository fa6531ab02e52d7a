package instruments

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/pkg/logger"
)

// Strategy is one resolution tier.
// found=false with a nil error means "not here, try the next tier".
type Strategy struct {
	Name   string
	Lookup func(ctx context.Context, symbol string) (id contracts.InstrumentID, found bool, err error)
}

// CatalogStrategy looks the symbol up in the exchange catalog
func CatalogStrategy(catalog *Catalog, exchange string) Strategy {
	return Strategy{
		Name: "catalog",
		Lookup: func(ctx context.Context, symbol string) (contracts.InstrumentID, bool, error) {
			idx, err := catalog.Index(ctx, exchange)
			if err != nil {
				return 0, false, err
			}
			inst, ok := idx.Lookup(symbol)
			if !ok {
				return 0, false, nil
			}
			return inst.InstrumentID, true, nil
		},
	}
}

// QuoteStrategy asks the quote endpoint for exchange:symbol
func QuoteStrategy(quotes *Quotes, exchange string) Strategy {
	return Strategy{
		Name: "quote",
		Lookup: func(ctx context.Context, symbol string) (contracts.InstrumentID, bool, error) {
			q, err := quotes.Get(ctx, exchange, symbol)
			if err != nil {
				return 0, false, err
			}
			if q == nil || q.InstrumentID == nil {
				return 0, false, nil
			}
			return *q.InstrumentID, true, nil
		},
	}
}

// Resolver tries its strategies in order.
// When every tier answers "not here" the result is a *contracts.NotFoundError;
// when no tier succeeded and at least one failed, the failures are returned.
type Resolver struct {
	exchange string
	chain    []Strategy
	logger   *logger.Logger
}

// NewResolver builds the catalog → quote chain for an exchange
func NewResolver(exchange string, catalog *Catalog, quotes *Quotes, log *logger.Logger) *Resolver {
	return NewResolverWithChain(exchange, log,
		CatalogStrategy(catalog, exchange),
		QuoteStrategy(quotes, exchange),
	)
}

// NewResolverWithChain builds a resolver from an explicit strategy list
func NewResolverWithChain(exchange string, log *logger.Logger, chain ...Strategy) *Resolver {
	return &Resolver{
		exchange: exchange,
		chain:    chain,
		logger:   log.WithComponent("resolver"),
	}
}

// Resolve maps a trading symbol to its instrument id
func (r *Resolver) Resolve(ctx context.Context, symbol string) (contracts.InstrumentID, error) {
	symbol = contracts.NormalizeSymbol(symbol)
	if symbol == "" {
		return 0, &contracts.NotFoundError{Symbol: symbol, Exchange: r.exchange}
	}

	var errs []error
	for i, s := range r.chain {
		id, found, err := s.Lookup(ctx, symbol)
		if err != nil {
			r.logger.WithError(err).WithFields(map[string]interface{}{
				"symbol":   symbol,
				"strategy": s.Name,
			}).Warn("Resolution tier failed")
			errs = append(errs, fmt.Errorf("%s lookup for %s: %w", s.Name, symbol, err))
			continue
		}
		if found {
			if i > 0 {
				r.logger.WithFields(map[string]interface{}{
					"symbol":   symbol,
					"strategy": s.Name,
				}).Debug("Resolved via fallback")
			}
			return id, nil
		}
	}

	if len(errs) > 0 {
		return 0, errors.Join(errs...)
	}
	return 0, &contracts.NotFoundError{Symbol: symbol, Exchange: r.exchange}
}

// Exchange returns the exchange this resolver serves
func (r *Resolver) Exchange() string {
	return r.exchange
}

var _ contracts.InstrumentResolver = (*Resolver)(nil)
