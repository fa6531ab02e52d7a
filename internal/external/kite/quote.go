package kite

import (
	"context"
	"net/url"
	"time"

	"github.com/wonny/watchlist/internal/contracts"
)

// quoteData is one entry of the /quote response, keyed by "EXCHANGE:SYMBOL"
type quoteData struct {
	InstrumentToken *int64   `json:"instrument_token"`
	Timestamp       string   `json:"timestamp"`
	LastPrice       float64  `json:"last_price"`
	Volume          int64    `json:"volume"`
	OI              *float64 `json:"oi"`
	OHLC            struct {
		Open  float64 `json:"open"`
		High  float64 `json:"high"`
		Low   float64 `json:"low"`
		Close float64 `json:"close"`
	} `json:"ohlc"`
}

// GetQuote fetches a full quote for one "EXCHANGE:SYMBOL".
// Kite omits unknown symbols from data, which maps to a nil quote.
func (c *Client) GetQuote(ctx context.Context, qualifiedSymbol string) (*contracts.Quote, error) {
	q := url.Values{}
	q.Set("i", qualifiedSymbol)

	var data map[string]quoteData
	if err := c.getJSON(ctx, c.quote, "quote", "/quote?"+q.Encode(), &data); err != nil {
		return nil, err
	}

	raw, ok := data[qualifiedSymbol]
	if !ok {
		c.logger.WithField("symbol", qualifiedSymbol).Debug("Quote not available")
		return nil, nil
	}

	quote := &contracts.Quote{
		LastPrice: raw.LastPrice,
		Volume:    raw.Volume,
		Open:      raw.OHLC.Open,
		High:      raw.OHLC.High,
		Low:       raw.OHLC.Low,
		Close:     raw.OHLC.Close,
	}
	if raw.InstrumentToken != nil {
		id := contracts.InstrumentID(*raw.InstrumentToken)
		quote.InstrumentID = &id
	}
	if raw.OI != nil {
		oi := int64(*raw.OI)
		quote.OpenInterest = &oi
	}
	if raw.Timestamp != "" {
		// Quote timestamps are exchange-local without an offset
		if t, err := time.ParseInLocation("2006-01-02 15:04:05", raw.Timestamp, c.location); err == nil {
			quote.Timestamp = t
		}
	}

	return quote, nil
}
