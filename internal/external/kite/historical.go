package kite

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/watchlist/internal/contracts"
)

const requestTimeLayout = "2006-01-02 15:04:05"

// candleTimeLayouts are tried in order; layouts without a zone parse as UTC
var candleTimeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a provider timestamp; naive values are taken as UTC
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range candleTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// GetBars fetches historical candles for an instrument
func (c *Client) GetBars(ctx context.Context, id contracts.InstrumentID, from, to time.Time, interval contracts.Interval) ([]contracts.Bar, error) {
	q := url.Values{}
	q.Set("from", from.In(c.location).Format(requestTimeLayout))
	q.Set("to", to.In(c.location).Format(requestTimeLayout))
	path := fmt.Sprintf("/instruments/historical/%d/%s?%s", id, url.PathEscape(string(interval)), q.Encode())

	var data struct {
		Candles [][]interface{} `json:"candles"`
	}
	if err := c.getJSON(ctx, c.historical, "historical", path, &data); err != nil {
		return nil, err
	}

	bars, err := parseCandles(data.Candles)
	if err != nil {
		return nil, &contracts.UpstreamError{Op: "historical", Err: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"instrument_token": id,
		"interval":         interval,
		"count":            len(bars),
	}).Debug("Fetched candles")

	return bars, nil
}

// parseCandles converts [ts, o, h, l, c, v(, oi)] rows
func parseCandles(rows [][]interface{}) ([]contracts.Bar, error) {
	bars := make([]contracts.Bar, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("candle %d: expected at least 6 fields, got %d", i, len(row))
		}

		ts, ok := row[0].(string)
		if !ok {
			return nil, fmt.Errorf("candle %d: timestamp is %T", i, row[0])
		}
		t, err := ParseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}

		nums := make([]float64, 5)
		for j := range nums {
			v, ok := row[j+1].(float64)
			if !ok {
				return nil, fmt.Errorf("candle %d: field %d is %T", i, j+1, row[j+1])
			}
			nums[j] = v
		}

		bars = append(bars, contracts.Bar{
			Time:   t,
			Open:   nums[0],
			High:   nums[1],
			Low:    nums[2],
			Close:  nums[3],
			Volume: int64(nums[4]),
		})
	}
	return bars, nil
}
