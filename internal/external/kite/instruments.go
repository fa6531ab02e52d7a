package kite

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/wonny/watchlist/internal/contracts"
)

// ListInstruments downloads the instrument dump (CSV) for an exchange
func (c *Client) ListInstruments(ctx context.Context, exchange string) ([]contracts.Instrument, error) {
	body, err := c.get(ctx, c.instrument, "instruments", "/instruments/"+url.PathEscape(exchange))
	if err != nil {
		return nil, err
	}

	instruments, err := parseInstrumentsCSV(bytes.NewReader(body), c.location)
	if err != nil {
		return nil, &contracts.UpstreamError{Op: "instruments", Err: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"exchange": exchange,
		"count":    len(instruments),
	}).Debug("Fetched instrument catalog")

	return instruments, nil
}

// parseInstrumentsCSV parses the Kite instrument dump.
// Columns are located by header name; rows with an unparseable token are skipped.
func parseInstrumentsCSV(r io.Reader, loc *time.Location) ([]contracts.Instrument, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"instrument_token", "tradingsymbol"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []contracts.Instrument
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		token, err := strconv.ParseInt(field(row, "instrument_token"), 10, 64)
		if err != nil {
			continue
		}

		inst := contracts.Instrument{
			InstrumentID:   contracts.InstrumentID(token),
			TradingSymbol:  field(row, "tradingsymbol"),
			Name:           field(row, "name"),
			Exchange:       field(row, "exchange"),
			Segment:        field(row, "segment"),
			InstrumentType: field(row, "instrument_type"),
		}
		if lot, err := strconv.Atoi(field(row, "lot_size")); err == nil {
			inst.LotSize = lot
		}
		if exp := field(row, "expiry"); exp != "" {
			if t, err := time.ParseInLocation("2006-01-02", exp, loc); err == nil {
				inst.Expiry = t
			}
		}

		out = append(out, inst)
	}

	return out, nil
}
