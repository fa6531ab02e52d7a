package kite

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/pkg/config"
	"github.com/wonny/watchlist/pkg/httputil"
	"github.com/wonny/watchlist/pkg/logger"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.Nop()
	cfg := config.KiteConfig{APIKey: "key", AccessToken: "token", BaseURL: srv.URL}
	hc := httputil.New(log).DisableRetry()
	return NewClient(cfg, Transports{Default: hc}, ist, log)
}

const instrumentsCSV = `instrument_token,exchange_token,tradingsymbol,name,last_price,expiry,strike,tick_size,lot_size,instrument_type,segment,exchange
408065,1594,INFY,INFOSYS,0,,0,0.05,1,EQ,NSE,NSE
256265,1001,NIFTY 50,NIFTY 50,0,,0,0,0,EQ,INDICES,NSE
13238274,51712,INFY25MAYFUT,INFY,0,2025-05-29,0,0.1,400,FUT,NFO-FUT,NFO
bad,0,BROKEN,,0,,0,0,0,EQ,NSE,NSE
`

func TestListInstruments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/instruments/NSE", r.URL.Path)
		assert.Equal(t, "3", r.Header.Get("X-Kite-Version"))
		assert.Equal(t, "token key:token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(instrumentsCSV))
	})

	got, err := c.ListInstruments(context.Background(), "NSE")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, contracts.InstrumentID(408065), got[0].InstrumentID)
	assert.Equal(t, "INFY", got[0].TradingSymbol)
	assert.False(t, got[0].HasExpiry())

	assert.Equal(t, "NIFTY 50", got[1].TradingSymbol)
	assert.Equal(t, "INDICES", got[1].Segment)

	fut := got[2]
	assert.True(t, fut.IsFuture("NFO"))
	assert.Equal(t, 400, fut.LotSize)
	assert.True(t, fut.Expiry.Equal(time.Date(2025, 5, 29, 0, 0, 0, 0, ist)))
}

func TestParseInstrumentsCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"empty body", "", 0, false},
		{"header only", "instrument_token,tradingsymbol\n", 0, false},
		{"missing token column", "tradingsymbol\nINFY\n", 0, true},
		{"columns reordered", "tradingsymbol,instrument_token\nINFY,408065\nTCS,2953217\n", 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInstrumentsCSV(strings.NewReader(tt.input), ist)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestGetBars(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/instruments/historical/408065/5minute", r.URL.Path)
		assert.Equal(t, "2025-04-15 09:15:00", r.URL.Query().Get("from"))
		assert.Equal(t, "2025-04-15 15:30:00", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`{"status":"success","data":{"candles":[
			["2025-04-15T09:15:00+0530",100,105,99,104,1200],
			["2025-04-15T09:20:00+0530",104,106,103,105.5,800,0]
		]}}`))
	})

	from := time.Date(2025, 4, 15, 9, 15, 0, 0, ist)
	to := time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC) // 15:30 IST
	bars, err := c.GetBars(context.Background(), 408065, from, to, contracts.Interval5Minute)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.True(t, bars[0].Time.Equal(from))
	assert.Equal(t, 100.0, bars[0].Open)
	assert.Equal(t, int64(1200), bars[0].Volume)
	assert.Equal(t, 105.5, bars[1].Close)
}

func TestGetBars_MalformedCandle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","data":{"candles":[["2025-04-15T09:15:00+0530",100,105]]}}`))
	})

	_, err := c.GetBars(context.Background(), 1, time.Now(), time.Now(), contracts.IntervalDay)
	assert.ErrorIs(t, err, contracts.ErrUpstream)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-04-15T09:15:00+0530", time.Date(2025, 4, 15, 3, 45, 0, 0, time.UTC)},
		{"2025-04-15T03:45:00Z", time.Date(2025, 4, 15, 3, 45, 0, 0, time.UTC)},
		{"2025-04-15T03:45:00", time.Date(2025, 4, 15, 3, 45, 0, 0, time.UTC)},
		{"2025-04-15 03:45:00", time.Date(2025, 4, 15, 3, 45, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s", got)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestGetQuote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		switch r.URL.Query().Get("i") {
		case "NFO:INFY25MAYFUT":
			_, _ = w.Write([]byte(`{"status":"success","data":{"NFO:INFY25MAYFUT":{
				"instrument_token":13238274,"timestamp":"2025-04-15 10:00:00",
				"last_price":1512.5,"volume":90000,"oi":1250400,
				"ohlc":{"open":1500,"high":1520,"low":1495,"close":1498}}}}`))
		case "NSE:NEWCO":
			_, _ = w.Write([]byte(`{"status":"success","data":{"NSE:NEWCO":{"instrument_token":999,"last_price":10}}}`))
		default:
			_, _ = w.Write([]byte(`{"status":"success","data":{}}`))
		}
	})
	ctx := context.Background()

	q, err := c.GetQuote(ctx, "NFO:INFY25MAYFUT")
	require.NoError(t, err)
	require.NotNil(t, q)
	require.NotNil(t, q.OpenInterest)
	assert.Equal(t, int64(1250400), *q.OpenInterest)
	assert.Equal(t, contracts.InstrumentID(13238274), *q.InstrumentID)
	assert.Equal(t, 1500.0, q.Open)
	assert.True(t, q.Timestamp.Equal(time.Date(2025, 4, 15, 10, 0, 0, 0, ist)))

	q, err = c.GetQuote(ctx, "NSE:NEWCO")
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Nil(t, q.OpenInterest)
	assert.Equal(t, contracts.InstrumentID(999), *q.InstrumentID)

	q, err = c.GetQuote(ctx, "NSE:NOPE")
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestErrorEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"status":"error","message":"Incorrect api_key or access_token.","error_type":"TokenException"}`))
	})

	_, err := c.GetQuote(context.Background(), "NSE:INFY")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrUpstream)

	var upErr *contracts.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusForbidden, upErr.Status)
	assert.Equal(t, "quote", upErr.Op)
	assert.Contains(t, err.Error(), "TokenException")
}

func TestMissingCredentials(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { calls++ })
	c.cfg.AccessToken = ""

	_, err := c.ListInstruments(context.Background(), "NSE")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.ErrorIs(t, err, contracts.ErrUpstream)
	assert.Zero(t, calls)
}
