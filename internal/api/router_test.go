package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/watchlist/internal/app"
	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/internal/external/events"
	"github.com/wonny/watchlist/internal/external/ft"
	"github.com/wonny/watchlist/internal/testutil"
	"github.com/wonny/watchlist/pkg/config"
	"github.com/wonny/watchlist/pkg/logger"
)

type headlines struct{}

func (headlines) Search(context.Context, string, int) ([]ft.Headline, error) {
	return []ft.Headline{{Title: "Infosys beats estimates", PublishedAt: "2025-04-15T04:30:00Z"}}, nil
}

type actions struct{}

func (actions) Actions(context.Context, string) ([]events.Action, error) {
	return []events.Action{{Type: "Dividend", Details: "Rs 22"}}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		Env:  "development",
		Kite: config.KiteConfig{Exchange: "NSE", DerivativesExchange: "NFO"},
		Market: config.MarketConfig{
			Timezone:           "Asia/Kolkata",
			WatchlistFile:      filepath.Join(t.TempDir(), "none.yaml"),
			DefaultSectorIndex: "NIFTY 50",
			IntradayInterval:   "5minute",
			RefreshInterval:    50 * time.Millisecond,
		},
		Cache: config.CacheConfig{
			Catalog: time.Hour, Intraday: time.Minute, Daily: time.Minute,
			Quote: time.Minute, News: time.Minute, Events: time.Minute,
		},
	}
	loc := cfg.Location()

	p := testutil.NewProvider()
	p.AddInstrument("NSE", contracts.Instrument{InstrumentID: 408065, TradingSymbol: "INFY"})
	p.AddInstrument("NSE", contracts.Instrument{InstrumentID: 2, TradingSymbol: "NIFTY IT"})
	p.AddInstrument("NFO", contracts.Instrument{
		InstrumentID: 3, TradingSymbol: "INFY25MAYFUT", Segment: "NFO-FUT",
		Expiry: time.Date(2099, 5, 29, 0, 0, 0, 0, loc),
	})
	p.SetBars(408065, contracts.Interval5Minute, []contracts.Bar{{Open: 100, High: 110, Low: 100, Close: 110, Volume: 10}})
	p.SetBars(408065, contracts.IntervalDay, []contracts.Bar{{Close: 100}, {Close: 104}})
	p.SetBars(2, contracts.Interval5Minute, []contracts.Bar{{Open: 100, Close: 104}})
	p.SetQuote("NFO:INFY25MAYFUT", testutil.QuoteWithOI(42))

	a, err := app.NewWithSources(cfg, logger.Nop(), app.Sources{
		Provider: p, Headlines: headlines{}, Actions: actions{},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(a, logger.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (int, envelope) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSymbolRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantInData string
	}{
		{"resolve", "/api/symbols/infy/resolve", http.StatusOK, `"instrument_token":408065`},
		{"resolve unknown", "/api/symbols/GHOST/resolve", http.StatusNotFound, ""},
		{"intraday bars", "/api/symbols/INFY/bars", http.StatusOK, `"interval":"5minute"`},
		{"daily bars", "/api/symbols/INFY/bars?interval=day", http.StatusOK, `"interval":"day"`},
		{"bad interval", "/api/symbols/INFY/bars?interval=week", http.StatusBadRequest, ""},
		{"open interest", "/api/symbols/INFY/oi", http.StatusOK, `"oi":42`},
		{"no futures", "/api/symbols/NIFTY%20IT/oi", http.StatusOK, `"available":false`},
		{"change", "/api/symbols/INFY/change", http.StatusOK, `"source":"intraday"`},
		{"deviation", "/api/symbols/INFY/deviation", http.StatusOK, `"deviation_pct":6`},
		{"news", "/api/symbols/INFY/news", http.StatusOK, `"Dividend"`},
		{"cache stats", "/api/cache/stats", http.StatusOK, `"name":"catalog"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := get(t, srv, tt.path)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, status == http.StatusOK, env.Success)
			if tt.wantInData != "" {
				assert.Contains(t, string(env.Data), tt.wantInData)
			}
			if !env.Success {
				assert.NotEmpty(t, env.Error)
			}
		})
	}
}

func TestWatchlistRoute(t *testing.T) {
	srv := newTestServer(t)

	status, env := get(t, srv, "/api/watchlist?symbols=infy,ghost")
	require.Equal(t, http.StatusOK, status)

	var snap struct {
		Rows []struct {
			Symbol    string `json:"symbol"`
			FuturesOI *int64 `json:"futures_oi"`
			Error     string `json:"error"`
		} `json:"rows"`
		Failed int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, "INFY", snap.Rows[0].Symbol)
	require.NotNil(t, snap.Rows[0].FuturesOI)
	assert.Equal(t, int64(42), *snap.Rows[0].FuturesOI)
	assert.NotEmpty(t, snap.Rows[1].Error)
	assert.Equal(t, 1, snap.Failed)
}

func TestWatchlistStream(t *testing.T) {
	srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/watchlist?symbols=INFY"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var env envelope
		require.NoError(t, conn.ReadJSON(&env))
		assert.True(t, env.Success)
		assert.Contains(t, string(env.Data), `"symbol":"INFY"`)
	}
}
