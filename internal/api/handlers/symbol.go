package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/watchlist/internal/app"
	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/internal/news"
	"github.com/wonny/watchlist/pkg/logger"
)

// SymbolHandler serves per-symbol lookups
type SymbolHandler struct {
	app    *app.App
	logger *logger.Logger
}

// NewSymbolHandler creates a new symbol handler
func NewSymbolHandler(a *app.App, log *logger.Logger) *SymbolHandler {
	return &SymbolHandler{app: a, logger: log}
}

func symbolVar(r *http.Request) string {
	return contracts.NormalizeSymbol(mux.Vars(r)["symbol"])
}

func (h *SymbolHandler) fail(w http.ResponseWriter, op, symbol string, err error) {
	status := statusFor(err)
	entry := h.logger.WithError(err).WithFields(map[string]interface{}{
		"op":     op,
		"symbol": symbol,
	})
	if status == http.StatusNotFound {
		entry.Debug("Symbol lookup failed")
	} else {
		entry.Error("Symbol lookup failed")
	}
	respondError(w, status, err.Error())
}

// Resolve returns the instrument id
// GET /api/symbols/{symbol}/resolve
func (h *SymbolHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	symbol := symbolVar(r)
	id, err := h.app.Resolver.Resolve(r.Context(), symbol)
	if err != nil {
		h.fail(w, "resolve", symbol, err)
		return
	}
	respondOK(w, map[string]interface{}{
		"symbol":           symbol,
		"exchange":         h.app.Resolver.Exchange(),
		"instrument_token": id,
	})
}

// GetBars returns bars
// GET /api/symbols/{symbol}/bars?interval=intraday|day
func (h *SymbolHandler) GetBars(w http.ResponseWriter, r *http.Request) {
	symbol := symbolVar(r)

	var (
		series contracts.BarSeries
		err    error
	)
	switch r.URL.Query().Get("interval") {
	case "", "intraday":
		series, err = h.app.Bars.Intraday(r.Context(), symbol)
	case "day", "daily":
		series, err = h.app.Bars.Daily(r.Context(), symbol)
	default:
		respondError(w, http.StatusBadRequest, "Invalid interval (valid: intraday, day)")
		return
	}
	if err != nil {
		h.fail(w, "bars", symbol, err)
		return
	}
	respondOK(w, series)
}

// GetOpenInterest returns the nearest future's OI
// GET /api/symbols/{symbol}/oi
func (h *SymbolHandler) GetOpenInterest(w http.ResponseWriter, r *http.Request) {
	symbol := symbolVar(r)
	res, err := h.app.Futures.Lookup(r.Context(), symbol)
	if err != nil {
		h.fail(w, "oi", symbol, err)
		return
	}

	data := map[string]interface{}{
		"symbol":    symbol,
		"available": res.Available,
		"oi":        nil,
		"contract":  nil,
	}
	if res.Contract.TradingSymbol != "" {
		data["contract"] = res.Contract
	}
	if res.Available {
		data["oi"] = res.Value
	}
	respondOK(w, data)
}

// GetChange returns the intraday change
// GET /api/symbols/{symbol}/change
func (h *SymbolHandler) GetChange(w http.ResponseWriter, r *http.Request) {
	symbol := symbolVar(r)
	respondOK(w, map[string]interface{}{
		"symbol": symbol,
		"change": h.app.Sector.IntradayChange(r.Context(), symbol),
	})
}

// GetDeviation returns the sector deviation
// GET /api/symbols/{symbol}/deviation
func (h *SymbolHandler) GetDeviation(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.app.Sector.SectorDeviation(r.Context(), symbolVar(r)))
}

// GetNews returns headlines and corporate actions
// GET /api/symbols/{symbol}/news?count=5
func (h *SymbolHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	symbol := symbolVar(r)

	count := news.DefaultCount
	if s := r.URL.Query().Get("count"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			count = n
		}
	}

	bundle, err := h.app.News.NewsAndEvents(r.Context(), symbol, count)
	if err != nil {
		h.fail(w, "news", symbol, err)
		return
	}
	respondOK(w, bundle)
}
