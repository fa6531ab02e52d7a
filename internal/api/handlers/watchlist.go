package handlers

import (
	"net/http"

	"github.com/wonny/watchlist/internal/app"
	"github.com/wonny/watchlist/internal/watchlist"
	"github.com/wonny/watchlist/pkg/logger"
)

// WatchlistHandler serves the dashboard table
// ⭐ SSOT: 워치리스트 API 핸들러는 이 구조체에서만
type WatchlistHandler struct {
	app    *app.App
	logger *logger.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(a *app.App, log *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{app: a, logger: log}
}

// symbolsFrom returns ?symbols=A,B or the configured list
func (h *WatchlistHandler) symbolsFrom(r *http.Request) []string {
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		if syms := watchlist.ParseSymbols(raw); len(syms) > 0 {
			return syms
		}
	}
	return h.app.Symbols
}

// GetWatchlist builds the watchlist
// GET /api/watchlist?symbols=INFY,TCS
func (h *WatchlistHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	snap := h.app.Watchlist.Build(r.Context(), h.symbolsFrom(r))
	respondOK(w, snap)
}

// GetCacheStats returns memoizer counters
// GET /api/cache/stats
func (h *WatchlistHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.app.CacheStats())
}
