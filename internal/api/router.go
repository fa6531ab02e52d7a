package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/watchlist/internal/api/handlers"
	"github.com/wonny/watchlist/internal/app"
	"github.com/wonny/watchlist/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(a *app.App, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	watchlistHandler := handlers.NewWatchlistHandler(a, log)
	symbolHandler := handlers.NewSymbolHandler(a, log)
	streamHandler := handlers.NewStreamHandler(a, a.Config.Market.RefreshInterval, log)

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// WebSocket
	r.HandleFunc("/ws/watchlist", streamHandler.Stream).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Watchlist endpoints
	api.HandleFunc("/watchlist", watchlistHandler.GetWatchlist).Methods("GET")
	api.HandleFunc("/cache/stats", watchlistHandler.GetCacheStats).Methods("GET")

	// Symbol endpoints
	sym := api.PathPrefix("/symbols/{symbol}").Subrouter()
	sym.HandleFunc("/resolve", symbolHandler.Resolve).Methods("GET")
	sym.HandleFunc("/bars", symbolHandler.GetBars).Methods("GET")
	sym.HandleFunc("/oi", symbolHandler.GetOpenInterest).Methods("GET")
	sym.HandleFunc("/change", symbolHandler.GetChange).Methods("GET")
	sym.HandleFunc("/deviation", symbolHandler.GetDeviation).Methods("GET")
	sym.HandleFunc("/news", symbolHandler.GetNews).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "watchlist-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]interface{}{
						"success": false,
						"error":   "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
