package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/watchlist/internal/app"
	"github.com/wonny/watchlist/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// StreamHandler pushes watchlist snapshots over WebSocket
type StreamHandler struct {
	watchlist *WatchlistHandler
	interval  time.Duration
	upgrader  websocket.Upgrader
	logger    *logger.Logger
}

// NewStreamHandler creates a stream handler that rebuilds every interval
func NewStreamHandler(a *app.App, interval time.Duration, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		watchlist: NewWatchlistHandler(a, log),
		interval:  interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// Stream upgrades and pushes a snapshot immediately, then every interval
// GET /ws/watchlist?symbols=INFY,TCS
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	symbols := h.watchlist.symbolsFrom(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	// Reader: handles pong / close frames
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx := r.Context()
	push := func() bool {
		snap := h.watchlist.app.Watchlist.Build(ctx, symbols)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(Response{Success: true, Data: snap}); err != nil {
			h.logger.WithError(err).Debug("WebSocket write failed")
			return false
		}
		return true
	}

	if !push() {
		return
	}

	refresh := time.NewTicker(h.interval)
	defer refresh.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-refresh.C:
			if !push() {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
