package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/watchlist/internal/api"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST/WebSocket API 서버를 시작합니다.

Endpoints:
  GET  /health                          - Health check
  GET  /ws/watchlist                    - 관심종목 스트림 (WebSocket)
  GET  /api/watchlist?symbols=INFY,TCS  - 관심종목 스냅샷
  GET  /api/cache/stats                 - 캐시 통계
  GET  /api/symbols/{symbol}/resolve    - 종목 코드 해석
  GET  /api/symbols/{symbol}/bars       - 캔들 (?interval=intraday|daily)
  GET  /api/symbols/{symbol}/oi         - 근월물 OI
  GET  /api/symbols/{symbol}/change     - 당일 등락률
  GET  /api/symbols/{symbol}/deviation  - 섹터 대비 등락률
  GET  /api/symbols/{symbol}/news       - 뉴스/기업 이벤트

Example:
  go run ./cmd/watchlist api
  go run ./cmd/watchlist api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Watchlist API Server ===")

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.Config.Port = apiPort
	}
	log := a.Logger

	router := api.NewRouter(a, log)
	server := api.New(a.Config, log, router)

	// Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Fprintf(out, "\n✅ Server running on http://localhost:%s\n", a.Config.Port)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
