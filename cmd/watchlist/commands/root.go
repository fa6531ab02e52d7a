package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/watchlist/internal/app"
	"github.com/wonny/watchlist/pkg/config"
	"github.com/wonny/watchlist/pkg/logger"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Intraday watchlist - 시세/섹터/선물 OI 대시보드 데이터 계층",
	Long: `Watchlist CLI

Kite Connect 기반 관심종목 데이터 계층.
종목 해석, 캔들 조회, 선물 OI, 섹터 대비 등락률을 TTL 캐시와 함께 제공합니다.

Usage:
  go run ./cmd/watchlist [command]

Examples:
  go run ./cmd/watchlist api
  go run ./cmd/watchlist show INFY,TCS
  go run ./cmd/watchlist resolve RELIANCE
  go run ./cmd/watchlist scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug log level)")
}

// bootstrap loads config and builds the component graph.
// Callers must Close the returned App.
func bootstrap() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	a, err := app.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init app: %w", err)
	}
	return a, nil
}
