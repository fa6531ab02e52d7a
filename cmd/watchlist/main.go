package main

import (
	"os"

	"github.com/wonny/watchlist/cmd/watchlist/commands"
)

// main is the entry point for the watchlist CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/watchlist [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
