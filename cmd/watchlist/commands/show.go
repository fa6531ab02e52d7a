package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/watchlist/internal/watchlist"
)

// showCmd prints the watchlist table
var showCmd = &cobra.Command{
	Use:   "show [symbols]",
	Short: "관심종목 스냅샷 출력",
	Long: `VWAP, 피벗, 거래량 급증, 섹터 대비 등락률, 근월물 OI를 표로 출력합니다.

심볼을 생략하면 WATCHLIST_FILE (없으면 기본 목록)을 사용합니다.

Example:
  go run ./cmd/watchlist show
  go run ./cmd/watchlist show INFY,TCS,RELIANCE`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	symbols := a.Symbols
	if len(args) == 1 {
		symbols = watchlist.ParseSymbols(args[0])
	}

	snap := a.Watchlist.Build(cmd.Context(), symbols)
	out := cmd.OutOrStdout()

	PrintHeader(out, fmt.Sprintf("Watchlist @ %s", snap.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	PrintSnapshot(out, snap)

	if snap.Failed > 0 {
		fmt.Fprintln(out)
		PrintWarning(out, fmt.Sprintf("%d/%d symbols failed", snap.Failed, len(snap.Rows)))
	}
	return nil
}

var snapshotWidths = []int{12, 10, 10, 10, 10, 10, 10, 6, 24, 9, 12}

// PrintSnapshot prints one row per symbol, failures inline
func PrintSnapshot(w io.Writer, snap watchlist.Snapshot) {
	PrintTableHeader(w, []string{
		"SYMBOL", "VWAP", "PIVOT", "R1", "R2", "S1", "S2", "SURGE", "SECTOR", "DEV", "FUT OI",
	}, snapshotWidths)

	for _, r := range snap.Rows {
		if !r.OK() {
			fmt.Fprintf(w, "%-*s  ❌ %s\n", snapshotWidths[0], r.Symbol, r.Error)
			continue
		}
		surge := ""
		if r.VolumeSurge {
			surge = "🔥"
		}
		PrintTableRow(w, []string{
			r.Symbol,
			FormatFloat(r.VWAP),
			FormatFloat(r.Pivot),
			FormatFloat(r.R1),
			FormatFloat(r.R2),
			FormatFloat(r.S1),
			FormatFloat(r.S2),
			surge,
			strings.TrimSpace(r.SectorIndex),
			FormatPct(r.SectorDevPct),
			FormatOI(r.FuturesOI),
		}, snapshotWidths)
	}
}
