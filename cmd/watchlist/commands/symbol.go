package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/internal/news"
)

var (
	resolveCmd = &cobra.Command{
		Use:   "resolve [symbol]",
		Short: "종목 코드 해석 (catalog → quote)",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}

	barsCmd = &cobra.Command{
		Use:   "bars [symbol]",
		Short: "캔들 조회 (기본: 당일 분봉)",
		Args:  cobra.ExactArgs(1),
		RunE:  runBars,
	}

	oiCmd = &cobra.Command{
		Use:   "oi [symbol]",
		Short: "근월물 선물 OI 조회",
		Args:  cobra.ExactArgs(1),
		RunE:  runOI,
	}

	deviationCmd = &cobra.Command{
		Use:   "deviation [symbol]",
		Short: "섹터 지수 대비 등락률",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeviation,
	}

	newsCmd = &cobra.Command{
		Use:   "news [symbol]",
		Short: "최근 뉴스 및 기업 이벤트",
		Args:  cobra.ExactArgs(1),
		RunE:  runNews,
	}
)

var (
	barsDaily bool
	newsCount int
)

func init() {
	rootCmd.AddCommand(resolveCmd, barsCmd, oiCmd, deviationCmd, newsCmd)

	barsCmd.Flags().BoolVar(&barsDaily, "daily", false, "일봉 조회 (최근 5일)")
	newsCmd.Flags().IntVar(&newsCount, "count", news.DefaultCount, "뉴스 건수")
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.Resolver.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	PrintKeyValue(out, "Symbol", contracts.NormalizeSymbol(args[0]), 10)
	PrintKeyValue(out, "Exchange", a.Resolver.Exchange(), 10)
	PrintKeyValue(out, "Token", strconv.FormatInt(int64(id), 10), 10)
	return nil
}

func runBars(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	fetch := a.Bars.Intraday
	if barsDaily {
		fetch = a.Bars.Daily
	}
	series, err := fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	PrintHeader(out, fmt.Sprintf("%s %s (%d bars)", series.Symbol, series.Interval, series.Len()))

	widths := []int{25, 10, 10, 10, 10, 12}
	PrintTableHeader(out, []string{"TIME", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME"}, widths)
	for _, b := range series.Bars {
		PrintTableRow(out, []string{
			b.Time.Format(time.RFC3339),
			FormatFloat(b.Open),
			FormatFloat(b.High),
			FormatFloat(b.Low),
			FormatFloat(b.Close),
			strconv.FormatInt(b.Volume, 10),
		}, widths)
	}
	return nil
}

func runOI(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	oi, err := a.Futures.Lookup(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if !oi.Available {
		return fmt.Errorf("open interest for %s: %w", contracts.NormalizeSymbol(args[0]), contracts.ErrNoData)
	}

	out := cmd.OutOrStdout()
	PrintKeyValue(out, "Contract", oi.Contract.TradingSymbol, 10)
	PrintKeyValue(out, "Expiry", oi.Contract.Expiry.Format("2006-01-02"), 10)
	PrintKeyValue(out, "OI", strconv.FormatInt(oi.Value, 10), 10)
	return nil
}

func runDeviation(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	d := a.Sector.SectorDeviation(cmd.Context(), args[0])

	out := cmd.OutOrStdout()
	PrintKeyValue(out, "Symbol", d.Symbol, 10)
	PrintKeyValue(out, "Sector", d.SectorIndex, 10)
	PrintKeyValue(out, "Equity", fmt.Sprintf("%s (%s)", FormatPct(d.Equity.Pct), d.Equity.Source), 10)
	PrintKeyValue(out, "Index", fmt.Sprintf("%s (%s)", FormatPct(d.Sector.Pct), d.Sector.Source), 10)
	PrintKeyValue(out, "Deviation", FormatPct(d.Pct), 10)
	return nil
}

func runNews(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	bundle, err := a.News.NewsAndEvents(cmd.Context(), args[0], newsCount)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	PrintHeader(out, "News")
	for _, item := range bundle.News {
		when := "-"
		if item.PublishedAt != nil {
			when = item.PublishedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(out, "   • [%s] %s (%s)\n", when, item.Title, item.Source)
	}

	PrintHeader(out, "Corporate actions")
	for _, ev := range bundle.Events {
		when := "-"
		if !ev.Date.IsZero() {
			when = ev.Date.Format("2006-01-02")
		}
		fmt.Fprintf(out, "   • [%s] %s %s\n", when, ev.Type, ev.Details)
	}
	return nil
}
