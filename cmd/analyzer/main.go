package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/vitos/kalshi_ledger/internal/config"
	"github.com/vitos/kalshi_ledger/internal/domain"
	"github.com/vitos/kalshi_ledger/internal/infrastructure/csvsource"
	"github.com/vitos/kalshi_ledger/internal/infrastructure/logger"
	"github.com/vitos/kalshi_ledger/internal/infrastructure/storage"
	"github.com/vitos/kalshi_ledger/internal/infrastructure/tracing"
	"github.com/vitos/kalshi_ledger/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config file")
	capital := flag.Float64("capital", 0, "starting capital (overrides config)")
	sameSide := flag.Bool("same-side", false, "close same-direction lots only and drop |ROI| >= 10 trades")
	export := flag.String("export", "", "sqlite file to export the run to")
	top := flag.Int("top", 20, "number of trades to print")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Println("Usage: analyzer [flags] export.csv [more.csv ...]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *capital > 0 {
		cfg.Analysis.StartingCapital = *capital
	}
	opts := cfg.PortfolioOptions()
	if *sameSide {
		opts.Policy = usecase.SameSideMatchingPolicy()
	}
	if *export != "" {
		cfg.Export.SQLitePath = *export
	}

	log, err := logger.NewConsoleLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(cfg.Tracing.Enabled, os.Stderr)
	if err != nil {
		log.Error("Failed to init tracing", zap.Error(err))
	} else {
		defer shutdownTracing(ctx)
	}

	svc := usecase.NewPortfolioService(csvsource.NewReader(), opts, log)
	snap, err := svc.AnalyzeFiles(ctx, cfg.Analysis.StartingCapital, files...)
	if err != nil {
		fmt.Printf("Analysis failed: %v\n", err)
		os.Exit(1)
	}

	printSummary(snap)
	printTrades(snap.MatchedTrades, *top)
	printDiagnostics(snap.Diagnostics)

	if cfg.Export.SQLitePath != "" {
		store, err := storage.NewSQLiteStore(cfg.Export.SQLitePath)
		if err != nil {
			fmt.Printf("Failed to open export db: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		runID, err := store.SaveSnapshot(ctx, strings.Join(files, ","), snap)
		if err != nil {
			fmt.Printf("Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nExported run %d to %s\n", runID, cfg.Export.SQLitePath)
	}
}

func printSummary(snap *domain.Snapshot) {
	s := snap.Stats
	r := snap.Risk
	fmt.Printf("Analyzed %d transactions from %d file(s)\n\n", s.TotalTransactions, len(snap.Sources))
	fmt.Printf("%-24s %d (Yes %d / No %d)\n", "Tickers:", s.UniqueTickers, s.YesCount, s.NoCount)
	fmt.Printf("%-24s %d entries, %d exits, %d settlements\n", "Transactions:", s.EntryCount, s.ExitCount, s.SettlementCount)
	fmt.Printf("%-24s %.2f\n", "Total realized profit:", s.TotalProfit)
	fmt.Printf("%-24s %.2f\n", "Total fees:", s.TotalFees)
	fmt.Printf("%-24s %.1f%% (settlements %.1f%%)\n", "Win rate:", s.WinRate*100, s.SettlementWinRate*100)
	fmt.Printf("%-24s %.1f¢ -> %.1f¢\n", "Avg entry -> exit:", s.AvgEntryPrice, s.AvgExitPrice)
	fmt.Printf("%-24s %.2f days\n", "Avg holding period:", s.AvgHoldingDays)
	fmt.Printf("%-24s %d trades, net %.2f, profit factor %.2f\n", "Matched:", s.MatchedTrades, s.MatchedNetProfit, s.ProfitFactor)
	fmt.Printf("%-24s %d unmatched, %d oversized, %d filtered, %d open lots\n", "Matching:",
		len(snap.Report.UnmatchedExits), len(snap.Report.OversizedExits), snap.Report.FilteredByROI, snap.Report.OpenLots)
	fmt.Printf("%-24s total %.2f%%, annualized %.2f%%, vol %.2f%%, Sharpe %.2f, max DD %.2f%%\n", "Risk:",
		r.TotalReturn*100, r.AnnualizedReturn*100, r.AnnualizedVolatility*100, r.SharpeRatio, r.MaxDrawdown*100)
}

func printTrades(trades []domain.MatchedTrade, limit int) {
	if len(trades) == 0 || limit <= 0 {
		return
	}
	sorted := make([]domain.MatchedTrade, len(trades))
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		return abs(sorted[i].NetProfit) > abs(sorted[j].NetProfit)
	})

	fmt.Printf("\nTop trades by |net profit|:\n")
	fmt.Printf("%-28s | %-3s | %-10s | %-6s | %-7s | %-7s | %-10s | %s\n",
		"Ticker", "Dir", "Exit", "Qty", "Entry¢", "Exit¢", "Net", "ROI")
	fmt.Println("--------------------------------------------------------------------------------------------")

	for i, t := range sorted {
		if i >= limit {
			break
		}
		fmt.Printf("%-28s | %-3s | %-10s | %-6d | %-7.1f | %-7.1f | %-10.2f | %.1f%%\n",
			t.Ticker, t.Direction, t.ExitKind, t.Contracts, t.EntryPrice, t.ExitPrice, t.NetProfit, t.ROI*100)
	}
}

func printDiagnostics(diags []string) {
	if len(diags) == 0 {
		return
	}
	fmt.Printf("\n%d problem(s):\n", len(diags))
	for _, d := range diags {
		fmt.Printf("  - %s\n", d)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
