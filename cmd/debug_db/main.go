package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/kalshi_ledger/internal/infrastructure/storage"
)

func main() {
	dbPath := flag.String("db", "ledger.db", "exported sqlite file")
	limit := flag.Int("runs", 10, "number of runs to show")
	flag.Parse()

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Printf("Failed to init sqlite: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	runs, err := store.ListRuns(ctx, *limit)
	if err != nil {
		fmt.Printf("Failed to list runs: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d runs:\n", len(runs))
	for _, r := range runs {
		fmt.Printf("- Run %d (%s) at %s: %d transactions, %d matched, profit %.2f, net %.2f, win %.1f%%, Sharpe %.2f\n",
			r.ID, r.Label, r.CreatedAt.Format("2006-01-02 15:04"), r.Transactions, r.MatchedTrades,
			r.TotalProfit, r.MatchedNetProfit, r.WinRate*100, r.SharpeRatio)

		trades, err := store.ListMatchedTrades(ctx, r.ID)
		if err != nil {
			fmt.Printf("  ❌ Failed to get trades: %v\n", err)
			continue
		}
		if len(trades) == 0 {
			fmt.Printf("  ⚠️ No matched trades\n")
			continue
		}
		for _, t := range trades {
			fmt.Printf("  lot %-4d %-28s %-3s %-10s x%-5d net %8.2f roi %6.1f%%\n",
				t.LotID, t.Ticker, t.Direction, t.ExitKind, t.Contracts, t.NetProfit, t.ROI*100)
		}
	}
}
