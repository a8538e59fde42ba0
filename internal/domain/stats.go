package domain

import "time"

// StatsSummary is the aggregate view over transactions and matched trades.
type StatsSummary struct {
	TotalTransactions int `json:"total_transactions"`
	UniqueTickers     int `json:"unique_tickers"`
	YesCount          int `json:"yes_count"`
	NoCount           int `json:"no_count"`
	EntryCount        int `json:"entry_count"`
	ExitCount         int `json:"exit_count"`
	SettlementCount   int `json:"settlement_count"`

	// Raw ledger sums, independent of matching quality.
	TotalFees   float64 `json:"total_fees"`
	TotalProfit float64 `json:"total_profit"`

	// Weighted over exit transactions.
	AvgEntryPrice float64 `json:"avg_entry_price"`
	AvgExitPrice  float64 `json:"avg_exit_price"`

	WinRate           float64 `json:"win_rate"`            // exit transactions with profit > 0
	SettlementWinRate float64 `json:"settlement_win_rate"` // settlement rows only
	MatchedWinRate    float64 `json:"matched_win_rate"`    // matched trades with net profit > 0

	AvgHoldingDays float64 `json:"avg_holding_days"` // entry-cost weighted

	MatchedTrades    int           `json:"matched_trades"`
	MatchedNetProfit float64       `json:"matched_net_profit"`
	GrossProfit      float64       `json:"gross_profit"`
	GrossLoss        float64       `json:"gross_loss"`
	ProfitFactor     float64       `json:"profit_factor"`
	LargestWin       float64       `json:"largest_win"`
	LargestLoss      float64       `json:"largest_loss"`
	AvgROI           float64       `json:"avg_roi"`
	ByTicker         []TickerStats `json:"by_ticker"`
}

type TickerStats struct {
	Ticker    string  `json:"ticker"`
	Trades    int     `json:"trades"`
	Contracts int     `json:"contracts"`
	NetProfit float64 `json:"net_profit"`
	Wins      int     `json:"wins"`
}

// PortfolioPoint is one day of the synthetic portfolio value series.
type PortfolioPoint struct {
	Date   time.Time `json:"date"`
	Value  float64   `json:"value"`
	Return float64   `json:"return"`
}

// RiskMetrics are derived from the daily portfolio value series.
// Sharpe uses the raw mean daily return; no risk-free rate is subtracted.
type RiskMetrics struct {
	StartingCapital      float64          `json:"starting_capital"`
	FinalValue           float64          `json:"final_value"`
	Days                 int              `json:"days"`
	MeanDailyReturn      float64          `json:"mean_daily_return"`
	DailyVolatility      float64          `json:"daily_volatility"`
	TotalReturn          float64          `json:"total_return"`
	AnnualizedReturn     float64          `json:"annualized_return"`
	AnnualizedVolatility float64          `json:"annualized_volatility"`
	SharpeRatio          float64          `json:"sharpe_ratio"`
	MaxDrawdown          float64          `json:"max_drawdown"`
	Series               []PortfolioPoint `json:"series"`
}
