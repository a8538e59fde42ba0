package domain

import "time"

// OversizedExit records contracts of an exit that found no open lot to close.
type OversizedExit struct {
	Ticker    string    `json:"ticker"`
	Direction Direction `json:"direction"`
	Time      time.Time `json:"time"`
	Requested int       `json:"requested"`
	Dropped   int       `json:"dropped"`
}

// MatchReport describes one matching pass.
type MatchReport struct {
	Entries        int             `json:"entries"`
	Exits          int             `json:"exits"`
	Skipped        int             `json:"skipped"` // neither entry nor exit
	Matched        int             `json:"matched"`
	OffsetCloses   int             `json:"offset_closes"`
	ClosedLots     int             `json:"closed_lots"`
	OpenLots       int             `json:"open_lots"`
	FilteredByROI  int             `json:"filtered_by_roi"`
	UnmatchedExits []UnmatchedExit `json:"unmatched_exits,omitempty"`
	OversizedExits []OversizedExit `json:"oversized_exits,omitempty"`
}

// Snapshot is the serializable result handed to the presentation layer.
type Snapshot struct {
	GeneratedAt   time.Time      `json:"generated_at"`
	Sources       []string       `json:"sources"`
	Transactions  []Transaction  `json:"transactions"`
	MatchedTrades []MatchedTrade `json:"matched_trades"`
	OpenLots      []Lot          `json:"open_lots"`
	Stats         StatsSummary   `json:"stats"`
	Risk          RiskMetrics    `json:"risk"`
	Report        MatchReport    `json:"report"`
	Diagnostics   []string       `json:"diagnostics,omitempty"`
}

// Run is an exported snapshot header.
type Run struct {
	ID               int64     `json:"id"`
	Label            string    `json:"label"`
	CreatedAt        time.Time `json:"created_at"`
	Transactions     int       `json:"transactions"`
	MatchedTrades    int       `json:"matched_trades"`
	TotalProfit      float64   `json:"total_profit"`
	MatchedNetProfit float64   `json:"matched_net_profit"`
	WinRate          float64   `json:"win_rate"`
	SharpeRatio      float64   `json:"sharpe_ratio"`
}
