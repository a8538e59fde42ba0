package domain

import (
	"strings"
	"time"
)

// Required CSV columns of a Kalshi transaction export.
var RequiredColumns = []string{"Ticker", "Type", "Direction", "Contracts", "Average_Price", "Created"}

// RawRow is one untyped row as produced by a CSV export.
type RawRow struct {
	Ticker          string `csv:"Ticker" json:"Ticker"`
	Type            string `csv:"Type" json:"Type"`
	Direction       string `csv:"Direction" json:"Direction"`
	Contracts       string `csv:"Contracts" json:"Contracts"`
	AveragePrice    string `csv:"Average_Price" json:"Average_Price"`
	RealizedRevenue string `csv:"Realized_Revenue" json:"Realized_Revenue"`
	RealizedCost    string `csv:"Realized_Cost" json:"Realized_Cost"`
	RealizedProfit  string `csv:"Realized_Profit" json:"Realized_Profit"`
	Fees            string `csv:"Fees" json:"Fees"`
	Created         string `csv:"Created" json:"Created"`

	Source string `csv:"-" json:"-"`
	Line   int    `csv:"-" json:"-"` // 1-based data row number within Source
}

type TxKind string

const (
	KindTrade      TxKind = "trade"
	KindSettlement TxKind = "settlement"
	KindCredit     TxKind = "credit"
)

// ParseKind maps the export's Type column. Unknown values are returned as-is.
func ParseKind(s string) TxKind {
	return TxKind(strings.ToLower(strings.TrimSpace(s)))
}

type Direction string

const (
	DirectionYes Direction = "Yes"
	DirectionNo  Direction = "No"
)

// ParseDirection accepts yes/no in any case. ok is false for anything else.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return DirectionYes, true
	case "no":
		return DirectionNo, true
	}
	return "", false
}

// Opposite returns the complementary side of a binary contract.
func (d Direction) Opposite() Direction {
	if d == DirectionYes {
		return DirectionNo
	}
	return DirectionYes
}

// Transaction is a normalized export row.
type Transaction struct {
	Ticker          string    `json:"ticker"`
	Kind            TxKind    `json:"kind"`
	Direction       Direction `json:"direction"`
	Contracts       int       `json:"contracts"`
	AveragePrice    float64   `json:"average_price"` // cents, 0-100
	RealizedRevenue float64   `json:"realized_revenue"`
	RealizedCost    float64   `json:"realized_cost"`
	RealizedProfit  float64   `json:"realized_profit"`
	Fees            float64   `json:"fees"`
	Created         time.Time `json:"created"`
	TradeCost       float64   `json:"trade_cost"`
	Degraded        bool      `json:"degraded_timestamp,omitempty"` // Created fell back to the current time

	Source string `json:"source,omitempty"`
	Line   int    `json:"line,omitempty"`
}

// IsEntry reports whether the transaction opens a position.
func (t *Transaction) IsEntry() bool {
	return t.Kind == KindTrade && t.RealizedProfit == 0
}

// IsExit reports whether the transaction realizes profit against a position.
func (t *Transaction) IsExit() bool {
	return t.Kind == KindSettlement || (t.Kind == KindTrade && t.RealizedProfit != 0)
}

// Batch is the normalized content of one uploaded file.
type Batch struct {
	Source       string        `json:"source"`
	Transactions []Transaction `json:"transactions"`
	Diagnostics  []string      `json:"diagnostics,omitempty"`
}
