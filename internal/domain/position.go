package domain

import "time"

// Lot is an open chunk of a position, tracked for FIFO attribution.
type Lot struct {
	ID                int       `json:"id"`
	Ticker            string    `json:"ticker"`
	Direction         Direction `json:"direction"`
	OriginalContracts int       `json:"original_contracts"`
	Remaining         int       `json:"remaining"`
	EntryPrice        float64   `json:"entry_price"` // cents
	EntryTime         time.Time `json:"entry_time"`
	EntryFee          float64   `json:"entry_fee"`  // fee for the original lot size
	BasisCost         float64   `json:"basis_cost"` // cost for the original lot size
	Closed            bool      `json:"closed"`

	// unattributed remainders, drained pro rata on each close
	remainingFee  float64
	remainingCost float64
}

// NewLot opens a lot from an entry transaction.
func NewLot(id int, tx *Transaction) *Lot {
	return &Lot{
		ID:                id,
		Ticker:            tx.Ticker,
		Direction:         tx.Direction,
		OriginalContracts: tx.Contracts,
		Remaining:         tx.Contracts,
		EntryPrice:        tx.AveragePrice,
		EntryTime:         tx.Created,
		EntryFee:          tx.Fees,
		BasisCost:         tx.TradeCost,
		remainingFee:      tx.Fees,
		remainingCost:     tx.TradeCost,
	}
}

// Take removes n contracts from the lot and returns the entry fee and cost
// attributable to them, pro-rated over what was still open before the call.
func (l *Lot) Take(n int) (fee, cost float64) {
	if n <= 0 || l.Remaining <= 0 {
		return 0, 0
	}
	if n > l.Remaining {
		n = l.Remaining
	}
	share := float64(n) / float64(l.Remaining)
	fee = l.remainingFee * share
	cost = l.remainingCost * share
	l.remainingFee -= fee
	l.remainingCost -= cost
	l.Remaining -= n
	if l.Remaining == 0 {
		l.Closed = true
	}
	return fee, cost
}

type ExitKind string

const (
	ExitSettlement ExitKind = "settlement"
	ExitMarket     ExitKind = "market"
	ExitOffset     ExitKind = "offset" // market exit through the opposite side
)

// MatchedTrade is a closed round trip produced by the matcher.
type MatchedTrade struct {
	LotID       int       `json:"lot_id"`
	Ticker      string    `json:"ticker"`
	Direction   Direction `json:"direction"` // entry side
	ExitKind    ExitKind  `json:"exit_kind"`
	Contracts   int       `json:"contracts"`
	EntryDate   time.Time `json:"entry_date"`
	ExitDate    time.Time `json:"exit_date"`
	EntryPrice  float64   `json:"entry_price"` // cents
	ExitPrice   float64   `json:"exit_price"`  // cents, effective for offsetting exits
	EntryCost   float64   `json:"entry_cost"`
	ExitCost    float64   `json:"exit_cost"`
	EntryFee    float64   `json:"entry_fee"`
	ExitFee     float64   `json:"exit_fee"`
	Profit      float64   `json:"profit"`
	NetProfit   float64   `json:"net_profit"`
	HoldingDays float64   `json:"holding_days"`
	ROI         float64   `json:"roi"`
}
