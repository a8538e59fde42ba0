package usecase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/kalshi_ledger/internal/domain"
)

func TestStatsAggregator_Summarize(t *testing.T) {
	sell := marketExit("A", domain.DirectionYes, 10, 60, 2.0, 0.1, at(2))
	sell.RealizedCost = 4.0

	txs := []domain.Transaction{
		entry("A", domain.DirectionYes, 10, 40, 0.1, at(0)),
		entry("B", domain.DirectionNo, 5, 30, 0.05, at(0)),
		sell,
		settlement("B", domain.DirectionNo, 5, 0, 1.5, -1.5, at(4)),
	}
	trades := []domain.MatchedTrade{
		{Ticker: "A", Contracts: 10, NetProfit: 1.8, EntryCost: 4, HoldingDays: 2, ROI: 0.45},
		{Ticker: "B", Contracts: 5, NetProfit: -1.55, EntryCost: 1.5, HoldingDays: 4, ROI: -1.55 / 1.5},
	}

	s := NewStatsAggregator().Summarize(txs, trades)

	assert.Equal(t, 4, s.TotalTransactions)
	assert.Equal(t, 2, s.UniqueTickers)
	assert.Equal(t, 2, s.YesCount)
	assert.Equal(t, 2, s.NoCount)
	assert.Equal(t, 2, s.EntryCount)
	assert.Equal(t, 2, s.ExitCount)
	assert.Equal(t, 1, s.SettlementCount)
	assert.InDelta(t, 0.25, s.TotalFees, epsilon)
	assert.InDelta(t, 0.5, s.TotalProfit, epsilon)

	// market exit weighted by revenue (6), settlement by contracts (5)
	assert.InDelta(t, (40.0*6+30.0*5)/11, s.AvgEntryPrice, epsilon)
	assert.InDelta(t, (60.0*6)/11, s.AvgExitPrice, epsilon)

	assert.InDelta(t, 0.5, s.WinRate, epsilon)
	assert.InDelta(t, 0.0, s.SettlementWinRate, epsilon)

	assert.Equal(t, 2, s.MatchedTrades)
	assert.InDelta(t, 0.25, s.MatchedNetProfit, epsilon)
	assert.InDelta(t, 0.5, s.MatchedWinRate, epsilon)
	assert.InDelta(t, (2.0*4+4.0*1.5)/5.5, s.AvgHoldingDays, epsilon)
	assert.InDelta(t, 1.8, s.GrossProfit, epsilon)
	assert.InDelta(t, -1.55, s.GrossLoss, epsilon)
	assert.InDelta(t, 1.8/1.55, s.ProfitFactor, epsilon)
	assert.InDelta(t, 1.8, s.LargestWin, epsilon)
	assert.InDelta(t, -1.55, s.LargestLoss, epsilon)

	require.Len(t, s.ByTicker, 2)
	assert.Equal(t, "A", s.ByTicker[0].Ticker)
	assert.Equal(t, 1, s.ByTicker[0].Wins)
	assert.Equal(t, "B", s.ByTicker[1].Ticker)
	assert.Equal(t, 5, s.ByTicker[1].Contracts)
}

func TestStatsAggregator_EmptyInputs(t *testing.T) {
	s := NewStatsAggregator().Summarize(nil, nil)

	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.SettlementWinRate)
	assert.Zero(t, s.MatchedWinRate)
	assert.Zero(t, s.AvgHoldingDays)
	assert.Zero(t, s.AvgEntryPrice)
	assert.NotNil(t, s.ByTicker)
}

func TestStatsAggregator_NoMatchedTradesWinRate(t *testing.T) {
	txs := []domain.Transaction{
		entry("A", domain.DirectionYes, 1, 50, 0, at(0)),
	}

	s := NewStatsAggregator().Summarize(txs, []domain.MatchedTrade{})

	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.MatchedWinRate)
	assert.False(t, math.IsNaN(s.AvgROI))
}

func TestStatsAggregator_ProfitFactorWithoutLosses(t *testing.T) {
	trades := []domain.MatchedTrade{
		{Ticker: "A", NetProfit: 1, EntryCost: 1},
		{Ticker: "A", NetProfit: 0, EntryCost: 1},
	}

	s := NewStatsAggregator().Summarize(nil, trades)

	assert.Zero(t, s.ProfitFactor)
	assert.InDelta(t, 0.5, s.MatchedWinRate, epsilon)
	require.Len(t, s.ByTicker, 1)
	assert.Equal(t, 2, s.ByTicker[0].Trades)
}

func TestStatsAggregator_LedgerSumIsExact(t *testing.T) {
	var txs []domain.Transaction
	for i := 0; i < 10; i++ {
		tx := marketExit("A", domain.DirectionYes, 1, 50, 0.1, 0.01, at(float64(i)))
		txs = append(txs, tx)
	}

	s := NewStatsAggregator().Summarize(txs, nil)

	assert.Equal(t, 1.0, s.TotalProfit)
	assert.Equal(t, 0.1, s.TotalFees)
}
