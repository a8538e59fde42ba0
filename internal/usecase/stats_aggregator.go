package usecase

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vitos/kalshi_ledger/internal/domain"
)

// StatsAggregator reduces transactions and matched trades into a summary.
type StatsAggregator struct{}

func NewStatsAggregator() *StatsAggregator {
	return &StatsAggregator{}
}

func (a *StatsAggregator) Summarize(txs []domain.Transaction, trades []domain.MatchedTrade) domain.StatsSummary {
	s := domain.StatsSummary{
		TotalTransactions: len(txs),
		ByTicker:          []domain.TickerStats{},
	}

	tickers := make(map[string]struct{})
	fees := decimal.Zero
	profit := decimal.Zero

	var exits, wins, settlements, settlementWins int
	var entryWeighted, exitWeighted, weightSum float64

	for i := range txs {
		tx := &txs[i]
		tickers[tx.Ticker] = struct{}{}
		switch tx.Direction {
		case domain.DirectionYes:
			s.YesCount++
		case domain.DirectionNo:
			s.NoCount++
		}
		fees = fees.Add(decimal.NewFromFloat(tx.Fees))
		profit = profit.Add(decimal.NewFromFloat(tx.RealizedProfit))

		if tx.IsEntry() {
			s.EntryCount++
			continue
		}
		if !tx.IsExit() {
			continue
		}

		exits++
		if tx.RealizedProfit > 0 {
			wins++
		}
		if tx.Kind == domain.KindSettlement {
			settlements++
			if tx.RealizedProfit > 0 {
				settlementWins++
			}
		}

		entry, exit, weight := exitPrices(tx)
		if weight > 0 {
			entryWeighted += entry * weight
			exitWeighted += exit * weight
			weightSum += weight
		}
	}

	s.UniqueTickers = len(tickers)
	s.ExitCount = exits
	s.SettlementCount = settlements
	s.TotalFees = fees.InexactFloat64()
	s.TotalProfit = profit.InexactFloat64()
	s.WinRate = ratio(wins, exits)
	s.SettlementWinRate = ratio(settlementWins, settlements)
	if weightSum > 0 {
		s.AvgEntryPrice = entryWeighted / weightSum
		s.AvgExitPrice = exitWeighted / weightSum
	}

	a.summarizeTrades(&s, trades)
	return s
}

// exitPrices returns per-contract entry and exit prices in cents for an exit
// row and its weight. Settlements weigh by contract count; market exits use
// realized revenue as a stand-in for the closed contract count.
func exitPrices(tx *domain.Transaction) (entry, exit, weight float64) {
	if tx.Contracts <= 0 {
		return 0, 0, 0
	}
	contracts := float64(tx.Contracts)
	entry = tx.RealizedCost / contracts * 100
	if tx.Kind == domain.KindSettlement {
		return entry, tx.RealizedRevenue / contracts * 100, contracts
	}
	weight = tx.RealizedRevenue
	if weight < 0 {
		weight = -weight
	}
	return entry, tx.AveragePrice, weight
}

func (a *StatsAggregator) summarizeTrades(s *domain.StatsSummary, trades []domain.MatchedTrade) {
	s.MatchedTrades = len(trades)
	if len(trades) == 0 {
		return
	}

	net := decimal.Zero
	byTicker := make(map[string]*domain.TickerStats)
	var wins int
	var holdingWeighted, costSum, roiSum float64

	for i := range trades {
		t := &trades[i]
		net = net.Add(decimal.NewFromFloat(t.NetProfit))
		roiSum += t.ROI
		holdingWeighted += t.HoldingDays * t.EntryCost
		costSum += t.EntryCost

		if t.NetProfit > 0 {
			wins++
			s.GrossProfit += t.NetProfit
			if t.NetProfit > s.LargestWin {
				s.LargestWin = t.NetProfit
			}
		} else if t.NetProfit < 0 {
			s.GrossLoss += t.NetProfit
			if t.NetProfit < s.LargestLoss {
				s.LargestLoss = t.NetProfit
			}
		}

		ts, ok := byTicker[t.Ticker]
		if !ok {
			ts = &domain.TickerStats{Ticker: t.Ticker}
			byTicker[t.Ticker] = ts
		}
		ts.Trades++
		ts.Contracts += t.Contracts
		ts.NetProfit += t.NetProfit
		if t.NetProfit > 0 {
			ts.Wins++
		}
	}

	s.MatchedNetProfit = net.InexactFloat64()
	s.MatchedWinRate = ratio(wins, len(trades))
	s.AvgROI = roiSum / float64(len(trades))
	if costSum > 0 {
		s.AvgHoldingDays = holdingWeighted / costSum
	}
	if s.GrossLoss < 0 {
		s.ProfitFactor = s.GrossProfit / -s.GrossLoss
	}

	for _, ts := range byTicker {
		s.ByTicker = append(s.ByTicker, *ts)
	}
	sort.Slice(s.ByTicker, func(i, j int) bool {
		if s.ByTicker[i].NetProfit != s.ByTicker[j].NetProfit {
			return s.ByTicker[i].NetProfit > s.ByTicker[j].NetProfit
		}
		return s.ByTicker[i].Ticker < s.ByTicker[j].Ticker
	})
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
