package usecase

import (
	"math"
	"sort"

	"github.com/vitos/kalshi_ledger/internal/domain"
	"go.uber.org/zap"
)

// MatchingPolicy selects between the observed matching variants.
type MatchingPolicy struct {
	// AllowOffsetting lets a market exit on one side close lots held on the
	// other side, with profit from the complementary prices.
	AllowOffsetting bool `yaml:"allow_offsetting" json:"allow_offsetting"`
	// MaxAbsROI discards matched trades with |ROI| >= MaxAbsROI. 0 disables.
	MaxAbsROI float64 `yaml:"max_abs_roi" json:"max_abs_roi"`
}

func DefaultMatchingPolicy() MatchingPolicy {
	return MatchingPolicy{AllowOffsetting: true}
}

// SameSideMatchingPolicy closes only same-direction lots with proportional
// profit and drops outlier trades.
func SameSideMatchingPolicy() MatchingPolicy {
	return MatchingPolicy{AllowOffsetting: false, MaxAbsROI: 10}
}

type MatchResult struct {
	Trades   []domain.MatchedTrade
	OpenLots []domain.Lot
	Report   domain.MatchReport
}

// LotMatcher pairs exits with open lots per ticker, oldest lot first.
type LotMatcher struct {
	logger *zap.Logger
	policy MatchingPolicy
}

func NewLotMatcher(logger *zap.Logger, policy MatchingPolicy) *LotMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LotMatcher{
		logger: logger,
		policy: policy,
	}
}

func (m *LotMatcher) Policy() MatchingPolicy {
	return m.policy
}

// matchState is the arena of lots plus the live lot ids per ticker.
type matchState struct {
	lots   []*domain.Lot
	open   map[string][]int
	result *MatchResult
}

// Match sorts the transactions by time (stable, so equal timestamps keep
// their input order) and runs one FIFO pass. The input slice is not modified.
func (m *LotMatcher) Match(txs []domain.Transaction) *MatchResult {
	sorted := make([]domain.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Created.Before(sorted[j].Created)
	})

	st := &matchState{
		open:   make(map[string][]int),
		result: &MatchResult{Trades: []domain.MatchedTrade{}},
	}

	for i := range sorted {
		tx := &sorted[i]
		switch {
		case tx.IsEntry():
			lot := domain.NewLot(len(st.lots), tx)
			st.lots = append(st.lots, lot)
			st.open[tx.Ticker] = append(st.open[tx.Ticker], lot.ID)
			st.result.Report.Entries++
		case tx.IsExit():
			st.result.Report.Exits++
			m.closeLots(st, tx)
		default:
			st.result.Report.Skipped++
		}
	}

	st.result.OpenLots = []domain.Lot{}
	for _, lot := range st.lots {
		if lot.Closed {
			st.result.Report.ClosedLots++
			continue
		}
		st.result.OpenLots = append(st.result.OpenLots, *lot)
	}
	st.result.Report.OpenLots = len(st.result.OpenLots)
	st.result.Report.Matched = len(st.result.Trades)

	m.logger.Info("Lot matching finished",
		zap.Int("entries", st.result.Report.Entries),
		zap.Int("exits", st.result.Report.Exits),
		zap.Int("matched", st.result.Report.Matched),
		zap.Int("unmatched_exits", len(st.result.Report.UnmatchedExits)),
		zap.Int("oversized_exits", len(st.result.Report.OversizedExits)),
		zap.Int("open_lots", st.result.Report.OpenLots))

	return st.result
}

func (m *LotMatcher) eligible(lot *domain.Lot, exit *domain.Transaction) bool {
	if lot.Remaining <= 0 {
		return false
	}
	if lot.Direction == exit.Direction {
		return true
	}
	return m.policy.AllowOffsetting && lot.Direction == exit.Direction.Opposite()
}

func (m *LotMatcher) closeLots(st *matchState, exit *domain.Transaction) {
	if exit.Contracts == 0 {
		m.logger.Debug("Exit without contracts", zap.String("ticker", exit.Ticker), zap.Time("time", exit.Created))
		return
	}

	var candidates []*domain.Lot
	for _, id := range st.open[exit.Ticker] {
		if lot := st.lots[id]; m.eligible(lot, exit) {
			candidates = append(candidates, lot)
		}
	}

	if len(candidates) == 0 {
		m.logger.Warn("Unmatched exit, no open lot",
			zap.String("ticker", exit.Ticker),
			zap.String("direction", string(exit.Direction)),
			zap.String("kind", string(exit.Kind)),
			zap.Int("contracts", exit.Contracts),
			zap.Time("time", exit.Created))
		st.result.Report.UnmatchedExits = append(st.result.Report.UnmatchedExits, domain.UnmatchedExit{
			Ticker:    exit.Ticker,
			Direction: exit.Direction,
			Kind:      exit.Kind,
			Contracts: exit.Contracts,
			Time:      exit.Created,
		})
		return
	}

	exitContracts := float64(exit.Contracts)
	settlementPrice := exit.RealizedRevenue / exitContracts * 100

	toClose := exit.Contracts
	for _, lot := range candidates {
		if toClose == 0 {
			break
		}
		n := min(toClose, lot.Remaining)
		entryFee, entryCost := lot.Take(n)
		toClose -= n

		closed := float64(n)
		trade := domain.MatchedTrade{
			LotID:       lot.ID,
			Ticker:      exit.Ticker,
			Direction:   lot.Direction,
			Contracts:   n,
			EntryDate:   lot.EntryTime,
			ExitDate:    exit.Created,
			EntryPrice:  lot.EntryPrice,
			EntryCost:   entryCost,
			EntryFee:    entryFee,
			ExitFee:     exit.Fees * closed / exitContracts,
			HoldingDays: exit.Created.Sub(lot.EntryTime).Hours() / 24,
		}

		switch {
		case exit.Kind == domain.KindSettlement:
			trade.ExitKind = domain.ExitSettlement
			trade.ExitPrice = settlementPrice
			trade.Profit = exit.RealizedProfit * closed / exitContracts
		case lot.Direction == exit.Direction:
			trade.ExitKind = domain.ExitMarket
			trade.ExitPrice = exit.AveragePrice
			trade.Profit = exit.RealizedProfit * closed / exitContracts
		default:
			// selling the other side nets the complement of both prices
			trade.ExitKind = domain.ExitOffset
			trade.ExitPrice = 100 - exit.AveragePrice
			trade.Profit = closed * (100 - lot.EntryPrice - exit.AveragePrice) / 100
			st.result.Report.OffsetCloses++
		}

		trade.ExitCost = closed * trade.ExitPrice / 100
		trade.NetProfit = trade.Profit - (trade.EntryFee + trade.ExitFee)
		if trade.EntryCost != 0 {
			trade.ROI = trade.NetProfit / trade.EntryCost
		}

		if m.policy.MaxAbsROI > 0 && math.Abs(trade.ROI) >= m.policy.MaxAbsROI {
			m.logger.Debug("Discarding outlier trade",
				zap.String("ticker", trade.Ticker),
				zap.Int("lot_id", trade.LotID),
				zap.Float64("roi", trade.ROI))
			st.result.Report.FilteredByROI++
			continue
		}
		st.result.Trades = append(st.result.Trades, trade)
	}

	if toClose > 0 {
		m.logger.Warn("Exit larger than open lots, excess dropped",
			zap.String("ticker", exit.Ticker),
			zap.Int("requested", exit.Contracts),
			zap.Int("dropped", toClose),
			zap.Time("time", exit.Created))
		st.result.Report.OversizedExits = append(st.result.Report.OversizedExits, domain.OversizedExit{
			Ticker:    exit.Ticker,
			Direction: exit.Direction,
			Time:      exit.Created,
			Requested: exit.Contracts,
			Dropped:   toClose,
		})
	}

	live := st.open[exit.Ticker][:0]
	for _, id := range st.open[exit.Ticker] {
		if !st.lots[id].Closed {
			live = append(live, id)
		}
	}
	st.open[exit.Ticker] = live
}
