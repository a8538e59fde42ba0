package usecase

import (
	"time"

	"github.com/vitos/kalshi_ledger/internal/domain"
)

const epsilon = 0.000001

var baseTime = time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)

func at(days float64) time.Time {
	return baseTime.Add(time.Duration(days * 24 * float64(time.Hour)))
}

// entry builds an opening trade with trade cost contracts x price.
func entry(ticker string, dir domain.Direction, contracts int, price, fees float64, when time.Time) domain.Transaction {
	return domain.Transaction{
		Ticker:       ticker,
		Kind:         domain.KindTrade,
		Direction:    dir,
		Contracts:    contracts,
		AveragePrice: price,
		Fees:         fees,
		Created:      when,
		TradeCost:    float64(contracts) * price / 100,
	}
}

func marketExit(ticker string, dir domain.Direction, contracts int, price, profit, fees float64, when time.Time) domain.Transaction {
	return domain.Transaction{
		Ticker:          ticker,
		Kind:            domain.KindTrade,
		Direction:       dir,
		Contracts:       contracts,
		AveragePrice:    price,
		RealizedRevenue: float64(contracts) * price / 100,
		RealizedProfit:  profit,
		Fees:            fees,
		Created:         when,
	}
}

func settlement(ticker string, dir domain.Direction, contracts int, revenue, cost, profit float64, when time.Time) domain.Transaction {
	return domain.Transaction{
		Ticker:          ticker,
		Kind:            domain.KindSettlement,
		Direction:       dir,
		Contracts:       contracts,
		RealizedRevenue: revenue,
		RealizedCost:    cost,
		RealizedProfit:  profit,
		Created:         when,
		TradeCost:       cost,
	}
}
