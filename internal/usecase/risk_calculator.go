package usecase

import (
	"math"
	"sort"
	"time"

	"github.com/vitos/kalshi_ledger/internal/domain"
)

const DefaultTradingDaysPerYear = 252

// RiskCalculator builds a synthetic daily portfolio series from matched
// trades and derives volatility and a Sharpe-like ratio from it.
type RiskCalculator struct {
	tradingDays float64
}

func NewRiskCalculator(tradingDaysPerYear int) *RiskCalculator {
	if tradingDaysPerYear <= 0 {
		tradingDaysPerYear = DefaultTradingDaysPerYear
	}
	return &RiskCalculator{tradingDays: float64(tradingDaysPerYear)}
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// Calculate spans [earliest entry day, latest exit day] in UTC calendar days.
// Each trade adds its net profit to every day from its exit day onward.
func (c *RiskCalculator) Calculate(trades []domain.MatchedTrade, capital float64) (domain.RiskMetrics, error) {
	if capital <= 0 || math.IsNaN(capital) || math.IsInf(capital, 0) {
		return domain.RiskMetrics{}, domain.ErrInvalidCapital
	}

	rm := domain.RiskMetrics{
		StartingCapital: capital,
		FinalValue:      capital,
		Series:          []domain.PortfolioPoint{},
	}
	if len(trades) == 0 {
		return rm, nil
	}

	byExit := make([]domain.MatchedTrade, len(trades))
	copy(byExit, trades)
	sort.SliceStable(byExit, func(i, j int) bool {
		return byExit[i].ExitDate.Before(byExit[j].ExitDate)
	})

	start := day(byExit[0].EntryDate)
	end := day(byExit[0].ExitDate)
	for i := range byExit {
		if d := day(byExit[i].EntryDate); d.Before(start) {
			start = d
		}
		if d := day(byExit[i].ExitDate); d.After(end) {
			end = d
		}
	}

	n := daysBetween(start, end) + 1
	delta := make([]float64, n)
	for i := range byExit {
		idx := daysBetween(start, day(byExit[i].ExitDate))
		if idx < 0 {
			idx = 0
		}
		delta[idx] += byExit[i].NetProfit
	}

	values := make([]float64, n)
	running := 0.0
	for i := range values {
		running += delta[i]
		values[i] = capital + running
	}

	returns := make([]float64, 0, n-1)
	rm.Series = make([]domain.PortfolioPoint, n)
	peak := capital
	for i, v := range values {
		point := domain.PortfolioPoint{Date: start.AddDate(0, 0, i), Value: v}
		if i > 0 {
			if prev := values[i-1]; prev != 0 {
				point.Return = (v - prev) / prev
			}
			returns = append(returns, point.Return)
		}
		rm.Series[i] = point

		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (v - peak) / peak; dd < rm.MaxDrawdown {
				rm.MaxDrawdown = dd
			}
		}
	}

	rm.Days = n
	rm.FinalValue = values[n-1]
	rm.TotalReturn = (rm.FinalValue - capital) / capital
	rm.MeanDailyReturn, rm.DailyVolatility = meanStd(returns)
	rm.AnnualizedReturn = rm.MeanDailyReturn * c.tradingDays
	rm.AnnualizedVolatility = rm.DailyVolatility * math.Sqrt(c.tradingDays)
	if rm.DailyVolatility > 0 {
		rm.SharpeRatio = rm.MeanDailyReturn / rm.DailyVolatility * math.Sqrt(c.tradingDays)
	}
	return rm, nil
}

// meanStd returns the mean and population standard deviation.
func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		d := x - mean
		std += d * d
	}
	return mean, math.Sqrt(std / float64(len(xs)))
}
