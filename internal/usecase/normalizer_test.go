package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/kalshi_ledger/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func rawRow(typ, dir, contracts, price, created string) domain.RawRow {
	return domain.RawRow{
		Ticker:       "KXHIGHNY-25MAR05-B55",
		Type:         typ,
		Direction:    dir,
		Contracts:    contracts,
		AveragePrice: price,
		Created:      created,
		Source:       "test.csv",
		Line:         1,
	}
}

func TestNormalizer_OpeningTrade(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), DefaultTZOffsetHours)
	row := rawRow("trade", "yes", "10", "35", "March 5, 2025 at 3:04 PM EST")
	row.Fees = "$0.21"

	tx, err := n.Normalize(row)
	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.Equal(t, domain.KindTrade, tx.Kind)
	assert.Equal(t, domain.DirectionYes, tx.Direction)
	assert.Equal(t, 10, tx.Contracts)
	assert.InDelta(t, 35.0, tx.AveragePrice, epsilon)
	assert.InDelta(t, 0.21, tx.Fees, epsilon)
	assert.InDelta(t, 3.5, tx.TradeCost, epsilon, "contracts x price / 100")
	assert.True(t, tx.IsEntry())
	assert.False(t, tx.IsExit())
	assert.False(t, tx.Degraded)
	assert.True(t, tx.Created.Equal(time.Date(2025, 3, 5, 20, 4, 0, 0, time.UTC)))
}

func TestNormalizer_ClosingRowsUseRealizedCost(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), DefaultTZOffsetHours)

	settle := rawRow("Settlement", "No", "8", "40", "March 6, 2025 at 9:00 AM EST")
	settle.RealizedRevenue = "$8.00"
	settle.RealizedCost = "-$3.20"
	settle.RealizedProfit = "$4.80"

	tx, err := n.Normalize(settle)
	require.NoError(t, err)
	assert.Equal(t, domain.KindSettlement, tx.Kind)
	assert.InDelta(t, 3.2, tx.TradeCost, epsilon)
	assert.InDelta(t, 4.8, tx.RealizedProfit, epsilon)
	assert.True(t, tx.IsExit())

	sell := rawRow("trade", "Yes", "5", "60", "March 6, 2025 at 9:00 AM EST")
	sell.RealizedCost = "$1,500.25"
	sell.RealizedProfit = "($2.50)"

	tx, err = n.Normalize(sell)
	require.NoError(t, err)
	assert.InDelta(t, 1500.25, tx.TradeCost, epsilon)
	assert.InDelta(t, -2.5, tx.RealizedProfit, epsilon)
	assert.True(t, tx.IsExit())
}

func TestNormalizer_CurrencyDefaultsToZero(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), DefaultTZOffsetHours)
	row := rawRow("trade", "Yes", "2", "50", "2025-03-05")
	row.RealizedProfit = "n/a"
	row.Fees = ""

	tx, err := n.Normalize(row)
	require.NoError(t, err)
	assert.Zero(t, tx.RealizedProfit)
	assert.Zero(t, tx.Fees)
}

func TestNormalizer_CreditRowsAreDiscarded(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), DefaultTZOffsetHours)

	tx, err := n.Normalize(rawRow("credit", "", "", "", ""))
	assert.NoError(t, err)
	assert.Nil(t, tx)
}

func TestNormalizer_MalformedRows(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), DefaultTZOffsetHours)

	tests := []struct {
		name  string
		row   domain.RawRow
		field string
	}{
		{"unknown type", rawRow("deposit", "Yes", "1", "50", "2025-03-05"), "Type"},
		{"bad direction", rawRow("trade", "Maybe", "1", "50", "2025-03-05"), "Direction"},
		{"bad contracts", rawRow("trade", "Yes", "ten", "50", "2025-03-05"), "Contracts"},
		{"fractional contracts", rawRow("trade", "Yes", "1.5", "50", "2025-03-05"), "Contracts"},
		{"negative contracts", rawRow("trade", "Yes", "-3", "50", "2025-03-05"), "Contracts"},
		{"missing price", rawRow("trade", "Yes", "1", "", "2025-03-05"), "Average_Price"},
		{"price above 100", rawRow("trade", "Yes", "1", "120", "2025-03-05"), "Average_Price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := n.Normalize(tt.row)
			assert.Nil(t, tx)
			var rowErr *domain.RowError
			require.True(t, errors.As(err, &rowErr), "expected RowError, got %v", err)
			assert.Equal(t, tt.field, rowErr.Field)
			assert.Equal(t, "test.csv", rowErr.Source)
		})
	}

	empty := rawRow("trade", "Yes", "1", "50", "2025-03-05")
	empty.Ticker = "  "
	_, err := n.Normalize(empty)
	assert.Error(t, err)
}

func TestNormalizer_DegradedTimestamp(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	n := NewNormalizer(zap.New(core), DefaultTZOffsetHours)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	n.timeNow = func() time.Time { return fixed }

	tx, err := n.Normalize(rawRow("trade", "Yes", "1", "50", "sometime last week"))
	require.NoError(t, err)
	assert.True(t, tx.Degraded)
	assert.True(t, tx.Created.Equal(fixed))
	assert.Equal(t, 1, logs.FilterMessage("Unparseable timestamp, using current time").Len())
}

func TestNormalizer_NormalizeBatch(t *testing.T) {
	n := NewNormalizer(zap.NewNop(), DefaultTZOffsetHours)
	n.timeNow = func() time.Time { return baseTime }

	rows := []domain.RawRow{
		{Ticker: "A", Type: "trade", Direction: "Yes", Contracts: "1", AveragePrice: "50", Created: "2025-03-05"},
		{Ticker: "A", Type: "credit"},
		{Ticker: "A", Type: "trade", Direction: "Yes", Contracts: "x", AveragePrice: "50", Created: "2025-03-05"},
		{Ticker: "B", Type: "trade", Direction: "No", Contracts: "2", AveragePrice: "30", Created: "??"},
	}

	batch, err := n.NormalizeBatch("file.csv", rows)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)

	assert.Equal(t, "file.csv", batch.Source)
	require.Len(t, batch.Transactions, 2)
	assert.Equal(t, 1, batch.Transactions[0].Line)
	assert.Equal(t, 4, batch.Transactions[1].Line)
	assert.True(t, batch.Transactions[1].Degraded)

	require.Len(t, batch.Diagnostics, 2)
	assert.Contains(t, batch.Diagnostics[0], "file.csv row 3")
	assert.Contains(t, batch.Diagnostics[1], "unparseable timestamp")
}
