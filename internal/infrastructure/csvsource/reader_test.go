package csvsource

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/kalshi_ledger/internal/domain"
)

const header = "Ticker,Type,Direction,Contracts,Average_Price,Realized_Revenue,Realized_Cost,Realized_Profit,Fees,Created\n"

func TestReader_Read(t *testing.T) {
	in := header +
		"KXBTC-25MAR07-T90000,trade,Yes,10,40,$0.00,$0.00,$0.00,$0.10,\"Mar 1, 2025 at 3:00 PM PST\"\n" +
		"KXBTC-25MAR07-T90000,settlement,Yes,10,0,$10.00,$4.00,$6.00,$0.00,\"Mar 7, 2025 at 5:00 PM PST\"\n"

	rows, err := NewReader().Read("export.csv", strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "KXBTC-25MAR07-T90000", rows[0].Ticker)
	assert.Equal(t, "trade", rows[0].Type)
	assert.Equal(t, "40", rows[0].AveragePrice)
	assert.Equal(t, "Mar 1, 2025 at 3:00 PM PST", rows[0].Created)
	assert.Equal(t, "export.csv", rows[0].Source)
	assert.Equal(t, 1, rows[0].Line)

	assert.Equal(t, "$10.00", rows[1].RealizedRevenue)
	assert.Equal(t, "$0.00", rows[1].Fees)
	assert.Equal(t, 2, rows[1].Line)
}

func TestReader_OptionalColumnsAbsent(t *testing.T) {
	in := "Ticker,Type,Direction,Contracts,Average_Price,Created\n" +
		"A,trade,No,3,25,2025-03-01 10:00\n"

	rows, err := NewReader().Read("min.csv", strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "No", rows[0].Direction)
	assert.Empty(t, rows[0].Fees)
	assert.Empty(t, rows[0].RealizedProfit)
}

func TestReader_BOMAndPaddedHeader(t *testing.T) {
	in := "\xEF\xBB\xBF Ticker , Type,Direction ,Contracts,Average_Price,Created\n" +
		"A,trade,Yes,1,50,2025-03-01\n"

	rows, err := NewReader().Read("bom.csv", strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].Ticker)
	assert.Equal(t, "Yes", rows[0].Direction)
}

func TestReader_MissingColumns(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		missing []string
	}{
		{"empty file", "", domain.RequiredColumns},
		{"whitespace only", "  \n", domain.RequiredColumns},
		{"no created", "Ticker,Type,Direction,Contracts,Average_Price\nA,trade,Yes,1,50\n", []string{"Created"}},
		{"wrong headers", "a,b\n1,2\n", domain.RequiredColumns},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader().Read("bad.csv", strings.NewReader(tt.input))
			require.Error(t, err)

			var schemaErr *domain.SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, "bad.csv", schemaErr.Source)
			assert.Equal(t, tt.missing, schemaErr.Missing)
		})
	}
}

func TestReader_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"A,trade,Yes,1,50,,,,,2025-03-01\n"), 0o644))

	rows, err := NewReader().ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, path, rows[0].Source)

	_, err = NewReader().ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
