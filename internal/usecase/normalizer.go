package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitos/kalshi_ledger/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// Normalizer converts raw export rows into typed transactions.
type Normalizer struct {
	logger  *zap.Logger
	parser  *TimestampParser
	timeNow func() time.Time
}

func NewNormalizer(logger *zap.Logger, defaultTZOffsetHours int) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		logger:  logger,
		parser:  NewTimestampParser(defaultTZOffsetHours),
		timeNow: time.Now,
	}
}

// Normalize returns (nil, nil) for rows that are not transactions (credits).
// A row that fails coercion yields a *domain.RowError. An unparseable
// timestamp is not an error: the transaction gets the current time and
// Degraded is set.
func (n *Normalizer) Normalize(row domain.RawRow) (*domain.Transaction, error) {
	kind := domain.ParseKind(row.Type)
	switch kind {
	case domain.KindCredit:
		return nil, nil
	case domain.KindTrade, domain.KindSettlement:
	default:
		return nil, rowError(row, "Type", row.Type, fmt.Errorf("unknown transaction type"))
	}

	ticker := strings.TrimSpace(row.Ticker)
	if ticker == "" {
		return nil, rowError(row, "Ticker", row.Ticker, fmt.Errorf("empty ticker"))
	}

	direction, ok := domain.ParseDirection(row.Direction)
	if !ok {
		return nil, rowError(row, "Direction", row.Direction, fmt.Errorf("expected Yes or No"))
	}

	contracts, err := parseContracts(row.Contracts)
	if err != nil {
		return nil, rowError(row, "Contracts", row.Contracts, err)
	}

	price, err := parseNumber(row.AveragePrice)
	if err != nil {
		return nil, rowError(row, "Average_Price", row.AveragePrice, err)
	}
	if price.IsNegative() || price.GreaterThan(hundred) {
		return nil, rowError(row, "Average_Price", row.AveragePrice, fmt.Errorf("price out of range 0-100"))
	}

	tx := &domain.Transaction{
		Ticker:          ticker,
		Kind:            kind,
		Direction:       direction,
		Contracts:       contracts,
		AveragePrice:    price.InexactFloat64(),
		RealizedRevenue: parseCurrency(row.RealizedRevenue).InexactFloat64(),
		RealizedCost:    parseCurrency(row.RealizedCost).InexactFloat64(),
		RealizedProfit:  parseCurrency(row.RealizedProfit).InexactFloat64(),
		Fees:            parseCurrency(row.Fees).Abs().InexactFloat64(),
		Source:          row.Source,
		Line:            row.Line,
	}

	created, err := n.parser.Parse(row.Created)
	if err != nil {
		n.logger.Error("Unparseable timestamp, using current time",
			zap.String("source", row.Source),
			zap.Int("row", row.Line),
			zap.String("created", row.Created),
			zap.Error(err))
		created = n.timeNow()
		tx.Degraded = true
	}
	tx.Created = created
	tx.TradeCost = tradeCost(tx, price)

	return tx, nil
}

// NormalizeBatch normalizes one file. Row problems are logged, collected into
// the batch diagnostics and returned combined; they never abort the batch.
func (n *Normalizer) NormalizeBatch(source string, rows []domain.RawRow) (domain.Batch, error) {
	batch := domain.Batch{
		Source:       source,
		Transactions: make([]domain.Transaction, 0, len(rows)),
	}

	var errs error
	for i := range rows {
		row := rows[i]
		if row.Source == "" {
			row.Source = source
		}
		if row.Line == 0 {
			row.Line = i + 1
		}

		tx, err := n.Normalize(row)
		if err != nil {
			n.logger.Warn("Dropping malformed row", zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		if tx == nil {
			continue
		}
		if tx.Degraded {
			errs = multierr.Append(errs, &domain.DegradedTimestamp{Source: row.Source, Row: row.Line, Raw: row.Created})
		}
		batch.Transactions = append(batch.Transactions, *tx)
	}

	for _, e := range multierr.Errors(errs) {
		batch.Diagnostics = append(batch.Diagnostics, e.Error())
	}
	return batch, errs
}

func rowError(row domain.RawRow, field, value string, err error) *domain.RowError {
	return &domain.RowError{Source: row.Source, Row: row.Line, Field: field, Value: value, Err: err}
}

// tradeCost is the absolute realized cost for closing rows and
// contracts x price for opening trades.
func tradeCost(tx *domain.Transaction, price decimal.Decimal) float64 {
	if tx.Kind == domain.KindSettlement || tx.RealizedProfit != 0 {
		return decimal.NewFromFloat(tx.RealizedCost).Abs().InexactFloat64()
	}
	return decimal.NewFromInt(int64(tx.Contracts)).Mul(price).Div(hundred).InexactFloat64()
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "¢")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if negative && s != "" {
		s = "-" + s
	}
	return s
}

func parseNumber(s string) (decimal.Decimal, error) {
	cleaned := cleanNumber(s)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty value")
	}
	return decimal.NewFromString(cleaned)
}

// parseCurrency defaults to zero on absence or parse failure.
func parseCurrency(s string) decimal.Decimal {
	d, err := parseNumber(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseContracts(s string) (int, error) {
	d, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative contract count")
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("fractional contract count")
	}
	return int(d.IntPart()), nil
}
