package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCapital = errors.New("starting capital must be greater than 0")
	ErrNoData         = errors.New("no transactions to analyze")
)

// SchemaError rejects a whole file that lacks required columns.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

// RowError drops a single row that failed coercion.
type RowError struct {
	Source string
	Row    int
	Field  string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d: invalid %s %q: %v", e.Source, e.Row, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// DegradedTimestamp marks a row whose Created value was replaced with the current time.
type DegradedTimestamp struct {
	Source string
	Row    int
	Raw    string
}

func (e *DegradedTimestamp) Error() string {
	return fmt.Sprintf("%s row %d: unparseable timestamp %q, using current time", e.Source, e.Row, e.Raw)
}

// UnmatchedExit is an exit with no compatible open lot.
type UnmatchedExit struct {
	Ticker    string    `json:"ticker"`
	Direction Direction `json:"direction"`
	Kind      TxKind    `json:"kind"`
	Contracts int       `json:"contracts"`
	Time      time.Time `json:"time"`
}

func (e *UnmatchedExit) Error() string {
	return fmt.Sprintf("unmatched %s exit: %s %s x%d at %s",
		e.Kind, e.Ticker, e.Direction, e.Contracts, e.Time.Format(time.RFC3339))
}
