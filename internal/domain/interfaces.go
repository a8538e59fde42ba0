package domain

import (
	"context"
	"io"
)

// RowSource yields raw rows from an export file.
type RowSource interface {
	ReadFile(path string) ([]RawRow, error)
	Read(source string, r io.Reader) ([]RawRow, error)
}

// SnapshotRepository exports analysis results for external querying.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, label string, snap *Snapshot) (int64, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	ListMatchedTrades(ctx context.Context, runID int64) ([]*MatchedTrade, error)
}
