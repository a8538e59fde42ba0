package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/kalshi_ledger/internal/domain"
)

// SQLiteStore exports analysis snapshots. The pipeline never reads them back.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			label TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			transactions INTEGER NOT NULL,
			matched_trades INTEGER NOT NULL,
			total_profit REAL NOT NULL,
			matched_net_profit REAL NOT NULL,
			win_rate REAL NOT NULL,
			sharpe_ratio REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS matched_trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			lot_id INTEGER NOT NULL,
			ticker TEXT NOT NULL,
			direction TEXT NOT NULL,
			exit_kind TEXT NOT NULL,
			contracts INTEGER NOT NULL,
			entry_date DATETIME NOT NULL,
			exit_date DATETIME NOT NULL,
			entry_price REAL NOT NULL,
			exit_price REAL NOT NULL,
			entry_cost REAL NOT NULL,
			exit_cost REAL NOT NULL,
			entry_fee REAL NOT NULL,
			exit_fee REAL NOT NULL,
			profit REAL NOT NULL,
			net_profit REAL NOT NULL,
			holding_days REAL NOT NULL,
			roi REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matched_trades_run ON matched_trades(run_id);`,
		`CREATE TABLE IF NOT EXISTS diagnostics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			message TEXT NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

// SaveSnapshot writes the run header, matched trades and diagnostics in one
// transaction and returns the run id.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, label string, snap *domain.Snapshot) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	createdAt := snap.GeneratedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (label, created_at, transactions, matched_trades, total_profit, matched_net_profit, win_rate, sharpe_ratio)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		label, createdAt, len(snap.Transactions), len(snap.MatchedTrades),
		snap.Stats.TotalProfit, snap.Stats.MatchedNetProfit, snap.Stats.WinRate, snap.Risk.SharpeRatio)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO matched_trades (run_id, lot_id, ticker, direction, exit_kind, contracts, entry_date, exit_date,
			entry_price, exit_price, entry_cost, exit_cost, entry_fee, exit_fee, profit, net_profit, holding_days, roi)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, t := range snap.MatchedTrades {
		if _, err := stmt.ExecContext(ctx,
			runID, t.LotID, t.Ticker, t.Direction, t.ExitKind, t.Contracts, t.EntryDate.UTC(), t.ExitDate.UTC(),
			t.EntryPrice, t.ExitPrice, t.EntryCost, t.ExitCost, t.EntryFee, t.ExitFee,
			t.Profit, t.NetProfit, t.HoldingDays, t.ROI); err != nil {
			return 0, fmt.Errorf("failed to insert matched trade: %w", err)
		}
	}

	for _, msg := range snap.Diagnostics {
		if _, err := tx.ExecContext(ctx, `INSERT INTO diagnostics (run_id, message) VALUES (?, ?)`, runID, msg); err != nil {
			return 0, fmt.Errorf("failed to insert diagnostic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	query := `SELECT id, label, created_at, transactions, matched_trades, total_profit, matched_net_profit, win_rate, sharpe_ratio
			  FROM runs ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		var r domain.Run
		if err := rows.Scan(&r.ID, &r.Label, &r.CreatedAt, &r.Transactions, &r.MatchedTrades,
			&r.TotalProfit, &r.MatchedNetProfit, &r.WinRate, &r.SharpeRatio); err != nil {
			return nil, err
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) ListMatchedTrades(ctx context.Context, runID int64) ([]*domain.MatchedTrade, error) {
	query := `SELECT lot_id, ticker, direction, exit_kind, contracts, entry_date, exit_date, entry_price, exit_price,
				entry_cost, exit_cost, entry_fee, exit_fee, profit, net_profit, holding_days, roi
			  FROM matched_trades WHERE run_id = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*domain.MatchedTrade
	for rows.Next() {
		var t domain.MatchedTrade
		if err := rows.Scan(&t.LotID, &t.Ticker, &t.Direction, &t.ExitKind, &t.Contracts, &t.EntryDate, &t.ExitDate,
			&t.EntryPrice, &t.ExitPrice, &t.EntryCost, &t.ExitCost, &t.EntryFee, &t.ExitFee,
			&t.Profit, &t.NetProfit, &t.HoldingDays, &t.ROI); err != nil {
			return nil, err
		}
		trades = append(trades, &t)
	}
	return trades, rows.Err()
}
