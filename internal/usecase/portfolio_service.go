package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vitos/kalshi_ledger/internal/domain"
	"github.com/vitos/kalshi_ledger/internal/infrastructure/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type PortfolioOptions struct {
	Policy               MatchingPolicy
	DefaultTZOffsetHours int
	TradingDaysPerYear   int
}

func DefaultPortfolioOptions() PortfolioOptions {
	return PortfolioOptions{
		Policy:               DefaultMatchingPolicy(),
		DefaultTZOffsetHours: DefaultTZOffsetHours,
		TradingDaysPerYear:   DefaultTradingDaysPerYear,
	}
}

// Upload is a named export stream, e.g. one multipart file.
type Upload struct {
	Name string
	Body io.Reader
}

// PortfolioService runs normalize → merge → match → aggregate.
type PortfolioService struct {
	source     domain.RowSource
	normalizer *Normalizer
	matcher    *LotMatcher
	aggregator *StatsAggregator
	risk       *RiskCalculator
	logger     *zap.Logger
	timeNow    func() time.Time
}

func NewPortfolioService(source domain.RowSource, opts PortfolioOptions, logger *zap.Logger) *PortfolioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioService{
		source:     source,
		normalizer: NewNormalizer(logger, opts.DefaultTZOffsetHours),
		matcher:    NewLotMatcher(logger, opts.Policy),
		aggregator: NewStatsAggregator(),
		risk:       NewRiskCalculator(opts.TradingDaysPerYear),
		logger:     logger,
		timeNow:    time.Now,
	}
}

// NormalizeBatch normalizes one file's rows. Row-level problems end up in
// the batch diagnostics.
func (s *PortfolioService) NormalizeBatch(source string, rows []domain.RawRow) domain.Batch {
	batch, err := s.normalizer.NormalizeBatch(source, rows)
	if err != nil {
		s.logger.Warn("Batch normalized with problems",
			zap.String("source", source),
			zap.Int("problems", len(multierr.Errors(err))),
			zap.Int("transactions", len(batch.Transactions)))
	}
	return batch
}

// MergeBatches concatenates the batches and sorts by time. Equal timestamps
// keep batch order, then row order.
func MergeBatches(batches ...domain.Batch) []domain.Transaction {
	var total int
	for _, b := range batches {
		total += len(b.Transactions)
	}
	merged := make([]domain.Transaction, 0, total)
	for _, b := range batches {
		merged = append(merged, b.Transactions...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Created.Before(merged[j].Created)
	})
	return merged
}

// Analyze re-matches the union of all batches. Pre-matched results are never
// combined; positions spanning files only close correctly over the union.
func (s *PortfolioService) Analyze(ctx context.Context, capital float64, batches ...domain.Batch) (*domain.Snapshot, error) {
	if capital <= 0 {
		return nil, domain.ErrInvalidCapital
	}

	ctx, span := tracing.StartSpan(ctx, "portfolio.analyze")
	defer span.End()

	snap := &domain.Snapshot{
		GeneratedAt: s.timeNow(),
		Sources:     []string{},
	}
	for _, b := range batches {
		snap.Sources = append(snap.Sources, b.Source)
		snap.Diagnostics = append(snap.Diagnostics, b.Diagnostics...)
	}

	_, mergeSpan := tracing.StartSpan(ctx, "portfolio.merge")
	snap.Transactions = MergeBatches(batches...)
	mergeSpan.SetAttributes(attribute.Int("transactions", len(snap.Transactions)))
	mergeSpan.End()

	// matching completes before anything reads its output
	_, matchSpan := tracing.StartSpan(ctx, "portfolio.match")
	result := s.matcher.Match(snap.Transactions)
	matchSpan.SetAttributes(attribute.Int("matched", len(result.Trades)))
	matchSpan.End()

	snap.MatchedTrades = result.Trades
	snap.OpenLots = result.OpenLots
	snap.Report = result.Report
	for i := range result.Report.UnmatchedExits {
		snap.Diagnostics = append(snap.Diagnostics, result.Report.UnmatchedExits[i].Error())
	}
	for _, o := range result.Report.OversizedExits {
		snap.Diagnostics = append(snap.Diagnostics, fmt.Sprintf("oversized exit: %s %s at %s, %d of %d contracts had no open lot",
			o.Ticker, o.Direction, o.Time.Format(time.RFC3339), o.Dropped, o.Requested))
	}

	_, statsSpan := tracing.StartSpan(ctx, "portfolio.aggregate")
	snap.Stats = s.aggregator.Summarize(snap.Transactions, snap.MatchedTrades)
	risk, err := s.risk.Calculate(snap.MatchedTrades, capital)
	statsSpan.End()
	if err != nil {
		return nil, err
	}
	snap.Risk = risk

	s.logger.Info("Portfolio analyzed",
		zap.Strings("sources", snap.Sources),
		zap.Int("transactions", len(snap.Transactions)),
		zap.Int("matched_trades", len(snap.MatchedTrades)),
		zap.Float64("total_profit", snap.Stats.TotalProfit),
		zap.Float64("win_rate", snap.Stats.WinRate),
		zap.Float64("sharpe", snap.Risk.SharpeRatio),
		zap.Int("diagnostics", len(snap.Diagnostics)))

	return snap, nil
}

// LoadFile reads and normalizes one export. A *domain.SchemaError rejects
// the whole file.
func (s *PortfolioService) LoadFile(path string) (domain.Batch, error) {
	rows, err := s.source.ReadFile(path)
	if err != nil {
		return domain.Batch{}, err
	}
	return s.NormalizeBatch(path, rows), nil
}

func (s *PortfolioService) LoadUpload(u Upload) (domain.Batch, error) {
	rows, err := s.source.Read(u.Name, u.Body)
	if err != nil {
		return domain.Batch{}, err
	}
	return s.NormalizeBatch(u.Name, rows), nil
}

// AnalyzeFiles loads every path independently and analyzes the ones that
// could be read. Rejected files are reported in the snapshot diagnostics;
// an error is returned only when no file could be loaded.
func (s *PortfolioService) AnalyzeFiles(ctx context.Context, capital float64, paths ...string) (*domain.Snapshot, error) {
	uploads := make([]func() (domain.Batch, error), 0, len(paths))
	for _, p := range paths {
		uploads = append(uploads, func() (domain.Batch, error) { return s.LoadFile(p) })
	}
	return s.analyzeLoaded(ctx, capital, uploads)
}

func (s *PortfolioService) AnalyzeUploads(ctx context.Context, capital float64, uploads ...Upload) (*domain.Snapshot, error) {
	loaders := make([]func() (domain.Batch, error), 0, len(uploads))
	for _, u := range uploads {
		loaders = append(loaders, func() (domain.Batch, error) { return s.LoadUpload(u) })
	}
	return s.analyzeLoaded(ctx, capital, loaders)
}

func (s *PortfolioService) analyzeLoaded(ctx context.Context, capital float64, loaders []func() (domain.Batch, error)) (*domain.Snapshot, error) {
	if capital <= 0 {
		return nil, domain.ErrInvalidCapital
	}
	if len(loaders) == 0 {
		return nil, domain.ErrNoData
	}

	var batches []domain.Batch
	var errs error
	for _, load := range loaders {
		batch, err := load()
		if err != nil {
			var schemaErr *domain.SchemaError
			if errors.As(err, &schemaErr) {
				s.logger.Error("File rejected", zap.String("source", schemaErr.Source), zap.Strings("missing", schemaErr.Missing))
			} else {
				s.logger.Error("File unreadable", zap.Error(err))
			}
			errs = multierr.Append(errs, err)
			continue
		}
		batches = append(batches, batch)
	}

	if len(batches) == 0 {
		return nil, fmt.Errorf("no file could be loaded: %w", errs)
	}

	snap, err := s.Analyze(ctx, capital, batches...)
	if err != nil {
		return nil, err
	}
	var fileDiags []string
	for _, e := range multierr.Errors(errs) {
		fileDiags = append(fileDiags, e.Error())
	}
	snap.Diagnostics = append(fileDiags, snap.Diagnostics...)
	return snap, nil
}
