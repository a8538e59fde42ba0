package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/vitos/kalshi_ledger/internal/domain"
	"github.com/vitos/kalshi_ledger/internal/usecase"
	"go.uber.org/zap"
)

const maxUploadBytes = 32 << 20

type Server struct {
	router          *http.ServeMux
	server          *http.Server
	service         *usecase.PortfolioService
	store           domain.SnapshotRepository // optional export sink
	startingCapital float64
	logger          *zap.Logger

	mu     sync.RWMutex
	latest *domain.Snapshot
}

func NewServer(
	port int,
	service *usecase.PortfolioService,
	store domain.SnapshotRepository,
	startingCapital float64,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:          http.NewServeMux(),
		service:         service,
		store:           store,
		startingCapital: startingCapital,
		logger:          logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Analysis
	s.router.HandleFunc("POST /api/analyze", s.handleAnalyze)

	// Latest snapshot
	s.router.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	s.router.HandleFunc("GET /api/trades", s.handleTrades)
	s.router.HandleFunc("GET /api/stats", s.handleStats)

	// Exported runs
	s.router.HandleFunc("GET /api/runs", s.handleListRuns)
	s.router.HandleFunc("GET /api/runs/{id}/trades", s.handleRunTrades)

	// Status
	s.router.HandleFunc("GET /status", s.handleStatus)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) setLatest(snap *domain.Snapshot) {
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
}

func (s *Server) getLatest() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
