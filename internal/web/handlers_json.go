package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vitos/kalshi_ledger/internal/domain"
	"github.com/vitos/kalshi_ledger/internal/usecase"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "expected multipart form: "+err.Error())
		return
	}

	capital := s.startingCapital
	if v := r.FormValue("capital"); v != "" {
		c, err := strconv.ParseFloat(v, 64)
		if err != nil || c <= 0 {
			s.writeError(w, http.StatusBadRequest, "capital must be a positive number")
			return
		}
		capital = c
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	uploads := make([]usecase.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "failed to open "+fh.Filename)
			return
		}
		defer f.Close()
		uploads = append(uploads, usecase.Upload{Name: fh.Filename, Body: f})
	}

	snap, err := s.service.AnalyzeUploads(r.Context(), capital, uploads...)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, domain.ErrInvalidCapital) && !errors.Is(err, domain.ErrNoData) {
			var schemaErr *domain.SchemaError
			if !errors.As(err, &schemaErr) {
				status = http.StatusUnprocessableEntity
			}
		}
		s.logger.Warn("Analysis failed", zap.Error(err))
		s.writeError(w, status, err.Error())
		return
	}

	if s.store != nil {
		label := uploads[0].Name
		if len(uploads) > 1 {
			label += " +" + strconv.Itoa(len(uploads)-1)
		}
		if _, err := s.store.SaveSnapshot(r.Context(), label, snap); err != nil {
			s.logger.Error("Failed to export snapshot", zap.Error(err))
			// Continue, the snapshot is still returned
		}
	}

	s.setLatest(snap)
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.getLatest()
	if snap == nil {
		s.writeError(w, http.StatusNotFound, "no analysis yet")
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	snap := s.getLatest()
	if snap == nil {
		s.writeError(w, http.StatusNotFound, "no analysis yet")
		return
	}
	trades := snap.MatchedTrades
	if ticker := r.URL.Query().Get("ticker"); ticker != "" {
		filtered := []domain.MatchedTrade{}
		for _, t := range trades {
			if t.Ticker == ticker {
				filtered = append(filtered, t)
			}
		}
		trades = filtered
	}
	s.writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.getLatest()
	if snap == nil {
		s.writeError(w, http.StatusNotFound, "no analysis yet")
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		Stats  domain.StatsSummary `json:"stats"`
		Risk   domain.RiskMetrics  `json:"risk"`
		Report domain.MatchReport  `json:"report"`
	}{snap.Stats, snap.Risk, snap.Report})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "export is not configured")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list runs", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []*domain.Run{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunTrades(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "export is not configured")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	trades, err := s.store.ListMatchedTrades(r.Context(), id)
	if err != nil {
		s.logger.Error("Failed to list matched trades", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}
	if trades == nil {
		trades = []*domain.MatchedTrade{}
	}
	s.writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
