// Package server exposes the calendar views over HTTP for the frontend.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"hallkal/internal/audit"
	"hallkal/internal/export"
	"hallkal/internal/model"
	"hallkal/internal/service"

	"github.com/rs/zerolog"
)

// Server routes API requests to the calendar service.
type Server struct {
	svc     *service.Service
	auditDB *audit.DB
	logger  *zerolog.Logger
}

// New constructs the API server. auditDB may be nil when load auditing
// is disabled; the audit endpoint then reports 404.
func New(svc *service.Service, auditDB *audit.DB, logger *zerolog.Logger) *Server {
	return &Server{svc: svc, auditDB: auditDB, logger: logger}
}

// Handler builds the routed handler with logging, metrics and rate
// limiting applied.
func (s *Server) Handler(ratePerSec, burst int) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/month", s.handleMonth)
	mux.HandleFunc("GET /api/days/{date}", s.handleDay)
	mux.HandleFunc("GET /api/districts", s.handleDistricts)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("POST /api/selection/toggle", s.handleToggleFacility)
	mux.HandleFunc("POST /api/selection/district", s.handleToggleDistrict)
	mux.HandleFunc("POST /api/selection/all", s.handleToggleAll)
	mux.HandleFunc("DELETE /api/selection", s.handleClearSelection)
	mux.HandleFunc("PUT /api/range", s.handleSetRange)
	mux.HandleFunc("GET /api/export/excel", s.handleExportExcel)
	mux.HandleFunc("GET /api/export/ics", s.handleExportICS)
	mux.HandleFunc("GET /api/audit/loads", s.handleAuditLoads)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !s.svc.Loaded() {
			http.Error(w, "snapshot not loaded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	return s.withLogging(withMetrics(newIPRateLimiter(ratePerSec, burst).middleware(mux)))
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid month %d", month))
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Month(year, time.Month(month)))
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	dayKey := r.PathValue("date")
	if _, err := time.Parse(model.DateFormat, dayKey); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q", dayKey))
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Day(dayKey))
}

func (s *Server) handleDistricts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"districts": s.svc.Districts()})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reload(r.Context()); err != nil {
		// The previous snapshot keeps serving; the client may retry.
		writeError(w, http.StatusBadGateway, "snapshot reload failed")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

func (s *Server) handleToggleFacility(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FacilityNumber string `json:"facility_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.FacilityNumber == "" {
		writeError(w, http.StatusBadRequest, "facility_number required")
		return
	}
	if err := s.svc.ToggleFacility(body.FacilityNumber); err != nil {
		writeError(w, http.StatusInternalServerError, "selection update failed")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

func (s *Server) handleToggleDistrict(w http.ResponseWriter, r *http.Request) {
	var body struct {
		District string `json:"district"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.District == "" {
		writeError(w, http.StatusBadRequest, "district required")
		return
	}
	if err := s.svc.ToggleDistrict(body.District); err != nil {
		writeError(w, http.StatusInternalServerError, "selection update failed")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

func (s *Server) handleToggleAll(w http.ResponseWriter, _ *http.Request) {
	if err := s.svc.ToggleAll(); err != nil {
		writeError(w, http.StatusInternalServerError, "selection update failed")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

func (s *Server) handleClearSelection(w http.ResponseWriter, _ *http.Request) {
	if err := s.svc.ClearSelection(); err != nil {
		writeError(w, http.StatusInternalServerError, "selection update failed")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

func (s *Server) handleSetRange(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	var start, end time.Time
	var err error
	if body.Start != "" {
		if start, err = time.Parse(model.DateFormat, body.Start); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid start %q", body.Start))
			return
		}
	}
	if body.End != "" {
		if end, err = time.Parse(model.DateFormat, body.End); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid end %q", body.End))
			return
		}
	}

	s.svc.SetDateRange(start, end)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportExcel(w http.ResponseWriter, _ *http.Request) {
	snap, index := s.svc.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshot not loaded")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=reservations.xlsx")
	if err := export.WriteExcel(w, snap, index); err != nil {
		s.logger.Error().Err(err).Msg("excel export failed")
	}
}

func (s *Server) handleExportICS(w http.ResponseWriter, _ *http.Request) {
	snap, index := s.svc.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshot not loaded")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=reservations.ics")
	if err := export.WriteICS(w, "Hall Reservations", snap, index); err != nil {
		s.logger.Error().Err(err).Msg("ics export failed")
	}
}

func (s *Server) handleAuditLoads(w http.ResponseWriter, r *http.Request) {
	if s.auditDB == nil {
		writeError(w, http.StatusNotFound, "audit disabled")
		return
	}
	records, err := s.auditDB.RecentLoads(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "audit query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loads": records})
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port, ratePerSec, burst int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Handler(ratePerSec, burst),
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
