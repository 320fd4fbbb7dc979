package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"secagent/internal/store"
)

// Server is the read-only web dashboard over the scan history store.
type Server struct {
	reader store.Reader
	log    *zap.SugaredLogger
	mux    *http.ServeMux
}

func New(reader store.Reader, log *zap.SugaredLogger) *Server {
	s := &Server{
		reader: reader,
		log:    log,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/scans", s.handleScans)
	s.mux.HandleFunc("GET /api/scans/{id}", s.handleScanByID)
	s.mux.HandleFunc("GET /api/trends", s.handleTrends)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe runs the dashboard until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Infow("dashboard listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reader.Stats(r.Context())
	if err != nil {
		s.fail(w, "load stats", err)
		return
	}
	scans, err := s.reader.Recent(r.Context(), 10, "")
	if err != nil {
		s.fail(w, "load scans", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homeTemplate.Execute(w, homeData{Stats: stats, Scans: scans}); err != nil {
		s.log.Errorw("render dashboard", "error", err)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reader.Stats(r.Context())
	if err != nil {
		s.fail(w, "load stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleScans(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	project := r.URL.Query().Get("project")

	scans, err := s.reader.Recent(r.Context(), limit, project)
	if err != nil {
		s.fail(w, "load scans", err)
		return
	}
	if scans == nil {
		scans = []store.ScanSummary{}
	}
	writeJSON(w, http.StatusOK, scans)
}

func (s *Server) handleScanByID(w http.ResponseWriter, r *http.Request) {
	det, err := s.reader.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, "load scan", err)
		return
	}
	if det == nil {
		http.Error(w, `{"error":"scan not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, det)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}

	trends, err := s.reader.Trends(r.Context(), days)
	if err != nil {
		s.fail(w, "load trends", err)
		return
	}
	if trends == nil {
		trends = []store.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, trends)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.log.Errorw("dashboard query failed", "op", what, "error", err)
	http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
