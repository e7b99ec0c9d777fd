package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"VRSentinel/internal/batch"
	"VRSentinel/internal/model"
)

// Runner scores one batch.
type Runner interface {
	Run(ctx context.Context, req batch.Request) (*model.BatchResult, error)
}

// Config holds server configuration.
type Config struct {
	Addr     string
	Log      zerolog.Logger
	Runner   Runner
	Gatherer prometheus.Gatherer
}

// Server exposes health, metrics and on-demand scoring over HTTP.
type Server struct {
	router *chi.Mux
	server *http.Server
	runner Runner
	log    zerolog.Logger
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		runner: cfg.Runner,
		log:    cfg.Log.With().Str("component", "server").Logger(),
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(s.loggingMiddleware)

	s.router.Get("/health", s.handleHealth)
	if cfg.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/vr", s.handleScore)
	})

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // a full batch may take a while
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown; http.ErrServerClosed is not an error.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// scoreResponse is the JSON body of /api/vr.
type scoreResponse struct {
	RunID      string            `json:"run_id"`
	Benchmark  string            `json:"benchmark"`
	Start      string            `json:"start"`
	End        string            `json:"end"`
	DurationMS int64             `json:"duration_ms"`
	Results    []model.ResultRow `json:"results"`
}

// handleScore runs a batch: /api/vr?symbols=AAPL,MSFT[&benchmark=SPY][&group=reits][&years=5][&min_obs=150]
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var symbols []string
	for _, part := range strings.Split(q.Get("symbols"), ",") {
		if p := strings.TrimSpace(part); p != "" {
			symbols = append(symbols, p)
		}
	}
	if len(symbols) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "symbols is required"})
		return
	}
	req := batch.Request{
		Symbols:   batch.Symbols(symbols...),
		Benchmark: q.Get("benchmark"),
		Group:     q.Get("group"),
	}
	for name, dst := range map[string]*int{"years": &req.LookbackYears, "min_obs": &req.MinObservations} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": name + " must be a positive integer"})
				return
			}
			*dst = n
		}
	}

	res, err := s.runner.Run(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrBenchmarkUnavailable) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{
		RunID:      res.RunID,
		Benchmark:  res.Benchmark,
		Start:      res.Start.Format("2006-01-02"),
		End:        res.End.Format("2006-01-02"),
		DurationMS: res.Duration.Milliseconds(),
		Results:    res.Rows(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
