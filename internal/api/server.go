package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/cohere/internal/config"
	"github.com/dgallion1/cohere/internal/doctree"
	"github.com/dgallion1/cohere/internal/encoder"
	"github.com/dgallion1/cohere/internal/pipeline"
	"github.com/dgallion1/cohere/internal/store"
)

// ReportReader is the slice of the report store the API reads and deletes from.
type ReportReader interface {
	Get(ctx context.Context, id string) (*doctree.Report, error)
	List(ctx context.Context, limit int) ([]store.Summary, error)
	Delete(ctx context.Context, id string) error
}

// Server is the HTTP API server for cohere.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	reports      ReportReader
	stats        *encoder.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(orch *pipeline.Orchestrator, reports ReportReader, stats *encoder.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		reports:      reports,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/analyze", s.handleAnalyze)
		r.Post("/api/analyze/batch", s.handleBatchAnalyze)
		r.Get("/api/analyze/{jobID}/status", s.handleAnalyzeStatus)

		r.Get("/api/reports", s.handleListReports)
		r.Get("/api/reports/{reportID}", s.handleGetReport)
		r.Delete("/api/reports/{reportID}", s.handleDeleteReport)

		r.Get("/api/stats/encoder", s.handleEncoderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
