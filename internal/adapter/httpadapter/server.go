package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/nivo-observations/internal/domain"
	"github.com/couchcryptid/nivo-observations/internal/service"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ObservationService is the application API served over HTTP.
type ObservationService interface {
	Create(ctx context.Context, draft domain.Draft) (domain.MapItem, error)
	Get(ctx context.Context, id string) (domain.Detail, error)
	List(ctx context.Context) ([]domain.MapItem, error)
	Delete(ctx context.Context, id string) error
	Classify(req service.ClassifyRequest) service.Classification
	Levels() service.LevelTable
	Elevation(ctx context.Context, lat, lon float64) (int, bool)
}

// Server exposes the observation API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	api        ObservationService
	logger     *slog.Logger
}

// NewServer creates an HTTP server. live serves the live map WebSocket and
// may be nil.
func NewServer(addr string, api ObservationService, ready sharedobs.ReadinessChecker, live http.HandlerFunc, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		api:    api,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/observations", s.handleList)
	mux.HandleFunc("POST /api/observations", s.handleCreate)
	mux.HandleFunc("GET /api/observations/{id}", s.handleGet)
	mux.HandleFunc("DELETE /api/observations/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/criticality", s.handleClassify)
	mux.HandleFunc("GET /api/criticality/levels", s.handleLevels)
	mux.HandleFunc("GET /api/elevation", s.handleElevation)
	if live != nil {
		mux.HandleFunc("GET /api/live", live)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
