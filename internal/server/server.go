// Package server exposes the export pipeline over HTTP.
//
// Routes:
//
//	GET  /health, /api/health            liveness and store readiness
//	GET  /api/assessments                record summaries, newest first
//	GET  /api/assessments/{id}           one record in row form
//	POST /api/export/{format}/{id}       export with images and sections
//	GET  /api/export/{format}/{id}       export without images
//
// Export bodies are {"images": [...], "exportSections": [...]}. A missing
// or null exportSections selects every section.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/secassess/pkg/pipeline"
)

// Defaults applied by [New] to zero [Options] fields.
const (
	DefaultAddr         = ":4000"
	DefaultMaxBodyBytes = 50 << 20
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 2 * time.Minute
	shutdownTimeout     = 10 * time.Second
	healthTimeout       = 2 * time.Second
)

// Uploader publishes an artifact and returns its URL.
type Uploader interface {
	Put(ctx context.Context, id, filename, contentType string, data []byte) (string, error)
}

// Options configures a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MaxBodyBytes caps export request bodies, which carry base64 images.
	MaxBodyBytes int64
	// Uploader enables ?upload=true on export routes. Nil disables it.
	Uploader Uploader
}

// Server serves the export API.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	opts     Options
	uploader Uploader
	router   chi.Router
}

// New returns a server exporting through runner. The runner's store backs
// the record routes.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	s := &Server{
		runner:   runner,
		logger:   logger,
		opts:     opts,
		uploader: opts.Uploader,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/assessments", s.handleListAssessments)
		r.Get("/assessments/{id}", s.handleGetAssessment)
		r.Post("/export/{format}/{id}", s.handleExport)
		r.Get("/export/{format}/{id}", s.handleExport)
	})
	return r
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("HTTP server listening", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
