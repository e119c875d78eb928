// Package web serves the timesheet extraction pipeline over HTTP: a single
// multipart upload endpoint plus service info and health routes.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ironsheep/timesheet-tools-mcp/internal/logger"
	"github.com/ironsheep/timesheet-tools-mcp/internal/pipeline"
	"github.com/ironsheep/timesheet-tools-mcp/internal/upload"
)

// Extractor runs the pipeline on a stored upload.
type Extractor interface {
	ExtractFile(ctx context.Context, path string, opts pipeline.Options) (*pipeline.Report, error)
}

// Options configures a Server.
type Options struct {
	Addr           string
	CORSOrigins    []string
	MaxUploadBytes int64
	Version        string
	// SlowRequest marks slower requests at warn level in the access log.
	SlowRequest time.Duration
}

// Server is a chi router plus the stdlib http.Server running it.
type Server struct {
	opts      Options
	extractor Extractor
	store     *upload.Store
	mux       *chi.Mux
	srv       *http.Server
}

// NewServer wires routes and middleware.
func NewServer(opts Options, extractor Extractor, store *upload.Store) *Server {
	s := &Server{
		opts:      opts,
		extractor: extractor,
		store:     store,
		mux:       chi.NewRouter(),
	}

	s.mux.Use(requestID, recoverJSON, accessLog(opts.SlowRequest), corsHandler(opts.CORSOrigins))
	s.mux.Get("/", s.handleIndex)
	s.mux.Get("/healthz", s.handleHealth)
	s.mux.Post("/upload", s.handleUpload)
	s.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.mux }

// Addr returns the listening address
func (s *Server) Addr() string { return s.opts.Addr }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.opts.Addr).Msg("http listening")
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("http shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
