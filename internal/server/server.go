// Package server exposes rankings, exports and link handling over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mithrel/topviews/internal/controller"
	"github.com/mithrel/topviews/internal/linkstate"
	"github.com/mithrel/topviews/internal/listview"
	"github.com/mithrel/topviews/internal/logger"
	"github.com/mithrel/topviews/internal/ranking"
	"github.com/mithrel/topviews/internal/sites"
)

// Options configures a Server
type Options struct {
	Addr     string
	Source   ranking.Source
	Codec    *linkstate.Codec
	Sites    *sites.Registry
	PageSize int
	Sample   int
	Mode     listview.Mode
	Timeout  time.Duration
	Now      func() time.Time
	Log      *logger.Logger
}

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	opts Options
	mux  *chi.Mux
	srv  *http.Server
	log  *logger.Logger
}

// New builds the router. Every request gets its own controller.
func New(o Options) *Server {
	if o.Addr == "" {
		o.Addr = "127.0.0.1:8080"
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Log == nil {
		o.Log = logger.Named("http")
	}
	s := &Server{opts: o, log: o.Log}

	m := chi.NewRouter()
	m.Use(chimw.RequestID)
	m.Use(chimw.RealIP)
	m.Use(accessLog(o.Log))
	m.Use(chimw.Recoverer)
	m.Use(chimw.Timeout(o.Timeout))

	m.Get("/healthz", s.handleHealth)
	m.Route("/api", func(r chi.Router) {
		r.Get("/top", s.handleTop)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/export.json", s.handleExportJSON)
		r.Get("/link", s.handleLink)
	})

	s.mux = m
	s.srv = &http.Server{
		Addr:              o.Addr,
		Handler:           m,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler { return s.mux }

// Addr returns the listening address
func (s *Server) Addr() string { return s.opts.Addr }

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.opts.Addr).Msg("http listening")
		err := s.srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errc <- err
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

func (s *Server) newController() *controller.Controller {
	return controller.New(controller.Options{
		Codec:    s.opts.Codec,
		Sites:    s.opts.Sites,
		PageSize: s.opts.PageSize,
		Sample:   s.opts.Sample,
		Mode:     s.opts.Mode,
		Now:      s.opts.Now,
		Log:      s.log,
	})
}

// captureWriter records status and bytes for the access log
type captureWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	n, err := cw.ResponseWriter.Write(b)
	if n > 0 {
		cw.bytes += n
	}
	return n, err
}

func accessLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(cw, r)

			evt := log.Info()
			if cw.status >= http.StatusInternalServerError {
				evt = log.Warn()
			}
			evt.Int("status", cw.status).
				Dur("elapsed", time.Since(start)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", chimw.GetReqID(r.Context())).
				Int("bytes", cw.bytes).
				Msg("request done")
		})
	}
}
