// Package server exposes a forest over HTTP.
//
// Routes:
//
//	GET  /healthz                        liveness and store state
//	GET  /trees                          registered tree summaries
//	POST /trees                          build a tree from a JSON document
//	GET  /trees/{name}                   one tree with its levels
//	GET  /trees/{name}/depths/{depth}    nodes grouped at a depth
//	GET  /trees/{name}/scales/{depth}    scale of a depth
//	GET  /trees/{name}/layout            layout snapshot, cached
//	GET  /nodes?path=.app.node           node lookup by dotted path
//	GET  /metrics                        Prometheus metrics, when enabled
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/godswood/internal/config"
	"github.com/matzehuels/godswood/pkg/cache"
	"github.com/matzehuels/godswood/pkg/forest"
)

// Options configures a [Server].
type Options struct {
	// Cache stores serialized layouts. Defaults to a null cache.
	Cache cache.Cache

	// Prefix namespaces cache keys.
	Prefix string

	// TTL bounds how long a layout stays cached. Zero keeps it until evicted.
	TTL time.Duration

	// MaxBodyBytes limits POST /trees request bodies. Defaults to 8 MiB.
	MaxBodyBytes int64

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler

	Logger *log.Logger
}

// Server serves read queries and tree uploads for one forest.
type Server struct {
	forest  *forest.Forest
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	maxBody int64
	metrics http.Handler
	logger  *log.Logger

	layouts singleflight.Group
	router  chi.Router
}

// New creates a server for f.
func New(f *forest.Forest, opts Options) *Server {
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 8 << 20
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		forest:  f,
		cache:   cache.Instrument(opts.Cache, "layout"),
		keyer:   cache.NewKeyer(opts.Prefix),
		ttl:     opts.TTL,
		maxBody: opts.MaxBodyBytes,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/trees", func(r chi.Router) {
		r.Get("/", s.handleListTrees)
		r.Post("/", s.handleAddTree)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetTree)
			r.Get("/depths/{depth}", s.handleDepth)
			r.Get("/scales/{depth}", s.handleScale)
			r.Get("/layout", s.handleLayout)
		})
	})

	r.Get("/nodes", s.handleLookup)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.Server) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve is like [Server.ListenAndServe] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg config.Server) error {
	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
