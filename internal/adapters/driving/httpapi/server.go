package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/k3ss-official/k3ss-search/internal/core/ports/driving"
)

// shutdownGrace is how long in-flight requests get once the server stops.
const shutdownGrace = 10 * time.Second

// Config configures the HTTP server.
type Config struct {
	Addr           string
	AllowedOrigins []string
	Version        string
}

// Ports aggregates the driving ports the server needs.
type Ports struct {
	Discovery driving.DiscoveryService
	Search    driving.SearchService
	Format    driving.FormatService
}

// Validate ensures every port is set.
func (p *Ports) Validate() error {
	switch {
	case p.Discovery == nil:
		return errors.New("httpapi: discovery service is required")
	case p.Search == nil:
		return errors.New("httpapi: search service is required")
	case p.Format == nil:
		return errors.New("httpapi: format service is required")
	}
	return nil
}

// Server is the HTTP/JSON API server.
type Server struct {
	cfg       Config
	container *restful.Container
	logger    *zerolog.Logger
}

// NewServer wires the routes, filters and OpenAPI document.
func NewServer(cfg Config, ports *Ports, logger *zerolog.Logger) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	container := restful.NewContainer()
	container.Filter(requestLogger(logger))
	container.Filter(recoverPanic(logger))

	handler := NewHandler(ports.Discovery, ports.Search, ports.Format, cfg.Version, logger)
	RegisterRoutes(container, handler)
	RegisterOpenAPI(container, cfg.Version)

	return &Server{cfg: cfg, container: container, logger: logger}, nil
}

// Handler returns the CORS-wrapped container.
func (s *Server) Handler() http.Handler {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return corsHandler.Handler(s.container)
}

// Run serves until ctx is cancelled. Request contexts derive from ctx, so
// stopping the server also cancels running searches.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.logger.Info().Str("address", ln.Addr().String()).Msg("Starting k3ss-search API")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		s.logger.Info().Msg("Shutting down k3ss-search API")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http: %w", err)
		}
		return nil
	}
}
