// Package api exposes the analysis engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Veraticus/finsight/internal/analysis"
	"github.com/Veraticus/finsight/internal/cache"
	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Minute
	maxBodySize     = "10M"
)

// Deps contains the dependencies of the HTTP server.
type Deps struct {
	Engine      *analysis.Engine
	Categorizer *classification.Categorizer
	Cache       *cache.ReportCache
	Metrics     *Metrics
	Gatherer    prometheus.Gatherer
	// Storage is optional; without it the per-year endpoint answers 503.
	Storage service.Storage
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Engine == nil {
		return fmt.Errorf("engine dependency is required")
	}
	if d.Categorizer == nil {
		return fmt.Errorf("categorizer dependency is required")
	}
	if d.Cache == nil {
		return fmt.Errorf("cache dependency is required")
	}
	if d.Metrics == nil {
		return fmt.Errorf("metrics dependency is required")
	}
	if d.Gatherer == nil {
		return fmt.Errorf("gatherer dependency is required")
	}
	return nil
}

// Options configures the listener and rate limiting. The server speaks
// HTTPS when both TLS files are set.
type Options struct {
	Address     string
	TLSCertFile string
	TLSKeyFile  string
	RateLimit   float64
	Burst       int
}

// Server is the finsight HTTP API.
type Server struct {
	echo    *echo.Echo
	limiter *RateLimiter
	deps    Deps
	address string
	tlsCert string
	tlsKey  string
}

// NewServer builds the echo instance and registers all routes.
func NewServer(deps Deps, opts Options) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default().With("component", "api")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	s := &Server{
		echo:    e,
		deps:    deps,
		address: opts.Address,
		tlsCert: opts.TLSCertFile,
		tlsKey:  opts.TLSKeyFile,
		limiter: NewRateLimiter(opts.RateLimit, opts.Burst),
	}
	s.limiter.onReject = deps.Metrics.rateLimited.Inc
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(RequestID())
	e.Use(RequestLogger(deps.Logger))
	e.Use(middleware.BodyLimit(maxBodySize))

	e.GET("/health", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	v1 := e.Group("/api/v1", s.limiter.Middleware())
	v1.POST("/analyze", s.analyze)
	v1.GET("/analysis/:year", s.analysisForYear)
	v1.POST("/categorize", s.categorize)

	return s, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.janitor(ctx)

	errCh := make(chan error, 1)
	go func() {
		if s.tlsCert != "" && s.tlsKey != "" {
			s.deps.Logger.Info("Starting HTTPS server", "address", s.address)
			errCh <- s.echo.StartTLS(s.address, s.tlsCert, s.tlsKey)
			return
		}
		s.deps.Logger.Info("Starting HTTP server", "address", s.address)
		errCh <- s.echo.Start(s.address)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.deps.Logger.Info("Shutting down HTTP server")
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}

func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Cleanup(visitorIdleTimeout)
		}
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = sendError(c, he.Code, fmt.Sprint(he.Message), "")
		return
	}

	s.deps.Logger.Error("Unhandled error", "error", err, "request_id", GetRequestID(c))
	_ = sendError(c, http.StatusInternalServerError, "internal server error", "")
}

func sendError(c echo.Context, status int, message, details string) error {
	return c.JSON(status, ErrorResponse{
		Error:     message,
		Details:   details,
		RequestID: GetRequestID(c),
	})
}
