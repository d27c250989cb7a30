// Package api provides the HTTP surface of the pipeline and query services.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/riftlabs/riftqa/internal/config"
)

// Pinger is implemented by dependencies that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// newEcho builds an echo instance with the shared middleware stack.
func newEcho(logger *zap.Logger, metrics *Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(metrics.Middleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	return e
}

// server wraps the pieces common to both services.
type server struct {
	echo    *echo.Echo
	cfg     *config.ServerConfig
	logger  *zap.Logger
	metrics *Metrics
}

// Start begins serving and blocks until shutdown or failure.
func (s *server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))

	s.echo.Server.ReadTimeout = s.cfg.ReadTimeout.Duration()
	s.echo.Server.WriteTimeout = s.cfg.WriteTimeout.Duration()
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router for tests.
func (s *server) Echo() *echo.Echo { return s.echo }

// checkComponents pings each named dependency and reports per-component
// state. Dependencies that do not implement Pinger count as healthy.
func checkComponents(ctx context.Context, components map[string]any) (string, map[string]string) {
	status := "ok"
	states := make(map[string]string, len(components))
	for name, dep := range components {
		p, ok := dep.(Pinger)
		if !ok {
			states[name] = "ok"
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := p.Ping(pingCtx); err != nil {
			states[name] = err.Error()
			status = "degraded"
		} else {
			states[name] = "ok"
		}
		cancel()
	}
	return status, states
}

func healthStatusCode(status string) int {
	if status == "ok" {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
