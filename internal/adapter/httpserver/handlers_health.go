package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/platform/version"
	"github.com/labstack/echo/v4"
)

const (
	startupProbeTimeout   = 2 * time.Second
	readinessProbeTimeout = 5 * time.Second
)

// HealthCheck is a named dependency probe run by the startup and readiness endpoints.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/healthz", s.handleHealthz)
	s.echo.GET("/health/startup", s.probeHandler(startupProbeTimeout))
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.probeHandler(readinessProbeTimeout))
	s.echo.GET("/version", s.handleVersion)
}

// handleHealthz is the plain probe the browser client polls.
func (s *Server) handleHealthz(c echo.Context) error {
	return writeJSON(c, http.StatusOK, probeResponse{Status: "ok"})
}

func (s *Server) handleLiveness(c echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]any{
		"status":     "ok",
		"started_at": s.startTime.UTC().Format(time.RFC3339),
		"uptime":     time.Since(s.startTime).Seconds(),
	})
}

// probeHandler runs every health check under timeout and reports each outcome.
// One failed check makes the whole probe 503.
func (s *Server) probeHandler(timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		resp, healthy := s.runHealthChecks(ctx)
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		return writeJSON(c, status, resp)
	}
}

func (s *Server) runHealthChecks(ctx context.Context) (probeResponse, bool) {
	resp := probeResponse{Status: "ready"}
	if len(s.healthChecks) == 0 {
		return resp, true
	}

	healthy := true
	resp.Checks = make(map[string]string, len(s.healthChecks))
	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			healthy = false
			resp.Checks[hc.Name] = err.Error()
			continue
		}
		resp.Checks[hc.Name] = "ok"
	}
	if !healthy {
		resp.Status = "unhealthy"
	}
	return resp, healthy
}

func (s *Server) handleVersion(c echo.Context) error {
	return writeJSON(c, http.StatusOK, version.Get())
}

func writeJSON(c echo.Context, status int, body any) error {
	if err := c.JSON(status, body); err != nil {
		return fmt.Errorf("failed to write %s response: %w", c.Path(), err)
	}
	return nil
}
