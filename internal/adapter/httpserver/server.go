package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/adapter/metrics"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/platform/config"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/state"
	"github.com/labstack/echo/v4"
)

type appService interface {
	GetAll(ctx context.Context) domain.Document
	ReplaceAll(ctx context.Context, doc domain.Document) domain.Document
	PatchDocument(ctx context.Context, body []byte, kind state.PatchKind) (domain.Document, error)
	SetTaskState(ctx context.Context, fabricID, taskID string, checked bool) domain.Document
	SetTaskNotes(ctx context.Context, fabricID, taskID, notes string) domain.Document
	SetTaskCategory(ctx context.Context, fabricID, taskID, category string) domain.Document
	SetTaskKanbanStatus(ctx context.Context, fabricID, taskID, status string) domain.Document
	SetTestCaseState(ctx context.Context, fabricID, testCaseID string, value json.RawMessage) domain.Document
	SaveSubChecklist(ctx context.Context, fabricID string, value json.RawMessage) domain.Document
	DeleteSubChecklist(ctx context.Context, fabricID string) domain.Document
	SetCurrentFabric(ctx context.Context, fabricID string) domain.Document
	Initialize(ctx context.Context, fabrics []domain.FabricDescriptor, sections []domain.SectionDescriptor, existing *domain.Document) domain.Document
	UpsertUser(ctx context.Context, user domain.User) domain.Document
	SetCurrentUser(ctx context.Context, userID string) domain.Document
	AddComment(ctx context.Context, comment domain.Comment) (domain.Comment, domain.Document, error)
	UpdateComment(ctx context.Context, taskID, commentID, content string) (domain.Document, error)
	DeleteComment(ctx context.Context, taskID, commentID string) (domain.Document, error)
	MarkNotificationRead(ctx context.Context, id string) (domain.Document, error)
	ClearNotifications(ctx context.Context, userID string) domain.Document
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app appService

	websocketHandler http.Handler
	metricsHandler   http.Handler
	httpMetrics      *metrics.HTTPMetrics

	healthChecks []HealthCheck
	startTime    time.Time
}

// NewServer wires the routing layer. metricsHandler and httpMetrics may be nil.
func NewServer(cfg *config.Config, app appService, websocketHandler, metricsHandler http.Handler, httpMetrics *metrics.HTTPMetrics, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:             e,
		config:           cfg,
		app:              app,
		websocketHandler: websocketHandler,
		metricsHandler:   metricsHandler,
		httpMetrics:      httpMetrics,
		healthChecks:     healthChecks,
		startTime:        time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
