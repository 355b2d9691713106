package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/platform/config"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/state"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockAppService struct {
	getAllFn               func(ctx context.Context) domain.Document
	replaceAllFn           func(ctx context.Context, doc domain.Document) domain.Document
	patchDocumentFn        func(ctx context.Context, body []byte, kind state.PatchKind) (domain.Document, error)
	setTaskStateFn         func(ctx context.Context, fabricID, taskID string, checked bool) domain.Document
	setTaskNotesFn         func(ctx context.Context, fabricID, taskID, notes string) domain.Document
	setTaskCategoryFn      func(ctx context.Context, fabricID, taskID, category string) domain.Document
	setTaskKanbanStatusFn  func(ctx context.Context, fabricID, taskID, status string) domain.Document
	setTestCaseStateFn     func(ctx context.Context, fabricID, testCaseID string, value json.RawMessage) domain.Document
	saveSubChecklistFn     func(ctx context.Context, fabricID string, value json.RawMessage) domain.Document
	deleteSubChecklistFn   func(ctx context.Context, fabricID string) domain.Document
	setCurrentFabricFn     func(ctx context.Context, fabricID string) domain.Document
	initializeFn           func(ctx context.Context, fabrics []domain.FabricDescriptor, sections []domain.SectionDescriptor, existing *domain.Document) domain.Document
	upsertUserFn           func(ctx context.Context, user domain.User) domain.Document
	setCurrentUserFn       func(ctx context.Context, userID string) domain.Document
	addCommentFn           func(ctx context.Context, comment domain.Comment) (domain.Comment, domain.Document, error)
	updateCommentFn        func(ctx context.Context, taskID, commentID, content string) (domain.Document, error)
	deleteCommentFn        func(ctx context.Context, taskID, commentID string) (domain.Document, error)
	markNotificationReadFn func(ctx context.Context, id string) (domain.Document, error)
	clearNotificationsFn   func(ctx context.Context, userID string) domain.Document
}

func (m *mockAppService) GetAll(ctx context.Context) domain.Document {
	if m.getAllFn != nil {
		return m.getAllFn(ctx)
	}
	return domain.NewDocument()
}

func (m *mockAppService) ReplaceAll(ctx context.Context, doc domain.Document) domain.Document {
	if m.replaceAllFn != nil {
		return m.replaceAllFn(ctx, doc)
	}
	return domain.NewDocument()
}

func (m *mockAppService) PatchDocument(ctx context.Context, body []byte, kind state.PatchKind) (domain.Document, error) {
	if m.patchDocumentFn != nil {
		return m.patchDocumentFn(ctx, body, kind)
	}
	return domain.NewDocument(), nil
}

func (m *mockAppService) SetTaskState(ctx context.Context, fabricID, taskID string, checked bool) domain.Document {
	if m.setTaskStateFn != nil {
		return m.setTaskStateFn(ctx, fabricID, taskID, checked)
	}
	return domain.NewDocument()
}

func (m *mockAppService) SetTaskNotes(ctx context.Context, fabricID, taskID, notes string) domain.Document {
	if m.setTaskNotesFn != nil {
		return m.setTaskNotesFn(ctx, fabricID, taskID, notes)
	}
	return domain.NewDocument()
}

func (m *mockAppService) SetTaskCategory(ctx context.Context, fabricID, taskID, category string) domain.Document {
	if m.setTaskCategoryFn != nil {
		return m.setTaskCategoryFn(ctx, fabricID, taskID, category)
	}
	return domain.NewDocument()
}

func (m *mockAppService) SetTaskKanbanStatus(ctx context.Context, fabricID, taskID, status string) domain.Document {
	if m.setTaskKanbanStatusFn != nil {
		return m.setTaskKanbanStatusFn(ctx, fabricID, taskID, status)
	}
	return domain.NewDocument()
}

func (m *mockAppService) SetTestCaseState(ctx context.Context, fabricID, testCaseID string, value json.RawMessage) domain.Document {
	if m.setTestCaseStateFn != nil {
		return m.setTestCaseStateFn(ctx, fabricID, testCaseID, value)
	}
	return domain.NewDocument()
}

func (m *mockAppService) SaveSubChecklist(ctx context.Context, fabricID string, value json.RawMessage) domain.Document {
	if m.saveSubChecklistFn != nil {
		return m.saveSubChecklistFn(ctx, fabricID, value)
	}
	return domain.NewDocument()
}

func (m *mockAppService) DeleteSubChecklist(ctx context.Context, fabricID string) domain.Document {
	if m.deleteSubChecklistFn != nil {
		return m.deleteSubChecklistFn(ctx, fabricID)
	}
	return domain.NewDocument()
}

func (m *mockAppService) SetCurrentFabric(ctx context.Context, fabricID string) domain.Document {
	if m.setCurrentFabricFn != nil {
		return m.setCurrentFabricFn(ctx, fabricID)
	}
	return domain.NewDocument()
}

func (m *mockAppService) Initialize(ctx context.Context, fabrics []domain.FabricDescriptor, sections []domain.SectionDescriptor, existing *domain.Document) domain.Document {
	if m.initializeFn != nil {
		return m.initializeFn(ctx, fabrics, sections, existing)
	}
	return domain.NewDocument()
}

func (m *mockAppService) UpsertUser(ctx context.Context, user domain.User) domain.Document {
	if m.upsertUserFn != nil {
		return m.upsertUserFn(ctx, user)
	}
	return domain.NewDocument()
}

func (m *mockAppService) SetCurrentUser(ctx context.Context, userID string) domain.Document {
	if m.setCurrentUserFn != nil {
		return m.setCurrentUserFn(ctx, userID)
	}
	return domain.NewDocument()
}

func (m *mockAppService) AddComment(ctx context.Context, comment domain.Comment) (domain.Comment, domain.Document, error) {
	if m.addCommentFn != nil {
		return m.addCommentFn(ctx, comment)
	}
	return comment, domain.NewDocument(), nil
}

func (m *mockAppService) UpdateComment(ctx context.Context, taskID, commentID, content string) (domain.Document, error) {
	if m.updateCommentFn != nil {
		return m.updateCommentFn(ctx, taskID, commentID, content)
	}
	return domain.NewDocument(), nil
}

func (m *mockAppService) DeleteComment(ctx context.Context, taskID, commentID string) (domain.Document, error) {
	if m.deleteCommentFn != nil {
		return m.deleteCommentFn(ctx, taskID, commentID)
	}
	return domain.NewDocument(), nil
}

func (m *mockAppService) MarkNotificationRead(ctx context.Context, id string) (domain.Document, error) {
	if m.markNotificationReadFn != nil {
		return m.markNotificationReadFn(ctx, id)
	}
	return domain.NewDocument(), nil
}

func (m *mockAppService) ClearNotifications(ctx context.Context, userID string) domain.Document {
	if m.clearNotificationsFn != nil {
		return m.clearNotificationsFn(ctx, userID)
	}
	return domain.NewDocument()
}

// --- Test helpers ---

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := &Server{
		echo: echo.New(),
		config: &config.Config{
			Port:           "8000",
			AllowedOrigins: []string{"http://localhost:5173"},
			APIRateLimit:   100,
			APIRateBurst:   100,
		},
		app: app,
	}

	for _, opt := range opts {
		opt(srv)
	}

	// Register routes so endpoints are available for testing
	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withWebSocketHandler(h http.Handler) func(*Server) {
	return func(s *Server) {
		s.websocketHandler = h
	}
}

// callAPI sends a request through the full middleware chain.
func callAPI(t *testing.T, srv *Server, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	require.Zero(t, len(headers)%2, "headers must be key/value pairs")

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}
