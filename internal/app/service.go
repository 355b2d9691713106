package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/state"
)

// Service is the application layer. It is the only component that references
// both the store and the notifier.
type Service struct {
	store    *state.Store
	notifier domain.Notifier
}

// NewService creates the application layer service.
func NewService(store *state.Store, notifier domain.Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

func (s *Service) GetAll(_ context.Context) domain.Document {
	return s.store.GetAll()
}

// ReplaceAll stores a full document sent by a client. Nothing is broadcast.
func (s *Service) ReplaceAll(_ context.Context, doc domain.Document) domain.Document {
	return s.store.ReplaceAll(doc)
}

// PatchDocument applies a merge patch or JSON patch to the document.
func (s *Service) PatchDocument(ctx context.Context, body []byte, kind state.PatchKind) (domain.Document, error) {
	doc, err := s.store.Patch(body, kind)
	if err != nil {
		slog.DebugContext(ctx, "Patch rejected", "error", err)
		return domain.Document{}, err
	}
	return doc, nil
}

func (s *Service) SetTaskState(ctx context.Context, fabricID, taskID string, checked bool) domain.Document {
	doc := s.store.SetTaskState(fabricID, taskID, checked)
	s.notifier.BroadcastTaskStateChanged(ctx, fabricID, taskID, checked)
	return doc
}

func (s *Service) SetTaskNotes(ctx context.Context, fabricID, taskID, notes string) domain.Document {
	doc := s.store.SetTaskNotes(fabricID, taskID, notes)
	s.notifier.BroadcastTaskNotesChanged(ctx, fabricID, taskID, notes)
	return doc
}

func (s *Service) SetTaskCategory(ctx context.Context, fabricID, taskID, category string) domain.Document {
	doc := s.store.SetTaskCategory(fabricID, taskID, category)
	s.notifier.BroadcastTaskCategoryChanged(ctx, fabricID, taskID, category)
	return doc
}

func (s *Service) SetTaskKanbanStatus(ctx context.Context, fabricID, taskID, status string) domain.Document {
	doc := s.store.SetTaskKanbanStatus(fabricID, taskID, status)
	s.notifier.BroadcastTaskKanbanChanged(ctx, fabricID, taskID, status)
	return doc
}

func (s *Service) SetTestCaseState(_ context.Context, fabricID, testCaseID string, value json.RawMessage) domain.Document {
	return s.store.SetTestCaseState(fabricID, testCaseID, value)
}

func (s *Service) SaveSubChecklist(_ context.Context, fabricID string, value json.RawMessage) domain.Document {
	return s.store.SaveSubChecklist(fabricID, value)
}

func (s *Service) DeleteSubChecklist(_ context.Context, fabricID string) domain.Document {
	return s.store.DeleteSubChecklist(fabricID)
}

func (s *Service) SetCurrentFabric(_ context.Context, fabricID string) domain.Document {
	return s.store.SetCurrentFabric(fabricID)
}

// Initialize bootstraps a client session. existing is the client's previously
// local state, or nil on a fresh start.
func (s *Service) Initialize(ctx context.Context, fabrics []domain.FabricDescriptor, sections []domain.SectionDescriptor, existing *domain.Document) domain.Document {
	doc := s.store.Initialize(fabrics, sections, existing)
	slog.InfoContext(ctx, "Session initialized",
		"fabrics", len(fabrics),
		"sections", len(sections),
		"merged", existing != nil)
	return doc
}

func (s *Service) UpsertUser(_ context.Context, user domain.User) domain.Document {
	return s.store.UpsertUser(user)
}

func (s *Service) SetCurrentUser(_ context.Context, userID string) domain.Document {
	return s.store.SetCurrentUser(userID)
}

// AddComment stores a comment and returns it with its assigned id.
func (s *Service) AddComment(ctx context.Context, comment domain.Comment) (domain.Comment, domain.Document, error) {
	c, doc, err := s.store.AddComment(comment)
	if err != nil {
		return domain.Comment{}, domain.Document{}, err
	}
	slog.DebugContext(ctx, "Comment added", "task_id", c.TaskID, "comment_id", c.ID, "mentions", len(c.Mentions))
	return c, doc, nil
}

func (s *Service) UpdateComment(_ context.Context, taskID, commentID, content string) (domain.Document, error) {
	return s.store.UpdateComment(taskID, commentID, content)
}

func (s *Service) DeleteComment(_ context.Context, taskID, commentID string) (domain.Document, error) {
	return s.store.DeleteComment(taskID, commentID)
}

func (s *Service) MarkNotificationRead(_ context.Context, id string) (domain.Document, error) {
	return s.store.MarkNotificationRead(id)
}

func (s *Service) ClearNotifications(_ context.Context, userID string) domain.Document {
	return s.store.ClearNotifications(userID)
}
