package state

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
	"github.com/google/uuid"
)

// SetTestCaseState stores an opaque test case value. A null or empty value deletes it.
func (s *Store) SetTestCaseState(fabricID, testCaseID string, value json.RawMessage) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if domain.IsNullRaw(value) {
		s.doc.TestCaseStates.Delete(fabricID, testCaseID)
	} else {
		s.doc.TestCaseStates.Set(fabricID, testCaseID, domain.CloneRaw(value))
	}
	return s.commitLocked("set_test_case_state")
}

// SaveSubChecklist replaces the sub-checklist of a fabric. A null value deletes it.
func (s *Store) SaveSubChecklist(fabricID string, value json.RawMessage) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if domain.IsNullRaw(value) {
		delete(s.doc.SubChecklists, fabricID)
	} else {
		s.doc.SubChecklists[fabricID] = domain.CloneRaw(value)
	}
	return s.commitLocked("save_sub_checklist")
}

func (s *Store) DeleteSubChecklist(fabricID string) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.doc.SubChecklists, fabricID)
	return s.commitLocked("delete_sub_checklist")
}

// UpsertUser adds or replaces a user by id.
func (s *Store) UpsertUser(user domain.User) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Users[user.ID] = user
	return s.commitLocked("upsert_user")
}

// SetCurrentUser selects userID. The user does not have to be known.
func (s *Store) SetCurrentUser(userID string) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.CurrentUser = &userID
	return s.commitLocked("set_current_user")
}

// AddComment appends a comment to its task, assigning id and timestamp.
// Each mentioned user other than the author receives a notification.
func (s *Store) AddComment(c domain.Comment) (domain.Comment, domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments := s.doc.TaskComments[c.TaskID]
	if c.ParentCommentID != "" && indexOfComment(comments, c.ParentCommentID) < 0 {
		return domain.Comment{}, domain.Document{}, fmt.Errorf("parent %s: %w", c.ParentCommentID, domain.ErrCommentNotFound)
	}

	c = c.Clone()
	c.ID = uuid.NewString()
	c.Timestamp = s.clock.Now().UTC()
	c.Edited = false
	s.doc.TaskComments[c.TaskID] = append(comments, c)

	author := c.UserID
	if u, ok := s.doc.Users[c.UserID]; ok && u.Name != "" {
		author = u.Name
	}
	notified := make(map[string]bool, len(c.Mentions))
	for _, userID := range c.Mentions {
		if userID == "" || userID == c.UserID || notified[userID] {
			continue
		}
		notified[userID] = true
		s.doc.Notifications = append(s.doc.Notifications, domain.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      domain.NotificationMention,
			Title:     "You were mentioned",
			Message:   fmt.Sprintf("%s mentioned you in a comment", author),
			TaskID:    c.TaskID,
			FabricID:  c.FabricID,
			Timestamp: c.Timestamp,
		})
	}

	return c.Clone(), s.commitLocked("add_comment"), nil
}

// UpdateComment replaces the content of a comment and marks it edited.
func (s *Store) UpdateComment(taskID, commentID, content string) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments := s.doc.TaskComments[taskID]
	i := indexOfComment(comments, commentID)
	if i < 0 {
		return domain.Document{}, fmt.Errorf("comment %s: %w", commentID, domain.ErrCommentNotFound)
	}
	comments[i].Content = content
	comments[i].Edited = true
	return s.commitLocked("update_comment"), nil
}

// DeleteComment removes a comment and every reply below it.
func (s *Store) DeleteComment(taskID, commentID string) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments := s.doc.TaskComments[taskID]
	if indexOfComment(comments, commentID) < 0 {
		return domain.Document{}, fmt.Errorf("comment %s: %w", commentID, domain.ErrCommentNotFound)
	}

	doomed := map[string]bool{commentID: true}
	for grew := true; grew; {
		grew = false
		for _, c := range comments {
			if !doomed[c.ID] && doomed[c.ParentCommentID] {
				doomed[c.ID] = true
				grew = true
			}
		}
	}

	kept := slices.DeleteFunc(comments, func(c domain.Comment) bool { return doomed[c.ID] })
	if len(kept) == 0 {
		delete(s.doc.TaskComments, taskID)
	} else {
		s.doc.TaskComments[taskID] = kept
	}
	return s.commitLocked("delete_comment"), nil
}

// MarkNotificationRead flags a notification as read.
func (s *Store) MarkNotificationRead(id string) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Notifications {
		if s.doc.Notifications[i].ID == id {
			s.doc.Notifications[i].Read = true
			return s.commitLocked("mark_notification_read"), nil
		}
	}
	return domain.Document{}, fmt.Errorf("notification %s: %w", id, domain.ErrNotificationNotFound)
}

// ClearNotifications removes the notifications of userID, or all of them when userID is empty.
func (s *Store) ClearNotifications(userID string) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == "" {
		s.doc.Notifications = []domain.Notification{}
	} else {
		s.doc.Notifications = slices.DeleteFunc(s.doc.Notifications, func(n domain.Notification) bool {
			return n.UserID == userID
		})
	}
	return s.commitLocked("clear_notifications")
}

func indexOfComment(comments []domain.Comment, id string) int {
	return slices.IndexFunc(comments, func(c domain.Comment) bool { return c.ID == id })
}
