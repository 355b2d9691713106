package domain

import "time"

// User is a collaborator who can author comments and receive notifications.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Comment is a note on a task. Replies point at their parent through ParentCommentID.
type Comment struct {
	ID              string    `json:"id"`
	TaskID          string    `json:"taskId"`
	FabricID        string    `json:"fabricId,omitempty"`
	UserID          string    `json:"userId"`
	Content         string    `json:"content"`
	Mentions        []string  `json:"mentions,omitempty"`
	ParentCommentID string    `json:"parentCommentId,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	Edited          bool      `json:"edited,omitempty"`
}

// Clone returns a copy that shares no slices with c.
func (c Comment) Clone() Comment {
	c.Mentions = cloneStrings(c.Mentions)
	return c
}

// NotificationType tags what produced a notification.
type NotificationType string

const NotificationMention NotificationType = "mention"

// Notification is addressed to a single user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	TaskID    string           `json:"taskId,omitempty"`
	FabricID  string           `json:"fabricId,omitempty"`
	Read      bool             `json:"read"`
	Timestamp time.Time        `json:"timestamp"`
}
