package domain

import "time"

// EventType is the tag carried by every broadcast notification.
type EventType string

const (
	EventTaskStateUpdated    EventType = "task_state_updated"
	EventTaskNotesUpdated    EventType = "task_notes_updated"
	EventTaskCategoryUpdated EventType = "task_category_updated"
	EventTaskKanbanUpdated   EventType = "task_kanban_updated"

	// EventConnected is sent once to a channel right after it is accepted.
	EventConnected EventType = "connected"
)

// TaskEvent is the wire payload pushed to real-time channels.
type TaskEvent struct {
	Type      EventType `json:"type"`
	FabricID  string    `json:"fabricId"`
	TaskID    string    `json:"taskId"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// ConnectedEvent tells a freshly accepted channel its id, so that the client can
// pass it back on mutations and be excluded from the resulting broadcast.
type ConnectedEvent struct {
	Type      EventType `json:"type"`
	ChannelID string    `json:"channelId"`
	Timestamp time.Time `json:"timestamp"`
}

type TaskStateData struct {
	Checked bool `json:"checked"`
}

type TaskNotesData struct {
	Notes string `json:"notes"`
}

type TaskCategoryData struct {
	Category string `json:"category"`
}

type TaskKanbanData struct {
	KanbanStatus string `json:"kanbanStatus"`
}
