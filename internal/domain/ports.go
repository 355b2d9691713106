package domain

import "context"

// Notifier pushes task changes to connected real-time clients.
// Implementations are best effort and never fail the caller.
type Notifier interface {
	BroadcastTaskStateChanged(ctx context.Context, fabricID, taskID string, checked bool)
	BroadcastTaskNotesChanged(ctx context.Context, fabricID, taskID, notes string)
	BroadcastTaskCategoryChanged(ctx context.Context, fabricID, taskID, category string)
	BroadcastTaskKanbanChanged(ctx context.Context, fabricID, taskID, status string)
}
