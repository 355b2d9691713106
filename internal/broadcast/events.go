package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/platform/correlation"
	"github.com/google/uuid"
)

// BroadcastTaskStateChanged notifies every channel except the originating one
// (taken from ctx) that a task was checked or unchecked.
func (h *Hub) BroadcastTaskStateChanged(ctx context.Context, fabricID, taskID string, checked bool) {
	h.broadcast(ctx, domain.EventTaskStateUpdated, fabricID, taskID, domain.TaskStateData{Checked: checked})
}

func (h *Hub) BroadcastTaskNotesChanged(ctx context.Context, fabricID, taskID, notes string) {
	h.broadcast(ctx, domain.EventTaskNotesUpdated, fabricID, taskID, domain.TaskNotesData{Notes: notes})
}

func (h *Hub) BroadcastTaskCategoryChanged(ctx context.Context, fabricID, taskID, category string) {
	h.broadcast(ctx, domain.EventTaskCategoryUpdated, fabricID, taskID, domain.TaskCategoryData{Category: category})
}

func (h *Hub) BroadcastTaskKanbanChanged(ctx context.Context, fabricID, taskID, status string) {
	h.broadcast(ctx, domain.EventTaskKanbanUpdated, fabricID, taskID, domain.TaskKanbanData{KanbanStatus: status})
}

// broadcast encodes the event once and hands it to the hub goroutine.
// Delivery is best effort; a stopped hub drops the event.
func (h *Hub) broadcast(ctx context.Context, eventType domain.EventType, fabricID, taskID string, data any) {
	payload, err := encode(domain.TaskEvent{
		Type:      eventType,
		FabricID:  fabricID,
		TaskID:    taskID,
		Data:      data,
		Timestamp: h.clock.Now().UTC(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to marshal broadcast message", "type", eventType, "error", err)
		return
	}

	if err := h.send(broadcastCmd{origin: originOf(ctx), eventType: eventType, payload: payload}); err != nil {
		slog.DebugContext(ctx, "Broadcast dropped", "type", eventType, "error", err)
	}
}

// originOf returns the channel that issued the request, or uuid.Nil.
func originOf(ctx context.Context) ChannelID {
	raw, ok := correlation.Channel(ctx)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
