package broadcast

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// ServeHTTP accepts a WebSocket connection, registers it, and keeps reading
// until the peer goes away. The channel is unregistered exactly once when the
// read side ends. Inbound messages are ignored; the channel is push only.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "WebSocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	id, err := h.Register(conn)
	if err != nil {
		slog.WarnContext(r.Context(), "WebSocket channel rejected", "error", err)
		closeMsg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, closeMsg, h.clock.Now().Add(h.opts.WriteTimeout))
		_ = conn.Close()
		return
	}
	defer h.Unregister(id)

	h.readPump(conn)
}

func (h *Hub) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(h.clock.Now().Add(pongDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(h.clock.Now().Add(pongDeadline))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				slog.Debug("WebSocket read ended", "error", err)
			}
			return
		}
	}
}
