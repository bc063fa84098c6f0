package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamOperationLogs streams operation log lines over WebSocket and closes
// with the final status once the operation is done and drained.
func (s *Server) StreamOperationLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	op := s.Operations.Get(id)
	if op == nil {
		http.Error(w, "operation not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	offset := 0
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	flush := func() bool {
		for _, line := range op.LogsSince(offset) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return false
			}
			offset++
		}
		return true
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-op.Done():
			if flush() {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, op.Snapshot().Status))
			}
			return
		case <-ticker.C:
			if !flush() {
				return
			}
		}
	}
}
