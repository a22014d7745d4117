// Package ws pushes live bill state to browsers. Each connection acquires
// the table's shared watcher, receives the current snapshot immediately,
// and then gets a push on every poll tick; a client message can force an
// out-of-band refetch (used when a tab becomes visible again).
package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tablepay-gateway/internal/bill"
	"tablepay-gateway/internal/metrics"
	"tablepay-gateway/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	Registry *session.Registry
	Logger   *zap.Logger
}

func New(registry *session.Registry, logger *zap.Logger) *Server {
	return &Server{Registry: registry, Logger: logger}
}

type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

type clientMessage struct {
	Type string `json:"type"`
}

func statePayload(update session.Update) map[string]any {
	if update.Snapshot == nil {
		msg := "loading"
		if update.Err != nil {
			msg = update.Err.Error()
		}
		return map[string]any{"type": "session.error", "message": msg}
	}
	payload := map[string]any{"type": "session.state", "data": update.Snapshot}
	if update.Err != nil {
		// stale snapshot with a live error: client shows both
		payload["degraded"] = true
		payload["message"] = update.Err.Error()
	}
	return payload
}

// SessionWS serves one live bill stream. The table token comes from the
// path when present, otherwise from the query string.
func (s *Server) SessionWS(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "tableToken")
	if raw == "" {
		raw = r.URL.Query().Get("tableToken")
	}
	token := bill.NormalizeTableToken(raw)
	if token == "" {
		http.Error(w, "tableToken required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	metrics.WSClients.Inc()
	defer metrics.WSClients.Dec()

	watcher, release := s.Registry.Acquire(token)
	defer release()

	client := &wsClient{conn: conn}
	updates, unsubscribe := watcher.Subscribe()
	defer unsubscribe()

	// push whatever we have right away, then kick a fresh poll
	if cur := watcher.Current(); cur.Snapshot != nil || cur.Err != nil {
		_ = client.writeJSON(statePayload(cur))
	}
	watcher.Refresh()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			_, raw, readErr := conn.ReadMessage()
			if readErr != nil {
				return
			}
			var msg clientMessage
			if json.Unmarshal(raw, &msg) == nil && msg.Type == "refresh" {
				watcher.Refresh()
			}
		}
	}()

	ctx := r.Context()
	for {
		select {
		case update := <-updates:
			if err := client.writeJSON(statePayload(update)); err != nil {
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
