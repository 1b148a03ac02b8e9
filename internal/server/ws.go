package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/log"
)

// writeWait bounds a single websocket write; a client that cannot keep up
// within it is dropped.
const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StreamHandler relays one app feed to websocket clients. Each client gets
// its own subscription, so a slow client only drops its own frames.
type StreamHandler[T any] struct {
	name        string
	feed        *app.Feed[T]
	buffer      int
	messageType int
	encode      func(T) ([]byte, error)
	initial     func() (T, bool)
	done        <-chan struct{}
}

// NewMetricsHandler streams metrics snapshots as JSON text messages. A new
// client first receives the latest snapshot.
func NewMetricsHandler(a *app.App, done <-chan struct{}) *StreamHandler[app.Snapshot] {
	return &StreamHandler[app.Snapshot]{
		name:        "metrics",
		feed:        a.Metrics(),
		buffer:      app.MetricsBuffer,
		messageType: websocket.TextMessage,
		encode: func(s app.Snapshot) ([]byte, error) {
			return json.Marshal(s)
		},
		initial: func() (app.Snapshot, bool) {
			return a.Latest(), true
		},
		done: done,
	}
}

// NewFieldHandler streams encoded field frames as binary messages.
func NewFieldHandler(a *app.App, done <-chan struct{}) *StreamHandler[[]byte] {
	return &StreamHandler[[]byte]{
		name:        "field",
		feed:        a.Field(),
		buffer:      app.FieldBuffer,
		messageType: websocket.BinaryMessage,
		encode: func(b []byte) ([]byte, error) {
			return b, nil
		},
		done: done,
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StreamHandler[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade error", "stream", h.name, "error", err)
		return
	}
	defer conn.Close()

	id, ch, cancel := h.feed.Subscribe(h.buffer)
	defer cancel()

	logger := log.With("stream", h.name, "subscriber", id)
	logger.Info("subscriber connected", "remote", r.RemoteAddr)
	defer logger.Info("subscriber disconnected")

	// Clients never send anything meaningful; reading only notices the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if h.initial != nil {
		if v, ok := h.initial(); ok {
			if err := h.write(conn, v); err != nil {
				logger.Debug("write failed", "error", err)
				return
			}
		}
	}

	for {
		select {
		case <-gone:
			return
		case <-h.done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case v, ok := <-ch:
			if !ok {
				return
			}
			if err := h.write(conn, v); err != nil {
				logger.Debug("write failed", "error", err)
				return
			}
		}
	}
}

func (h *StreamHandler[T]) write(conn *websocket.Conn, v T) error {
	data, err := h.encode(v)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(h.messageType, data)
}
