package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	apimw "github.com/nemuzard/notesys/internal/api/middleware"
	"github.com/nemuzard/notesys/internal/hub"
)

// WSHandler upgrades the real-time handshake and ties each websocket
// connection to a hub binding. The binding's single writer goroutine is what
// guarantees creation-order delivery per connection.
type WSHandler struct {
	pushHub   *hub.Hub
	jwtSecret string
	logger    *zap.Logger

	writeWait    time.Duration
	pongWait     time.Duration
	pingInterval time.Duration

	upgrader websocket.Upgrader

	// Optional connection-count hooks (nil = no-op).
	OnConnect    func()
	OnDisconnect func()
}

func NewWSHandler(
	pushHub *hub.Hub,
	jwtSecret string,
	writeWait, pongWait, pingInterval time.Duration,
	logger *zap.Logger,
) *WSHandler {
	return &WSHandler{
		pushHub:      pushHub,
		jwtSecret:    jwtSecret,
		logger:       logger,
		writeWait:    writeWait,
		pongWait:     pongWait,
		pingInterval: pingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Serve handles GET /ws?token=...
//
// Browsers cannot set an Authorization header on a websocket handshake, so
// the token rides in the query string.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, err := apimw.ParseToken(h.jwtSecret, r.URL.Query().Get("token"))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	binding := h.pushHub.Bind(userID)
	if h.OnConnect != nil {
		h.OnConnect()
	}
	h.logger.Info("websocket connected", zap.String("user_id", userID))

	go h.writePump(conn, binding)
	go h.readPump(conn, binding, userID)
}

// writePump drains the binding's ordered stream onto the wire and keeps the
// connection alive with pings. It exits when the binding is unbound (the
// stream closes) or a write fails.
func (h *WSHandler) writePump(conn *websocket.Conn, binding *hub.Binding) {
	pinger := time.NewTicker(h.pingInterval)
	defer func() {
		pinger.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case n, ok := <-binding.Out():
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(n); err != nil {
				h.pushHub.Unbind(binding)
				return
			}
		case <-pinger.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.pushHub.Unbind(binding)
				return
			}
		}
	}
}

// readPump enforces liveness: every pong extends the read deadline, and a
// client that misses the window is proactively unbound. Inbound frames are
// otherwise ignored — the push channel is one-way.
func (h *WSHandler) readPump(conn *websocket.Conn, binding *hub.Binding, userID string) {
	defer func() {
		h.pushHub.Unbind(binding)
		_ = conn.Close()
		if h.OnDisconnect != nil {
			h.OnDisconnect()
		}
		h.logger.Info("websocket disconnected", zap.String("user_id", userID))
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
