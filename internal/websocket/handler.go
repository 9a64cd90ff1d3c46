package websocket

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"cookalong/internal/hub"
	"cookalong/pkg/interfaces"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// All origins accepted, matching the permissive CORS policy of the
		// REST surface.
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// Handler admits websocket connections. Token verification is the only
// gate: it runs once, before the upgrade, and a failure rejects the
// connection before any event is processed.
type Handler struct {
	registry *Registry
	verifier interfaces.TokenVerifier
	hub      *hub.Hub

	pingInterval time.Duration
	readTimeout  time.Duration
	writeBuffer  int

	log *logrus.Entry
}

// NewHandler creates a websocket handler.
func NewHandler(registry *Registry, verifier interfaces.TokenVerifier, h *hub.Hub, pingInterval, readTimeout time.Duration, writeBuffer int) *Handler {
	return &Handler{
		registry:     registry,
		verifier:     verifier,
		hub:          h,
		pingInterval: pingInterval,
		readTimeout:  readTimeout,
		writeBuffer:  writeBuffer,
		log:          logrus.WithField("component", "websocket"),
	}
}

// HandleWebSocket verifies the bearer token, upgrades the connection, and
// starts the read pump feeding the hub.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, ErrMissingToken.Error(), http.StatusUnauthorized)
		return
	}

	identity, err := h.verifier.Verify(token)
	if err != nil {
		h.log.WithError(err).Warn("rejected connection with invalid token")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	wsConn := NewConnection(conn, identity, h.writeBuffer)
	h.registry.AddConnection(wsConn)

	h.log.WithFields(logrus.Fields{
		"connection": wsConn.ID(),
		"user":       identity.Username,
	}).Info("connection admitted")

	go h.handleConnection(wsConn)
}

// bearerToken extracts the token from the ?token= query parameter or an
// Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

// handleConnection runs the ping/pong heartbeat and the read pump. Every
// text frame is queued on the hub; when the pump exits, the transport
// registry is scrubbed and the hub is told to run lifecycle teardown.
func (h *Handler) handleConnection(conn *Connection) {
	defer func() {
		h.registry.RemoveConnection(conn)
		if err := h.hub.NotifyDisconnect(conn); err != nil {
			h.log.WithError(err).WithField("connection", conn.ID()).Warn("disconnect notification failed")
		}
		_ = conn.Close()
		h.log.WithField("connection", conn.ID()).Info("connection closed")
	}()

	if err := conn.conn.SetReadDeadline(time.Now().Add(h.readTimeout)); err != nil {
		return
	}
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	})

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-conn.ctx.Done():
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.log.WithError(err).WithField("connection", conn.ID()).Debug("read error")
			}
			break
		}

		if messageType != websocket.TextMessage {
			continue
		}

		if err := h.hub.Submit(conn, data); err != nil {
			h.log.WithError(err).WithField("connection", conn.ID()).Warn("dropping inbound frame")
		}
	}
}
