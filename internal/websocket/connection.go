package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"cookalong/pkg/types"
)

// outboundFrame is the wire shape of every event pushed to a client.
type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Connection wraps one websocket with a server-assigned id and the
// identity verified at handshake. All writes are funneled through a single
// writer goroutine so concurrent emits never race on the socket.
type Connection struct {
	conn      *websocket.Conn
	writeCh   chan []byte
	id        string
	identity  types.Identity
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection wraps an upgraded websocket. The connection id is opaque
// and assigned here, not taken from the client.
func NewConnection(conn *websocket.Conn, identity types.Identity, writeBuffer int) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		conn:     conn,
		writeCh:  make(chan []byte, writeBuffer),
		id:       uuid.New().String(),
		identity: identity,
		ctx:      ctx,
		cancel:   cancel,
	}

	go c.writeLoop()

	return c
}

// writeLoop is the single writer goroutine. writeCh is never closed; when
// the writer exits it cancels the connection context instead, so a
// concurrent Emit fails on the context guard rather than a dead channel.
func (c *Connection) writeLoop() {
	defer c.cancel()

	for {
		select {
		case data := <-c.writeCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// ID returns the server-assigned connection identifier.
func (c *Connection) ID() string {
	return c.id
}

// Identity returns the verified token payload from handshake time.
func (c *Connection) Identity() types.Identity {
	return c.identity
}

// Emit marshals one event frame and queues it on the writer goroutine.
// The send never blocks: a saturated buffer is reported to the caller so a
// slow client cannot stall whoever is fanning out events.
func (c *Connection) Emit(event string, data any) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	frame, err := json.Marshal(outboundFrame{Event: event, Data: data})
	if err != nil {
		return ErrInvalidJSON
	}

	select {
	case c.writeCh <- frame:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		return ErrWriteBufferFull
	}
}

// Close tears the connection down. Safe to call more than once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()

		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}
