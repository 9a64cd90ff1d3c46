package hub

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"cookalong/internal/events"
	"cookalong/pkg/interfaces"
)

// inboundEvent pairs a raw frame with the connection it arrived on.
type inboundEvent struct {
	conn interfaces.Conn
	raw  []byte
}

// Hub serializes all event handling onto one goroutine. Inbound frames and
// disconnect notices are queued on buffered channels and drained one at a
// time to completion, so the room, roster and progress registries never
// observe a torn intermediate state.
type Hub struct {
	eventCh      chan *inboundEvent
	disconnectCh chan interfaces.Conn
	shutdownCh   chan struct{}

	router *events.Router

	running bool
	mu      sync.RWMutex
	log     *logrus.Entry
}

// NewHub creates a hub dispatching into the given event router. Buffer
// sizes absorb classroom-scale bursts without blocking the read pumps.
func NewHub(router *events.Router) *Hub {
	return &Hub{
		eventCh:      make(chan *inboundEvent, 1024),
		disconnectCh: make(chan interfaces.Conn, 256),
		shutdownCh:   make(chan struct{}),
		router:       router,
		log:          logrus.WithField("component", "hub"),
	}
}

// Start begins hub processing.
func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return ErrHubAlreadyRunning
	}
	h.running = true
	h.mu.Unlock()

	h.log.Info("starting event hub")
	go h.run(ctx)

	return nil
}

// Stop gracefully shuts the hub down.
func (h *Hub) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return ErrHubNotRunning
	}
	h.running = false

	h.log.Info("stopping event hub")

	select {
	case <-h.shutdownCh:
		// already closed
	default:
		close(h.shutdownCh)
	}

	return nil
}

// Submit queues one inbound frame for processing. Non-blocking: a full
// queue is reported to the caller instead of stalling the read pump.
func (h *Hub) Submit(c interfaces.Conn, raw []byte) error {
	h.mu.RLock()
	if !h.running {
		h.mu.RUnlock()
		return ErrHubNotRunning
	}
	h.mu.RUnlock()

	select {
	case h.eventCh <- &inboundEvent{conn: c, raw: raw}:
		return nil
	default:
		return ErrEventChannelFull
	}
}

// NotifyDisconnect queues transport-level teardown for a connection.
// Disconnect detection is asynchronous relative to explicit leaves; the
// teardown itself is idempotent, so ordering between the two is harmless.
func (h *Hub) NotifyDisconnect(c interfaces.Conn) error {
	h.mu.RLock()
	if !h.running {
		h.mu.RUnlock()
		return ErrHubNotRunning
	}
	h.mu.RUnlock()

	select {
	case h.disconnectCh <- c:
		return nil
	default:
		return ErrDisconnectChannelFull
	}
}

// run is the single processing loop.
func (h *Hub) run(ctx context.Context) {
	defer h.log.Info("event hub stopped")

	for {
		select {
		case ev := <-h.eventCh:
			h.router.HandleEvent(ev.conn, ev.raw)

		case c := <-h.disconnectCh:
			h.router.HandleDisconnect(c)

		case <-h.shutdownCh:
			h.log.Info("hub shutdown requested")
			return

		case <-ctx.Done():
			h.log.Info("hub context cancelled")
			return
		}
	}
}
