package events

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"cookalong/internal/progress"
	"cookalong/internal/room"
	"cookalong/internal/roster"
	"cookalong/pkg/interfaces"
	"cookalong/pkg/types"
)

// handlerFunc validates one inbound event against the registries, mutates
// state, and emits outbound events. Returned errors are logged on the
// server only; client-visible failures are emitted inside the handler as
// tagged messages to the originating connection.
type handlerFunc func(c interfaces.Conn, data json.RawMessage) error

// Router is the dispatch table from inbound event name to handler. All
// registry mutation runs through the hub's single goroutine, so handlers
// execute run-to-completion and never observe a torn intermediate state.
type Router struct {
	rooms      *room.Registry
	roster     *roster.Roster
	progress   *progress.Store
	membership interfaces.Membership

	defaultMaxClients int

	handlers map[string]handlerFunc
	validate *validator.Validate
	log      *logrus.Entry
}

// NewRouter wires the dispatch table over the three registries and the
// transport membership.
func NewRouter(rooms *room.Registry, ros *roster.Roster, prog *progress.Store, membership interfaces.Membership, defaultMaxClients int) *Router {
	r := &Router{
		rooms:             rooms,
		roster:            ros,
		progress:          prog,
		membership:        membership,
		defaultMaxClients: defaultMaxClients,
		validate:          validator.New(),
		log:               logrus.WithField("component", "events"),
	}

	r.handlers = map[string]handlerFunc{
		types.EventGetRoomInfo:     r.handleGetRoomInfo,
		types.EventJoin:            r.handleJoin,
		types.EventStartSession:    r.handleStartSession,
		types.EventEndSession:      r.handleEndSession,
		types.EventSessionResponse: r.handleSessionResponse,
		types.EventStudentProgress: r.handleStudentProgress,
		types.EventDangerAlert:     r.handleDangerAlert,
		types.EventSendJSON:        r.handleSendJSON,
		types.EventChangeSeat:      r.handleChangeSeat,
		types.EventLeaveRoom:       r.handleLeaveRoom,
		types.EventGetRoomStatus:   r.handleGetRoomStatus,
		types.EventCloseRoom:       r.handleCloseRoom,
	}

	return r
}

// HandleEvent decodes one inbound frame and dispatches it. A malformed or
// unknown event affects only the sending connection; nothing propagates
// across the event boundary.
func (r *Router) HandleEvent(c interfaces.Conn, raw []byte) {
	var env types.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.log.WithError(err).WithField("connection", c.ID()).Warn("dropping unparseable frame")
		return
	}

	handler, ok := r.handlers[env.Event]
	if !ok {
		r.log.WithFields(logrus.Fields{
			"connection": c.ID(),
			"event":      env.Event,
		}).Warn("unknown event")
		return
	}

	if err := handler(c, env.Data); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"connection": c.ID(),
			"event":      env.Event,
		}).Warn("event handling failed")
	}
}

// decode unmarshals an event payload and applies its validation tags.
// A frame with no data section decodes as an empty payload.
func (r *Router) decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if err := r.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return nil
}

// emit sends one event to a single connection, logging delivery failures.
func (r *Router) emit(c interfaces.Conn, event string, data any) {
	if err := c.Emit(event, data); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"connection": c.ID(),
			"event":      event,
		}).Debug("emit failed")
	}
}

// broadcast sends one event to every current member of a room.
func (r *Router) broadcast(roomName, event string, data any) {
	for _, member := range r.membership.Members(roomName) {
		r.emit(member, event, data)
	}
}

// relayToHosts sends one event to the room members currently registered as
// host. The sender is not required to be a member, let alone a host.
func (r *Router) relayToHosts(roomName, event string, data any) {
	for _, member := range r.membership.Members(roomName) {
		entry, ok := r.roster.Lookup(member.ID())
		if ok && entry.Role == types.RoleHost {
			r.emit(member, event, data)
		}
	}
}
