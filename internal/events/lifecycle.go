package events

import (
	"github.com/sirupsen/logrus"

	"cookalong/pkg/interfaces"
	"cookalong/pkg/types"
)

// HandleDisconnect is the transport-initiated teardown entry point, run
// when a connection's read loop exits. It performs the same seat, progress
// and roster cleanup as an explicit leave; every step is idempotent so the
// two paths can race without double-freeing state. Unlike leave, an
// emptied room is not deleted here.
func (r *Router) HandleDisconnect(c interfaces.Conn) {
	entry, ok := r.roster.Lookup(c.ID())
	if !ok {
		return
	}

	if entry.Seat != nil {
		r.rooms.ReleaseSeat(entry.Room, *entry.Seat)
		if occupied, ok := r.rooms.OccupiedSeats(entry.Room); ok {
			r.broadcast(entry.Room, types.EventSeatUpdate, seatUpdate{OccupiedSeats: occupied})
		}
	}

	r.progress.Delete(c.ID())

	r.broadcast(entry.Room, types.EventMessage, studentLeftMessage{
		Type:      types.MessageStudentLeft,
		Status:    "left",
		UserID:    c.ID(),
		Role:      entry.Role,
		Room:      entry.Room,
		Username:  entry.Username,
		SeatIndex: entry.Seat,
	})

	r.roster.Remove(c.ID())
	r.membership.Leave(entry.Room, c)

	r.log.WithFields(logrus.Fields{
		"connection": c.ID(),
		"room":       entry.Room,
	}).Info("connection left room on disconnect")
}

// leaveRoom is the caller-initiated teardown: seat release, progress and
// roster cleanup, removal from the broadcast group, and deletion of the
// room itself once its membership reaches zero.
func (r *Router) leaveRoom(c interfaces.Conn, roomName string) {
	entry, ok := r.roster.Lookup(c.ID())
	if !ok || entry.Room != roomName {
		r.log.WithFields(logrus.Fields{
			"connection": c.ID(),
			"room":       roomName,
		}).Warn("leave requested for a room the connection is not in")
		return
	}

	if r.membership.Size(roomName) == 0 {
		r.log.WithField("room", roomName).Warn("leave requested for an empty room")
		return
	}

	if entry.Seat != nil {
		r.rooms.ReleaseSeat(roomName, *entry.Seat)
		if occupied, ok := r.rooms.OccupiedSeats(roomName); ok {
			r.broadcast(roomName, types.EventSeatUpdate, seatUpdate{OccupiedSeats: occupied})
		}
	}

	r.progress.Delete(c.ID())
	r.roster.Remove(c.ID())
	r.membership.Leave(roomName, c)

	if r.membership.Size(roomName) == 0 {
		r.rooms.Delete(roomName)
		r.log.WithField("room", roomName).Info("room emptied and removed")
	}

	r.broadcast(roomName, types.EventMessage, studentLeftMessage{
		Type:      types.MessageStudentLeft,
		Status:    "left",
		UserID:    c.ID(),
		Role:      entry.Role,
		Room:      roomName,
		Username:  entry.Username,
		SeatIndex: entry.Seat,
	})

	r.log.WithFields(logrus.Fields{
		"connection": c.ID(),
		"room":       roomName,
	}).Info("connection left room")
}
