package events

import (
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"cookalong/internal/room"
	"cookalong/internal/roster"
	"cookalong/pkg/interfaces"
	"cookalong/pkg/types"
)

// defaultDangerMessage is substituted when a dangerAlert carries no text.
const defaultDangerMessage = "a hazardous situation was reported"

// handleGetRoomInfo answers a read-only capacity/occupancy query, available
// to any connection.
func (r *Router) handleGetRoomInfo(c interfaces.Conn, data json.RawMessage) error {
	var p roomPayload
	if err := r.decode(data, &p); err != nil {
		return err
	}

	maxSeats, ok := r.rooms.MaxSeats(p.Room)
	if !ok {
		r.emit(c, types.EventRoomInfo, roomInfoFailure{
			Success: false,
			Message: "room not found",
		})
		return nil
	}

	occupied, _ := r.rooms.OccupiedSeats(p.Room)
	r.emit(c, types.EventRoomInfo, roomInfoSuccess{
		Success:       true,
		MaxSeats:      maxSeats,
		OccupiedSeats: occupied,
	})
	return nil
}

// handleJoin admits a connection to a room. Hosts create (and overwrite)
// the room; students are admitted against capacity and may claim a seat on
// the way in.
func (r *Router) handleJoin(c interfaces.Conn, data json.RawMessage) error {
	var p joinPayload
	if err := r.decode(data, &p); err != nil {
		return err
	}

	if p.Role == types.RoleHost {
		return r.joinAsHost(c, p)
	}
	return r.joinAsStudent(c, p)
}

// joinAsHost unconditionally creates the room, replacing any previous room
// registered under the same name. Occupants of a replaced room are
// orphaned; their teardown no-ops against the fresh seat state.
func (r *Router) joinAsHost(c interfaces.Conn, p joinPayload) error {
	if r.rooms.Exists(p.Room) {
		r.log.WithField("room", p.Room).Info("room already exists, overwriting")
	}

	maxClients := p.MaxClients
	if maxClients <= 0 {
		maxClients = r.defaultMaxClients
	}
	r.rooms.Create(p.Room, maxClients, p.RecipeID)

	r.membership.Join(p.Room, c)
	r.roster.Register(roster.Entry{
		ConnectionID: c.ID(),
		Role:         types.RoleHost,
		Room:         p.Room,
		Username:     p.Username,
	})

	r.log.WithFields(logrus.Fields{
		"room":   p.Room,
		"recipe": p.RecipeID,
	}).Info("host created room")
	return nil
}

// joinAsStudent validates capacity and the optional seat claim before the
// connection enters the broadcast group, then notifies the whole room.
func (r *Router) joinAsStudent(c interfaces.Conn, p joinPayload) error {
	capacity, ok := r.rooms.Capacity(p.Room)
	if !ok {
		r.emit(c, types.EventMessage, statusMessage{Type: types.MessageRoomNotFound})
		return nil
	}

	if r.membership.Size(p.Room) >= capacity {
		r.emit(c, types.EventMessage, statusMessage{Type: types.MessageRoomFull})
		return nil
	}

	if p.SeatIndex != nil {
		switch err := r.rooms.ClaimSeat(p.Room, *p.SeatIndex, c.ID()); {
		case errors.Is(err, room.ErrInvalidSeat):
			r.emit(c, types.EventMessage, statusMessage{
				Type:    types.MessageInvalidSeat,
				Message: "invalid seat index",
			})
			return nil
		case errors.Is(err, room.ErrSeatOccupied):
			r.emit(c, types.EventMessage, statusMessage{Type: types.MessageSeatOccupied})
			return nil
		case err != nil:
			r.emit(c, types.EventMessage, statusMessage{Type: types.MessageRoomNotFound})
			return nil
		}
	}

	r.membership.Join(p.Room, c)
	r.roster.Register(roster.Entry{
		ConnectionID: c.ID(),
		Role:         types.RoleStudent,
		Room:         p.Room,
		Username:     p.Username,
		Seat:         p.SeatIndex,
	})

	// The whole room hears about the join and gets a fresh seat snapshot,
	// even when no explicit seat was chosen.
	r.broadcast(p.Room, types.EventMessage, studentJoinedMessage{
		Type:      types.MessageStudentJoined,
		Status:    "joined",
		UserID:    c.ID(),
		Role:      types.RoleStudent,
		Room:      p.Room,
		Username:  p.Username,
		SeatIndex: p.SeatIndex,
	})

	occupied, _ := r.rooms.OccupiedSeats(p.Room)
	r.broadcast(p.Room, types.EventSeatUpdate, seatUpdate{OccupiedSeats: occupied})

	r.log.WithFields(logrus.Fields{
		"room":       p.Room,
		"username":   p.Username,
		"connection": c.ID(),
	}).Info("student joined room")
	return nil
}

// handleStartSession flips the room active and re-broadcasts the recipe.
// Anything but a host of that room is a silent no-op; a second start simply
// re-broadcasts.
func (r *Router) handleStartSession(c interfaces.Conn, data json.RawMessage) error {
	var p startSessionPayload
	if err := r.decode(data, &p); err != nil {
		return err
	}

	entry, ok := r.roster.Lookup(c.ID())
	if !ok || entry.Role != types.RoleHost || entry.Room != p.Room {
		return nil
	}

	if !r.rooms.StartSession(p.Room, p.RecipeID) {
		return nil
	}

	r.broadcast(p.Room, types.EventSessionStarted, sessionStarted{
		RecipeID: p.RecipeID,
		Room:     p.Room,
	})

	r.log.WithFields(logrus.Fields{
		"room":   p.Room,
		"recipe": p.RecipeID,
	}).Info("session started")
	return nil
}

// handleEndSession clears the active flag under the same gating as start.
func (r *Router) handleEndSession(c interfaces.Conn, data json.RawMessage) error {
	var p roomPayload
	if err := r.decode(data, &p); err != nil {
		return err
	}

	entry, ok := r.roster.Lookup(c.ID())
	if !ok || entry.Role != types.RoleHost || entry.Room != p.Room {
		return nil
	}

	if !r.rooms.EndSession(p.Room) {
		return nil
	}

	r.broadcast(p.Room, types.EventSessionEnded, sessionEnded{Room: p.Room})

	r.log.WithField("room", p.Room).Info("session ended")
	return nil
}

// handleSessionResponse relays a student acknowledgement to the room's
// hosts with a server-side timestamp.
func (r *Router) handleSessionResponse(c interfaces.Conn, data json.RawMessage) error {
	var p sessionResponsePayload
	if err := r.decode(data, &p); err != nil {
		return err
	}

	r.relayToHosts(p.Room, types.EventSessionResponse, sessionResponseRelay{
		UserID:    p.UserID,
		Type:      p.Type,
		Status:    p.Status,
		TimeStamp: isoTimestamp(),
	})
	return nil
}

// handleStudentProgress upserts the progress store keyed by the reported
// userId and relays the report to the room's hosts. The userId is
// caller-supplied and not cross-checked against the sender's identity.
func (r *Router) handleStudentProgress(c interfaces.Conn, data json.RawMessage) error {
	var p studentProgressPayload
	if err := r.decode(data, &p); err != nil {
		return err
	}

	r.progress.Upsert(p.UserID, p.CurrentStep, p.RecipeID)

	r.relayToHosts(p.Room, types.EventStudentProgress, studentProgressRelay{
		UserID:      p.UserID,
		Username:    p.Username,
		SeatIndex:   p.SeatIndex,
		CurrentStep: p.CurrentStep,
		RecipeID:    p.RecipeID,
		TimeStamp:   isoTimestamp(),
	})
	return nil
}

// handleDangerAlert relays a safety alert to the room's hosts, filling in
// a default message when none was given.
func (r *Router) handleDangerAlert(c interfaces.Conn, data json.RawMessage) error {
	var p dangerAlertPayload
	if err := r.decode(data, &p); err != nil {
		return err
	}

	message := p.Message
	if message == "" {
		message = defaultDangerMessage
	}

	r.relayToHosts(p.Room, types.EventDangerAlert, dangerAlertRelay{
		UserID:    p.UserID,
		Username:  p.Username,
		SeatIndex: p.SeatIndex,
		Message:   message,
		TimeStamp: isoTimestamp(),
	})
	return nil
}

// handleSendJSON relays an opaque envelope to the room's hosts unmodified.
// The engine never interprets message or payload.
func (r *Router) handleSendJSON(c interfaces.Conn, data json.RawMessage) error {
	var p sendJSONPayload
	if err := r.decode(data, &p); err != nil {
		return err
	}

	r.relayToHosts(p.Room, types.EventReceiveJSON, receiveJSONRelay{
		Message:   p.Message,
		Payload:   p.Payload,
		Room:      p.Room,
		UserID:    p.UserID,
		SeatIndex: p.SeatIndex,
		TimeStamp: isoTimestamp(),
	})
	return nil
}

// handleChangeSeat moves a student to a free seat, releasing the previous
// one, and broadcasts the change with a refreshed seat snapshot. The old
// seat is read before the roster record is overwritten so the broadcast
// reports the seat actually vacated.
func (r *Router) handleChangeSeat(c interfaces.Conn, data json.RawMessage) error {
	var p changeSeatPayload
	if err := r.decode(data, &p); err != nil {
		return err
	}

	entry, ok := r.roster.Lookup(c.ID())
	if !ok || entry.Role != types.RoleStudent {
		r.emit(c, types.EventMessage, statusMessage{
			Type:    types.MessageError,
			Message: "no permission to change seats",
		})
		return nil
	}

	switch err := r.rooms.ClaimSeat(p.Room, p.NewSeatIndex, c.ID()); {
	case errors.Is(err, room.ErrRoomNotFound):
		r.emit(c, types.EventMessage, statusMessage{Type: types.MessageRoomNotFound})
		return nil
	case errors.Is(err, room.ErrInvalidSeat):
		r.emit(c, types.EventMessage, statusMessage{
			Type:    types.MessageInvalidSeat,
			Message: "invalid seat index",
		})
		return nil
	case errors.Is(err, room.ErrSeatOccupied):
		r.emit(c, types.EventMessage, statusMessage{Type: types.MessageSeatOccupied})
		return nil
	}

	oldSeat := entry.Seat
	if oldSeat != nil {
		r.rooms.ReleaseSeat(p.Room, *oldSeat)
	}
	r.roster.UpdateSeat(c.ID(), p.NewSeatIndex)

	r.broadcast(p.Room, types.EventMessage, seatChangedMessage{
		Type:         types.MessageSeatChanged,
		UserID:       c.ID(),
		Username:     entry.Username,
		OldSeatIndex: oldSeat,
		NewSeatIndex: p.NewSeatIndex,
	})

	occupied, _ := r.rooms.OccupiedSeats(p.Room)
	r.broadcast(p.Room, types.EventSeatUpdate, seatUpdate{OccupiedSeats: occupied})

	r.log.WithFields(logrus.Fields{
		"connection": c.ID(),
		"room":       p.Room,
		"seat":       p.NewSeatIndex,
	}).Info("seat changed")
	return nil
}

// handleLeaveRoom is the caller-initiated teardown entry point.
func (r *Router) handleLeaveRoom(c interfaces.Conn, data json.RawMessage) error {
	var p leaveRoomPayload
	if err := r.decode(data, &p); err != nil {
		return err
	}

	r.leaveRoom(c, p.RoomName)
	return nil
}

// handleGetRoomStatus returns the full room snapshot, host-only. Role
// mismatch and absent rooms degrade to a silent no-op.
func (r *Router) handleGetRoomStatus(c interfaces.Conn, data json.RawMessage) error {
	var p roomPayload
	if err := r.decode(data, &p); err != nil {
		return err
	}

	entry, ok := r.roster.Lookup(c.ID())
	if !ok || entry.Role != types.RoleHost {
		return nil
	}

	status, ok := r.rooms.Status(p.Room)
	if !ok {
		return nil
	}

	r.emit(c, types.EventRoomStatus, roomStatusResponse{
		Room:            p.Room,
		MaxClients:      status.Capacity,
		OccupiedSeats:   status.OccupiedSeats,
		SeatAssignments: status.SeatAssignments,
		RecipeID:        status.RecipeID,
		SessionActive:   status.SessionActive,
	})
	return nil
}

// handleCloseRoom deletes the room, clears progress for every member, and
// forcibly disconnects them. This is the only operation that terminates
// other connections. Non-host callers are a silent no-op; the room
// defaults to the caller's own.
func (r *Router) handleCloseRoom(c interfaces.Conn, data json.RawMessage) error {
	var p closeRoomPayload
	if err := r.decode(data, &p); err != nil {
		return err
	}

	entry, ok := r.roster.Lookup(c.ID())
	if !ok || entry.Role != types.RoleHost {
		return nil
	}

	roomName := p.Room
	if roomName == "" {
		roomName = entry.Room
	}

	r.rooms.Delete(roomName)

	members := r.membership.Members(roomName)
	for _, member := range members {
		r.progress.Delete(member.ID())
	}

	r.broadcast(roomName, types.EventMessage, roomClosedNotice{
		Message: "room closed by host",
	})

	for _, member := range members {
		if err := member.Close(); err != nil {
			r.log.WithError(err).WithField("connection", member.ID()).Debug("close failed")
		}
	}

	r.log.WithField("room", roomName).Info("room closed by host")
	return nil
}
