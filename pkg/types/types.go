package types

import (
	"encoding/json"
	"time"
)

// Connection roles. A room has one creating host and any number of
// seated students.
const (
	RoleHost    = "host"
	RoleStudent = "student"
)

// Inbound event names accepted over the websocket channel.
const (
	EventGetRoomInfo     = "getRoomInfo"
	EventJoin            = "join"
	EventStartSession    = "startSession"
	EventEndSession      = "endSession"
	EventSessionResponse = "sessionResponse"
	EventStudentProgress = "studentProgress"
	EventDangerAlert     = "dangerAlert"
	EventSendJSON        = "sendJson"
	EventChangeSeat      = "changeSeat"
	EventLeaveRoom       = "leave-room"
	EventGetRoomStatus   = "getRoomStatus"
	EventCloseRoom       = "closeRoom"
)

// Outbound event names. sessionResponse, studentProgress and dangerAlert
// are re-emitted to hosts under their inbound names.
const (
	EventRoomInfo       = "roomInfo"
	EventMessage        = "message"
	EventSeatUpdate     = "seatUpdate"
	EventSessionStarted = "sessionStarted"
	EventSessionEnded   = "sessionEnded"
	EventReceiveJSON    = "receiveJson"
	EventRoomStatus     = "roomStatus"
)

// Discriminator values for the generic "message" outbound event.
const (
	MessageRoomNotFound  = "room_not_found"
	MessageRoomFull      = "room_full"
	MessageInvalidSeat   = "invalid_seat"
	MessageSeatOccupied  = "seat_occupied"
	MessageStudentJoined = "student_joined"
	MessageStudentLeft   = "student_left"
	MessageSeatChanged   = "seat_changed"
	MessageError         = "error"
)

// Envelope is the wire frame for inbound events: an event name plus an
// event-specific payload left raw until the dispatch table picks a decoder.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Identity is the verified payload extracted from a bearer token at
// handshake time. It is trusted for the lifetime of the connection.
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
}

// User is a stored user record. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Permission   string    `json:"permission"`
	CreatedAt    time.Time `json:"created_at"`
}
