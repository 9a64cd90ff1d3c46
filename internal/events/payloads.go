package events

import (
	"encoding/json"
	"time"
)

// Inbound payloads. Field names follow the wire protocol; room lookups on
// missing or empty names simply fail with room_not_found, so only role and
// count constraints carry validation tags.

type joinPayload struct {
	Role       string `json:"role" validate:"required,oneof=host student"`
	Room       string `json:"room"`
	Username   string `json:"username"`
	MaxClients int    `json:"maxClients" validate:"min=0"`
	SeatIndex  *int   `json:"seatIndex"`
	RecipeID   string `json:"recipeId"`
}

type roomPayload struct {
	Room string `json:"room"`
}

type startSessionPayload struct {
	Room     string `json:"room"`
	RecipeID string `json:"recipeId"`
}

type sessionResponsePayload struct {
	Room   string `json:"room"`
	UserID string `json:"userId"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type studentProgressPayload struct {
	Room        string `json:"room"`
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	SeatIndex   int    `json:"seatIndex"`
	CurrentStep int    `json:"currentStep"`
	RecipeID    string `json:"recipeId"`
}

type dangerAlertPayload struct {
	Room      string `json:"room"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	SeatIndex int    `json:"seatIndex"`
	Message   string `json:"message"`
}

type sendJSONPayload struct {
	Room      string          `json:"room"`
	UserID    string          `json:"userId"`
	Message   json.RawMessage `json:"message"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	SeatIndex *int            `json:"seatIndex"`
}

type changeSeatPayload struct {
	Room         string `json:"room"`
	NewSeatIndex int    `json:"newSeatIndex"`
}

type leaveRoomPayload struct {
	RoomName string `json:"roomName"`
}

type closeRoomPayload struct {
	Room string `json:"room"`
}

// Outbound payloads.

type roomInfoFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type roomInfoSuccess struct {
	Success       bool  `json:"success"`
	MaxSeats      int   `json:"maxSeats"`
	OccupiedSeats []int `json:"occupiedSeats"`
}

type statusMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

type studentJoinedMessage struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	Room      string `json:"room"`
	Username  string `json:"username,omitempty"`
	SeatIndex *int   `json:"seatIndex,omitempty"`
}

type studentLeftMessage struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	Room      string `json:"room"`
	Username  string `json:"username,omitempty"`
	SeatIndex *int   `json:"seatIndex,omitempty"`
}

type seatChangedMessage struct {
	Type         string `json:"type"`
	UserID       string `json:"userId"`
	Username     string `json:"username,omitempty"`
	OldSeatIndex *int   `json:"oldSeatIndex,omitempty"`
	NewSeatIndex int    `json:"newSeatIndex"`
}

type seatUpdate struct {
	OccupiedSeats []int `json:"occupiedSeats"`
}

type sessionStarted struct {
	RecipeID string `json:"recipeId"`
	Room     string `json:"room"`
}

type sessionEnded struct {
	Room string `json:"room"`
}

type sessionResponseRelay struct {
	UserID    string `json:"userId"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	TimeStamp string `json:"timeStamp"`
}

type studentProgressRelay struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	SeatIndex   int    `json:"seatIndex"`
	CurrentStep int    `json:"currentStep"`
	RecipeID    string `json:"recipeId"`
	TimeStamp   string `json:"timeStamp"`
}

type dangerAlertRelay struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	SeatIndex int    `json:"seatIndex"`
	Message   string `json:"message"`
	TimeStamp string `json:"timeStamp"`
}

type receiveJSONRelay struct {
	Message   json.RawMessage `json:"message"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Room      string          `json:"room"`
	UserID    string          `json:"userId"`
	SeatIndex *int            `json:"seatIndex,omitempty"`
	TimeStamp string          `json:"timeStamp"`
}

type roomClosedNotice struct {
	Message string `json:"message"`
}

type roomStatusResponse struct {
	Room            string         `json:"room"`
	MaxClients      int            `json:"maxClients"`
	OccupiedSeats   []int          `json:"occupiedSeats"`
	SeatAssignments map[int]string `json:"seatAssignments"`
	RecipeID        string         `json:"recipeId,omitempty"`
	SessionActive   bool           `json:"sessionActive"`
}

// isoTimestamp is the server-side emit-time stamp carried on every relay.
func isoTimestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
