package room

import "errors"

// Seat and room lookup errors surfaced to the originating connection only.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrInvalidSeat  = errors.New("seat index out of range")
	ErrSeatOccupied = errors.New("seat already occupied")
)
