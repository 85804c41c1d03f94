package ws

import "chinitsu-server/internal/room"

// RoomManager is the slice of the session registry the hub needs.
type RoomManager interface {
	CreateIfAbsent(code string) (*room.Session, bool)
	Get(code string) (*room.Session, bool)
	Destroy(code string)
}
