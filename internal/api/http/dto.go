package http

import "chinitsu-server/internal/shared"

// CreateRoomRequest optionally asks for a specific room code.
type CreateRoomRequest struct {
	Code string `json:"code" binding:"omitempty,alphanum,min=4,max=16"`
}

type CreateRoomResponse struct {
	Code   string `json:"code"`
	WSPath string `json:"wsPath"`
}

type RoomListResponse struct {
	Rooms []shared.RoomSummary `json:"rooms"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
