package http

import (
	"net/http"

	"chinitsu-server/internal/room"

	"github.com/gin-gonic/gin"
)

// @Summary List rooms
// @Description Live rooms with their status and seated players
// @Tags Room
// @Produce json
// @Success 200 {object} RoomListResponse
// @Router /rooms [get]
func ListRoomsHandler(rm *room.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, RoomListResponse{Rooms: rm.List()})
	}
}

// @Summary Get one room
// @Tags Room
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} shared.RoomSummary
// @Failure 404 {object} ErrorResponse
// @Router /rooms/{code} [get]
func GetRoomHandler(rm *room.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := rm.Get(c.Param("code"))
		if !ok {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		c.JSON(http.StatusOK, sess.Summary())
	}
}

// @Summary Allocate a room code
// @Description Returns a code no live room uses. The room itself is created by the first websocket join.
// @Tags Room
// @Accept json
// @Produce json
// @Param request body CreateRoomRequest false "Preferred code"
// @Success 201 {object} CreateRoomResponse
// @Failure 409 {object} ErrorResponse
// @Router /rooms [post]
func CreateRoomHandler(rm *room.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRoomRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
				return
			}
		}
		code := req.Code
		if code == "" {
			code = rm.NewCode()
		} else if _, taken := rm.Get(code); taken {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "room code in use"})
			return
		}
		c.JSON(http.StatusCreated, CreateRoomResponse{Code: code, WSPath: "/ws/" + code + "/{player}"})
	}
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
