package http

import (
	"time"

	"chinitsu-server/internal/api/ws"
	"chinitsu-server/internal/config"
	"chinitsu-server/internal/logging"
	"chinitsu-server/internal/room"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(rm *room.Manager, hub *ws.Hub, rules config.Rules, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(logging.OrNop(logger)), gin.Recovery())

	// WebSocket game channel
	r.GET("/ws/:room/:player", hub.HandleWS)

	// --- ROOM ENDPOINTS ---
	r.GET("/rooms", ListRoomsHandler(rm))
	r.GET("/rooms/:code", GetRoomHandler(rm))
	r.POST("/rooms", CreateRoomHandler(rm))

	// --- CONFIG ENDPOINTS ---
	r.GET("/config/rules", NewConfigHandler(rules).GetRulesHandler)

	r.GET("/healthz", HealthHandler)
	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
