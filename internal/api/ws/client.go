package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chinitsu-server/internal/shared"
)

const (
	maxMessageSize   = 4096
	closeInternalErr = websocket.CloseInternalServerErr
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Client is a gorilla websocket connection joined to one room. Outbound
// frames go through a buffered channel drained by writePump.
type Client struct {
	id     string
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	closeF []byte

	hub    *Hub
	room   string
	player string
	log    *zap.Logger
}

func newClient(h *Hub, conn *websocket.Conn, code, player string) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		ws:     conn,
		send:   make(chan []byte, h.opts.SendBuffer),
		done:   make(chan struct{}),
		hub:    h,
		room:   code,
		player: player,
		log: h.log.With(
			zap.String("conn", id),
			zap.String("room", code),
			zap.String("player", player),
		),
	}
}

// Send queues env without blocking. A client that cannot keep up is
// disconnected.
func (c *Client) Send(env shared.Envelope) bool {
	b, err := json.Marshal(env)
	if err != nil {
		c.log.Error("encode envelope", zap.String("type", env.Type), zap.Error(err))
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	case <-c.done:
		return false
	default:
		c.log.Warn("send buffer full, dropping client")
		c.Close(websocket.ClosePolicyViolation, "too slow")
		return false
	}
}

// Close asks writePump to flush queued frames and send a close frame.
func (c *Client) Close(code int, reason string) {
	c.once.Do(func() {
		c.closeF = websocket.FormatCloseMessage(code, reason)
		close(c.done)
	})
}

// HandleWS upgrades the request and joins /ws/:room/:player.
func (h *Hub) HandleWS(c *gin.Context) {
	code := c.Param("room")
	player := c.Param("player")
	if code == "" || player == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room and player are required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := newClient(h, conn, code, player)
	go cl.writePump()

	if err := h.Join(cl, code, player); err != nil {
		cl.log.Info("join refused", zap.Error(err))
		cl.Close(websocket.ClosePolicyViolation, err.Error())
		return
	}
	cl.readPump(c.Request.Context())
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Leave(c, c.room)
		c.Close(websocket.CloseNormalClosure, "")
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.hub.opts.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.hub.opts.PongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Info("read failed", zap.Error(err))
			}
			return
		}

		var msg shared.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("InvalidMessage", "malformed json")
			continue
		}
		if err := validate.Struct(msg); err != nil {
			c.sendError(validationCode(err), err.Error())
			continue
		}
		if err := c.hub.RouteAction(ctx, c, c.room, msg); err != nil {
			c.log.Debug("action failed", zap.String("action", msg.Action), zap.Error(err))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.opts.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	write := func(kind int, b []byte) error {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.hub.opts.WriteWait))
		return c.ws.WriteMessage(kind, b)
	}

	for {
		select {
		case msg := <-c.send:
			if err := write(websocket.TextMessage, msg); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-c.done:
			for {
				select {
				case msg := <-c.send:
					if err := write(websocket.TextMessage, msg); err != nil {
						return
					}
				default:
					_ = write(websocket.CloseMessage, c.closeF)
					return
				}
			}
		}
	}
}

func (c *Client) sendError(code, msg string) {
	c.Send(shared.Envelope{Type: shared.TypeActionError, Data: shared.ErrorPayload{Code: code, Message: msg}})
}

// validationCode maps an unsupported action to the session's own code.
func validationCode(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Action" && fe.Tag() == "oneof" {
				return "UnknownAction"
			}
		}
	}
	return "InvalidMessage"
}
