package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"chinitsu-server/internal/logging"
	"chinitsu-server/internal/room"
	"chinitsu-server/internal/shared"
)

const maxConnsPerRoom = 2

var (
	ErrRoomFull  = errors.New("room already has two connections")
	ErrNotJoined = errors.New("connection has not joined the room")

	ErrDuplicateIdentity = room.ErrDuplicateIdentity
	ErrSeatReserved      = room.ErrSeatReserved
)

// Conn is one client connection as the hub sees it. Send must not block.
type Conn interface {
	Send(env shared.Envelope) bool
	Close(code int, reason string)
}

type Options struct {
	WriteWait  time.Duration
	PongWait   time.Duration
	SendBuffer int
	Logger     *zap.Logger
}

// Hub tracks which connections sit in which room and routes their actions
// to the room's session. Each room has a dispatch lock held from Dispatch
// through delivery, so results leave in the order they were applied. Lock
// order is room dispatch lock, then hub lock, then session lock.
type Hub struct {
	mu      sync.Mutex
	rooms   map[string]map[Conn]string
	lines   map[string]*sync.Mutex
	manager RoomManager
	opts    Options
	tracer  trace.Tracer
	log     *zap.Logger
}

func NewHub(manager RoomManager, opts Options) *Hub {
	if opts.WriteWait <= 0 {
		opts.WriteWait = 10 * time.Second
	}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 32
	}
	return &Hub{
		rooms:   make(map[string]map[Conn]string),
		lines:   make(map[string]*sync.Mutex),
		manager: manager,
		opts:    opts,
		tracer:  otel.Tracer("chinitsu-server/ws"),
		log:     logging.OrNop(opts.Logger),
	}
}

// Join attaches c to the room as player, creating the session for the
// first joiner.
func (h *Hub) Join(c Conn, code, player string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.rooms[code]
	if len(members) >= maxConnsPerRoom {
		return ErrRoomFull
	}
	sess, created := h.manager.CreateIfAbsent(code)
	kind, err := sess.Join(player)
	if err != nil {
		if created {
			h.manager.Destroy(code)
		}
		return err
	}
	if members == nil {
		members = make(map[Conn]string, maxConnsPerRoom)
		h.rooms[code] = members
		if h.lines[code] == nil {
			h.lines[code] = new(sync.Mutex)
		}
	}
	members[c] = player
	log := h.log.With(zap.String("room", code), zap.String("player", player))

	if created {
		c.Send(shared.Envelope{Type: shared.TypeRoomCreated, Data: gin.H{"room": code, "player": player}})
	}
	switch kind {
	case room.JoinReconnected:
		log.Info("player reconnected")
		h.broadcastLocked(code, shared.Envelope{Type: shared.TypePlayerReconnected, Data: gin.H{"player": player}})
		if snap, err := sess.Snapshot(player); err == nil {
			c.Send(shared.Envelope{Type: shared.TypeSnapshot, Data: snap})
		}
	default:
		players := sess.Players()
		log.Info("player joined", zap.Int("players", len(players)))
		h.broadcastLocked(code, shared.Envelope{Type: shared.TypePlayerJoined, Data: gin.H{"player": player, "players": players}})
		if len(players) == maxConnsPerRoom {
			h.broadcastLocked(code, shared.Envelope{Type: shared.TypeGameStarted, Data: gin.H{"players": players}})
		}
	}
	return nil
}

// Leave detaches c. The last connection out destroys the session.
func (h *Hub) Leave(c Conn, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.rooms[code]
	player, ok := members[c]
	if !ok {
		return
	}
	delete(members, c)

	if len(members) == 0 {
		delete(h.rooms, code)
		delete(h.lines, code)
		h.manager.Destroy(code)
		h.log.Info("room emptied", zap.String("room", code))
		return
	}
	status := ""
	if sess, ok := h.manager.Get(code); ok {
		sess.Leave(player)
		status = string(sess.Status())
	}
	h.broadcastLocked(code, shared.Envelope{Type: shared.TypePlayerLeft, Data: gin.H{"player": player, "status": status}})
}

// Broadcast sends env to every connection in the room.
func (h *Hub) Broadcast(code string, env shared.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(code, env)
}

func (h *Hub) broadcastLocked(code string, env shared.Envelope) {
	for c := range h.rooms[code] {
		c.Send(env)
	}
}

// RouteAction dispatches msg for the player behind c and delivers each
// seat its own result. Rejections go back to c only.
func (h *Hub) RouteAction(ctx context.Context, c Conn, code string, msg shared.ClientMessage) error {
	_, span := h.tracer.Start(ctx, "room.dispatch", trace.WithAttributes(
		attribute.String("room", code),
		attribute.String("action", msg.Action),
	))
	defer span.End()

	h.mu.Lock()
	player, ok := h.rooms[code][c]
	line := h.lines[code]
	h.mu.Unlock()
	if !ok || line == nil {
		return ErrNotJoined
	}
	span.SetAttributes(attribute.String("player", player))

	line.Lock()
	defer line.Unlock()

	sess, ok := h.manager.Get(code)
	if !ok {
		return ErrNotJoined
	}
	results, err := sess.Dispatch(msg.Action, msg.Index(), player)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, room.ErrInvariantViolated) {
			h.log.Error("closing corrupt room", zap.String("room", code), zap.Error(err))
			h.closeRoom(code, "internal error")
			return err
		}
		reason := "Internal"
		if r, ok := room.ReasonOf(err); ok {
			reason = string(r)
		} else {
			h.log.Error("dispatch failed", zap.String("room", code), zap.String("player", player), zap.Error(err))
		}
		c.Send(shared.Envelope{Type: shared.TypeActionError, Data: shared.ErrorPayload{Code: reason, Message: err.Error()}})
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, pid := range h.rooms[code] {
		if r, ok := results[pid]; ok {
			conn.Send(shared.Envelope{Type: shared.TypeActionResult, Data: r})
		}
	}
	return nil
}

// closeRoom tells everyone the room is gone and drops it.
func (h *Hub) closeRoom(code, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[code] {
		c.Send(shared.Envelope{Type: shared.TypeRoomClosed, Data: gin.H{"reason": reason}})
		c.Close(closeInternalErr, reason)
	}
	delete(h.rooms, code)
	delete(h.lines, code)
	h.manager.Destroy(code)
}

// Members returns the player ids connected to the room.
func (h *Hub) Members(code string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.rooms[code]))
	for _, p := range h.rooms[code] {
		out = append(out, p)
	}
	return out
}
