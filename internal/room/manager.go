package room

import (
	"math/rand"
	"sort"
	"sync"

	"go.uber.org/zap"

	"chinitsu-server/internal/logging"
	"chinitsu-server/internal/shared"
)

// Store holds live sessions by room code.
type Store interface {
	GetRoom(code string) (*Session, bool)
	SaveRoom(s *Session)
	DeleteRoom(code string)
	ListRooms() []*Session
}

// Manager is the session registry. It guarantees one session per code.
type Manager struct {
	mu    sync.Mutex
	store Store
	opts  Options
	log   *zap.Logger
}

func NewManager(s Store, opts Options) *Manager {
	return &Manager{store: s, opts: opts, log: logging.OrNop(opts.Logger)}
}

// CreateIfAbsent returns the session for code, creating it when missing.
// created reports whether this call made it.
func (m *Manager) CreateIfAbsent(code string) (sess *Session, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.store.GetRoom(code); ok {
		return s, false
	}
	s := NewSession(code, m.opts)
	m.store.SaveRoom(s)
	m.log.Info("session created", zap.String("room", code))
	return s, true
}

func (m *Manager) Get(code string) (*Session, bool) {
	return m.store.GetRoom(code)
}

func (m *Manager) Destroy(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store.GetRoom(code); !ok {
		return
	}
	m.store.DeleteRoom(code)
	m.log.Info("session destroyed", zap.String("room", code))
}

// List summarizes every live session, ordered by code.
func (m *Manager) List() []shared.RoomSummary {
	rooms := m.store.ListRooms()
	out := make([]shared.RoomSummary, 0, len(rooms))
	for _, s := range rooms {
		out = append(out, s.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// NewCode picks a room code not currently in use.
func (m *Manager) NewCode() string {
	for {
		code := randCode(6)
		if _, ok := m.store.GetRoom(code); !ok {
			return code
		}
	}
}

const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
