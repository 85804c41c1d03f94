package store

import (
	"sync"

	"chinitsu-server/internal/room"
)

type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*room.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: map[string]*room.Session{},
	}
}

func (m *MemoryStore) GetRoom(code string) (*room.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	return r, ok
}

func (m *MemoryStore) SaveRoom(s *room.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[s.Code()] = s
}

func (m *MemoryStore) DeleteRoom(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, code)
}

func (m *MemoryStore) ListRooms() []*room.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*room.Session, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}
