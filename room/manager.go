package room

import "sync"

// Manager is the session registry: connection identity to room. Each room is
// registered under both of its connection identities. Lookups take a read
// lock so gameplay messages never contend with each other here; mutations
// happen under the lobby's directory lock as well.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewRoomManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// Register maps both seats of room to it. A connection already mapped to
// another room is remapped.
func (m *Manager) Register(room *Room) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, id := range room.ConnIDs() {
		m.rooms[id] = room
	}
}

// Unregister removes both seats of room, but only where they still point at
// this room.
func (m *Manager) Unregister(room *Room) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, id := range room.ConnIDs() {
		if m.rooms[id] == room {
			delete(m.rooms, id)
		}
	}
}

// GetRoom resolves a connection identity.
func (m *Manager) GetRoom(connID string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, exists := m.rooms[connID]
	return room, exists
}

// Count returns the number of distinct registered rooms.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	seen := make(map[*Room]struct{}, len(m.rooms)/2)
	for _, r := range m.rooms {
		seen[r] = struct{}{}
	}
	return len(seen)
}
