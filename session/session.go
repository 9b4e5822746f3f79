// session/session.go
package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/wfunc/blockduel/network"
)

// Session is one live connection. Its ID is the connection identity used
// throughout matchmaking and gameplay.
type Session struct {
	ID        string
	Conn      network.Connection
	CreatedAt time.Time

	userName   string
	lastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
	}
}

// UserName returns the display name last announced on this connection.
func (s *Session) UserName() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.userName
}

func (s *Session) SetUserName(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.userName = name
}

// Touch records inbound activity.
func (s *Session) Touch(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastActive = now
}

func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

func (s *Session) Send(msgID uint16, data []byte) error {
	return s.Conn.Send(msgID, data)
}

// SendJSON marshals v and sends it. A nil v sends an empty object.
func (s *Session) SendJSON(msgID uint16, v interface{}) error {
	if v == nil {
		return s.Send(msgID, []byte("{}"))
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// All returns a snapshot of every live session.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Idle returns the sessions with no inbound activity for longer than timeout.
func (m *Manager) Idle(now time.Time, timeout time.Duration) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if now.Sub(session.LastActive()) > timeout {
			result = append(result, session)
		}
	}
	return result
}
