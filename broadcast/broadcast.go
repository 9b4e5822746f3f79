// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wfunc/blockduel/logger"
	"github.com/wfunc/blockduel/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// 广播接口
type Broadcaster interface {
	SendTo(connID string, msgID uint16, payload interface{}) error
	SendToMany(connIDs []string, msgID uint16, payload interface{}) error
}

// SessionBroadcaster delivers payloads to live connections by identity.
type SessionBroadcaster struct {
	sessionManager *session.Manager
}

func NewSessionBroadcaster(sessionManager *session.Manager) *SessionBroadcaster {
	return &SessionBroadcaster{sessionManager: sessionManager}
}

func encode(payload interface{}) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(payload)
}

func (b *SessionBroadcaster) SendTo(connID string, msgID uint16, payload interface{}) error {
	s, exists := b.sessionManager.Get(connID)
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, connID)
	}
	data, err := encode(payload)
	if err != nil {
		return err
	}
	return s.Send(msgID, data)
}

// SendToMany encodes payload once, so every receiver gets the same bytes.
// Failures are logged and skipped; the first one is returned.
func (b *SessionBroadcaster) SendToMany(connIDs []string, msgID uint16, payload interface{}) error {
	data, err := encode(payload)
	if err != nil {
		return err
	}

	var first error
	for _, id := range connIDs {
		s, exists := b.sessionManager.Get(id)
		if !exists {
			err = fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		} else {
			err = s.Send(msgID, data)
		}
		if err != nil {
			logger.Log.Debugf("broadcast to %s failed: %v", id, err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
