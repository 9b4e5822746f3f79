package lobby

// Notifier pushes out-of-band messages to connections. It is defined here to
// keep lobby independent of the broadcast package. Implementations must not
// block on network I/O, since the lobby notifies while holding its lock.
type Notifier interface {
	SendTo(connID string, msgID uint16, payload interface{}) error
	SendToMany(connIDs []string, msgID uint16, payload interface{}) error
}
