// lobby/lobby.go
package lobby

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/blockduel/logger"
	"github.com/wfunc/blockduel/network"
	"github.com/wfunc/blockduel/room"
)

var (
	// ErrNotWaiting is returned when the picked player left the waiting list.
	ErrNotWaiting = errors.New("player not waiting any more")
	// ErrAlreadyPlaying is returned when either side of a pick is still
	// registered in a running room.
	ErrAlreadyPlaying = errors.New("player already in a game")
)

type connSet map[string]struct{}

func (s connSet) add(id string) { s[id] = struct{}{} }

// remove reports whether id was present.
func (s connSet) remove(id string) bool {
	if _, ok := s[id]; !ok {
		return false
	}
	delete(s, id)
	return true
}

func (s connSet) ids() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Stats is a snapshot of the directory.
type Stats struct {
	Waiting  int `json:"waiting"`
	Browsing int `json:"browsing"`
	Rooms    int `json:"rooms"`
}

// Lobby is the matchmaking directory: who waits for an opponent, who is
// browsing the waiting list, and, through the room registry, who is playing.
// Every mutation runs under one mutex for its whole duration.
type Lobby struct {
	mutex    sync.Mutex
	waiting  map[string]string // connection ID -> display name
	browsing connSet
	rooms    *room.Manager
	notifier Notifier

	newRand func() *rand.Rand
	newID   func() string
	roomOps []room.Option
}

// Option customizes a Lobby.
type Option func(*Lobby)

// WithRandSource replaces the per-room random source factory.
func WithRandSource(f func() *rand.Rand) Option {
	return func(l *Lobby) { l.newRand = f }
}

// WithRoomOptions passes options to every room the lobby creates.
func WithRoomOptions(opts ...room.Option) Option {
	return func(l *Lobby) { l.roomOps = append(l.roomOps, opts...) }
}

func NewLobby(rooms *room.Manager, notifier Notifier, opts ...Option) *Lobby {
	l := &Lobby{
		waiting:  make(map[string]string),
		browsing: make(connSet),
		rooms:    rooms,
		notifier: notifier,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// waitingList must be called with the mutex held.
func (l *Lobby) waitingList() []network.WaitingPlayer {
	list := make([]network.WaitingPlayer, 0, len(l.waiting))
	for id, name := range l.waiting {
		list = append(list, network.WaitingPlayer{ConnectionID: id, UserName: name})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UserName != list[j].UserName {
			return list[i].UserName < list[j].UserName
		}
		return list[i].ConnectionID < list[j].ConnectionID
	})
	return list
}

// sendWaitingList must be called with the mutex held. Every browser gets the
// same snapshot.
func (l *Lobby) sendWaitingList() {
	if len(l.browsing) == 0 {
		return
	}
	if err := l.notifier.SendToMany(l.browsing.ids(), network.MsgTypeUpdateWaitingList, l.waitingList()); err != nil {
		logger.Log.Debugf("Waiting list broadcast incomplete: %v", err)
	}
}

// StartWaiting puts connID on the waiting list. Repeating the call keeps the
// name given first.
func (l *Lobby) StartWaiting(connID, name string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, exists := l.waiting[connID]; !exists {
		l.waiting[connID] = name
		logger.Log.Infof("Connection %s (%s) is waiting for an opponent", connID, name)
	}
	l.sendWaitingList()
}

// StopWaiting takes connID off the waiting list.
func (l *Lobby) StopWaiting(connID string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, exists := l.waiting[connID]; exists {
		delete(l.waiting, connID)
		l.sendWaitingList()
	}
}

// Browse marks connID as looking for an opponent and returns the current
// waiting list ordered by name, then connection ID.
func (l *Lobby) Browse(connID string) []network.WaitingPlayer {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.browsing.add(connID)
	return l.waitingList()
}

// RemoveBrowsing stops sending waiting list updates to connID.
func (l *Lobby) RemoveBrowsing(connID string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.browsing.remove(connID)
}

// Pick pairs picker with the waiting connection otherConnID, registers the
// new room under both identities and sends startGame to both. If otherConnID
// is no longer waiting the directory is left untouched and ErrNotWaiting is
// returned; if either side already plays in a room, ErrAlreadyPlaying.
func (l *Lobby) Pick(picker room.Seat, otherConnID string) (*room.Room, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	otherName, exists := l.waiting[otherConnID]
	if !exists || otherConnID == picker.ConnID {
		return nil, ErrNotWaiting
	}
	for _, id := range []string{picker.ConnID, otherConnID} {
		if r, playing := l.rooms.GetRoom(id); playing {
			return nil, fmt.Errorf("%w: %s in room %s", ErrAlreadyPlaying, id, r.ID)
		}
	}

	r := room.NewRoom(l.newID(), picker, room.Seat{ConnID: otherConnID, UserName: otherName}, l.newRand(), l.roomOps...)
	starts, err := r.Start()
	if err != nil {
		return nil, err
	}

	l.browsing.remove(picker.ConnID)
	delete(l.waiting, otherConnID)
	// A picker that was also waiting must not be picked into a second room.
	delete(l.waiting, picker.ConnID)
	l.rooms.Register(r)

	for i, id := range r.ConnIDs() {
		if err := l.notifier.SendTo(id, network.MsgTypeStartGame, starts[i]); err != nil {
			logger.Log.Warnf("Room %s: startGame to %s failed: %v", r.ID, id, err)
		}
	}
	l.sendWaitingList()
	return r, nil
}

// ReportLoss ends the room of the losing connection: the opponent is told it
// won and both identities are unregistered. It returns the finished room and
// the winner's connection identity.
func (l *Lobby) ReportLoss(loserConnID string) (*room.Room, string, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	r, exists := l.rooms.GetRoom(loserConnID)
	if !exists {
		return nil, "", room.ErrInvalidSession
	}
	winner, err := r.Opponent(loserConnID)
	if err != nil {
		return nil, "", err
	}

	if err := l.notifier.SendTo(winner, network.MsgTypeThisWin, nil); err != nil {
		logger.Log.Warnf("Room %s: thisWin to %s failed: %v", r.ID, winner, err)
	}
	l.rooms.Unregister(r)
	r.End()
	return r, winner, nil
}

// Disconnect forgets connID in the directory. A room the connection plays in
// is left registered; the opponent can still finish it by reporting a loss.
func (l *Lobby) Disconnect(connID string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.browsing.remove(connID)
	if _, exists := l.waiting[connID]; exists {
		delete(l.waiting, connID)
		l.sendWaitingList()
	}
}

// Stats returns a consistent snapshot of the directory.
func (l *Lobby) Stats() Stats {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return Stats{
		Waiting:  len(l.waiting),
		Browsing: len(l.browsing),
		Rooms:    l.rooms.Count(),
	}
}

// Rooms exposes the registry for gameplay lookups.
func (l *Lobby) Rooms() *room.Manager {
	return l.rooms
}
