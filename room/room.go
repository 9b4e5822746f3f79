// room/room.go
package room

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/blockduel/board"
	"github.com/wfunc/blockduel/logger"
	"github.com/wfunc/blockduel/network"
	"github.com/wfunc/blockduel/piece"
	"github.com/wfunc/blockduel/player"
	"github.com/wfunc/blockduel/state"
)

// AttackDelay is how long a threatened player has to answer an attack
// before it lands as a garbage row.
const AttackDelay = 10 * time.Second

const (
	StateIdle       = "idle"
	StateInProgress = "in_progress"
	StateEnded      = "ended"
)

var (
	// ErrInvalidSession: no session is registered for the connection.
	ErrInvalidSession = errors.New("invalid connection ID")
	// ErrSessionEnded: the session finished while the message was in flight.
	ErrSessionEnded  = errors.New("session has ended")
	ErrUnknownPlayer = errors.New("connection is not part of this session")
	// ErrInvalidRows: rowsCleared outside [0, MaxRowsCleared].
	ErrInvalidRows = errors.New("rowsCleared out of range")
)

// MaxRowsCleared is the most rows a single piece can complete.
const MaxRowsCleared = piece.Size

// Seat identifies one participant when a room is formed.
type Seat struct {
	ConnID   string
	UserName string
}

// Room is the paired state of one running match. Both players' piece queues
// and pending garbage are guarded by the room's own mutex, so separate rooms
// proceed in parallel while the two connections of one room are serialized.
type Room struct {
	ID        string
	CreatedAt time.Time

	players [2]*player.Player
	rng     *rand.Rand
	now     func() time.Time

	machine *state.BaseStateMachine
	idle    state.State
	playing state.State
	ended   state.State

	mutex   sync.Mutex
	endedAt time.Time
}

// Option customizes a Room.
type Option func(*Room)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Room) { r.now = now }
}

// NewRoom pairs two seats. One seed drawn from rng initializes both players'
// piece sources, which is what keeps their sequences identical; rng itself
// stays with the room and fills garbage rows.
func NewRoom(id string, a, b Seat, rng *rand.Rand, opts ...Option) *Room {
	seed := rng.Int63()
	r := &Room{
		ID:  id,
		rng: rng,
		now: time.Now,
		players: [2]*player.Player{
			player.New(a.ConnID, a.UserName, seed),
			player.New(b.ConnID, b.UserName, seed),
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.CreatedAt = r.now()

	r.idle = state.NewFunc(StateIdle, nil, nil)
	r.playing = state.NewFunc(StateInProgress, func() {
		logger.Log.Infof("Room %s started: %s vs %s", r.ID, a.UserName, b.UserName)
	}, nil)
	r.ended = state.NewFunc(StateEnded, func() {
		logger.Log.Infof("Room %s ended", r.ID)
	}, nil)

	r.machine = state.NewBaseStateMachine(r.idle)
	never := func() bool { return false }
	r.machine.AddTransition(r.playing, r.playing, never)
	r.machine.AddTransition(r.ended, r.playing, never)
	r.machine.AddTransition(r.ended, r.idle, never)
	return r
}

func (r *Room) GetID() string {
	return r.ID
}

// Players returns both players in seat order.
func (r *Room) Players() [2]*player.Player {
	return r.players
}

// ConnIDs returns both connection identities in seat order.
func (r *Room) ConnIDs() [2]string {
	return [2]string{r.players[0].ConnID, r.players[1].ConnID}
}

// Pair returns the player for connID and the opponent.
func (r *Room) Pair(connID string) (self, other *player.Player, err error) {
	switch connID {
	case r.players[0].ConnID:
		return r.players[0], r.players[1], nil
	case r.players[1].ConnID:
		return r.players[1], r.players[0], nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, connID)
}

// Opponent returns the other side's connection identity.
func (r *Room) Opponent(connID string) (string, error) {
	_, other, err := r.Pair(connID)
	if err != nil {
		return "", err
	}
	return other.ConnID, nil
}

// Start moves the room from idle to in progress and returns the startGame
// payload for each seat.
func (r *Room) Start() ([2]network.StartGame, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out [2]network.StartGame
	if err := r.machine.ChangeState(r.playing); err != nil {
		return out, err
	}
	for i, p := range r.players {
		other := r.players[1-i]
		out[i] = network.StartGame{
			ThisName:    p.UserName,
			OtherName:   other.UserName,
			ThisPieces:  p.Pieces(),
			OtherPieces: other.Pieces(),
		}
	}
	return out, nil
}

// State returns the lifecycle state id.
func (r *Room) State() string {
	return r.machine.GetCurrentState().GetID()
}

// End marks the room finished. Ending twice is a no-op.
func (r *Room) End() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.machine.Is(StateEnded) {
		return
	}
	if err := r.machine.ChangeState(r.ended); err != nil {
		logger.Log.Errorf("Room %s: %v", r.ID, err)
		return
	}
	r.endedAt = r.now()
}

// EndedAt returns when End was first called, zero if still running.
func (r *Room) EndedAt() time.Time {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.endedAt
}

// DropOutcome is the result of a drop plus the bookkeeping around it.
type DropOutcome struct {
	Result    *network.DropResult
	Opponent  string
	Cancelled int
	Attack    int
	Garbage   int
}

// Drop records that connID landed a piece clearing rowsCleared rows.
// Cleared rows first answer the player's own pending attacks; the rest are
// sent to the opponent with a deadline AttackDelay from now. Independently,
// every pending entry already due becomes a garbage row for this player.
// The caller relays the result to the opponent.
func (r *Room) Drop(connID string, rowsCleared int) (*DropOutcome, error) {
	if rowsCleared < 0 || rowsCleared > MaxRowsCleared {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRows, rowsCleared)
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.machine.Is(StateInProgress) {
		return nil, ErrSessionEnded
	}
	self, other, err := r.Pair(connID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	out := &DropOutcome{Opponent: other.ConnID}
	remaining := rowsCleared
	for remaining > 0 && self.CancelPending() {
		remaining--
		out.Cancelled++
	}
	for ; remaining > 0; remaining-- {
		other.AddPending(now.Add(AttackDelay))
		out.Attack++
	}

	for self.PopExpired(now) {
		out.Garbage++
	}

	out.Result = &network.DropResult{
		PendingTimes: [2][]int64{self.PendingTimes(now), other.PendingTimes(now)},
		NewPieces:    self.Advance(),
	}
	if out.Garbage > 0 {
		out.Result.Garbage = board.RandomGarbage(r.rng, out.Garbage)
	}
	return out, nil
}
