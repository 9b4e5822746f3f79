// player/player.go
package player

import (
	"math/rand"
	"time"

	"github.com/wfunc/blockduel/piece"
)

// LookaheadSize is the current piece plus the upcoming ones shown to a player.
const LookaheadSize = 3

// Lookahead is a fixed-length ordered queue of piece descriptors.
type Lookahead [LookaheadSize]piece.Descriptor

// Shift drops the front element and appends d at the back.
func (q *Lookahead) Shift(d piece.Descriptor) {
	copy(q[:], q[1:])
	q[LookaheadSize-1] = d
}

// Slice returns a copy of the queue, front first.
func (q *Lookahead) Slice() []piece.Descriptor {
	out := make([]piece.Descriptor, LookaheadSize)
	copy(out, q[:])
	return out
}

// Player is one side of a running game. It is not safe for concurrent use;
// the owning room serializes access.
type Player struct {
	ConnID   string
	UserName string

	queue   Lookahead
	pending []time.Time
	rng     *rand.Rand
}

// New creates a player whose piece sequence is fully determined by seed.
// Two players built from the same seed draw identical sequences.
func New(connID, userName string, seed int64) *Player {
	p := &Player{
		ConnID:   connID,
		UserName: userName,
		rng:      rand.New(rand.NewSource(seed)),
	}
	for i := range p.queue {
		p.queue[i] = p.draw()
	}
	return p
}

func (p *Player) GetID() string {
	return p.ConnID
}

func (p *Player) draw() piece.Descriptor {
	id := p.rng.Intn(piece.Count)
	rotation := p.rng.Intn(piece.Rotations)
	return piece.Descriptor{ID: id, Rotation: rotation}
}

// Pieces returns the current piece followed by the lookahead.
func (p *Player) Pieces() []piece.Descriptor {
	return p.queue.Slice()
}

// Advance consumes the current piece, draws a new one at the back and
// returns the shifted queue.
func (p *Player) Advance() []piece.Descriptor {
	p.queue.Shift(p.draw())
	return p.queue.Slice()
}

// AddPending schedules a garbage row to land at deadline.
func (p *Player) AddPending(deadline time.Time) {
	p.pending = append(p.pending, deadline)
}

// CancelPending answers the oldest outstanding attack. It returns false when
// nothing is pending.
func (p *Player) CancelPending() bool {
	if len(p.pending) == 0 {
		return false
	}
	p.pending = p.pending[1:]
	return true
}

// PopExpired removes the oldest pending entry if its deadline is not after now.
func (p *Player) PopExpired(now time.Time) bool {
	if len(p.pending) == 0 || p.pending[0].After(now) {
		return false
	}
	p.pending = p.pending[1:]
	return true
}

// PendingCount returns the number of outstanding attacks.
func (p *Player) PendingCount() int {
	return len(p.pending)
}

// PendingTimes returns the milliseconds left until each pending deadline,
// oldest first. Values may be negative for entries already due.
func (p *Player) PendingTimes(now time.Time) []int64 {
	out := make([]int64, len(p.pending))
	for i, deadline := range p.pending {
		out[i] = deadline.Sub(now).Milliseconds()
	}
	return out
}
