package room

import (
	"time"

	"github.com/wfunc/blockduel/piece"
)

// Pieces returns the current queue of connID.
func (r *Room) Pieces(connID string) ([]piece.Descriptor, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	self, _, err := r.Pair(connID)
	if err != nil {
		return nil, err
	}
	return self.Pieces(), nil
}

// PendingCounts returns the number of outstanding attacks per seat.
func (r *Room) PendingCounts() [2]int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return [2]int{r.players[0].PendingCount(), r.players[1].PendingCount()}
}

// AddPendingAt schedules a garbage row against connID, the same
// operation an attack performs.
func (r *Room) AddPendingAt(connID string, deadline time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	self, _, err := r.Pair(connID)
	if err != nil {
		return err
	}
	self.AddPending(deadline)
	return nil
}
