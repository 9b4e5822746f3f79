package player

import (
	"math/rand"
	"testing"
	"time"
)

func TestNew_InitialQueue(t *testing.T) {
	p := New("conn1", "alice", 7)
	pieces := p.Pieces()
	if len(pieces) != LookaheadSize {
		t.Fatalf("Expected %d pieces, got %d", LookaheadSize, len(pieces))
	}
	for _, d := range pieces {
		if !d.Valid() {
			t.Errorf("Drew an invalid piece %v", d)
		}
	}
	if p.GetID() != "conn1" {
		t.Errorf("Expected id conn1, got %s", p.GetID())
	}
}

func TestAdvance_ShiftsQueue(t *testing.T) {
	p := New("conn1", "alice", 99)
	before := p.Pieces()
	after := p.Advance()

	if len(after) != LookaheadSize {
		t.Fatalf("Expected %d pieces, got %d", LookaheadSize, len(after))
	}
	if after[0] != before[1] || after[1] != before[2] {
		t.Errorf("Expected the queue to shift by one: before %v, after %v", before, after)
	}

	// The returned slice is a copy.
	after[0].ID = 100
	if p.Pieces()[0].ID == 100 {
		t.Error("Mutating the returned queue changed the player")
	}
}

func TestFairness_IdenticalSequencesRegardlessOfTiming(t *testing.T) {
	seed := rand.Int63()
	a := New("a", "alice", seed)
	b := New("b", "bob", seed)

	var seqA, seqB = a.Pieces(), b.Pieces()
	for i := 0; i < 50; i++ {
		seqA = append(seqA, a.Advance()[LookaheadSize-1])
	}
	// b falls behind, then catches up in bursts.
	for i := 0; i < 50; i++ {
		seqB = append(seqB, b.Advance()[LookaheadSize-1])
		if i%7 == 0 {
			// Draws by the other player do not affect this one.
			a.Advance()
		}
	}

	for k := range seqB {
		if seqA[k] != seqB[k] {
			t.Fatalf("Piece %d differs: %v vs %v", k, seqA[k], seqB[k])
		}
	}
}

func TestPending_CancelAndExpire(t *testing.T) {
	p := New("conn1", "alice", 1)
	now := time.Now()

	if p.CancelPending() {
		t.Error("Expected nothing to cancel on an empty queue")
	}
	if p.PopExpired(now) {
		t.Error("Expected nothing to expire on an empty queue")
	}

	p.AddPending(now.Add(-time.Second))
	p.AddPending(now.Add(5 * time.Second))
	if p.PendingCount() != 2 {
		t.Fatalf("Expected 2 pending entries, got %d", p.PendingCount())
	}

	times := p.PendingTimes(now)
	if times[0] != -1000 || times[1] != 5000 {
		t.Errorf("Unexpected pending times %v", times)
	}

	if !p.PopExpired(now) {
		t.Error("Expected the overdue entry to expire")
	}
	if p.PopExpired(now) {
		t.Error("Expected the future entry to stay")
	}
	if !p.CancelPending() {
		t.Error("Expected the remaining entry to be cancellable")
	}
	if p.PendingCount() != 0 {
		t.Errorf("Expected an empty queue, got %d", p.PendingCount())
	}
}

func TestPending_ExpiresAtDeadline(t *testing.T) {
	p := New("conn1", "alice", 1)
	deadline := time.Now()
	p.AddPending(deadline)
	if !p.PopExpired(deadline) {
		t.Error("Expected an entry to expire exactly at its deadline")
	}
}

func TestPendingTimes_EmptyIsNotNil(t *testing.T) {
	p := New("conn1", "alice", 1)
	if times := p.PendingTimes(time.Now()); times == nil || len(times) != 0 {
		t.Errorf("Expected an empty non-nil slice, got %#v", times)
	}
}
