package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wfunc/blockduel/models"
)

func TestMemory_SaveAndStats(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()
	start := time.Now()

	matches := []models.MatchRecord{
		{RoomID: "r1", Winner: "alice", Loser: "bob", StartedAt: start, EndedAt: start.Add(time.Minute)},
		{RoomID: "r2", Winner: "bob", Loser: "alice", StartedAt: start, EndedAt: start.Add(2 * time.Minute)},
		{RoomID: "r3", Winner: "alice", Loser: "carol", StartedAt: start, EndedAt: start.Add(3 * time.Minute)},
	}
	for i := range matches {
		if err := db.SaveMatch(ctx, &matches[i]); err != nil {
			t.Fatalf("SaveMatch failed: %v", err)
		}
	}

	stats, err := db.PlayerStats(ctx, "alice")
	if err != nil {
		t.Fatalf("PlayerStats failed: %v", err)
	}
	if stats.TotalGames != 3 || stats.Wins != 2 || stats.Losses != 1 {
		t.Errorf("Unexpected stats for alice: %+v", stats)
	}

	if _, err := db.PlayerStats(ctx, "dave"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestMemory_RecentMatches(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()
	for _, id := range []string{"r1", "r2", "r3"} {
		db.SaveMatch(ctx, &models.MatchRecord{RoomID: id, Winner: "a", Loser: "b"})
	}

	recent, err := db.RecentMatches(ctx, 2)
	if err != nil {
		t.Fatalf("RecentMatches failed: %v", err)
	}
	if len(recent) != 2 || recent[0].RoomID != "r3" || recent[1].RoomID != "r2" {
		t.Errorf("Expected r3, r2 newest first, got %+v", recent)
	}
}
