package persistence

import (
	"context"
	"sync"

	"github.com/wfunc/blockduel/models"
)

// Memory keeps match history in process memory. It is the default when no
// database is configured.
type Memory struct {
	mutex   sync.RWMutex
	matches []models.MatchRecord
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SaveMatch(_ context.Context, record *models.MatchRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.matches = append(m.matches, *record)
	return nil
}

func (m *Memory) PlayerStats(_ context.Context, userName string) (*models.PlayerStats, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stats := &models.PlayerStats{UserName: userName}
	for _, rec := range m.matches {
		switch userName {
		case rec.Winner:
			stats.Wins++
		case rec.Loser:
			stats.Losses++
		default:
			continue
		}
		stats.TotalGames++
	}
	if stats.TotalGames == 0 {
		return nil, ErrRecordNotFound
	}
	return stats, nil
}

// RecentMatches returns up to limit matches, newest first.
func (m *Memory) RecentMatches(_ context.Context, limit int) ([]models.MatchRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make([]models.MatchRecord, 0, limit)
	for i := len(m.matches) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.matches[i])
	}
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
