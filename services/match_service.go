// services/match_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wfunc/blockduel/logger"
	"github.com/wfunc/blockduel/models"
	"github.com/wfunc/blockduel/persistence"
)

const writeTimeout = 5 * time.Second

// MatchService 对局记录服务
type MatchService struct {
	db persistence.Database
}

func NewMatchService(db persistence.Database) *MatchService {
	return &MatchService{db: db}
}

// RecordMatch stores a finished match. Storage failures are returned so the
// caller can log them; they never affect the running game.
func (s *MatchService) RecordMatch(ctx context.Context, record *models.MatchRecord) error {
	if record.RoomID == "" {
		return fmt.Errorf("services: match record without room id")
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := s.db.SaveMatch(ctx, record); err != nil {
		return fmt.Errorf("services: save match %s: %w", record.RoomID, err)
	}
	logger.Log.Debugw("match recorded", "room", record.RoomID, "winner", record.Winner, "loser", record.Loser)
	return nil
}

// PlayerStats 获取玩家统计; a player with no history gets zero stats.
func (s *MatchService) PlayerStats(ctx context.Context, userName string) (*models.PlayerStats, error) {
	stats, err := s.db.PlayerStats(ctx, userName)
	if errors.Is(err, persistence.ErrRecordNotFound) {
		return &models.PlayerStats{UserName: userName}, nil
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// RecentMatches returns at most limit matches, newest first.
func (s *MatchService) RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.db.RecentMatches(ctx, limit)
}
