// persistence/interface.go
package persistence

import (
	"context"
	"errors"

	"github.com/wfunc/blockduel/models"
)

// Database 数据库接口: history of finished matches.
type Database interface {
	SaveMatch(ctx context.Context, record *models.MatchRecord) error
	PlayerStats(ctx context.Context, userName string) (*models.PlayerStats, error)
	RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = errors.New("record not found")
)
