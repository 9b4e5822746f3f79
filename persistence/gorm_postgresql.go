// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/wfunc/blockduel/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,   // 慢SQL阈值
			LogLevel:      logger.Silent, // 日志级别
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(DSN(host, port, user, password, dbname)), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}
	return NewGorm(db)
}

// NewGorm wraps an already opened gorm handle and migrates the schema.
func NewGorm(db *gorm.DB) (*GormPostgreSQL, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.GormMatchRecord{}); err != nil {
		return nil, err
	}
	return &GormPostgreSQL{db: db}, nil
}

// SaveMatch 保存对局记录; a second save for the same room is ignored.
func (p *GormPostgreSQL) SaveMatch(ctx context.Context, record *models.MatchRecord) error {
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "room_id"}}, DoNothing: true}).
		Create(models.FromMatch(record)).Error
}

// PlayerStats 玩家胜负统计
func (p *GormPostgreSQL) PlayerStats(ctx context.Context, userName string) (*models.PlayerStats, error) {
	var wins, losses int64
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GormMatchRecord{}).Where("winner = ?", userName).Count(&wins).Error; err != nil {
			return err
		}
		return tx.Model(&models.GormMatchRecord{}).Where("loser = ?", userName).Count(&losses).Error
	})
	if err != nil {
		return nil, err
	}
	if wins+losses == 0 {
		return nil, ErrRecordNotFound
	}
	return &models.PlayerStats{
		UserName:   userName,
		TotalGames: int(wins + losses),
		Wins:       int(wins),
		Losses:     int(losses),
	}, nil
}

// RecentMatches 最近的对局, newest first.
func (p *GormPostgreSQL) RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error) {
	var rows []models.GormMatchRecord
	err := p.db.WithContext(ctx).Order("ended_at DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	out := make([]models.MatchRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].ToMatch()
	}
	return out, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
