// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/blockduel/models"
)

// PostgreSQL 数据库实现 (database/sql + lib/pq)
type PostgreSQL struct {
	db *sql.DB
}

// DSN builds a libpq connection string.
func DSN(host string, port int, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", DSN(host, port, user, password, dbname))
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS match_records (
            id SERIAL PRIMARY KEY,
            room_id VARCHAR(64) UNIQUE NOT NULL,
            winner VARCHAR(255) NOT NULL,
            loser VARCHAR(255) NOT NULL,
            winner_conn VARCHAR(64) NOT NULL,
            loser_conn VARCHAR(64) NOT NULL,
            started_at TIMESTAMPTZ NOT NULL,
            ended_at TIMESTAMPTZ NOT NULL,
            duration_sec INTEGER DEFAULT 0,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE INDEX IF NOT EXISTS idx_match_records_winner ON match_records(winner);
        CREATE INDEX IF NOT EXISTS idx_match_records_loser ON match_records(loser);
        CREATE INDEX IF NOT EXISTS idx_match_records_ended_at ON match_records(ended_at);
    `)
	return err
}

// SaveMatch 保存对局记录
func (p *PostgreSQL) SaveMatch(ctx context.Context, record *models.MatchRecord) error {
	query := `
        INSERT INTO match_records
            (room_id, winner, loser, winner_conn, loser_conn, started_at, ended_at, duration_sec)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (room_id) DO NOTHING
    `
	_, err := p.db.ExecContext(ctx, query,
		record.RoomID, record.Winner, record.Loser,
		record.WinnerConn, record.LoserConn,
		record.StartedAt, record.EndedAt, int(record.Duration().Seconds()))
	return err
}

// PlayerStats 玩家胜负统计
func (p *PostgreSQL) PlayerStats(ctx context.Context, userName string) (*models.PlayerStats, error) {
	query := `
        SELECT
            COUNT(*) FILTER (WHERE winner = $1),
            COUNT(*) FILTER (WHERE loser = $1)
        FROM match_records
        WHERE winner = $1 OR loser = $1
    `
	stats := &models.PlayerStats{UserName: userName}
	if err := p.db.QueryRowContext(ctx, query, userName).Scan(&stats.Wins, &stats.Losses); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	stats.TotalGames = stats.Wins + stats.Losses
	if stats.TotalGames == 0 {
		return nil, ErrRecordNotFound
	}
	return stats, nil
}

// RecentMatches 最近的对局, newest first.
func (p *PostgreSQL) RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT room_id, winner, loser, winner_conn, loser_conn, started_at, ended_at
        FROM match_records
        ORDER BY ended_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.MatchRecord, 0, limit)
	for rows.Next() {
		var m models.MatchRecord
		if err := rows.Scan(&m.RoomID, &m.Winner, &m.Loser, &m.WinnerConn, &m.LoserConn, &m.StartedAt, &m.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
