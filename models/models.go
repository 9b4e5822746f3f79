// models/models.go
package models

import (
	"time"
)

// MatchRecord 对局记录
type MatchRecord struct {
	RoomID     string    `json:"roomId"`
	Winner     string    `json:"winner"`
	Loser      string    `json:"loser"`
	WinnerConn string    `json:"winnerConn"`
	LoserConn  string    `json:"loserConn"`
	StartedAt  time.Time `json:"startedAt"`
	EndedAt    time.Time `json:"endedAt"`
}

// Duration is how long the match ran.
func (m *MatchRecord) Duration() time.Duration {
	return m.EndedAt.Sub(m.StartedAt)
}

// PlayerStats 玩家统计信息, keyed by display name.
type PlayerStats struct {
	UserName   string `json:"userName"`
	TotalGames int    `json:"totalGames"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
}
