// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormMatchRecord is the table row for a finished match.
type GormMatchRecord struct {
	gorm.Model
	RoomID      string    `gorm:"uniqueIndex;not null"`
	Winner      string    `gorm:"index;not null"`
	Loser       string    `gorm:"index;not null"`
	WinnerConn  string    `gorm:"not null"`
	LoserConn   string    `gorm:"not null"`
	StartedAt   time.Time `gorm:"not null"`
	EndedAt     time.Time `gorm:"index;not null"`
	DurationSec int       `gorm:"default:0"`
}

func (GormMatchRecord) TableName() string {
	return "match_records"
}

// FromMatch converts a domain record into its table row.
func FromMatch(m *MatchRecord) *GormMatchRecord {
	return &GormMatchRecord{
		RoomID:      m.RoomID,
		Winner:      m.Winner,
		Loser:       m.Loser,
		WinnerConn:  m.WinnerConn,
		LoserConn:   m.LoserConn,
		StartedAt:   m.StartedAt,
		EndedAt:     m.EndedAt,
		DurationSec: int(m.Duration().Seconds()),
	}
}

// ToMatch converts a table row back into a domain record.
func (g *GormMatchRecord) ToMatch() MatchRecord {
	return MatchRecord{
		RoomID:     g.RoomID,
		Winner:     g.Winner,
		Loser:      g.Loser,
		WinnerConn: g.WinnerConn,
		LoserConn:  g.LoserConn,
		StartedAt:  g.StartedAt,
		EndedAt:    g.EndedAt,
	}
}
