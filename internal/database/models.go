// Package database хранит историю лечения селекторов и визуальных проверок в PostgreSQL.
// Использует GORM ORM с prepared statements.
package database

import (
	"time"

	"github.com/google/uuid"
)

// HealingEvent описывает одно действие через Healer.
// Strategy: original, snapshot, live, suggester, none.
type HealingEvent struct {
	ID               uint      `gorm:"primaryKey"`
	RunID            uuid.UUID `gorm:"type:uuid;index;not null"`
	Action           string    `gorm:"type:varchar(16);not null"`
	OriginalSelector string    `gorm:"type:text;not null"`
	HealedSelector   string    `gorm:"type:text"`
	Hint             string    `gorm:"type:text"`
	Strategy         string    `gorm:"type:varchar(32);not null"`
	SnapshotPath     string    `gorm:"type:text"`
	Healed           bool      `gorm:"not null;default:false"`
	Error            string    `gorm:"type:text"`
	DurationMs       int64
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

// VisualResult хранит итог одной визуальной проверки элемента или страницы.
type VisualResult struct {
	ID              uint      `gorm:"primaryKey"`
	RunID           uuid.UUID `gorm:"type:uuid;index;not null"`
	TestID          string    `gorm:"type:varchar(128);index;not null"`
	Selector        string    `gorm:"type:text"`
	Strategy        string    `gorm:"type:varchar(32);not null"`
	Passed          bool      `gorm:"not null"`
	Tolerated       bool      `gorm:"not null;default:false"` // принято по допуску после всех стратегий
	BaselineCreated bool      `gorm:"not null;default:false"`
	DiffPixels      int
	DiffRatio       float64
	ArtifactDir     string `gorm:"type:text"`
	DurationMs      int64
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}
