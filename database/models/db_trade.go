package database

import (
	"time"

	"gorm.io/gorm"
)

// Trade is a closed (or partially closed) position
type Trade struct {
	gorm.Model
	Symbol      string `gorm:"index;size:32"`
	Direction   string `gorm:"size:8"`
	OpenedAt    time.Time
	ClosedAt    time.Time `gorm:"index"`
	EntryPrice  float64
	ExitPrice   float64
	Size        float64
	Entries     int
	Profit      float64
	Gain        float64
	CloseReason string `gorm:"size:16"`
}
