package database

import (
	"time"

	"gorm.io/gorm"
)

// Candle archives the bars a backtest ran over, one row per symbol, timeframe and open time
type Candle struct {
	gorm.Model
	Symbol    string    `json:"symbol" gorm:"uniqueIndex:idx_symbol_timeframe_time;size:32"`
	Timeframe string    `json:"timeframe" gorm:"uniqueIndex:idx_symbol_timeframe_time;size:8"`
	OpenTime  time.Time `json:"openTime" gorm:"uniqueIndex:idx_symbol_timeframe_time"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}
