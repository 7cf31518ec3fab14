package database

import (
	"time"

	"gorm.io/gorm"
)

type Signal struct {
	gorm.Model
	Symbol     string    `gorm:"index;size:32"`
	Time       time.Time `gorm:"index"`
	Price      float64
	Direction  string `gorm:"size:8"`
	Confidence int
	MainTrend  string `gorm:"size:16"`
	BuyUnits   int
	SellUnits  int
	Reasons    string
}
