package models

import "time"

type SignalDirection string

const (
	SignalBuy  SignalDirection = "BUY"
	SignalSell SignalDirection = "SELL"
	SignalHold SignalDirection = "HOLD"
)

// Signal is the scored verdict of one bar.
type Signal struct {
	Time           time.Time       `json:"time" yaml:"time"`
	Price          float64         `json:"price" yaml:"price"`
	Direction      SignalDirection `json:"direction" yaml:"direction"`
	Confidence     int             `json:"confidence" yaml:"confidence"`
	Reasons        []string        `json:"reasons" yaml:"reasons"`
	ConditionCount int             `json:"conditionCount" yaml:"conditionCount"`
	MainTrend      MainTrend       `json:"mainTrend" yaml:"mainTrend"`
	BuyUnits       int             `json:"buyUnits" yaml:"buyUnits"`
	SellUnits      int             `json:"sellUnits" yaml:"sellUnits"`
}

// IsActionable returns true if the signal is a BUY or a SELL
func (s Signal) IsActionable() bool {
	return s.Direction == SignalBuy || s.Direction == SignalSell
}

// Favors returns true if the signal points the same way as the passed-in direction
func (s Signal) Favors(direction PositionDirection) bool {
	return (s.Direction == SignalBuy && direction == PositionLong) ||
		(s.Direction == SignalSell && direction == PositionShort)
}

// Opposes returns true if the signal points against the passed-in direction
func (s Signal) Opposes(direction PositionDirection) bool {
	return (s.Direction == SignalSell && direction == PositionLong) ||
		(s.Direction == SignalBuy && direction == PositionShort)
}
