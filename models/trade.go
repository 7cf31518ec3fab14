package models

import "time"

// Trade is emitted when a position closes, fully or partially.
type Trade struct {
	Direction   PositionDirection `json:"direction" yaml:"direction"`
	OpenedAt    time.Time         `json:"openedAt" yaml:"openedAt"`
	ClosedAt    time.Time         `json:"closedAt" yaml:"closedAt"`
	EntryPrice  float64           `json:"entryPrice" yaml:"entryPrice"`
	ExitPrice   float64           `json:"exitPrice" yaml:"exitPrice"`
	Size        float64           `json:"size" yaml:"size"`
	Entries     int               `json:"entries" yaml:"entries"`
	PnlPercent  float64           `json:"pnlPercent" yaml:"pnlPercent"`
	PnlQuote    float64           `json:"pnlQuote" yaml:"pnlQuote"`
	CloseReason CloseReason       `json:"closeReason" yaml:"closeReason"`
}

// IsWin returns true if the trade closed with a positive profit percentage
func (t Trade) IsWin() bool {
	return t.PnlPercent > 0
}
