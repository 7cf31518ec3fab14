package models

import (
	"fmt"
	"time"
)

type PositionDirection string

const (
	PositionNone  PositionDirection = "NONE"
	PositionLong  PositionDirection = "LONG"
	PositionShort PositionDirection = "SHORT"
)

// Entry is one fill that built up the position
type Entry struct {
	Price float64   `json:"price" yaml:"price"`
	Size  float64   `json:"size" yaml:"size"`
	Time  time.Time `json:"time" yaml:"time"`
}

// Position is the net exposure on one instrument. The zero value is not usable,
// use NewPosition.
type Position struct {
	Direction         PositionDirection `json:"direction" yaml:"direction"`
	Entries           []Entry           `json:"entries" yaml:"entries"`
	AverageEntryPrice float64           `json:"averageEntryPrice" yaml:"averageEntryPrice"`
	TotalSize         float64           `json:"totalSize" yaml:"totalSize"`
	PyramidLevel      int               `json:"pyramidLevel" yaml:"pyramidLevel"`
	TrailingStopPrice *float64          `json:"trailingStopPrice,omitempty" yaml:"trailingStopPrice,omitempty"`
}

// NewPosition returns a flat position
func NewPosition() *Position {
	return &Position{Direction: PositionNone}
}

// IsOpen returns true if there is a long or short exposure
func (p *Position) IsOpen() bool {
	return p.Direction == PositionLong || p.Direction == PositionShort
}

// IsFlat returns true if there is no exposure
func (p *Position) IsFlat() bool {
	return !p.IsOpen()
}

// IsLong returns true if the position is long
func (p *Position) IsLong() bool {
	return p.Direction == PositionLong
}

// IsShort returns true if the position is short
func (p *Position) IsShort() bool {
	return p.Direction == PositionShort
}

// Open starts a new position with a base entry. It fails if a position is already open.
func (p *Position) Open(direction PositionDirection, entry Entry) error {
	if p.IsOpen() {
		return fmt.Errorf("cannot open %s: %s position already open", direction, p.Direction)
	}
	if direction != PositionLong && direction != PositionShort {
		return fmt.Errorf("cannot open position with direction %q", direction)
	}
	p.Direction = direction
	p.Entries = []Entry{entry}
	p.PyramidLevel = 0
	p.TrailingStopPrice = nil
	p.recalculate()
	return nil
}

// AddEntry scales into the open position and bumps the pyramid level
func (p *Position) AddEntry(entry Entry) error {
	if !p.IsOpen() {
		return fmt.Errorf("cannot add entry to a flat position")
	}
	p.Entries = append(p.Entries, entry)
	p.PyramidLevel++
	p.recalculate()
	return nil
}

// Reduce takes size off every entry proportionally. The average entry price is kept.
// Reducing by the total size, or more, resets the position.
func (p *Position) Reduce(size float64) {
	if !p.IsOpen() || size <= 0 {
		return
	}
	remaining := p.TotalSize - size
	if remaining <= p.TotalSize*1e-9 {
		p.Reset()
		return
	}
	ratio := remaining / p.TotalSize
	for i := range p.Entries {
		p.Entries[i].Size *= ratio
	}
	p.recalculate()
}

// Reset destroys the position and returns it to NONE
func (p *Position) Reset() {
	p.Direction = PositionNone
	p.Entries = nil
	p.AverageEntryPrice = 0
	p.TotalSize = 0
	p.PyramidLevel = 0
	p.TrailingStopPrice = nil
}

func (p *Position) recalculate() {
	var size, notional float64
	for _, e := range p.Entries {
		size += e.Size
		notional += e.Price * e.Size
	}
	p.TotalSize = size
	if size == 0 {
		p.AverageEntryPrice = 0
		return
	}
	p.AverageEntryPrice = notional / size
}

// LastEntry returns the most recent fill, or nil when flat
func (p *Position) LastEntry() *Entry {
	if len(p.Entries) == 0 {
		return nil
	}
	return &p.Entries[len(p.Entries)-1]
}

// OpenedAt returns the time of the base entry
func (p *Position) OpenedAt() time.Time {
	if len(p.Entries) == 0 {
		return time.Time{}
	}
	return p.Entries[0].Time
}

// PnlPercent returns the profit percentage of the position at the passed-in price,
// signed by direction
func (p *Position) PnlPercent(price float64) float64 {
	if !p.IsOpen() || p.AverageEntryPrice == 0 {
		return 0
	}
	if p.IsShort() {
		return (p.AverageEntryPrice - price) * 100 / p.AverageEntryPrice
	}
	return (price - p.AverageEntryPrice) * 100 / p.AverageEntryPrice
}

// PnlQuote returns the profit in quote currency of the passed-in size at price
func (p *Position) PnlQuote(price float64, size float64) float64 {
	if p.IsShort() {
		return (p.AverageEntryPrice - price) * size
	}
	return (price - p.AverageEntryPrice) * size
}

// FavorableMove returns how far price has moved in favor of the position since
// the most recent entry, in percent
func (p *Position) FavorableMove(price float64) float64 {
	last := p.LastEntry()
	if last == nil || last.Price == 0 {
		return 0
	}
	if p.IsShort() {
		return (last.Price - price) * 100 / last.Price
	}
	return (price - last.Price) * 100 / last.Price
}

// TrailingStopCandidate returns the stop that locks lockPercent of profit on the
// average entry price
func (p *Position) TrailingStopCandidate(lockPercent float64) float64 {
	if p.IsShort() {
		return p.AverageEntryPrice * (1 - lockPercent/100)
	}
	return p.AverageEntryPrice * (1 + lockPercent/100)
}

// RaiseTrailingStop moves the trailing stop to candidate when it is more favorable
// than the current one. It never loosens the stop.
func (p *Position) RaiseTrailingStop(candidate float64) bool {
	if !p.IsOpen() {
		return false
	}
	if p.TrailingStopPrice != nil {
		current := *p.TrailingStopPrice
		if p.IsLong() && candidate <= current {
			return false
		}
		if p.IsShort() && candidate >= current {
			return false
		}
	}
	p.TrailingStopPrice = &candidate
	return true
}

// TrailingStopHit returns true if price crossed back through the trailing stop
func (p *Position) TrailingStopHit(price float64) bool {
	if !p.IsOpen() || p.TrailingStopPrice == nil {
		return false
	}
	if p.IsShort() {
		return price >= *p.TrailingStopPrice
	}
	return price <= *p.TrailingStopPrice
}

// State returns the state machine label, e.g. FLAT, LONG or SHORT_PYRAMIDED(2)
func (p *Position) State() string {
	if !p.IsOpen() {
		return "FLAT"
	}
	if p.PyramidLevel > 0 {
		return fmt.Sprintf("%s_PYRAMIDED(%d)", p.Direction, p.PyramidLevel)
	}
	return string(p.Direction)
}

// Clone returns a deep copy
func (p *Position) Clone() Position {
	c := *p
	c.Entries = append([]Entry(nil), p.Entries...)
	if p.TrailingStopPrice != nil {
		stop := *p.TrailingStopPrice
		c.TrailingStopPrice = &stop
	}
	return c
}
