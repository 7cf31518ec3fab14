package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PairInfo holds the LOT_SIZE filter of a symbol
type PairInfo struct {
	Max       float64
	Min       float64
	StepSize  float64
	Precision int
}

func NewPairInfo(max float64, min float64, step float64) *PairInfo {
	precision := 0
	stepString := strconv.FormatFloat(step, 'f', -1, 64)
	if i := strings.IndexByte(stepString, '.'); i >= 0 {
		precision = len(stepString) - i - 1
	}
	return &PairInfo{
		Max:       max,
		Min:       min,
		StepSize:  step,
		Precision: precision,
	}
}

// RoundQuantity floors quantity to a multiple of the step size
func (p *PairInfo) RoundQuantity(quantity float64) float64 {
	if p.StepSize <= 0 {
		return quantity
	}
	steps := math.Floor(quantity/p.StepSize + 1e-9)
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(steps*p.StepSize, 'f', p.Precision, 64), 64)
	return rounded
}

// FormatQuantity rounds quantity and prints it with the step precision
func (p *PairInfo) FormatQuantity(quantity float64) string {
	return strconv.FormatFloat(p.RoundQuantity(quantity), 'f', p.Precision, 64)
}

// CheckQuantity fails if quantity is outside the filter bounds
func (p *PairInfo) CheckQuantity(quantity float64) error {
	if quantity <= 0 || quantity < p.Min {
		return fmt.Errorf("quantity %v below the minimum %v", quantity, p.Min)
	}
	if p.Max > 0 && quantity > p.Max {
		return fmt.Errorf("quantity %v above the maximum %v", quantity, p.Max)
	}
	return nil
}
