package interfaces

import (
	"github.com/luksonlj/takie-tam/models"
)

type (
	// SignalScorer reduces an indicator snapshot and its main trend to a signal.
	SignalScorer interface {
		Score(snapshot models.IndicatorSnapshot, trend models.MainTrend) models.Signal
	}
)
