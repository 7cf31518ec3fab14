package strategies

import (
	"fmt"

	"github.com/luksonlj/takie-tam/models"
)

const GateReason = "Main trend is bullish - avoiding SHORT"

type ScorerConfig struct {
	ConditionWeight int
	MinConditions   int
	MinConfidence   int
}

func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{ConditionWeight: 15, MinConditions: 4, MinConfidence: 60}
}

// Scorer turns a snapshot into a BUY, SELL or HOLD signal. It has no state.
type Scorer struct {
	cfg  ScorerConfig
	buy  []Condition
	sell []Condition
}

func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg, buy: BuyChecklist(), sell: SellChecklist()}
}

// Confidence returns min(units x weight, 100)
func (s *Scorer) Confidence(units int) int {
	confidence := units * s.cfg.ConditionWeight
	if confidence > 100 {
		return 100
	}
	return confidence
}

func (s *Scorer) qualifies(units int) bool {
	return units >= s.cfg.MinConditions && s.Confidence(units) >= s.cfg.MinConfidence
}

func (s *Scorer) Score(snapshot models.IndicatorSnapshot, trend models.MainTrend) models.Signal {
	buyUnits, buyReasons := Evaluate(s.buy, snapshot)
	sellUnits, sellReasons := Evaluate(s.sell, snapshot)

	gated := trend.IsBullish()
	if gated {
		sellUnits, sellReasons = 0, nil
	}

	signal := models.Signal{
		Time:      snapshot.Time,
		Price:     snapshot.Close,
		MainTrend: trend,
		BuyUnits:  buyUnits,
		SellUnits: sellUnits,
	}

	buyConfidence, sellConfidence := s.Confidence(buyUnits), s.Confidence(sellUnits)
	buyOK, sellOK := s.qualifies(buyUnits), s.qualifies(sellUnits)
	if buyOK && sellOK {
		switch {
		case buyConfidence > sellConfidence:
			sellOK = false
		case sellConfidence > buyConfidence:
			buyOK = false
		default:
			buyOK, sellOK = false, false
		}
	}

	switch {
	case buyOK:
		signal.Direction = models.SignalBuy
		signal.Confidence = buyConfidence
		signal.ConditionCount = buyUnits
		signal.Reasons = buyReasons
	case sellOK:
		signal.Direction = models.SignalSell
		signal.Confidence = sellConfidence
		signal.ConditionCount = sellUnits
		signal.Reasons = sellReasons
	default:
		signal.Direction = models.SignalHold
		signal.Confidence = max(buyConfidence, sellConfidence)
		signal.ConditionCount = max(buyUnits, sellUnits)
		signal.Reasons = []string{fmt.Sprintf("Waiting for stronger confirmation (BUY:%d/%d, SELL:%d/%d)",
			buyUnits, s.cfg.MinConditions, sellUnits, s.cfg.MinConditions)}
		if gated {
			signal.Reasons = append(signal.Reasons, GateReason)
		}
	}
	return signal
}
