package strategies

import "github.com/luksonlj/takie-tam/models"

// Condition is one named entry of a direction checklist
type Condition struct {
	Reason string
	Units  int
	Check  func(s models.IndicatorSnapshot) bool
}

// BuyChecklist is evaluated in order, the reasons keep that order
func BuyChecklist() []Condition {
	return []Condition{
		{Reason: "Bullish trend detected", Units: 2, Check: func(s models.IndicatorSnapshot) bool {
			return s.MAShort > s.MAMedium && s.MAMedium > s.MALong
		}},
		{Reason: "OBV trending up", Units: 1, Check: func(s models.IndicatorSnapshot) bool {
			return s.OBVTrend == models.OBVTrendBullish
		}},
		{Reason: "High volume", Units: 1, Check: func(s models.IndicatorSnapshot) bool {
			return s.HighVolume
		}},
		{Reason: "Increasing volume", Units: 1, Check: func(s models.IndicatorSnapshot) bool {
			return s.IncreasingVolume
		}},
		{Reason: "Price above key MAs", Units: 1, Check: func(s models.IndicatorSnapshot) bool {
			return s.Close > s.MAShort && s.Close > s.MAMedium
		}},
		{Reason: "Price above long-term MA", Units: 1, Check: func(s models.IndicatorSnapshot) bool {
			return s.Close > s.MALong
		}},
	}
}

func SellChecklist() []Condition {
	return []Condition{
		{Reason: "Bearish trend detected", Units: 2, Check: func(s models.IndicatorSnapshot) bool {
			return s.MAShort < s.MAMedium && s.MAMedium < s.MALong
		}},
		{Reason: "OBV trending down", Units: 1, Check: func(s models.IndicatorSnapshot) bool {
			return s.OBVTrend == models.OBVTrendBearish
		}},
		{Reason: "Price below key MAs", Units: 1, Check: func(s models.IndicatorSnapshot) bool {
			return s.Close < s.MAShort && s.Close < s.MAMedium
		}},
		{Reason: "Price below long-term MA", Units: 1, Check: func(s models.IndicatorSnapshot) bool {
			return s.Close < s.MALong
		}},
		{Reason: "OBV divergence detected", Units: 1, Check: func(s models.IndicatorSnapshot) bool {
			return s.OBVDivergence
		}},
		{Reason: "High volume confirmation", Units: 1, Check: func(s models.IndicatorSnapshot) bool {
			return s.HighVolume
		}},
	}
}

// Evaluate sums the units of the satisfied conditions
func Evaluate(checklist []Condition, snapshot models.IndicatorSnapshot) (units int, reasons []string) {
	for _, condition := range checklist {
		if condition.Check(snapshot) {
			units += condition.Units
			reasons = append(reasons, condition.Reason)
		}
	}
	return units, reasons
}
