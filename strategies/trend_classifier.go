package strategies

import "github.com/luksonlj/takie-tam/models"

const (
	strongTrendSpread = 2.0
	trendSpread       = 0.5
)

// MainTrendSpread returns the distance between the medium and the long moving
// average, in percent of the long one
func MainTrendSpread(snapshot models.IndicatorSnapshot) float64 {
	if snapshot.MALong == 0 {
		return 0
	}
	return (snapshot.MAMedium - snapshot.MALong) * 100 / snapshot.MALong
}

// ClassifyMainTrend labels the snapshot by its medium/long moving average spread.
// Boundaries are exclusive: exactly 2% is bullish, exactly 0.5% is neutral.
func ClassifyMainTrend(snapshot models.IndicatorSnapshot) models.MainTrend {
	spread := MainTrendSpread(snapshot)
	switch {
	case spread > strongTrendSpread:
		return models.MainTrendStrongBullish
	case spread > trendSpread:
		return models.MainTrendBullish
	case spread < -strongTrendSpread:
		return models.MainTrendStrongBearish
	case spread < -trendSpread:
		return models.MainTrendBearish
	}
	return models.MainTrendNeutral
}
