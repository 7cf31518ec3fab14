package models

type MainTrend string

const (
	MainTrendStrongBullish MainTrend = "strong_bullish"
	MainTrendBullish       MainTrend = "bullish"
	MainTrendNeutral       MainTrend = "neutral"
	MainTrendBearish       MainTrend = "bearish"
	MainTrendStrongBearish MainTrend = "strong_bearish"
)

// IsBullish returns true for bullish and strong_bullish
func (t MainTrend) IsBullish() bool {
	return t == MainTrendBullish || t == MainTrendStrongBullish
}

// IsBearish returns true for bearish and strong_bearish
func (t MainTrend) IsBearish() bool {
	return t == MainTrendBearish || t == MainTrendStrongBearish
}
