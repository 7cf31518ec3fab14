package models

import "time"

type OBVTrend string

const (
	OBVTrendBullish OBVTrend = "bullish"
	OBVTrendBearish OBVTrend = "bearish"
	OBVTrendNeutral OBVTrend = "neutral"
)

// IndicatorSnapshot is the indicator state of the most recent bar of a candle window.
// It is rebuilt from scratch on every bar.
type IndicatorSnapshot struct {
	Time   time.Time `json:"time" yaml:"time"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`

	MAShort  float64 `json:"maShort" yaml:"maShort"`
	MAMedium float64 `json:"maMedium" yaml:"maMedium"`
	MALong   float64 `json:"maLong" yaml:"maLong"`

	OBV              []float64 `json:"obv" yaml:"obv"`
	OBVMovingAverage float64   `json:"obvMovingAverage" yaml:"obvMovingAverage"`
	OBVTrend         OBVTrend  `json:"obvTrend" yaml:"obvTrend"`
	OBVDivergence    bool      `json:"obvDivergence" yaml:"obvDivergence"`

	VolumeAverage    float64 `json:"volumeAverage" yaml:"volumeAverage"`
	VolumeRatio      float64 `json:"volumeRatio" yaml:"volumeRatio"`
	HighVolume       bool    `json:"highVolume" yaml:"highVolume"`
	IncreasingVolume bool    `json:"increasingVolume" yaml:"increasingVolume"`

	// RecentHigh and RecentLow are the extremes of the contrarian lookback.
	RecentHigh float64 `json:"recentHigh" yaml:"recentHigh"`
	RecentLow  float64 `json:"recentLow" yaml:"recentLow"`
}

// LastOBV returns the OBV value of the most recent bar
func (s IndicatorSnapshot) LastOBV() float64 {
	if len(s.OBV) == 0 {
		return 0
	}
	return s.OBV[len(s.OBV)-1]
}
