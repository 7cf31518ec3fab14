package indicators_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luksonlj/takie-tam/indicators"
	"github.com/luksonlj/takie-tam/models"
)

var start = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func candlesFromCloses(closes []float64, volumes []float64) []models.Candle {
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		volume := 100.0
		if volumes != nil {
			volume = volumes[i]
		}
		candles[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    volume,
		}
	}
	return candles
}

func risingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	return closes
}

func TestEngineMinWindow(t *testing.T) {
	engine := indicators.NewEngine(indicators.DefaultEngineConfig())
	assert.Equal(t, 60, engine.MinWindow())

	cfg := indicators.DefaultEngineConfig()
	cfg.ExtremesLookback = 80
	assert.Equal(t, 80, indicators.NewEngine(cfg).MinWindow())
}

func TestEngineInsufficientData(t *testing.T) {
	engine := indicators.NewEngine(indicators.DefaultEngineConfig())
	for _, n := range []int{0, 1, 30, 59} {
		_, err := engine.Compute(candlesFromCloses(risingCloses(n), nil))
		assert.ErrorIs(t, err, models.ErrInsufficientData, "window of %d", n)
	}
}

func TestEngineMovingAveragesAndOBV(t *testing.T) {
	engine := indicators.NewEngine(indicators.DefaultEngineConfig())
	snapshot, err := engine.Compute(candlesFromCloses(risingCloses(60), nil))
	require.NoError(t, err)

	assert.Equal(t, start.Add(59*time.Hour), snapshot.Time)
	assert.InDelta(t, 60.0, snapshot.Close, 1e-9)
	assert.InDelta(t, 55.5, snapshot.MAShort, 1e-6)
	assert.InDelta(t, 45.5, snapshot.MAMedium, 1e-6)
	assert.InDelta(t, 30.5, snapshot.MALong, 1e-6)

	require.Len(t, snapshot.OBV, 60)
	assert.Equal(t, 0.0, snapshot.OBV[0])
	assert.InDelta(t, 5900.0, snapshot.LastOBV(), 1e-6)
	assert.InDelta(t, 4950.0, snapshot.OBVMovingAverage, 1e-6)
	assert.Equal(t, models.OBVTrendBullish, snapshot.OBVTrend)
	assert.False(t, snapshot.OBVDivergence)

	assert.InDelta(t, 1.0, snapshot.VolumeRatio, 1e-9)
	assert.False(t, snapshot.HighVolume)
	assert.False(t, snapshot.IncreasingVolume)

	assert.InDelta(t, 61.0, snapshot.RecentHigh, 1e-9)
	assert.InDelta(t, 40.0, snapshot.RecentLow, 1e-9)
}

func TestEngineOBVIgnoresUnchangedCloses(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 50
	}
	closes[58] = 49
	engine := indicators.NewEngine(indicators.DefaultEngineConfig())
	snapshot, err := engine.Compute(candlesFromCloses(closes, nil))
	require.NoError(t, err)

	assert.InDelta(t, -100.0, snapshot.OBV[58], 1e-9)
	assert.InDelta(t, 0.0, snapshot.OBV[59], 1e-9)
	assert.InDelta(t, 0.0, snapshot.OBV[57], 1e-9)
}

func TestEngineVolumeAnomaly(t *testing.T) {
	volumes := make([]float64, 60)
	for i := range volumes {
		volumes[i] = 100
	}
	volumes[59] = 300

	engine := indicators.NewEngine(indicators.DefaultEngineConfig())
	snapshot, err := engine.Compute(candlesFromCloses(risingCloses(60), volumes))
	require.NoError(t, err)

	assert.InDelta(t, 110.0, snapshot.VolumeAverage, 1e-6)
	assert.InDelta(t, 300.0/110.0, snapshot.VolumeRatio, 1e-6)
	assert.True(t, snapshot.HighVolume)
	assert.True(t, snapshot.IncreasingVolume)
}

func TestEngineDivergence(t *testing.T) {
	closes := risingCloses(60)
	volumes := make([]float64, 60)
	for i := range volumes {
		volumes[i] = 10
	}
	// price ends higher than five bars ago while a heavy down bar drags OBV lower
	closes[55], closes[56], closes[57], closes[58], closes[59] = 100, 90, 101, 102, 103
	volumes[56] = 1000

	engine := indicators.NewEngine(indicators.DefaultEngineConfig())
	snapshot, err := engine.Compute(candlesFromCloses(closes, volumes))
	require.NoError(t, err)
	assert.True(t, snapshot.OBVDivergence)
}

func TestEngineRejectsUnorderedCandles(t *testing.T) {
	candles := candlesFromCloses(risingCloses(60), nil)
	candles[30].Timestamp = candles[29].Timestamp

	engine := indicators.NewEngine(indicators.DefaultEngineConfig())
	_, err := engine.Compute(candles)
	assert.ErrorIs(t, err, models.ErrInvalidCandles)
}

func TestNewTimeSeries(t *testing.T) {
	series, err := indicators.NewTimeSeries(candlesFromCloses(risingCloses(5), nil), time.Hour)
	require.NoError(t, err)
	assert.Len(t, series.Candles, 5)
	assert.Equal(t, 5.0, series.LastCandle().ClosePrice.Float())

	_, err = indicators.NewTimeSeries(candlesFromCloses(risingCloses(5), nil), 2*time.Hour)
	assert.ErrorIs(t, err, models.ErrInvalidCandles)
}
