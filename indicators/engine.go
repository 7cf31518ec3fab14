package indicators

import (
	"fmt"
	"time"

	"github.com/sdcoffey/techan"

	"github.com/luksonlj/takie-tam/models"
)

type EngineConfig struct {
	MAShort            int
	MAMedium           int
	MALong             int
	VolumeMAPeriod     int
	OBVMAPeriod        int
	DivergenceLookback int
	AnomalyThreshold   float64
	ExtremesLookback   int
	BarPeriod          time.Duration
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MAShort:            10,
		MAMedium:           30,
		MALong:             60,
		VolumeMAPeriod:     20,
		OBVMAPeriod:        20,
		DivergenceLookback: 5,
		AnomalyThreshold:   1.5,
		ExtremesLookback:   20,
		BarPeriod:          time.Hour,
	}
}

// Engine turns a candle window into an IndicatorSnapshot. It keeps no state
// between calls.
type Engine struct {
	cfg EngineConfig
}

func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{cfg: cfg}
}

// MinWindow returns the shortest window Compute accepts
func (e *Engine) MinWindow() int {
	window := e.cfg.MALong
	for _, n := range []int{e.cfg.MAShort, e.cfg.MAMedium, e.cfg.VolumeMAPeriod, e.cfg.OBVMAPeriod,
		e.cfg.DivergenceLookback + 1, e.cfg.ExtremesLookback} {
		if n > window {
			window = n
		}
	}
	return window
}

// Compute returns the snapshot of the last candle in window. A window shorter than
// MinWindow yields ErrInsufficientData.
func (e *Engine) Compute(window []models.Candle) (models.IndicatorSnapshot, error) {
	if need := e.MinWindow(); len(window) < need {
		return models.IndicatorSnapshot{}, fmt.Errorf("%w: got %d candles, need %d", models.ErrInsufficientData, len(window), need)
	}

	series, err := NewTimeSeries(window, e.cfg.BarPeriod)
	if err != nil {
		return models.IndicatorSnapshot{}, err
	}
	last := series.LastIndex()

	closePrice := techan.NewClosePriceIndicator(series)
	volume := techan.NewVolumeIndicator(series)
	obv := NewOnBalanceVolumeIndicator(series)

	snapshot := models.IndicatorSnapshot{
		Time:     window[len(window)-1].Timestamp,
		Close:    closePrice.Calculate(last).Float(),
		Volume:   volume.Calculate(last).Float(),
		MAShort:  techan.NewSimpleMovingAverage(closePrice, e.cfg.MAShort).Calculate(last).Float(),
		MAMedium: techan.NewSimpleMovingAverage(closePrice, e.cfg.MAMedium).Calculate(last).Float(),
		MALong:   techan.NewSimpleMovingAverage(closePrice, e.cfg.MALong).Calculate(last).Float(),
	}

	snapshot.OBV = make([]float64, len(series.Candles))
	for i := range series.Candles {
		snapshot.OBV[i] = obv.Calculate(i).Float()
	}
	snapshot.OBVMovingAverage = techan.NewSimpleMovingAverage(obv, e.cfg.OBVMAPeriod).Calculate(last).Float()
	switch lastOBV := snapshot.LastOBV(); {
	case lastOBV > snapshot.OBVMovingAverage:
		snapshot.OBVTrend = models.OBVTrendBullish
	case lastOBV < snapshot.OBVMovingAverage:
		snapshot.OBVTrend = models.OBVTrendBearish
	default:
		snapshot.OBVTrend = models.OBVTrendNeutral
	}
	snapshot.OBVDivergence = e.divergence(closePrice, snapshot.OBV, last)

	snapshot.VolumeAverage = techan.NewSimpleMovingAverage(volume, e.cfg.VolumeMAPeriod).Calculate(last).Float()
	if snapshot.VolumeAverage > 0 {
		snapshot.VolumeRatio = snapshot.Volume / snapshot.VolumeAverage
	}
	snapshot.HighVolume = snapshot.VolumeRatio > e.cfg.AnomalyThreshold
	snapshot.IncreasingVolume = snapshot.Volume > volume.Calculate(last-1).Float()

	snapshot.RecentHigh = techan.NewMaximumValueIndicator(techan.NewHighPriceIndicator(series), e.cfg.ExtremesLookback).Calculate(last).Float()
	snapshot.RecentLow = techan.NewMinimumValueIndicator(techan.NewLowPriceIndicator(series), e.cfg.ExtremesLookback).Calculate(last).Float()

	return snapshot, nil
}

// divergence compares the direction of price and OBV over the lookback. They
// disagree when one rises and the other does not.
func (e *Engine) divergence(closePrice techan.Indicator, obv []float64, last int) bool {
	from := last - (e.cfg.DivergenceLookback - 1)
	if from < 0 {
		return false
	}
	priceRising := closePrice.Calculate(last).GT(closePrice.Calculate(from))
	obvRising := obv[last]-obv[from] > 0
	return priceRising != obvRising
}
