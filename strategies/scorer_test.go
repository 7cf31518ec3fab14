package strategies_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luksonlj/takie-tam/models"
	"github.com/luksonlj/takie-tam/strategies"
)

func newScorer() *strategies.Scorer {
	return strategies.NewScorer(strategies.DefaultScorerConfig())
}

func TestScoreBullishStack(t *testing.T) {
	snapshot := models.IndicatorSnapshot{
		Close:            106,
		MAShort:          105,
		MAMedium:         102,
		MALong:           100,
		OBVTrend:         models.OBVTrendBullish,
		VolumeRatio:      2.0,
		HighVolume:       true,
		IncreasingVolume: true,
	}
	trend := strategies.ClassifyMainTrend(snapshot)
	assert.Equal(t, models.MainTrendBullish, trend)

	signal := newScorer().Score(snapshot, trend)
	assert.Equal(t, models.SignalBuy, signal.Direction)
	assert.GreaterOrEqual(t, signal.ConditionCount, 5)
	assert.GreaterOrEqual(t, signal.Confidence, 75)
	assert.Equal(t, 7, signal.ConditionCount)
	assert.Equal(t, 100, signal.Confidence)
	assert.Equal(t, []string{
		"Bullish trend detected",
		"OBV trending up",
		"High volume",
		"Increasing volume",
		"Price above key MAs",
		"Price above long-term MA",
	}, signal.Reasons)
	assert.Equal(t, 106.0, signal.Price)
}

func TestScoreBearishStack(t *testing.T) {
	snapshot := models.IndicatorSnapshot{
		Close:      94,
		MAShort:    95,
		MAMedium:   98,
		MALong:     100,
		OBVTrend:   models.OBVTrendBearish,
		HighVolume: true,
	}
	trend := strategies.ClassifyMainTrend(snapshot)
	assert.Equal(t, models.MainTrendBearish, trend)

	signal := newScorer().Score(snapshot, trend)
	assert.Equal(t, models.SignalSell, signal.Direction)
	assert.Equal(t, 6, signal.ConditionCount)
	assert.Equal(t, 90, signal.Confidence)
	assert.Equal(t, []string{
		"Bearish trend detected",
		"OBV trending down",
		"Price below key MAs",
		"Price below long-term MA",
		"High volume confirmation",
	}, signal.Reasons)
	// high volume counts on both sides
	assert.Equal(t, 1, signal.BuyUnits)
}

func TestProtectiveGate(t *testing.T) {
	snapshot := models.IndicatorSnapshot{
		Close:         80,
		MAShort:       90,
		MAMedium:      110,
		MALong:        100,
		OBVTrend:      models.OBVTrendBearish,
		OBVDivergence: true,
		HighVolume:    true,
	}
	ungated := newScorer().Score(snapshot, models.MainTrendNeutral)
	assert.Equal(t, models.SignalSell, ungated.Direction)

	trend := strategies.ClassifyMainTrend(snapshot)
	assert.Equal(t, models.MainTrendStrongBullish, trend)
	gated := newScorer().Score(snapshot, trend)
	assert.Equal(t, models.SignalHold, gated.Direction)
	assert.Equal(t, 0, gated.SellUnits)
	assert.Contains(t, gated.Reasons, strategies.GateReason)
}

func TestProtectiveGateNeverSells(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	scorer := newScorer()
	obvTrends := []models.OBVTrend{models.OBVTrendBullish, models.OBVTrendBearish, models.OBVTrendNeutral}
	for i := 0; i < 2000; i++ {
		snapshot := models.IndicatorSnapshot{
			Close:            80 + r.Float64()*40,
			MAShort:          80 + r.Float64()*40,
			MAMedium:         80 + r.Float64()*40,
			MALong:           80 + r.Float64()*40,
			OBVTrend:         obvTrends[r.Intn(len(obvTrends))],
			OBVDivergence:    r.Intn(2) == 0,
			HighVolume:       r.Intn(2) == 0,
			IncreasingVolume: r.Intn(2) == 0,
		}
		for _, trend := range []models.MainTrend{models.MainTrendBullish, models.MainTrendStrongBullish} {
			assert.NotEqual(t, models.SignalSell, scorer.Score(snapshot, trend).Direction)
		}
	}
}

func TestNoGateAgainstBearishTrend(t *testing.T) {
	snapshot := models.IndicatorSnapshot{
		Close:            106,
		MAShort:          105,
		MAMedium:         102,
		MALong:           100,
		OBVTrend:         models.OBVTrendBullish,
		HighVolume:       true,
		IncreasingVolume: true,
	}
	signal := newScorer().Score(snapshot, models.MainTrendStrongBearish)
	assert.Equal(t, models.SignalBuy, signal.Direction)
}

func TestScoreBelowMinimumHolds(t *testing.T) {
	snapshot := models.IndicatorSnapshot{
		Close:    101,
		MAShort:  100,
		MAMedium: 100,
		MALong:   100,
		OBVTrend: models.OBVTrendBullish,
	}
	signal := newScorer().Score(snapshot, models.MainTrendNeutral)
	assert.Equal(t, models.SignalHold, signal.Direction)
	assert.Equal(t, 3, signal.BuyUnits)
	assert.Equal(t, 45, signal.Confidence)
	assert.Equal(t, []string{"Waiting for stronger confirmation (BUY:3/4, SELL:0/4)"}, signal.Reasons)
}

func TestScoreTieHolds(t *testing.T) {
	snapshot := models.IndicatorSnapshot{
		Close:         101,
		MAShort:       99,
		MAMedium:      100,
		MALong:        100.2,
		OBVTrend:      models.OBVTrendBullish,
		OBVDivergence: true,
		HighVolume:    true,
	}
	trend := strategies.ClassifyMainTrend(snapshot)
	assert.Equal(t, models.MainTrendNeutral, trend)

	signal := newScorer().Score(snapshot, trend)
	assert.Equal(t, 4, signal.BuyUnits)
	assert.Equal(t, 4, signal.SellUnits)
	assert.Equal(t, models.SignalHold, signal.Direction)
	assert.Equal(t, 60, signal.Confidence)

	snapshot.IncreasingVolume = true
	signal = newScorer().Score(snapshot, trend)
	assert.Equal(t, models.SignalBuy, signal.Direction)
	assert.Equal(t, 75, signal.Confidence)
}

func TestConfidenceFloor(t *testing.T) {
	scorer := strategies.NewScorer(strategies.ScorerConfig{ConditionWeight: 10, MinConditions: 4, MinConfidence: 70})
	snapshot := models.IndicatorSnapshot{
		Close:            106,
		MAShort:          105,
		MAMedium:         102,
		MALong:           100,
		OBVTrend:         models.OBVTrendBullish,
		IncreasingVolume: true,
	}
	// 6 units x 10 = 60, enough conditions but under the floor
	signal := scorer.Score(snapshot, models.MainTrendBullish)
	assert.Equal(t, models.SignalHold, signal.Direction)
	assert.Equal(t, 6, signal.BuyUnits)
	assert.Equal(t, 60, signal.Confidence)
	assert.Equal(t, 100, scorer.Confidence(12))
}
