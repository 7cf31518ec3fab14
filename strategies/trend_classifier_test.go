package strategies_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luksonlj/takie-tam/models"
	"github.com/luksonlj/takie-tam/strategies"
)

func TestClassifyMainTrendBoundaries(t *testing.T) {
	cases := []struct {
		maMedium float64
		expected models.MainTrend
	}{
		{102.5, models.MainTrendStrongBullish},
		{102, models.MainTrendBullish},
		{101, models.MainTrendBullish},
		{100.5, models.MainTrendNeutral},
		{100, models.MainTrendNeutral},
		{99.5, models.MainTrendNeutral},
		{99, models.MainTrendBearish},
		{98, models.MainTrendBearish},
		{97.5, models.MainTrendStrongBearish},
	}
	for _, c := range cases {
		snapshot := models.IndicatorSnapshot{MAMedium: c.maMedium, MALong: 100}
		assert.Equal(t, c.expected, strategies.ClassifyMainTrend(snapshot), "MA medium %v", c.maMedium)
	}
}

func TestMainTrendSpreadExactlyTwoPercent(t *testing.T) {
	snapshot := models.IndicatorSnapshot{MAShort: 105, MAMedium: 102, MALong: 100}
	assert.Equal(t, 2.0, strategies.MainTrendSpread(snapshot))
	assert.Equal(t, models.MainTrendBullish, strategies.ClassifyMainTrend(snapshot))
}

func TestClassifyMainTrendWithoutLongAverage(t *testing.T) {
	assert.Equal(t, models.MainTrendNeutral, strategies.ClassifyMainTrend(models.IndicatorSnapshot{MAMedium: 5}))
}
