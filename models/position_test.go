package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luksonlj/takie-tam/models"
)

func TestPositionAverageEntryPriceEqualSizes(t *testing.T) {
	position := models.NewPosition()
	now := time.Now()
	require.NoError(t, position.Open(models.PositionLong, models.Entry{Price: 85000, Size: 0.001, Time: now}))
	require.NoError(t, position.AddEntry(models.Entry{Price: 86275, Size: 0.001, Time: now.Add(time.Hour)}))

	assert.InDelta(t, 85637.5, position.AverageEntryPrice, 1e-9)
	assert.InDelta(t, 0.002, position.TotalSize, 1e-12)
	assert.Equal(t, 1, position.PyramidLevel)
	assert.Equal(t, "LONG_PYRAMIDED(1)", position.State())
}

func TestPositionAverageEntryPriceUnequalSizes(t *testing.T) {
	position := models.NewPosition()
	require.NoError(t, position.Open(models.PositionShort, models.Entry{Price: 100, Size: 1}))
	require.NoError(t, position.AddEntry(models.Entry{Price: 90, Size: 3}))

	assert.InDelta(t, 92.5, position.AverageEntryPrice, 1e-9)
	assert.InDelta(t, 4.0, position.TotalSize, 1e-12)
}

func TestPositionTotalSizeMatchesEntries(t *testing.T) {
	position := models.NewPosition()
	require.NoError(t, position.Open(models.PositionLong, models.Entry{Price: 10, Size: 0.5}))
	for _, price := range []float64{11, 12, 13} {
		require.NoError(t, position.AddEntry(models.Entry{Price: price, Size: 0.25}))
	}

	total := 0.0
	for _, e := range position.Entries {
		total += e.Size
	}
	assert.InDelta(t, total, position.TotalSize, 1e-12)
}

func TestPositionOpenTwiceFails(t *testing.T) {
	position := models.NewPosition()
	require.NoError(t, position.Open(models.PositionLong, models.Entry{Price: 10, Size: 1}))
	assert.Error(t, position.Open(models.PositionShort, models.Entry{Price: 10, Size: 1}))
	assert.True(t, position.IsLong())
}

func TestPositionRoundTrip(t *testing.T) {
	position := models.NewPosition()
	require.NoError(t, position.Open(models.PositionShort, models.Entry{Price: 10, Size: 1}))
	position.Reduce(position.TotalSize)

	assert.Equal(t, models.PositionNone, position.Direction)
	assert.Equal(t, 0.0, position.TotalSize)
	assert.Equal(t, "FLAT", position.State())
}

func TestPositionPartialReduceKeepsAverage(t *testing.T) {
	position := models.NewPosition()
	require.NoError(t, position.Open(models.PositionLong, models.Entry{Price: 100, Size: 1}))
	require.NoError(t, position.AddEntry(models.Entry{Price: 110, Size: 1}))
	position.Reduce(0.5)

	assert.True(t, position.IsLong())
	assert.InDelta(t, 1.5, position.TotalSize, 1e-12)
	assert.InDelta(t, 105.0, position.AverageEntryPrice, 1e-9)
}

func TestPositionPnlPercent(t *testing.T) {
	long := models.NewPosition()
	require.NoError(t, long.Open(models.PositionLong, models.Entry{Price: 85000, Size: 1}))
	assert.Equal(t, -3.0, long.PnlPercent(82450))

	short := models.NewPosition()
	require.NoError(t, short.Open(models.PositionShort, models.Entry{Price: 85000, Size: 1}))
	assert.Equal(t, 3.0, short.PnlPercent(82450))
	assert.InDelta(t, 2550.0, short.PnlQuote(82450, 1), 1e-9)
}

func TestTrailingStopNeverLoosens(t *testing.T) {
	long := models.NewPosition()
	require.NoError(t, long.Open(models.PositionLong, models.Entry{Price: 100, Size: 1}))
	assert.True(t, long.RaiseTrailingStop(101.5))
	assert.False(t, long.RaiseTrailingStop(101))
	assert.Equal(t, 101.5, *long.TrailingStopPrice)
	assert.True(t, long.RaiseTrailingStop(102))
	assert.Equal(t, 102.0, *long.TrailingStopPrice)
	assert.True(t, long.TrailingStopHit(102))
	assert.False(t, long.TrailingStopHit(103))

	short := models.NewPosition()
	require.NoError(t, short.Open(models.PositionShort, models.Entry{Price: 100, Size: 1}))
	assert.True(t, short.RaiseTrailingStop(98.5))
	assert.False(t, short.RaiseTrailingStop(99))
	assert.Equal(t, 98.5, *short.TrailingStopPrice)
	assert.True(t, short.TrailingStopHit(98.6))
}

func TestSignalDirectionHelpers(t *testing.T) {
	buy := models.Signal{Direction: models.SignalBuy}
	assert.True(t, buy.Favors(models.PositionLong))
	assert.True(t, buy.Opposes(models.PositionShort))
	assert.False(t, models.Signal{Direction: models.SignalHold}.IsActionable())
}
