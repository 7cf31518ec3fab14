package ui_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luksonlj/takie-tam/models"
	"github.com/luksonlj/takie-tam/services"
	"github.com/luksonlj/takie-tam/ui"
)

func TestSignalTextBeforeFirstBar(t *testing.T) {
	assert.Equal(t, "Waiting for the first closed bar\n", ui.SignalText(models.Signal{}))
}

func TestSignalText(t *testing.T) {
	text := ui.SignalText(models.Signal{
		Direction:  models.SignalBuy,
		Confidence: 75,
		BuyUnits:   5,
		Reasons:    []string{"Bullish trend detected", "High volume"},
	})
	assert.Contains(t, text, "[BUY](fg:green) confidence 75%")
	assert.Contains(t, text, "- High volume\n")
}

func TestPositionTextFlat(t *testing.T) {
	assert.Equal(t, "State: FLAT\n", ui.PositionText(models.NewPosition().Clone(), 100, nil))
}

func TestPositionTextLong(t *testing.T) {
	position := models.NewPosition()
	require.NoError(t, position.Open(models.PositionLong, models.Entry{Price: 100, Size: 1}))
	manager := services.NewPositionManager(services.DefaultPositionManagerConfig(), nil)

	text := ui.PositionText(position.Clone(), 102, manager)
	assert.Contains(t, text, "State: LONG\n")
	assert.Contains(t, text, "[P&L: 2.00%](fg:green)")
	assert.Contains(t, text, "Pyramid: 0/3\n")
	assert.Contains(t, text, "SL: 97.00\n")
	assert.Contains(t, text, "TP: 106.00\n")
	assert.NotContains(t, text, "Trailing")
}

func TestTradeRowsKeepsLatest(t *testing.T) {
	var trades []models.Trade
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		trades = append(trades, models.Trade{
			Direction:   models.PositionLong,
			ClosedAt:    base.Add(time.Duration(i) * time.Hour),
			EntryPrice:  100,
			ExitPrice:   float64(95 + i%10),
			PnlPercent:  float64(i%10 - 5),
			CloseReason: models.CloseReasonSignal,
		})
	}
	rows := ui.TradeRows(trades)
	require.Len(t, rows, 50)
	assert.Contains(t, rows[49], "03-03 11:00")
	assert.Contains(t, rows[49], "(fg:green)")
	assert.Contains(t, rows[49], "signal")
}

func TestMarketTextShowsError(t *testing.T) {
	text := ui.MarketText(services.SessionStatus{Symbol: "BTCUSDT", LastError: "boom", Trend: models.MainTrendBullish})
	assert.Contains(t, text, "Trend: bullish")
	assert.Contains(t, text, "[boom](fg:red)")
}
