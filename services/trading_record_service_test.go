package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luksonlj/takie-tam/models"
	"github.com/luksonlj/takie-tam/services"
)

func TestBuildReport(t *testing.T) {
	signals := []services.SignalRecord{
		{Direction: models.SignalBuy},
		{Direction: models.SignalHold},
		{Direction: models.SignalHold},
		{Direction: models.SignalSell},
	}
	trades := []models.Trade{
		{PnlPercent: 6, PnlQuote: 5, CloseReason: models.CloseReasonTakeProfit},
		{PnlPercent: -3, PnlQuote: -2.5, CloseReason: models.CloseReasonStopLoss},
		{PnlPercent: 2, PnlQuote: 1.5, CloseReason: models.CloseReasonSignal},
		{PnlPercent: -1, PnlQuote: -0.5, CloseReason: models.CloseReasonSignal},
	}

	report := services.BuildReport("BTCUSDT", signals, trades, *models.NewPosition())

	assert.Equal(t, 1, report.SignalCounts[models.SignalBuy])
	assert.Equal(t, 2, report.SignalCounts[models.SignalHold])
	assert.Equal(t, 1, report.SignalCounts[models.SignalSell])
	assert.Equal(t, 50.0, report.SignalPercents[models.SignalHold])
	assert.Equal(t, 4, report.TotalTrades)
	assert.Equal(t, 2, report.Wins)
	assert.Equal(t, 2, report.Losses)
	assert.Equal(t, 50.0, report.WinRate)
	assert.InDelta(t, 4.0, report.TotalPnlPercent, 1e-9)
	assert.InDelta(t, 3.5, report.TotalPnlQuote, 1e-9)
	assert.Equal(t, 4.0, report.AvgWin)
	assert.Equal(t, -2.0, report.AvgLoss)
	assert.Equal(t, 6.0, report.LargestWin)
	assert.Equal(t, -3.0, report.LargestLoss)
	assert.Equal(t, 2, report.CloseReasons[models.CloseReasonSignal])
	assert.Equal(t, models.PositionNone, report.FinalPosition.Direction)
}

func TestBuildReportWithoutTrades(t *testing.T) {
	report := services.BuildReport("BTCUSDT", nil, nil, *models.NewPosition())
	assert.Equal(t, 0, report.TotalTrades)
	assert.Equal(t, 0.0, report.WinRate)
	assert.Equal(t, 0.0, report.LargestWin)
	assert.Equal(t, 0, report.SignalCounts[models.SignalBuy])
}

func TestTradingRecordServiceReportIsACopy(t *testing.T) {
	record := services.NewTradingRecordService("BTCUSDT", false)
	record.AddSignal(models.Signal{Direction: models.SignalBuy, Reasons: []string{"x"}}, models.PositionNone)
	record.AddTrades(models.Trade{PnlPercent: 1})

	position := models.NewPosition()
	_ = position.Open(models.PositionLong, models.Entry{Price: 10, Size: 1})
	report := record.Report(position)
	position.Reset()

	assert.Nil(t, report.SignalLog)
	assert.Equal(t, 1, report.SignalCounts[models.SignalBuy])
	assert.Equal(t, models.PositionLong, report.FinalPosition.Direction)
	assert.Len(t, record.Trades(), 1)
}
