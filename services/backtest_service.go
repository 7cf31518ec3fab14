package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/indicators"
	"github.com/luksonlj/takie-tam/interfaces"
	"github.com/luksonlj/takie-tam/models"
	"github.com/luksonlj/takie-tam/strategies"
)

// BacktestService replays pre-fetched candles through the indicator, scoring and
// position pipeline, one closed bar at a time.
type BacktestService struct {
	symbol   string
	engine   *indicators.Engine
	scorer   interfaces.SignalScorer
	manager  *PositionManager
	recorder interfaces.TradeRecorder
	keepLog  bool
}

func NewBacktestService(symbol string, engine *indicators.Engine, scorer interfaces.SignalScorer,
	manager *PositionManager) *BacktestService {
	return &BacktestService{symbol: symbol, engine: engine, scorer: scorer, manager: manager}
}

// WithRecorder journals every signal and trade of the run
func (b *BacktestService) WithRecorder(recorder interfaces.TradeRecorder) *BacktestService {
	b.recorder = recorder
	return b
}

// WithSignalLog keeps the reasons of every scored bar in the report
func (b *BacktestService) WithSignalLog(keep bool) *BacktestService {
	b.keepLog = keep
	return b
}

// Run slides a window of exactly MinWindow candles over the sequence. The
// position starts flat and whatever is open at the end is left open in the report.
func (b *BacktestService) Run(ctx context.Context, candles []models.Candle) (Report, error) {
	position := models.NewPosition()
	record := NewTradingRecordService(b.symbol, b.keepLog)

	if err := indicators.ValidateCandles(candles); err != nil {
		return Report{}, err
	}
	window := b.engine.MinWindow()
	if len(candles) < window {
		return record.Report(position), fmt.Errorf("%w: %d candles, the indicators need %d", models.ErrInsufficientData,
			len(candles), window)
	}

	helpers.Logger.WithFields(log.Fields{
		"symbol":  b.symbol,
		"candles": len(candles),
		"from":    candles[0].Timestamp.Format("2006-01-02 15:04"),
		"to":      candles[len(candles)-1].Timestamp.Format("2006-01-02 15:04"),
	}).Info("backtest started")

	for i := window; i <= len(candles); i++ {
		if err := ctx.Err(); err != nil {
			return record.Report(position), err
		}

		snapshot, err := b.engine.Compute(candles[i-window : i])
		if errors.Is(err, models.ErrInsufficientData) {
			continue
		}
		if err != nil {
			return record.Report(position), err
		}
		trend := strategies.ClassifyMainTrend(snapshot)
		signal := b.scorer.Score(snapshot, trend)
		record.AddSignal(signal, position.Direction)
		b.journalSignal(signal)

		trades, err := b.manager.Step(ctx, position, snapshot, trend, signal)
		record.AddTrades(trades...)
		b.journalTrades(trades)
		if err != nil {
			return record.Report(position), fmt.Errorf("bar %s: %w", snapshot.Time.Format("2006-01-02 15:04"), err)
		}
	}

	report := record.Report(position)
	helpers.Logger.WithFields(log.Fields{
		"symbol":  b.symbol,
		"trades":  report.TotalTrades,
		"winRate": fmt.Sprintf("%.2f%%", report.WinRate),
		"pnl":     fmt.Sprintf("%.2f%%", report.TotalPnlPercent),
	}).Info("backtest finished")
	return report, nil
}

func (b *BacktestService) journalSignal(signal models.Signal) {
	if b.recorder == nil {
		return
	}
	if err := b.recorder.RecordSignal(b.symbol, signal); err != nil {
		helpers.Logger.WithError(err).Warn("could not journal signal")
	}
}

func (b *BacktestService) journalTrades(trades []models.Trade) {
	if b.recorder == nil {
		return
	}
	for _, trade := range trades {
		if err := b.recorder.RecordTrade(b.symbol, trade); err != nil {
			helpers.Logger.WithError(err).Warn("could not journal trade")
		}
	}
}
