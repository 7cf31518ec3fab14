package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sdcoffey/techan"
	log "github.com/sirupsen/logrus"

	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/interfaces"
	"github.com/luksonlj/takie-tam/models"
)

type PositionManagerConfig struct {
	Symbol          string
	TradeSize       float64
	MaxPositionSize float64

	StopLossPercent   float64
	TakeProfitPercent float64

	TrailingStop              bool
	TrailingActivationPercent float64
	TrailingLockPercent       float64

	Pyramiding         bool
	MaxPyramidLevels   int
	PyramidStepPercent float64

	Contrarian      bool
	PullbackPercent float64
	BouncePercent   float64

	AllowShort bool
}

func DefaultPositionManagerConfig() PositionManagerConfig {
	return PositionManagerConfig{
		Symbol:                    "BTCUSDT",
		TradeSize:                 0.001,
		MaxPositionSize:           0.01,
		StopLossPercent:           3,
		TakeProfitPercent:         6,
		TrailingStop:              true,
		TrailingActivationPercent: 3,
		TrailingLockPercent:       1.5,
		Pyramiding:                true,
		MaxPyramidLevels:          3,
		PyramidStepPercent:        1.5,
		Contrarian:                true,
		PullbackPercent:           1,
		BouncePercent:             1,
		AllowShort:                true,
	}
}

// PositionManager applies the per-bar transition rules to a position it does not own.
type PositionManager struct {
	cfg      PositionManagerConfig
	executor interfaces.OrderExecutor
}

func NewPositionManager(cfg PositionManagerConfig, executor interfaces.OrderExecutor) *PositionManager {
	return &PositionManager{cfg: cfg, executor: executor}
}

func (pm *PositionManager) Config() PositionManagerConfig {
	return pm.cfg
}

// Step runs one bar through the rules, in priority order: risk exits, opposite
// signal, pyramiding, contrarian entry, fresh entry. A risk exit ends the bar.
// An opposite signal closes and then lets the entry rules run on the same bar.
//
// Every order is applied to the position only after it fills. On
// ErrExecutionRejected the position keeps the state of the last fill and the
// trades emitted before the rejection are still returned.
func (pm *PositionManager) Step(ctx context.Context, position *models.Position, snapshot models.IndicatorSnapshot,
	trend models.MainTrend, signal models.Signal) ([]models.Trade, error) {

	var trades []models.Trade
	price := snapshot.Close

	if position.IsOpen() {
		if reason := pm.ExitCheck(position, price); reason != models.CloseReasonNone {
			trade, err := pm.close(ctx, position, snapshot, reason)
			if err != nil {
				return trades, err
			}
			return append(trades, trade), nil
		}

		if !signal.Opposes(position.Direction) {
			if pm.shouldPyramid(position, price, signal) {
				return trades, pm.addEntry(ctx, position, snapshot)
			}
			return trades, nil
		}

		trade, err := pm.close(ctx, position, snapshot, models.CloseReasonSignal)
		if err != nil {
			return trades, err
		}
		trades = append(trades, trade)
		if position.IsOpen() {
			// partial fill, the remainder stays open
			return trades, nil
		}
	}

	if direction, reason := pm.contrarianEntry(snapshot, trend); direction != models.PositionNone {
		return trades, pm.open(ctx, position, direction, snapshot, reason)
	}

	switch {
	case signal.Direction == models.SignalBuy:
		return trades, pm.open(ctx, position, models.PositionLong, snapshot, "signal")
	case signal.Direction == models.SignalSell && pm.cfg.AllowShort:
		return trades, pm.open(ctx, position, models.PositionShort, snapshot, "signal")
	}
	return trades, nil
}

// ExitCheck returns the reason the position should be closed at price, if any.
// It ratchets the trailing stop as a side effect.
func (pm *PositionManager) ExitCheck(position *models.Position, price float64) models.CloseReason {
	if !position.IsOpen() {
		return models.CloseReasonNone
	}
	pnl := position.PnlPercent(price)
	if pnl <= -pm.cfg.StopLossPercent {
		return models.CloseReasonStopLoss
	}
	if pnl >= pm.cfg.TakeProfitPercent {
		return models.CloseReasonTakeProfit
	}
	if !pm.cfg.TrailingStop {
		return models.CloseReasonNone
	}
	if pnl > pm.cfg.TrailingActivationPercent {
		if position.RaiseTrailingStop(position.TrailingStopCandidate(pm.cfg.TrailingLockPercent)) {
			helpers.Logger.WithFields(log.Fields{
				"symbol": pm.cfg.Symbol,
				"stop":   *position.TrailingStopPrice,
				"pnl":    fmt.Sprintf("%.2f%%", pnl),
			}).Debug("trailing stop raised")
		}
	}
	if position.TrailingStopHit(price) {
		return models.CloseReasonTrailingStop
	}
	return models.CloseReasonNone
}

// TakeProfitPrice returns the price at which the take-profit fires
func (pm *PositionManager) TakeProfitPrice(position *models.Position) float64 {
	if position.IsShort() {
		return position.AverageEntryPrice * (1 - pm.cfg.TakeProfitPercent/100)
	}
	return position.AverageEntryPrice * (1 + pm.cfg.TakeProfitPercent/100)
}

// StopLossPrice returns the price at which the stop-loss fires
func (pm *PositionManager) StopLossPrice(position *models.Position) float64 {
	if position.IsShort() {
		return position.AverageEntryPrice * (1 + pm.cfg.StopLossPercent/100)
	}
	return position.AverageEntryPrice * (1 - pm.cfg.StopLossPercent/100)
}

func (pm *PositionManager) shouldPyramid(position *models.Position, price float64, signal models.Signal) bool {
	if !pm.cfg.Pyramiding || position.PyramidLevel >= pm.cfg.MaxPyramidLevels {
		return false
	}
	if !pm.withinCap(position.TotalSize + pm.cfg.TradeSize) {
		return false
	}
	move := position.FavorableMove(price)
	// a favoring signal only adds while the last entry is in profit
	if signal.Favors(position.Direction) && move > 0 {
		return true
	}
	return move >= pm.cfg.PyramidStepPercent
}

// withinCap reports whether size stays inside MaxPositionSize. A zero cap means no cap.
func (pm *PositionManager) withinCap(size float64) bool {
	if pm.cfg.MaxPositionSize <= 0 {
		return true
	}
	return size <= pm.cfg.MaxPositionSize*(1+1e-9)
}

// entrySize is the size of a fresh entry, never above the position cap
func (pm *PositionManager) entrySize() float64 {
	if pm.cfg.MaxPositionSize > 0 && pm.cfg.TradeSize > pm.cfg.MaxPositionSize {
		return pm.cfg.MaxPositionSize
	}
	return pm.cfg.TradeSize
}

// contrarianEntry opens with the main trend after a pullback (or bounce) from the
// recent extreme while OBV still confirms the trend.
func (pm *PositionManager) contrarianEntry(snapshot models.IndicatorSnapshot, trend models.MainTrend) (models.PositionDirection, string) {
	if !pm.cfg.Contrarian {
		return models.PositionNone, ""
	}
	price := snapshot.Close
	if trend.IsBullish() && snapshot.OBVTrend == models.OBVTrendBullish && snapshot.RecentHigh > 0 {
		pullback := (snapshot.RecentHigh - price) * 100 / snapshot.RecentHigh
		if pullback >= pm.cfg.PullbackPercent {
			return models.PositionLong, fmt.Sprintf("contrarian pullback %.2f%%", pullback)
		}
	}
	if pm.cfg.AllowShort && trend.IsBearish() && snapshot.OBVTrend == models.OBVTrendBearish && snapshot.RecentLow > 0 {
		bounce := (price - snapshot.RecentLow) * 100 / snapshot.RecentLow
		if bounce >= pm.cfg.BouncePercent {
			return models.PositionShort, fmt.Sprintf("contrarian bounce %.2f%%", bounce)
		}
	}
	return models.PositionNone, ""
}

func (pm *PositionManager) open(ctx context.Context, position *models.Position, direction models.PositionDirection,
	snapshot models.IndicatorSnapshot, reason string) error {

	side := techan.BUY
	if direction == models.PositionShort {
		side = techan.SELL
	}
	result, err := pm.placeOrder(ctx, side, pm.entrySize(), snapshot.Close)
	if err != nil {
		return fmt.Errorf("opening %s: %w", direction, err)
	}
	entry := models.Entry{Price: result.FilledPrice, Size: result.FilledSize, Time: snapshot.Time}
	if err := position.Open(direction, entry); err != nil {
		return err
	}

	helpers.Logger.WithFields(log.Fields{
		"symbol": pm.cfg.Symbol,
		"price":  entry.Price,
		"size":   entry.Size,
		"reason": reason,
		"time":   snapshot.Time.Format("2006-01-02 15:04"),
	}).Infof("%s position opened", direction)
	return nil
}

func (pm *PositionManager) addEntry(ctx context.Context, position *models.Position, snapshot models.IndicatorSnapshot) error {
	side := techan.BUY
	if position.IsShort() {
		side = techan.SELL
	}
	result, err := pm.placeOrder(ctx, side, pm.cfg.TradeSize, snapshot.Close)
	if err != nil {
		return fmt.Errorf("adding to %s: %w", position.Direction, err)
	}
	if err := position.AddEntry(models.Entry{Price: result.FilledPrice, Size: result.FilledSize, Time: snapshot.Time}); err != nil {
		return err
	}

	helpers.Logger.WithFields(log.Fields{
		"symbol":  pm.cfg.Symbol,
		"price":   result.FilledPrice,
		"average": position.AverageEntryPrice,
		"level":   position.PyramidLevel,
		"time":    snapshot.Time.Format("2006-01-02 15:04"),
	}).Infof("%s position pyramided", position.Direction)
	return nil
}

func (pm *PositionManager) close(ctx context.Context, position *models.Position, snapshot models.IndicatorSnapshot,
	reason models.CloseReason) (models.Trade, error) {

	side := techan.SELL
	if position.IsShort() {
		side = techan.BUY
	}
	result, err := pm.placeOrder(ctx, side, position.TotalSize, snapshot.Close)
	if err != nil {
		return models.Trade{}, fmt.Errorf("closing %s (%s): %w", position.Direction, reason, err)
	}

	size := result.FilledSize
	if size > position.TotalSize {
		size = position.TotalSize
	}
	trade := models.Trade{
		Direction:   position.Direction,
		OpenedAt:    position.OpenedAt(),
		ClosedAt:    snapshot.Time,
		EntryPrice:  position.AverageEntryPrice,
		ExitPrice:   result.FilledPrice,
		Size:        size,
		Entries:     len(position.Entries),
		PnlPercent:  position.PnlPercent(result.FilledPrice),
		PnlQuote:    position.PnlQuote(result.FilledPrice, size),
		CloseReason: reason,
	}
	position.Reduce(size)

	helpers.Logger.WithFields(log.Fields{
		"symbol": pm.cfg.Symbol,
		"entry":  trade.EntryPrice,
		"exit":   trade.ExitPrice,
		"pnl":    fmt.Sprintf("%.2f%%", trade.PnlPercent),
		"reason": trade.CloseReason,
		"time":   snapshot.Time.Format("2006-01-02 15:04"),
	}).Infof("%s position closed", trade.Direction)
	return trade, nil
}

func (pm *PositionManager) placeOrder(ctx context.Context, side techan.OrderSide, size float64, price float64) (models.OrderResult, error) {
	result, err := pm.executor.PlaceOrder(ctx, side, size, price)
	if err != nil {
		if errors.Is(err, models.ErrExecutionRejected) {
			return models.OrderResult{}, err
		}
		return models.OrderResult{}, fmt.Errorf("%w: %w", models.ErrExecutionRejected, err)
	}
	if !result.IsFilled() {
		return models.OrderResult{}, fmt.Errorf("%w: order %d not filled (status %s)", models.ErrExecutionRejected,
			result.OrderID, result.Status)
	}
	return result, nil
}
