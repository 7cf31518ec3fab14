package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/indicators"
	"github.com/luksonlj/takie-tam/interfaces"
	"github.com/luksonlj/takie-tam/models"
	"github.com/luksonlj/takie-tam/strategies"
)

type LiveSessionConfig struct {
	Symbol           string
	Timeframe        string
	BarPeriod        time.Duration
	PollInterval     time.Duration
	MaxFetchFailures int
}

// SessionStatus is what the dashboard and the metrics see after every poll
type SessionStatus struct {
	Symbol      string
	LastPoll    time.Time
	LastBar     time.Time
	Snapshot    models.IndicatorSnapshot
	Trend       models.MainTrend
	Signal      models.Signal
	Position    models.Position
	Trades      []models.Trade
	LastError   string
	Polls       int
	FetchErrors int
}

// SessionObserver gets notified after each pipeline pass
type SessionObserver interface {
	ObserveSignal(signal models.Signal)
	ObserveTrade(trade models.Trade)
	ObservePosition(position models.Position)
}

// LiveSession polls a candle source and runs every newly closed bar through the
// pipeline. Polls never overlap and a bar is processed at most once.
type LiveSession struct {
	cfg      LiveSessionConfig
	provider interfaces.CandleProvider
	engine   *indicators.Engine
	scorer   interfaces.SignalScorer
	manager  *PositionManager
	record   *TradingRecordService

	recorder  interfaces.TradeRecorder
	notifier  interfaces.Notifier
	observers []SessionObserver
	onUpdate  func(SessionStatus)

	position *models.Position
	lastBar  time.Time
	now      func() time.Time

	mu     sync.Mutex
	status SessionStatus
}

func NewLiveSession(cfg LiveSessionConfig, provider interfaces.CandleProvider, engine *indicators.Engine,
	scorer interfaces.SignalScorer, manager *PositionManager) *LiveSession {
	return &LiveSession{
		cfg:      cfg,
		provider: provider,
		engine:   engine,
		scorer:   scorer,
		manager:  manager,
		record:   NewTradingRecordService(cfg.Symbol, false),
		position: models.NewPosition(),
		now:      time.Now,
		status:   SessionStatus{Symbol: cfg.Symbol},
	}
}

func (s *LiveSession) WithRecorder(recorder interfaces.TradeRecorder) *LiveSession {
	s.recorder = recorder
	return s
}

func (s *LiveSession) WithNotifier(notifier interfaces.Notifier) *LiveSession {
	s.notifier = notifier
	return s
}

func (s *LiveSession) WithObserver(observer SessionObserver) *LiveSession {
	s.observers = append(s.observers, observer)
	return s
}

// OnUpdate registers a callback that receives the status after each poll
func (s *LiveSession) OnUpdate(fn func(SessionStatus)) *LiveSession {
	s.onUpdate = fn
	return s
}

// WithClock replaces the wall clock used to detect in-progress bars
func (s *LiveSession) WithClock(now func() time.Time) *LiveSession {
	s.now = now
	return s
}

func (s *LiveSession) Position() models.Position {
	return s.position.Clone()
}

func (s *LiveSession) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *LiveSession) Report() Report {
	return s.record.Report(s.position)
}

// Run polls until ctx is cancelled, which is a clean stop. It gives up after
// MaxFetchFailures consecutive DataUnavailable errors. Execution rejections are
// logged and retried on the next poll.
func (s *LiveSession) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	helpers.Logger.WithFields(log.Fields{
		"symbol":    s.cfg.Symbol,
		"timeframe": s.cfg.Timeframe,
		"interval":  s.cfg.PollInterval,
	}).Info("live session started")

	failures := 0
	for {
		err := s.Poll(ctx)
		switch {
		case err == nil:
			failures = 0
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return nil
		case errors.Is(err, models.ErrDataUnavailable):
			failures++
			helpers.Logger.WithError(err).WithField("failures", failures).Error("could not fetch candles")
			if failures >= s.cfg.MaxFetchFailures {
				return fmt.Errorf("giving up after %d consecutive fetch failures: %w", failures, err)
			}
		case errors.Is(err, models.ErrExecutionRejected):
			failures = 0
			helpers.Logger.WithError(err).Error("order rejected, position left unchanged")
			s.notify(fmt.Sprintf("%s order rejected: %s", s.cfg.Symbol, err))
		default:
			return err
		}

		select {
		case <-ctx.Done():
			helpers.Logger.WithField("symbol", s.cfg.Symbol).Info("live session stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Poll fetches the latest candles and processes the newest closed bar, if it has
// not been processed yet.
func (s *LiveSession) Poll(ctx context.Context) error {
	s.updateStatus(func(status *SessionStatus) {
		status.Polls++
		status.LastPoll = s.now()
	})

	window := s.engine.MinWindow()
	candles, err := s.provider.FetchCandles(ctx, s.cfg.Symbol, s.cfg.Timeframe, window+1)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.updateStatus(func(status *SessionStatus) {
			status.FetchErrors++
			status.LastError = err.Error()
		})
		if !errors.Is(err, models.ErrDataUnavailable) {
			err = fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
		}
		return err
	}

	closed := ClosedCandles(candles, s.cfg.BarPeriod, s.now())
	if len(closed) < window {
		helpers.Logger.WithFields(log.Fields{"symbol": s.cfg.Symbol, "candles": len(closed), "need": window}).
			Debug("not enough closed candles yet")
		return nil
	}
	latest := closed[len(closed)-1]
	if !latest.Timestamp.After(s.lastBar) {
		return nil
	}

	snapshot, err := s.engine.Compute(closed[len(closed)-window:])
	if errors.Is(err, models.ErrInsufficientData) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	trend := strategies.ClassifyMainTrend(snapshot)
	signal := s.scorer.Score(snapshot, trend)

	entry := helpers.Logger.WithFields(log.Fields{
		"symbol":     s.cfg.Symbol,
		"bar":        snapshot.Time.Format("2006-01-02 15:04"),
		"price":      snapshot.Close,
		"trend":      trend,
		"signal":     signal.Direction,
		"confidence": signal.Confidence,
		"position":   s.position.State(),
	})
	if signal.IsActionable() {
		entry.Info(strings.Join(signal.Reasons, ", "))
	} else {
		entry.Debug(strings.Join(signal.Reasons, ", "))
	}

	trades, stepErr := s.manager.Step(ctx, s.position, snapshot, trend, signal)
	s.record.AddTrades(trades...)
	for _, trade := range trades {
		s.journalTrade(trade)
		s.notify(fmt.Sprintf("%s %s closed (%s) entry %.2f exit %.2f pnl %.2f%%", s.cfg.Symbol, trade.Direction,
			trade.CloseReason, trade.EntryPrice, trade.ExitPrice, trade.PnlPercent))
	}
	for _, o := range s.observers {
		for _, trade := range trades {
			o.ObserveTrade(trade)
		}
		o.ObservePosition(s.position.Clone())
	}

	s.updateStatus(func(status *SessionStatus) {
		status.Snapshot = snapshot
		status.Trend = trend
		status.Signal = signal
		status.Position = s.position.Clone()
		status.Trades = s.record.Trades()
		status.LastError = ""
		if stepErr != nil {
			status.LastError = stepErr.Error()
		}
	})

	if stepErr != nil {
		// the bar stays unprocessed so the next poll retries the transition
		return stepErr
	}

	s.lastBar = latest.Timestamp
	s.record.AddSignal(signal, s.position.Direction)
	s.journalSignal(signal)
	for _, o := range s.observers {
		o.ObserveSignal(signal)
	}
	s.updateStatus(func(status *SessionStatus) {
		status.LastBar = latest.Timestamp
	})
	return nil
}

// ClosedCandles drops trailing candles whose period has not ended at now
func ClosedCandles(candles []models.Candle, period time.Duration, now time.Time) []models.Candle {
	end := len(candles)
	for end > 0 && candles[end-1].Timestamp.Add(period).After(now) {
		end--
	}
	return candles[:end]
}

func (s *LiveSession) updateStatus(fn func(status *SessionStatus)) {
	s.mu.Lock()
	fn(&s.status)
	status := s.status
	s.mu.Unlock()
	if s.onUpdate != nil {
		s.onUpdate(status)
	}
}

func (s *LiveSession) notify(message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(message); err != nil {
		helpers.Logger.WithError(err).Warn("could not send notification")
	}
}

func (s *LiveSession) journalSignal(signal models.Signal) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSignal(s.cfg.Symbol, signal); err != nil {
		helpers.Logger.WithError(err).Warn("could not journal signal")
	}
}

func (s *LiveSession) journalTrade(trade models.Trade) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordTrade(s.cfg.Symbol, trade); err != nil {
		helpers.Logger.WithError(err).Warn("could not journal trade")
	}
}
