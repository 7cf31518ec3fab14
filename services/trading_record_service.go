package services

import (
	"sync"
	"time"

	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/models"
)

// SignalRecord is one scored bar of the signal log
type SignalRecord struct {
	Time       time.Time                `json:"time" yaml:"time"`
	Price      float64                  `json:"price" yaml:"price"`
	Direction  models.SignalDirection   `json:"direction" yaml:"direction"`
	Confidence int                      `json:"confidence" yaml:"confidence"`
	MainTrend  models.MainTrend         `json:"mainTrend" yaml:"mainTrend"`
	Position   models.PositionDirection `json:"position" yaml:"position"`
	Reasons    []string                 `json:"reasons" yaml:"reasons"`
}

type Report struct {
	Symbol         string                             `json:"symbol" yaml:"symbol"`
	Bars           int                                `json:"bars" yaml:"bars"`
	SignalCounts   map[models.SignalDirection]int     `json:"signalCounts" yaml:"signalCounts"`
	SignalPercents map[models.SignalDirection]float64 `json:"signalPercents" yaml:"signalPercents"`
	SignalLog      []SignalRecord                     `json:"signalLog,omitempty" yaml:"signalLog,omitempty"`
	Trades         []models.Trade                     `json:"trades" yaml:"trades"`
	CloseReasons   map[models.CloseReason]int         `json:"closeReasons" yaml:"closeReasons"`

	TotalTrades     int     `json:"totalTrades" yaml:"totalTrades"`
	Wins            int     `json:"wins" yaml:"wins"`
	Losses          int     `json:"losses" yaml:"losses"`
	WinRate         float64 `json:"winRate" yaml:"winRate"`
	TotalPnlPercent float64 `json:"totalPnlPercent" yaml:"totalPnlPercent"`
	TotalPnlQuote   float64 `json:"totalPnlQuote" yaml:"totalPnlQuote"`
	AvgWin          float64 `json:"avgWin" yaml:"avgWin"`
	AvgLoss         float64 `json:"avgLoss" yaml:"avgLoss"`
	LargestWin      float64 `json:"largestWin" yaml:"largestWin"`
	LargestLoss     float64 `json:"largestLoss" yaml:"largestLoss"`

	FinalPosition models.Position `json:"finalPosition" yaml:"finalPosition"`
}

// BuildReport aggregates a run. Win rate is winners over all closed trades, in percent.
func BuildReport(symbol string, signals []SignalRecord, trades []models.Trade, final models.Position) Report {
	report := Report{
		Symbol:         symbol,
		Bars:           len(signals),
		SignalCounts:   map[models.SignalDirection]int{models.SignalBuy: 0, models.SignalSell: 0, models.SignalHold: 0},
		SignalPercents: map[models.SignalDirection]float64{},
		SignalLog:      signals,
		Trades:         trades,
		CloseReasons:   map[models.CloseReason]int{},
		TotalTrades:    len(trades),
		FinalPosition:  final,
	}

	for _, s := range signals {
		report.SignalCounts[s.Direction]++
	}
	for direction, count := range report.SignalCounts {
		if len(signals) > 0 {
			report.SignalPercents[direction] = float64(count) * 100 / float64(len(signals))
		}
	}

	var wins, losses []float64
	for _, trade := range trades {
		report.CloseReasons[trade.CloseReason]++
		report.TotalPnlPercent += trade.PnlPercent
		report.TotalPnlQuote += trade.PnlQuote
		switch {
		case trade.PnlPercent > 0:
			wins = append(wins, trade.PnlPercent)
		case trade.PnlPercent < 0:
			losses = append(losses, trade.PnlPercent)
		}
	}

	report.Wins = len(wins)
	report.Losses = len(losses)
	if len(trades) > 0 {
		report.WinRate = float64(len(wins)) * 100 / float64(len(trades))
	}
	report.AvgWin = helpers.Mean(wins)
	report.AvgLoss = helpers.Mean(losses)
	report.LargestWin = helpers.Max(wins)
	report.LargestLoss = helpers.Min(losses)
	return report
}

// TradingRecordService collects the signals and trades of one run.
type TradingRecordService struct {
	mu      sync.Mutex
	symbol  string
	signals []SignalRecord
	trades  []models.Trade
	keepLog bool
}

func NewTradingRecordService(symbol string, keepSignalLog bool) *TradingRecordService {
	return &TradingRecordService{symbol: symbol, keepLog: keepSignalLog}
}

func (trs *TradingRecordService) AddSignal(signal models.Signal, position models.PositionDirection) {
	trs.mu.Lock()
	defer trs.mu.Unlock()
	record := SignalRecord{
		Time:       signal.Time,
		Price:      signal.Price,
		Direction:  signal.Direction,
		Confidence: signal.Confidence,
		MainTrend:  signal.MainTrend,
		Position:   position,
	}
	if trs.keepLog {
		record.Reasons = signal.Reasons
	}
	trs.signals = append(trs.signals, record)
}

func (trs *TradingRecordService) AddTrades(trades ...models.Trade) {
	trs.mu.Lock()
	defer trs.mu.Unlock()
	trs.trades = append(trs.trades, trades...)
}

func (trs *TradingRecordService) Trades() []models.Trade {
	trs.mu.Lock()
	defer trs.mu.Unlock()
	return append([]models.Trade(nil), trs.trades...)
}

func (trs *TradingRecordService) Report(final *models.Position) Report {
	trs.mu.Lock()
	defer trs.mu.Unlock()
	report := BuildReport(trs.symbol,
		append([]SignalRecord(nil), trs.signals...),
		append([]models.Trade(nil), trs.trades...),
		final.Clone())
	if !trs.keepLog {
		report.SignalLog = nil
	}
	return report
}
