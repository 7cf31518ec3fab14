package interfaces

import (
	"context"

	"github.com/sdcoffey/techan"

	"github.com/luksonlj/takie-tam/models"
)

type (
	// CandleProvider returns the last window closed-or-current candles of symbol,
	// oldest first. Failures wrap models.ErrDataUnavailable.
	CandleProvider interface {
		FetchCandles(ctx context.Context, symbol string, timeframe string, window int) ([]models.Candle, error)
	}

	// OrderExecutor places a market order. Failures wrap models.ErrExecutionRejected.
	OrderExecutor interface {
		PlaceOrder(ctx context.Context, side techan.OrderSide, size float64, price float64) (models.OrderResult, error)
	}

	ExchangeService interface {
		CandleProvider
		OrderExecutor
	}

	TradeRecorder interface {
		RecordSignal(symbol string, signal models.Signal) error
		RecordTrade(symbol string, trade models.Trade) error
	}

	Notifier interface {
		Notify(message string) error
	}
)
