package paper

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sdcoffey/techan"

	"github.com/luksonlj/takie-tam/interfaces"
	"github.com/luksonlj/takie-tam/models"
)

var _ interfaces.ExchangeService = (*PaperService)(nil)

// PaperService fills every market order immediately at the requested price with
// no slippage. Candles come from the wrapped provider, if any.
type PaperService struct {
	symbol  string
	candles interfaces.CandleProvider
	orderID int64
	now     func() time.Time
}

func NewPaperService(symbol string, candles interfaces.CandleProvider) *PaperService {
	return &PaperService{symbol: symbol, candles: candles, now: time.Now}
}

func (paperService *PaperService) FetchCandles(ctx context.Context, symbol string, timeframe string, window int) ([]models.Candle, error) {
	if paperService.candles == nil {
		return nil, fmt.Errorf("%w: paper service has no candle source", models.ErrDataUnavailable)
	}
	return paperService.candles.FetchCandles(ctx, symbol, timeframe, window)
}

func (paperService *PaperService) PlaceOrder(ctx context.Context, side techan.OrderSide, size float64, price float64) (models.OrderResult, error) {
	if err := ctx.Err(); err != nil {
		return models.OrderResult{}, fmt.Errorf("%w: %v", models.ErrExecutionRejected, err)
	}
	if size <= 0 {
		return models.OrderResult{}, fmt.Errorf("%w: size must be positive, got %v", models.ErrExecutionRejected, size)
	}
	if price <= 0 {
		return models.OrderResult{}, fmt.Errorf("%w: price must be positive, got %v", models.ErrExecutionRejected, price)
	}

	return models.OrderResult{
		Symbol:      paperService.symbol,
		OrderID:     atomic.AddInt64(&paperService.orderID, 1),
		Side:        side,
		Status:      models.OrderStatusTypeFilled,
		FilledPrice: price,
		FilledSize:  size,
		Time:        paperService.now(),
	}, nil
}
