package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/sdcoffey/techan"

	"github.com/luksonlj/takie-tam/models"
)

// OrderCall is one PlaceOrder invocation seen by ProviderMock
type OrderCall struct {
	Side  techan.OrderSide
	Size  float64
	Price float64
}

// ProviderMock serves a fixed candle slice and fills orders at the requested price.
// FetchErr and OrderErr, when set, are returned instead. RejectOrders lists
// 1-based order numbers that fail with ErrExecutionRejected.
type ProviderMock struct {
	mu sync.Mutex

	Candles      []models.Candle
	FetchErr     error
	OrderErr     error
	RejectOrders map[int]bool
	FillRatio    float64

	Fetches int
	Orders  []OrderCall
}

func (m *ProviderMock) SetCandles(candles []models.Candle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Candles = candles
}

func (m *ProviderMock) FetchCandles(ctx context.Context, symbol string, timeframe string, window int) ([]models.Candle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetches++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	candles := m.Candles
	if window > 0 && len(candles) > window {
		candles = candles[len(candles)-window:]
	}
	return append([]models.Candle(nil), candles...), nil
}

func (m *ProviderMock) PlaceOrder(ctx context.Context, side techan.OrderSide, size float64, price float64) (models.OrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders = append(m.Orders, OrderCall{Side: side, Size: size, Price: price})
	if m.OrderErr != nil {
		return models.OrderResult{}, m.OrderErr
	}
	if m.RejectOrders[len(m.Orders)] {
		return models.OrderResult{}, fmt.Errorf("%w: order %d rejected by mock", models.ErrExecutionRejected, len(m.Orders))
	}
	filled := size
	if m.FillRatio > 0 {
		filled = size * m.FillRatio
	}
	status := models.OrderStatusTypeFilled
	if filled < size {
		status = models.OrderStatusTypePartiallyFilled
	}
	return models.OrderResult{
		OrderID:     int64(len(m.Orders)),
		Side:        side,
		Status:      status,
		FilledPrice: price,
		FilledSize:  filled,
	}, nil
}

// OrderCount returns how many orders were attempted
func (m *ProviderMock) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Orders)
}
