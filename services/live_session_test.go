package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luksonlj/takie-tam/indicators"
	"github.com/luksonlj/takie-tam/models"
	"github.com/luksonlj/takie-tam/providers/mock"
	"github.com/luksonlj/takie-tam/services"
	"github.com/luksonlj/takie-tam/strategies"
)

type notifierStub struct {
	messages []string
}

func (n *notifierStub) Notify(message string) error {
	n.messages = append(n.messages, message)
	return nil
}

func risingHourly(n int) []models.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	return hourlyCandles(closes...)
}

func newLiveSession(provider *mock.ProviderMock, executor *mock.ProviderMock, now *time.Time) *services.LiveSession {
	cfg := services.LiveSessionConfig{
		Symbol:           "BTCUSDT",
		Timeframe:        "1h",
		BarPeriod:        time.Hour,
		PollInterval:     5 * time.Millisecond,
		MaxFetchFailures: 3,
	}
	engine := indicators.NewEngine(indicators.DefaultEngineConfig())
	scorer := strategies.NewScorer(strategies.DefaultScorerConfig())
	manager := services.NewPositionManager(services.DefaultPositionManagerConfig(), executor)
	return services.NewLiveSession(cfg, provider, engine, scorer, manager).
		WithClock(func() time.Time { return *now })
}

func TestClosedCandlesDropsBarInProgress(t *testing.T) {
	candles := risingHourly(3)
	now := barStart.Add(2*time.Hour + 10*time.Minute)

	closed := services.ClosedCandles(candles, time.Hour, now)
	assert.Len(t, closed, 2)

	closed = services.ClosedCandles(candles, time.Hour, barStart.Add(3*time.Hour))
	assert.Len(t, closed, 3)
}

func TestPollProcessesEachClosedBarOnce(t *testing.T) {
	provider := &mock.ProviderMock{Candles: risingHourly(63)}
	executor := &mock.ProviderMock{}
	now := barStart.Add(62*time.Hour + 10*time.Minute)
	session := newLiveSession(provider, executor, &now)

	require.NoError(t, session.Poll(context.Background()))
	assert.Equal(t, barStart.Add(61*time.Hour), session.Status().LastBar)
	position := session.Position()
	assert.True(t, position.IsLong())
	assert.Equal(t, 1, executor.OrderCount())

	// same bar again: nothing happens
	require.NoError(t, session.Poll(context.Background()))
	assert.Equal(t, 1, executor.OrderCount())
	assert.Equal(t, 1, session.Report().Bars)

	// the next bar closes
	now = now.Add(time.Hour)
	provider.SetCandles(risingHourly(64))
	require.NoError(t, session.Poll(context.Background()))
	assert.Equal(t, barStart.Add(62*time.Hour), session.Status().LastBar)
	assert.Equal(t, 2, session.Report().Bars)
	assert.Equal(t, 3, session.Status().Polls)
}

func TestPollSkipsWhenNotEnoughClosedCandles(t *testing.T) {
	provider := &mock.ProviderMock{Candles: risingHourly(40)}
	executor := &mock.ProviderMock{}
	now := barStart.Add(40 * time.Hour)
	session := newLiveSession(provider, executor, &now)

	require.NoError(t, session.Poll(context.Background()))
	assert.Equal(t, 0, executor.OrderCount())
	assert.True(t, session.Status().LastBar.IsZero())
}

func TestPollRetriesRejectedOrderOnSameBar(t *testing.T) {
	provider := &mock.ProviderMock{Candles: risingHourly(63)}
	executor := &mock.ProviderMock{RejectOrders: map[int]bool{1: true}}
	now := barStart.Add(62*time.Hour + 10*time.Minute)
	session := newLiveSession(provider, executor, &now)

	err := session.Poll(context.Background())
	assert.ErrorIs(t, err, models.ErrExecutionRejected)
	position := session.Position()
	assert.True(t, position.IsFlat())
	assert.NotEmpty(t, session.Status().LastError)

	require.NoError(t, session.Poll(context.Background()))
	position = session.Position()
	assert.True(t, position.IsLong())
	assert.Equal(t, 2, executor.OrderCount())
}

func TestPollWrapsFetchErrors(t *testing.T) {
	provider := &mock.ProviderMock{FetchErr: fmt.Errorf("connection reset")}
	now := barStart
	session := newLiveSession(provider, &mock.ProviderMock{}, &now)

	err := session.Poll(context.Background())
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
	assert.Equal(t, 1, session.Status().FetchErrors)
}

func TestRunAbortsAfterConsecutiveFetchFailures(t *testing.T) {
	provider := &mock.ProviderMock{FetchErr: fmt.Errorf("%w: timeout", models.ErrDataUnavailable)}
	now := barStart
	session := newLiveSession(provider, &mock.ProviderMock{}, &now)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := session.Run(ctx)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
	assert.Equal(t, 3, provider.Fetches)
}

func TestRunStopsCleanlyOnCancel(t *testing.T) {
	provider := &mock.ProviderMock{Candles: risingHourly(63)}
	executor := &mock.ProviderMock{}
	now := barStart.Add(62*time.Hour + 10*time.Minute)
	notifier := &notifierStub{}
	var updates int
	session := newLiveSession(provider, executor, &now).
		WithNotifier(notifier).
		OnUpdate(func(services.SessionStatus) { updates++ })

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	require.NoError(t, session.Run(ctx))

	position := session.Position()
	assert.True(t, position.IsLong())
	assert.Equal(t, 1, executor.OrderCount())
	assert.Greater(t, updates, 0)
	assert.Empty(t, notifier.messages)
}
