package simulated

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/models"
)

type Config struct {
	Seed      int64
	BasePrice float64
	Bars      int
	End       time.Time
}

func DefaultConfig() Config {
	return Config{
		Seed:      42,
		BasePrice: 84000,
		Bars:      168,
		End:       time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
	}
}

// SimulatedService produces a seeded synthetic market: a bullish first third, a
// sideways middle and a bearish last third, bounded to +/-20% of the base price.
// The same config always yields the same candles.
type SimulatedService struct {
	cfg Config
}

func NewSimulatedService(cfg Config) *SimulatedService {
	return &SimulatedService{cfg: cfg}
}

// Generate returns cfg.Bars candles of the given period ending at cfg.End
func (s *SimulatedService) Generate(period time.Duration) []models.Candle {
	r := rand.New(rand.NewSource(s.cfg.Seed))
	normal := func(mean, stddev float64) float64 {
		return r.NormFloat64()*stddev + mean
	}

	bars := s.cfg.Bars
	floor, ceiling := s.cfg.BasePrice*0.8, s.cfg.BasePrice*1.2
	start := s.cfg.End.Truncate(period).Add(-time.Duration(bars) * period)
	price := s.cfg.BasePrice

	candles := make([]models.Candle, bars)
	for i := 0; i < bars; i++ {
		var drift float64
		switch {
		case i < bars/3:
			drift = normal(50, 200)
		case i < 2*bars/3:
			drift = normal(0, 150)
		default:
			drift = normal(-50, 200)
		}
		price = math.Min(math.Max(price+drift, floor), ceiling)

		high := price + math.Abs(normal(0, 100))
		low := price - math.Abs(normal(0, 100))
		open := price + normal(0, 50)
		closePrice := price + normal(0, 50)
		volume := 50 + r.Float64()*150

		candles[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * period),
			Open:      open,
			High:      math.Max(high, math.Max(open, closePrice)),
			Low:       math.Min(low, math.Min(open, closePrice)),
			Close:     closePrice,
			Volume:    volume,
		}
	}
	return candles
}

func (s *SimulatedService) FetchCandles(ctx context.Context, symbol string, timeframe string, window int) ([]models.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	period, err := helpers.StringIntervalToDuration(timeframe)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	candles := s.Generate(period)
	if window > 0 && len(candles) > window {
		candles = candles[len(candles)-window:]
	}
	return candles, nil
}
