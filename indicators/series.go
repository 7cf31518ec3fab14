package indicators

import (
	"fmt"
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"

	"github.com/luksonlj/takie-tam/models"
)

// ValidateCandles checks that timestamps are strictly increasing
func ValidateCandles(candles []models.Candle) error {
	for i := 1; i < len(candles); i++ {
		if !candles[i].Timestamp.After(candles[i-1].Timestamp) {
			return fmt.Errorf("%w: candle %d (%s) is not after candle %d (%s)", models.ErrInvalidCandles,
				i, candles[i].Timestamp.Format(time.RFC3339), i-1, candles[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// NewTimeSeries converts candles into a techan time series. period is the bar length,
// zero means the bars are treated as instants.
func NewTimeSeries(candles []models.Candle, period time.Duration) (*techan.TimeSeries, error) {
	if err := ValidateCandles(candles); err != nil {
		return nil, err
	}
	series := techan.NewTimeSeries()
	for _, c := range candles {
		candle := techan.NewCandle(techan.NewTimePeriod(c.Timestamp, period))
		candle.OpenPrice = big.NewDecimal(c.Open)
		candle.ClosePrice = big.NewDecimal(c.Close)
		candle.MaxPrice = big.NewDecimal(c.High)
		candle.MinPrice = big.NewDecimal(c.Low)
		candle.Volume = big.NewDecimal(c.Volume)

		if !series.AddCandle(candle) {
			return nil, fmt.Errorf("%w: candle at %s overlaps the previous %s bar", models.ErrInvalidCandles,
				c.Timestamp.Format(time.RFC3339), period)
		}
	}
	return series, nil
}
