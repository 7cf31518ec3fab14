package indicators

import (
	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

type onBalanceVolumeIndicator struct {
	closePrice techan.Indicator
	volume     techan.Indicator
	values     []big.Decimal
}

// NewOnBalanceVolumeIndicator returns the running OBV of the series, starting at zero
// on the first bar. Values are cached so a full pass stays linear.
func NewOnBalanceVolumeIndicator(series *techan.TimeSeries) techan.Indicator {
	return &onBalanceVolumeIndicator{
		closePrice: techan.NewClosePriceIndicator(series),
		volume:     techan.NewVolumeIndicator(series),
	}
}

func (obv *onBalanceVolumeIndicator) Calculate(index int) big.Decimal {
	if index < 0 {
		return big.ZERO
	}
	for i := len(obv.values); i <= index; i++ {
		if i == 0 {
			obv.values = append(obv.values, big.ZERO)
			continue
		}
		prev := obv.values[i-1]
		current := obv.closePrice.Calculate(i)
		previous := obv.closePrice.Calculate(i - 1)

		switch {
		case current.GT(previous):
			obv.values = append(obv.values, prev.Add(obv.volume.Calculate(i)))
		case current.LT(previous):
			obv.values = append(obv.values, prev.Sub(obv.volume.Calculate(i)))
		default:
			obv.values = append(obv.values, prev)
		}
	}
	return obv.values[index]
}
