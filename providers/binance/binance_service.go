package binance

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/sdcoffey/techan"
	log "github.com/sirupsen/logrus"

	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/interfaces"
	"github.com/luksonlj/takie-tam/models"
)

const (
	MarketSpot    = "spot"
	MarketFutures = "futures"

	spotTestnetURL    = "https://testnet.binance.vision"
	futuresTestnetURL = "https://testnet.binancefuture.com"

	maxKlinesPerRequest = 1000
)

type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Market    string
	Symbol    string
}

var _ interfaces.ExchangeService = (*BinanceService)(nil)

// BinanceService reads klines and places market orders on Binance spot or USD-M futures.
type BinanceService struct {
	spot    *binance.Client
	futures *futures.Client
	market  string
	symbol  string

	pairMu   sync.Mutex
	pairInfo *models.PairInfo
}

func NewBinanceService(cfg Config) *BinanceService {
	binanceService := BinanceService{market: cfg.Market, symbol: cfg.Symbol}
	if cfg.Market == MarketSpot {
		binanceService.spot = binance.NewClient(cfg.APIKey, cfg.APISecret)
		if cfg.Testnet {
			binanceService.spot.BaseURL = spotTestnetURL
		}
	} else {
		binanceService.market = MarketFutures
		binanceService.futures = futures.NewClient(cfg.APIKey, cfg.APISecret)
		if cfg.Testnet {
			binanceService.futures.BaseURL = futuresTestnetURL
		}
	}
	helpers.Logger.WithFields(log.Fields{
		"market":  binanceService.market,
		"testnet": cfg.Testnet,
		"symbol":  cfg.Symbol,
	}).Info("binance client configured")
	return &binanceService
}

// FetchCandles pages backwards until window klines are collected, oldest first.
// The last kline may still be in progress.
func (binanceService *BinanceService) FetchCandles(ctx context.Context, symbol string, timeframe string, window int) ([]models.Candle, error) {
	var candles []models.Candle
	var endTime int64
	for remaining := window; remaining > 0; {
		limit := remaining
		if limit > maxKlinesPerRequest {
			limit = maxKlinesPerRequest
		}
		page, err := binanceService.klines(ctx, symbol, timeframe, limit, endTime)
		if err != nil {
			return nil, fmt.Errorf("%w: klines %s %s: %v", models.ErrDataUnavailable, symbol, timeframe, err)
		}
		if len(page) == 0 {
			break
		}
		candles = append(page, candles...)
		remaining -= len(page)
		endTime = page[0].Timestamp.UnixMilli() - 1
		if len(page) < limit {
			break
		}
	}
	return dedupe(candles), nil
}

func (binanceService *BinanceService) klines(ctx context.Context, symbol string, timeframe string, limit int, endTime int64) ([]models.Candle, error) {
	var candles []models.Candle
	if binanceService.market == MarketSpot {
		service := binanceService.spot.NewKlinesService().Symbol(symbol).Interval(timeframe).Limit(limit)
		if endTime > 0 {
			service = service.EndTime(endTime)
		}
		klines, err := service.Do(ctx)
		if err != nil {
			return nil, err
		}
		for _, k := range klines {
			candle, err := KlineToCandle(k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume)
			if err != nil {
				return nil, err
			}
			candles = append(candles, candle)
		}
		return candles, nil
	}

	service := binanceService.futures.NewKlinesService().Symbol(symbol).Interval(timeframe).Limit(limit)
	if endTime > 0 {
		service = service.EndTime(endTime)
	}
	klines, err := service.Do(ctx)
	if err != nil {
		return nil, err
	}
	for _, k := range klines {
		candle, err := KlineToCandle(k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// PlaceOrder sends a market order for size. price is only used for logging, the
// fill price comes from the exchange.
func (binanceService *BinanceService) PlaceOrder(ctx context.Context, side techan.OrderSide, size float64, price float64) (models.OrderResult, error) {
	pairInfo, err := binanceService.GetPairInfo(ctx)
	if err != nil {
		return models.OrderResult{}, fmt.Errorf("%w: %v", models.ErrExecutionRejected, err)
	}
	if err := pairInfo.CheckQuantity(pairInfo.RoundQuantity(size)); err != nil {
		return models.OrderResult{}, fmt.Errorf("%w: %s: %v", models.ErrExecutionRejected, binanceService.symbol, err)
	}
	quantity := pairInfo.FormatQuantity(size)

	var result models.OrderResult
	if binanceService.market == MarketSpot {
		result, err = binanceService.placeSpotOrder(ctx, side, quantity)
	} else {
		result, err = binanceService.placeFuturesOrder(ctx, side, quantity)
	}
	if err != nil {
		return models.OrderResult{}, fmt.Errorf("%w: %v", models.ErrExecutionRejected, err)
	}
	if !result.IsFilled() {
		return result, fmt.Errorf("%w: order %d status %s", models.ErrExecutionRejected, result.OrderID, result.Status)
	}

	helpers.Logger.WithFields(log.Fields{
		"symbol":   binanceService.symbol,
		"orderId":  result.OrderID,
		"side":     sideName(side),
		"size":     result.FilledSize,
		"price":    result.FilledPrice,
		"expected": price,
	}).Info("market order filled")
	return result, nil
}

func (binanceService *BinanceService) placeSpotOrder(ctx context.Context, side techan.OrderSide, quantity string) (models.OrderResult, error) {
	sideType := binance.SideTypeBuy
	if side == techan.SELL {
		sideType = binance.SideTypeSell
	}
	order, err := binanceService.spot.NewCreateOrderService().Symbol(binanceService.symbol).
		Side(sideType).Type(binance.OrderTypeMarket).Quantity(quantity).
		NewOrderRespType(binance.NewOrderRespTypeFULL).Do(ctx)
	if err != nil {
		return models.OrderResult{}, err
	}

	fills := make([]Fill, 0, len(order.Fills))
	for _, f := range order.Fills {
		fills = append(fills, Fill{Price: f.Price, Quantity: f.Quantity})
	}
	filledPrice, filledSize, err := AverageFill(fills)
	if err != nil {
		return models.OrderResult{}, err
	}
	return models.OrderResult{
		Symbol:      order.Symbol,
		OrderID:     order.OrderID,
		Side:        side,
		Status:      models.OrderStatusType(order.Status),
		FilledPrice: filledPrice,
		FilledSize:  filledSize,
		Time:        time.UnixMilli(order.TransactTime),
	}, nil
}

func (binanceService *BinanceService) placeFuturesOrder(ctx context.Context, side techan.OrderSide, quantity string) (models.OrderResult, error) {
	sideType := futures.SideTypeBuy
	if side == techan.SELL {
		sideType = futures.SideTypeSell
	}
	order, err := binanceService.futures.NewCreateOrderService().Symbol(binanceService.symbol).
		Side(sideType).Type(futures.OrderTypeMarket).Quantity(quantity).
		NewOrderResponseType(futures.NewOrderRespTypeRESULT).Do(ctx)
	if err != nil {
		return models.OrderResult{}, err
	}

	status, avgPrice, executed := string(order.Status), order.AvgPrice, order.ExecutedQuantity
	// market orders can be acknowledged before the fill is reported
	for attempt := 0; attempt < 3 && status == string(futures.OrderStatusTypeNew); attempt++ {
		select {
		case <-ctx.Done():
			return models.OrderResult{}, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
		current, err := binanceService.futures.NewGetOrderService().Symbol(binanceService.symbol).OrderID(order.OrderID).Do(ctx)
		if err != nil {
			return models.OrderResult{}, err
		}
		status, avgPrice, executed = string(current.Status), current.AvgPrice, current.ExecutedQuantity
	}

	filledPrice, err := parseDecimal(avgPrice)
	if err != nil {
		return models.OrderResult{}, err
	}
	filledSize, err := parseDecimal(executed)
	if err != nil {
		return models.OrderResult{}, err
	}
	return models.OrderResult{
		Symbol:      order.Symbol,
		OrderID:     order.OrderID,
		Side:        side,
		Status:      models.OrderStatusType(status),
		FilledPrice: filledPrice,
		FilledSize:  filledSize,
		Time:        time.UnixMilli(order.UpdateTime),
	}, nil
}

// GetPairInfo returns the LOT_SIZE filter of the configured symbol. It is fetched
// once and cached.
func (binanceService *BinanceService) GetPairInfo(ctx context.Context) (*models.PairInfo, error) {
	binanceService.pairMu.Lock()
	defer binanceService.pairMu.Unlock()
	if binanceService.pairInfo != nil {
		return binanceService.pairInfo, nil
	}

	var maxQuantity, minQuantity, stepSize string
	found := false
	if binanceService.market == MarketSpot {
		info, err := binanceService.spot.NewExchangeInfoService().Do(ctx)
		if err != nil {
			return nil, err
		}
		for _, symbol := range info.Symbols {
			if symbol.Symbol == binanceService.symbol {
				if filter := symbol.LotSizeFilter(); filter != nil {
					maxQuantity, minQuantity, stepSize, found = filter.MaxQuantity, filter.MinQuantity, filter.StepSize, true
				}
				break
			}
		}
	} else {
		info, err := binanceService.futures.NewExchangeInfoService().Do(ctx)
		if err != nil {
			return nil, err
		}
		for _, symbol := range info.Symbols {
			if symbol.Symbol == binanceService.symbol {
				if filter := symbol.LotSizeFilter(); filter != nil {
					maxQuantity, minQuantity, stepSize, found = filter.MaxQuantity, filter.MinQuantity, filter.StepSize, true
				}
				break
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("no LOT_SIZE filter for %s", binanceService.symbol)
	}

	pairInfo, err := ParsePairInfo(maxQuantity, minQuantity, stepSize)
	if err != nil {
		return nil, err
	}
	binanceService.pairInfo = pairInfo
	return pairInfo, nil
}

// ParsePairInfo builds a PairInfo from the string fields of a LOT_SIZE filter
func ParsePairInfo(maxQuantity, minQuantity, stepSize string) (*models.PairInfo, error) {
	maxValue, err := parseDecimal(maxQuantity)
	if err != nil {
		return nil, err
	}
	minValue, err := parseDecimal(minQuantity)
	if err != nil {
		return nil, err
	}
	step, err := parseDecimal(stepSize)
	if err != nil {
		return nil, err
	}
	return models.NewPairInfo(maxValue, minValue, step), nil
}

// Fill is one partial execution of a spot order
type Fill struct {
	Price    string
	Quantity string
}

// AverageFill returns the size-weighted price and the total quantity of fills
func AverageFill(fills []Fill) (price float64, quantity float64, err error) {
	var notional float64
	for _, f := range fills {
		p, err := parseDecimal(f.Price)
		if err != nil {
			return 0, 0, err
		}
		q, err := parseDecimal(f.Quantity)
		if err != nil {
			return 0, 0, err
		}
		notional += p * q
		quantity += q
	}
	if quantity == 0 {
		return 0, 0, nil
	}
	return notional / quantity, quantity, nil
}

// KlineToCandle converts the string fields of a kline
func KlineToCandle(openTime int64, open, high, low, closePrice, volume string) (models.Candle, error) {
	values := make([]float64, 5)
	for i, raw := range []string{open, high, low, closePrice, volume} {
		v, err := parseDecimal(raw)
		if err != nil {
			return models.Candle{}, err
		}
		values[i] = v
	}
	return models.Candle{
		Timestamp: time.UnixMilli(openTime).UTC(),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

func parseDecimal(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal %q: %w", raw, err)
	}
	return v, nil
}

// dedupe sorts by open time and drops repeated klines from overlapping pages
func dedupe(candles []models.Candle) []models.Candle {
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Timestamp.Before(candles[j].Timestamp) })
	out := candles[:0]
	for i, c := range candles {
		if i > 0 && !c.Timestamp.After(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func sideName(side techan.OrderSide) string {
	if side == techan.SELL {
		return "SELL"
	}
	return "BUY"
}
