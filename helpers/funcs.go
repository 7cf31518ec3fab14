package helpers

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

func Sum(numbers []float64) (total float64) {
	for _, x := range numbers {
		total += x
	}
	return total
}

func Mean(numbers []float64) float64 {
	if len(numbers) == 0 {
		return 0
	}
	return Sum(numbers) / float64(len(numbers))
}

func Max(numbers []float64) float64 {
	if len(numbers) == 0 {
		return 0
	}
	m := numbers[0]
	for _, n := range numbers[1:] {
		m = math.Max(m, n)
	}
	return m
}

func Min(numbers []float64) float64 {
	if len(numbers) == 0 {
		return 0
	}
	m := numbers[0]
	for _, n := range numbers[1:] {
		m = math.Min(m, n)
	}
	return m
}

// StringIntervalToDuration parses exchange style intervals ("15m", "1h", "1d", "1w")
// and plain Go durations ("30s", "1h30m").
func StringIntervalToDuration(interval string) (time.Duration, error) {
	interval = strings.TrimSpace(interval)
	if interval == "" {
		return 0, fmt.Errorf("empty interval")
	}
	d, err := str2duration.ParseDuration(interval)
	if err != nil {
		return 0, fmt.Errorf("interval %q: %w", interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval %q must be positive", interval)
	}
	return d, nil
}

// NormalizeSymbol turns "BTC/USDT" or "btc-usdt" into "BTCUSDT"
func NormalizeSymbol(symbol string) string {
	symbol = strings.ReplaceAll(symbol, "/", "")
	symbol = strings.ReplaceAll(symbol, "-", "")
	return strings.ToUpper(strings.TrimSpace(symbol))
}
