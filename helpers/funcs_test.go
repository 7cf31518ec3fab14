package helpers_test

import (
	"bytes"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luksonlj/takie-tam/helpers"
)

func TestStringIntervalToDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"1m":  time.Minute,
		"15m": 15 * time.Minute,
		"1h":  time.Hour,
		"4h":  4 * time.Hour,
		"1d":  24 * time.Hour,
		"1w":  7 * 24 * time.Hour,
		"30s": 30 * time.Second,
	}
	for interval, expected := range cases {
		d, err := helpers.StringIntervalToDuration(interval)
		require.NoError(t, err, interval)
		assert.Equal(t, expected, d, interval)
	}

	_, err := helpers.StringIntervalToDuration("")
	assert.Error(t, err)
	_, err = helpers.StringIntervalToDuration("soon")
	assert.Error(t, err)
}

func TestNumericHelpers(t *testing.T) {
	numbers := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 40.0, helpers.Sum(numbers))
	assert.Equal(t, 5.0, helpers.Mean(numbers))
	assert.Equal(t, 9.0, helpers.Max(numbers))
	assert.Equal(t, 2.0, helpers.Min(numbers))
	assert.Equal(t, 0.0, helpers.Mean(nil))
	assert.Equal(t, "BTCUSDT", helpers.NormalizeSymbol("btc/usdt"))
	assert.Equal(t, "ETHEUR", helpers.NormalizeSymbol(" eth-eur"))
}

func TestPlainFormatter(t *testing.T) {
	formatter := helpers.PlainFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		LevelDesc:       []string{"PANIC", "FATAL", "ERROR", "WARN", "INFO ", "DEBUG", "TRACE"},
	}
	logger := log.New()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetFormatter(formatter)

	logger.WithFields(log.Fields{"symbol": "BTCUSDT", "reason": "STOP_LOSS"}).Info("position closed")

	line := buf.String()
	assert.Regexp(t, `^INFO  \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} position closed reason=STOP_LOSS symbol=BTCUSDT\n$`, line)
}

func TestConfigureLoggerRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, helpers.ConfigureLogger("", "loud"))
	assert.NoError(t, helpers.ConfigureLogger("", "debug"))
	assert.Equal(t, log.DebugLevel, helpers.Logger.GetLevel())
	require.NoError(t, helpers.ConfigureLogger("", "info"))
}
