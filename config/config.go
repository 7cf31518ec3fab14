package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/models"
)

const (
	MarketFutures = "futures"
	MarketSpot    = "spot"
)

type Config struct {
	Symbol          string
	Timeframe       string
	BarPeriod       time.Duration
	TradeAmount     float64
	MaxPositionSize float64
	Testnet         bool
	Market          string
	AllowShort      bool
	APIKey          string
	APISecret       string

	StopLossPercent   float64
	TakeProfitPercent float64

	MinConfidence   int
	MinConditions   int
	ConditionWeight int

	Pyramiding         bool
	MaxPyramidLevels   int
	PyramidStepPercent float64

	Contrarian         bool
	PullbackPercent    float64
	BouncePercent      float64
	ContrarianLookback int

	TrailingStop              bool
	TrailingActivationPercent float64
	TrailingLockPercent       float64

	MAShort                int
	MAMedium               int
	MALong                 int
	VolumeMAPeriod         int
	OBVMAPeriod            int
	DivergenceLookback     int
	VolumeAnomalyThreshold float64

	Lookback         int
	PollInterval     time.Duration
	MaxFetchFailures int

	LogFile  string
	LogLevel string

	RedisAddr string
	RedisTTL  time.Duration

	DatabaseDriver string
	DatabaseDSN    string

	TelegramOutput bool
	TelegramToken  string
	TelegramChatID string

	MetricsAddr string
}

// Default returns the configuration used when no environment overrides are set
func Default() Config {
	return Config{
		Symbol:          "BTCUSDT",
		Timeframe:       "1h",
		BarPeriod:       time.Hour,
		TradeAmount:     0.001,
		MaxPositionSize: 0.01,
		Testnet:         true,
		Market:          MarketFutures,
		AllowShort:      true,

		StopLossPercent:   3,
		TakeProfitPercent: 6,

		MinConfidence:   60,
		MinConditions:   4,
		ConditionWeight: 15,

		Pyramiding:         true,
		MaxPyramidLevels:   3,
		PyramidStepPercent: 1.5,

		Contrarian:         true,
		PullbackPercent:    1,
		BouncePercent:      1,
		ContrarianLookback: 20,

		TrailingStop:              true,
		TrailingActivationPercent: 3,
		TrailingLockPercent:       1.5,

		MAShort:                10,
		MAMedium:               30,
		MALong:                 60,
		VolumeMAPeriod:         20,
		OBVMAPeriod:            20,
		DivergenceLookback:     5,
		VolumeAnomalyThreshold: 1.5,

		Lookback:         100,
		PollInterval:     30 * time.Second,
		MaxFetchFailures: 5,

		LogFile:  "bot.log",
		LogLevel: "info",

		RedisTTL: 30 * time.Second,

		DatabaseDriver: "sqlite",
	}
}

// Load reads envFile into the process environment (a missing file is fine) and
// builds a validated Config from it.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: loading %s: %v", models.ErrInvalidConfiguration, envFile, err)
		}
	}
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv overlays environment values on the defaults. Unparsable values are errors.
func FromEnv() (Config, error) {
	cfg := Default()
	p := &envParser{}

	cfg.Symbol = helpers.NormalizeSymbol(p.str("SYMBOL", cfg.Symbol))
	cfg.Timeframe = p.str("TIMEFRAME", cfg.Timeframe)
	cfg.TradeAmount = p.float("TRADE_AMOUNT", cfg.TradeAmount)
	cfg.MaxPositionSize = p.float("MAX_POSITION_SIZE", cfg.MaxPositionSize)
	cfg.Testnet = p.bool("TESTNET", cfg.Testnet)
	cfg.Market = strings.ToLower(p.str("MARKET", cfg.Market))
	cfg.AllowShort = p.bool("ALLOW_SHORT", cfg.AllowShort)
	cfg.APIKey = p.str("API_KEY", "")
	cfg.APISecret = p.str("API_SECRET", "")

	cfg.StopLossPercent = p.float("STOP_LOSS_PERCENT", cfg.StopLossPercent)
	cfg.TakeProfitPercent = p.float("TAKE_PROFIT_PERCENT", cfg.TakeProfitPercent)

	cfg.MinConfidence = p.int("MIN_CONFIDENCE", cfg.MinConfidence)
	cfg.MinConditions = p.int("MIN_CONDITIONS", cfg.MinConditions)
	cfg.ConditionWeight = p.int("CONDITION_WEIGHT", cfg.ConditionWeight)

	cfg.Pyramiding = p.bool("PYRAMIDING", cfg.Pyramiding)
	cfg.MaxPyramidLevels = p.int("MAX_PYRAMID_LEVELS", cfg.MaxPyramidLevels)
	cfg.PyramidStepPercent = p.float("PYRAMID_STEP_PERCENT", cfg.PyramidStepPercent)

	cfg.Contrarian = p.bool("CONTRARIAN", cfg.Contrarian)
	cfg.PullbackPercent = p.float("PULLBACK_PERCENT", cfg.PullbackPercent)
	cfg.BouncePercent = p.float("BOUNCE_PERCENT", cfg.BouncePercent)
	cfg.ContrarianLookback = p.int("CONTRARIAN_LOOKBACK", cfg.ContrarianLookback)

	cfg.TrailingStop = p.bool("TRAILING_STOP", cfg.TrailingStop)
	cfg.TrailingActivationPercent = p.float("TRAILING_ACTIVATION_PERCENT", cfg.TrailingActivationPercent)
	cfg.TrailingLockPercent = p.float("TRAILING_LOCK_PERCENT", cfg.TrailingLockPercent)

	cfg.MAShort = p.int("MA_SHORT", cfg.MAShort)
	cfg.MAMedium = p.int("MA_MEDIUM", cfg.MAMedium)
	cfg.MALong = p.int("MA_LONG", cfg.MALong)
	cfg.VolumeMAPeriod = p.int("VOLUME_MA_PERIOD", cfg.VolumeMAPeriod)
	cfg.OBVMAPeriod = p.int("OBV_MA_PERIOD", cfg.OBVMAPeriod)
	cfg.DivergenceLookback = p.int("DIVERGENCE_LOOKBACK", cfg.DivergenceLookback)
	cfg.VolumeAnomalyThreshold = p.float("VOLUME_ANOMALY_THRESHOLD", cfg.VolumeAnomalyThreshold)

	cfg.Lookback = p.int("LOOKBACK", cfg.Lookback)
	cfg.PollInterval = p.duration("POLL_INTERVAL", cfg.PollInterval)
	cfg.MaxFetchFailures = p.int("MAX_FETCH_FAILURES", cfg.MaxFetchFailures)

	cfg.LogFile = p.str("LOG_FILE", cfg.LogFile)
	cfg.LogLevel = p.str("LOG_LEVEL", cfg.LogLevel)

	cfg.RedisAddr = p.str("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisTTL = p.duration("REDIS_TTL", cfg.RedisTTL)

	cfg.DatabaseDriver = strings.ToLower(p.str("DATABASE_DRIVER", cfg.DatabaseDriver))
	cfg.DatabaseDSN = p.str("DATABASE_DSN", cfg.DatabaseDSN)

	cfg.TelegramOutput = p.bool("TELEGRAM_OUTPUT", cfg.TelegramOutput)
	cfg.TelegramToken = p.str("TELEGRAM_TOKEN", "")
	cfg.TelegramChatID = p.str("TELEGRAM_CHAT_ID", "")

	cfg.MetricsAddr = p.str("METRICS_ADDR", cfg.MetricsAddr)

	if len(p.errs) > 0 {
		return Config{}, fmt.Errorf("%w: %w", models.ErrInvalidConfiguration, errors.Join(p.errs...))
	}

	period, err := helpers.StringIntervalToDuration(cfg.Timeframe)
	if err != nil {
		return Config{}, fmt.Errorf("%w: TIMEFRAME: %w", models.ErrInvalidConfiguration, err)
	}
	cfg.BarPeriod = period
	return cfg, nil
}

// MinWindow is the number of candles the indicators need for one snapshot
func (c Config) MinWindow() int {
	window := c.MALong
	for _, n := range []int{c.MAMedium, c.MAShort, c.VolumeMAPeriod, c.OBVMAPeriod,
		c.DivergenceLookback + 1, c.ContrarianLookback} {
		if n > window {
			window = n
		}
	}
	return window
}

// Validate reports every violation at once. It never adjusts a value.
func (c Config) Validate() error {
	var errs []error
	check := func(bad bool, format string, args ...interface{}) {
		if bad {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Symbol == "", "SYMBOL must not be empty")
	check(c.BarPeriod <= 0, "TIMEFRAME %q is not a valid interval", c.Timeframe)
	check(c.TradeAmount <= 0, "TRADE_AMOUNT must be > 0, got %v", c.TradeAmount)
	check(c.MaxPositionSize < c.TradeAmount, "MAX_POSITION_SIZE must be >= TRADE_AMOUNT (%v), got %v", c.TradeAmount, c.MaxPositionSize)
	check(c.Market != MarketFutures && c.Market != MarketSpot, "MARKET must be %q or %q, got %q", MarketFutures, MarketSpot, c.Market)
	check(c.Market == MarketSpot && c.AllowShort, "ALLOW_SHORT requires MARKET=%s", MarketFutures)

	check(c.StopLossPercent <= 0, "STOP_LOSS_PERCENT must be > 0, got %v", c.StopLossPercent)
	check(c.TakeProfitPercent <= 0, "TAKE_PROFIT_PERCENT must be > 0, got %v", c.TakeProfitPercent)

	check(c.MinConfidence < 0 || c.MinConfidence > 100, "MIN_CONFIDENCE must be within 0..100, got %d", c.MinConfidence)
	check(c.MinConditions < 1, "MIN_CONDITIONS must be >= 1, got %d", c.MinConditions)
	check(c.ConditionWeight <= 0, "CONDITION_WEIGHT must be > 0, got %d", c.ConditionWeight)

	check(c.MaxPyramidLevels < 0, "MAX_PYRAMID_LEVELS must be >= 0, got %d", c.MaxPyramidLevels)
	check(c.PyramidStepPercent <= 0, "PYRAMID_STEP_PERCENT must be > 0, got %v", c.PyramidStepPercent)

	check(c.PullbackPercent <= 0, "PULLBACK_PERCENT must be > 0, got %v", c.PullbackPercent)
	check(c.BouncePercent <= 0, "BOUNCE_PERCENT must be > 0, got %v", c.BouncePercent)
	check(c.ContrarianLookback < 2, "CONTRARIAN_LOOKBACK must be >= 2, got %d", c.ContrarianLookback)

	check(c.TrailingActivationPercent <= 0, "TRAILING_ACTIVATION_PERCENT must be > 0, got %v", c.TrailingActivationPercent)
	check(c.TrailingLockPercent <= 0, "TRAILING_LOCK_PERCENT must be > 0, got %v", c.TrailingLockPercent)
	check(c.TrailingLockPercent >= c.TrailingActivationPercent,
		"TRAILING_LOCK_PERCENT (%v) must be below TRAILING_ACTIVATION_PERCENT (%v)", c.TrailingLockPercent, c.TrailingActivationPercent)

	check(c.MAShort < 1, "MA_SHORT must be >= 1, got %d", c.MAShort)
	check(!(c.MAShort < c.MAMedium && c.MAMedium < c.MALong),
		"moving averages must be strictly increasing, got %d/%d/%d", c.MAShort, c.MAMedium, c.MALong)
	check(c.VolumeMAPeriod < 2, "VOLUME_MA_PERIOD must be >= 2, got %d", c.VolumeMAPeriod)
	check(c.OBVMAPeriod < 2, "OBV_MA_PERIOD must be >= 2, got %d", c.OBVMAPeriod)
	check(c.DivergenceLookback < 2, "DIVERGENCE_LOOKBACK must be >= 2, got %d", c.DivergenceLookback)
	check(c.VolumeAnomalyThreshold <= 0, "VOLUME_ANOMALY_THRESHOLD must be > 0, got %v", c.VolumeAnomalyThreshold)

	check(c.Lookback < c.MinWindow(), "LOOKBACK (%d) must cover the indicator window (%d)", c.Lookback, c.MinWindow())
	check(c.PollInterval <= 0, "POLL_INTERVAL must be > 0, got %s", c.PollInterval)
	check(c.MaxFetchFailures < 1, "MAX_FETCH_FAILURES must be >= 1, got %d", c.MaxFetchFailures)

	check(c.DatabaseDriver != "" && c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "mysql",
		"DATABASE_DRIVER must be sqlite or mysql, got %q", c.DatabaseDriver)
	check(c.TelegramOutput && c.TelegramToken == "", "TELEGRAM_OUTPUT set to true but TELEGRAM_TOKEN not found")
	check(c.TelegramOutput && c.TelegramChatID == "", "TELEGRAM_OUTPUT set to true but TELEGRAM_CHAT_ID not found")

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", models.ErrInvalidConfiguration, errors.Join(errs...))
}

type envParser struct {
	errs []error
}

func (p *envParser) str(key string, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (p *envParser) float(key string, def float64) float64 {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a number", key, raw))
		return def
	}
	return v
}

func (p *envParser) int(key string, def int) int {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, raw))
		return def
	}
	return v
}

func (p *envParser) bool(key string, def bool) bool {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", key, raw))
		return def
	}
	return v
}

func (p *envParser) duration(key string, def time.Duration) time.Duration {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := helpers.StringIntervalToDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}
