package bot

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/luksonlj/takie-tam/config"
	"github.com/luksonlj/takie-tam/database"
	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/indicators"
	"github.com/luksonlj/takie-tam/interfaces"
	"github.com/luksonlj/takie-tam/providers/binance"
	"github.com/luksonlj/takie-tam/providers/cache"
	"github.com/luksonlj/takie-tam/services"
	"github.com/luksonlj/takie-tam/strategies"
)

// Bot holds the configuration and the pipeline shared by every command
type Bot struct {
	cfg     config.Config
	engine  *indicators.Engine
	scorer  *strategies.Scorer
	journal *database.DBService
}

func newBot(c *cli.Context) (*Bot, error) {
	cfg, err := config.Load(c.String("env"))
	if err != nil {
		return nil, err
	}
	if symbol := c.String("symbol"); symbol != "" {
		cfg.Symbol = helpers.NormalizeSymbol(symbol)
	}
	if err := helpers.ConfigureLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		return nil, err
	}
	return &Bot{
		cfg:    cfg,
		engine: indicators.NewEngine(EngineConfig(cfg)),
		scorer: strategies.NewScorer(ScorerConfig(cfg)),
	}, nil
}

// EngineConfig maps the configuration onto the indicator engine
func EngineConfig(cfg config.Config) indicators.EngineConfig {
	return indicators.EngineConfig{
		MAShort:            cfg.MAShort,
		MAMedium:           cfg.MAMedium,
		MALong:             cfg.MALong,
		VolumeMAPeriod:     cfg.VolumeMAPeriod,
		OBVMAPeriod:        cfg.OBVMAPeriod,
		DivergenceLookback: cfg.DivergenceLookback,
		AnomalyThreshold:   cfg.VolumeAnomalyThreshold,
		ExtremesLookback:   cfg.ContrarianLookback,
		BarPeriod:          cfg.BarPeriod,
	}
}

func ScorerConfig(cfg config.Config) strategies.ScorerConfig {
	return strategies.ScorerConfig{
		ConditionWeight: cfg.ConditionWeight,
		MinConditions:   cfg.MinConditions,
		MinConfidence:   cfg.MinConfidence,
	}
}

func PositionManagerConfig(cfg config.Config) services.PositionManagerConfig {
	return services.PositionManagerConfig{
		Symbol:                    cfg.Symbol,
		TradeSize:                 cfg.TradeAmount,
		MaxPositionSize:           cfg.MaxPositionSize,
		StopLossPercent:           cfg.StopLossPercent,
		TakeProfitPercent:         cfg.TakeProfitPercent,
		TrailingStop:              cfg.TrailingStop,
		TrailingActivationPercent: cfg.TrailingActivationPercent,
		TrailingLockPercent:       cfg.TrailingLockPercent,
		Pyramiding:                cfg.Pyramiding,
		MaxPyramidLevels:          cfg.MaxPyramidLevels,
		PyramidStepPercent:        cfg.PyramidStepPercent,
		Contrarian:                cfg.Contrarian,
		PullbackPercent:           cfg.PullbackPercent,
		BouncePercent:             cfg.BouncePercent,
		AllowShort:                cfg.AllowShort,
	}
}

func (b *Bot) binanceService() *binance.BinanceService {
	return binance.NewBinanceService(binance.Config{
		APIKey:    b.cfg.APIKey,
		APISecret: b.cfg.APISecret,
		Testnet:   b.cfg.Testnet,
		Market:    b.cfg.Market,
		Symbol:    b.cfg.Symbol,
	})
}

// candleProvider wraps provider in the redis cache when REDIS_ADDR is set. A redis
// that cannot be reached only disables the cache.
func (b *Bot) candleProvider(ctx context.Context, provider interfaces.CandleProvider) interfaces.CandleProvider {
	if b.cfg.RedisAddr == "" {
		return provider
	}
	rdb, err := cache.NewRedisClient(ctx, b.cfg.RedisAddr)
	if err != nil {
		helpers.Logger.WithError(err).Warn("candle cache disabled")
		return provider
	}
	return cache.NewCachingCandleProvider(rdb, b.cfg.RedisTTL, provider)
}

// openJournal opens the trade journal when DATABASE_DSN is set
func (b *Bot) openJournal() error {
	if b.cfg.DatabaseDSN == "" {
		return nil
	}
	journal, err := database.NewDBService(b.cfg.DatabaseDriver, b.cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("opening trade journal: %w", err)
	}
	b.journal = journal
	return nil
}

func (b *Bot) close() {
	if b.journal != nil {
		if err := b.journal.Close(); err != nil {
			helpers.Logger.WithError(err).Warn("could not close trade journal")
		}
	}
}

// recorder returns the journal as a TradeRecorder, nil when journaling is off
func (b *Bot) recorder() interfaces.TradeRecorder {
	if b.journal == nil {
		return nil
	}
	return b.journal
}
