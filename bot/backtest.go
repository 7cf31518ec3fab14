package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/models"
	"github.com/luksonlj/takie-tam/providers/paper"
	"github.com/luksonlj/takie-tam/providers/simulated"
	"github.com/luksonlj/takie-tam/services"
)

// RunBacktest replays the last LOOKBACK closed bars of the exchange
func RunBacktest(c *cli.Context) error {
	b, err := newBot(c)
	if err != nil {
		return err
	}
	defer b.close()
	if err := b.openJournal(); err != nil {
		return err
	}

	lookback := b.cfg.Lookback
	if c.IsSet("lookback") {
		lookback = c.Int("lookback")
	}
	if lookback < b.engine.MinWindow() {
		return fmt.Errorf("%w: --lookback %d is shorter than the indicator window %d",
			models.ErrInvalidConfiguration, lookback, b.engine.MinWindow())
	}

	helpers.Logger.Infoln("🖖🏻 Backtest started")
	provider := b.candleProvider(c.Context, b.binanceService())
	fetched, err := provider.FetchCandles(c.Context, b.cfg.Symbol, b.cfg.Timeframe, lookback+1)
	if err != nil {
		return err
	}
	candles := services.ClosedCandles(fetched, b.cfg.BarPeriod, time.Now())
	if b.journal != nil {
		if err := b.journal.SaveCandles(b.cfg.Symbol, b.cfg.Timeframe, candles); err != nil {
			helpers.Logger.WithError(err).Warn("could not archive candles")
		}
	}
	return b.replay(c, candles)
}

// RunDemo replays a seeded synthetic market
func RunDemo(c *cli.Context) error {
	b, err := newBot(c)
	if err != nil {
		return err
	}
	defer b.close()
	if err := b.openJournal(); err != nil {
		return err
	}

	simCfg := simulated.DefaultConfig()
	simCfg.Seed = c.Int64("seed")
	simCfg.Bars = c.Int("bars")
	if simCfg.Bars < b.engine.MinWindow() {
		return fmt.Errorf("%w: --bars %d is shorter than the indicator window %d",
			models.ErrInvalidConfiguration, simCfg.Bars, b.engine.MinWindow())
	}

	helpers.Logger.WithFields(log.Fields{"seed": simCfg.Seed, "bars": simCfg.Bars}).Infoln("🖖🏻 Demo started")
	candles := simulated.NewSimulatedService(simCfg).Generate(b.cfg.BarPeriod)
	return b.replay(c, candles)
}

func (b *Bot) replay(c *cli.Context, candles []models.Candle) error {
	executor := paper.NewPaperService(b.cfg.Symbol, nil)
	manager := services.NewPositionManager(PositionManagerConfig(b.cfg), executor)
	backtest := services.NewBacktestService(b.cfg.Symbol, b.engine, b.scorer, manager).
		WithSignalLog(c.Bool("signals"))
	if recorder := b.recorder(); recorder != nil {
		backtest = backtest.WithRecorder(recorder)
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()
	report, err := backtest.Run(ctx, candles)
	if err != nil && ctx.Err() == nil {
		return err
	}

	PrintReport(os.Stdout, report)
	if output := c.String("output"); output != "" {
		if err := WriteReport(output, report); err != nil {
			return err
		}
		helpers.Logger.WithField("file", output).Info("report written")
	}
	if err != nil {
		helpers.Logger.Warn("backtest interrupted, report is partial")
	}
	return nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
