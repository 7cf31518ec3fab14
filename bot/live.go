package bot

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/interfaces"
	"github.com/luksonlj/takie-tam/metrics"
	"github.com/luksonlj/takie-tam/providers/paper"
	"github.com/luksonlj/takie-tam/services"
	"github.com/luksonlj/takie-tam/ui"
)

// RunLive polls the exchange and trades every newly closed bar until interrupted
func RunLive(c *cli.Context) error {
	b, err := newBot(c)
	if err != nil {
		return err
	}
	defer b.close()
	if err := b.openJournal(); err != nil {
		return err
	}

	withUI := c.Bool("ui")
	if withUI && (b.cfg.LogFile == "" || b.cfg.LogFile == "-") {
		// the dashboard owns the terminal
		if err := helpers.ConfigureLogger("bot.log", b.cfg.LogLevel); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	exchange := b.binanceService()
	provider := b.candleProvider(ctx, exchange)

	var executor interfaces.OrderExecutor = exchange
	paperTrading := c.Bool("paper") || b.cfg.APIKey == ""
	if paperTrading {
		executor = paper.NewPaperService(b.cfg.Symbol, provider)
	}
	manager := services.NewPositionManager(PositionManagerConfig(b.cfg), executor)

	session := services.NewLiveSession(services.LiveSessionConfig{
		Symbol:           b.cfg.Symbol,
		Timeframe:        b.cfg.Timeframe,
		BarPeriod:        b.cfg.BarPeriod,
		PollInterval:     b.cfg.PollInterval,
		MaxFetchFailures: b.cfg.MaxFetchFailures,
	}, provider, b.engine, b.scorer, manager)
	if recorder := b.recorder(); recorder != nil {
		session.WithRecorder(recorder)
	}

	if b.cfg.TelegramOutput {
		notifier, err := helpers.NewTelegramNotifier(b.cfg.TelegramToken, b.cfg.TelegramChatID)
		if err != nil {
			return err
		}
		session.WithNotifier(notifier)
		if err := notifier.Notify(fmt.Sprintf("🖖🏻 %s session started on %s", b.cfg.Symbol, b.cfg.Timeframe)); err != nil {
			helpers.Logger.WithError(err).Warn("could not send notification")
		}
	}

	helpers.Logger.WithFields(log.Fields{
		"symbol":  b.cfg.Symbol,
		"market":  b.cfg.Market,
		"testnet": b.cfg.Testnet,
		"paper":   paperTrading,
	}).Infoln("🖖🏻 Live session started")

	group, groupCtx := errgroup.WithContext(ctx)

	if b.cfg.MetricsAddr != "" {
		collector := metrics.NewCollector(b.cfg.Symbol)
		session.WithObserver(collector)
		group.Go(func() error {
			return collector.Serve(groupCtx, b.cfg.MetricsAddr)
		})
	}

	if withUI {
		userInterface := ui.NewUserInterface(manager)
		session.OnUpdate(userInterface.Update)
		group.Go(func() error {
			return userInterface.Run(groupCtx, cancel)
		})
	}

	group.Go(func() error {
		defer cancel()
		return session.Run(groupCtx)
	})

	err = group.Wait()
	if !withUI {
		PrintReport(os.Stdout, session.Report())
	}
	if output := c.String("output"); output != "" {
		if werr := WriteReport(output, session.Report()); werr != nil && err == nil {
			err = werr
		}
	}
	final := session.Position()
	helpers.Logger.WithField("position", final.State()).Info("live session stopped")
	return err
}
