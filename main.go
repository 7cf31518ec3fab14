package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/luksonlj/takie-tam/bot"
	"github.com/luksonlj/takie-tam/helpers"
)

func commonFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "env", Value: "conf.env", Usage: "environment file with the bot configuration"},
		&cli.StringFlag{Name: "symbol", Usage: "override SYMBOL, e.g. BTCUSDT or btc-usdt"},
		&cli.StringFlag{Name: "output", Usage: "write the final report as yaml to this file"},
	}
	return append(flags, extra...)
}

func main() {
	app := &cli.App{
		Name:  "takie-tam",
		Usage: "trend-following bot with pyramiding, contrarian entries and trailing stops",
		Commands: []*cli.Command{
			{
				Name:  "backtest",
				Usage: "replay the most recent closed bars of the exchange",
				Flags: commonFlags(
					&cli.IntFlag{Name: "lookback", Usage: "number of bars to replay (default LOOKBACK)"},
					&cli.BoolFlag{Name: "signals", Usage: "keep the reasons of every scored bar in the report"},
				),
				Action: bot.RunBacktest,
			},
			{
				Name:  "demo",
				Usage: "replay a seeded synthetic market",
				Flags: commonFlags(
					&cli.Int64Flag{Name: "seed", Value: 42, Usage: "random seed of the synthetic market"},
					&cli.IntFlag{Name: "bars", Value: 168, Usage: "number of synthetic bars"},
					&cli.BoolFlag{Name: "signals", Usage: "keep the reasons of every scored bar in the report"},
				),
				Action: bot.RunDemo,
			},
			{
				Name:  "live",
				Usage: "poll the exchange and trade every newly closed bar",
				Flags: commonFlags(
					&cli.BoolFlag{Name: "paper", Usage: "fill orders locally instead of sending them to the exchange"},
					&cli.BoolFlag{Name: "ui", Usage: "show the terminal dashboard"},
				),
				Action: bot.RunLive,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		helpers.Logger.Fatalln(err)
	}
}
