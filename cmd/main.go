package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"charttrader/cmd/candleimport"
	"charttrader/cmd/keys"
	"charttrader/cmd/panel"
	"charttrader/src/database"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "ChartTrader CMD"
	app.Usage = "The ChartTrader command line interface"

	app.Commands = []cli.Command{
		panelCMD,
		keysCMD,
		candleImportCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	panelCMD = cli.Command{
		Name:        "panel",
		Usage:       "run the trading panel",
		Action:      panelAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the trading panel: poll engine plus status API`,
	}
	keysCMD = cli.Command{
		Name:        "keys",
		Usage:       "configure exchange credentials",
		Action:      keysAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Interactively set API key, secret and passphrase`,
	}
	candleImportCMD = cli.Command{
		Name:        "candleimport",
		Usage:       "import seed candles",
		Action:      candleImportAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Import historical OHLCV candles into the seed store`,
	}
)

func panelAction(_ *cli.Context) error {

	logrus.Info("Starting panel CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	p := &panel.Panel{}
	if err := p.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func keysAction(_ *cli.Context) error {

	logrus.Info("Starting keys CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	k := &keys.Keys{}
	if err := k.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

// candleImportAction pulls OHLCV candles for the configured symbol
func candleImportAction(_ *cli.Context) error {

	logrus.Info("Starting candle import CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	imp := &candleimport.CandleImport{
		Log: logrus.WithField("cmd", "candleimport"),
	}
	if err := imp.Start(); err != nil {
		logrus.WithError(err).Error("Starting candle import cmd")
		return err
	}

	return nil
}
