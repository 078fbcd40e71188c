package executors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ActiveInstrument  string        `envconfig:"ACTIVE_INSTRUMENT" default:"BTC-USDT-SWAP"`
	CandleBar         string        `envconfig:"CANDLE_BAR" default:"1m"`
	AccountPeriod     time.Duration `envconfig:"ACCOUNT_POLL_PERIOD" default:"3s"`
	TickersPeriod     time.Duration `envconfig:"TICKERS_POLL_PERIOD" default:"10s"`
	CandlesPeriod     time.Duration `envconfig:"CANDLES_POLL_PERIOD" default:"10s"`
	RatesPeriod       time.Duration `envconfig:"RATES_POLL_PERIOD" default:"60s"`
	ConfigWatchPeriod time.Duration `envconfig:"CONFIG_WATCH_PERIOD" default:"5s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
