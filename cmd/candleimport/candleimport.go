package candleimport

import (
	"context"
	"net/http"
	"time"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"charttrader/src/model"
	"charttrader/src/repository"
)

const (
	Duration1m = "1m"
	Duration1h = "1h"
)

// CandleImport pulls historical OHLCV candles from Binance into the
// local seed store so a freshly opened chart has history before the
// first exchange backfill completes.
type CandleImport struct {
	Log      *logger.Entry
	Config   *Config
	Repo     *repository.CandleRepository
	exchange goex.API
}

func (c *CandleImport) Start() error {
	c.Config = GetConfig()
	if c.Repo == nil {
		c.Repo = repository.NewCandleRepository()
	}
	if c.exchange == nil {
		c.exchange = newBinanceInstance()
	}

	if c.Config.AutoMode {
		if err := c.determineStartPoint(); err != nil {
			return err
		}
	}

	return c.fetchAndStore()
}

func newBinanceInstance() *binance.Binance {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	return binance.NewWithConfig(apiConfig)
}

func (c *CandleImport) symbol() string {
	return c.Config.Symbol + "_" + c.Config.Quote
}

// determineStartPoint resumes one interval before the newest stored
// candle instead of re-downloading from the configured start.
func (c *CandleImport) determineStartPoint() error {
	c.Config.EndDt = time.Now()

	latest, err := c.Repo.LatestSeedTime(context.Background(), c.symbol())
	if err != nil {
		c.Log.WithError(err).Error("Failed to query latest seed datetime")
		return err
	}

	if latest.Valid {
		c.Config.StartDt = latest.Time.Add(-c.parseDuration())
		c.Log.
			WithField("StartDt", c.Config.StartDt.String()).
			WithField("EndDt", c.Config.EndDt.String()).
			Info("determineStartPoint resuming from stored data")
	} else {
		c.Log.
			WithField("StartDt", c.Config.StartDt.String()).
			WithField("EndDt", c.Config.EndDt.String()).
			Info("determineStartPoint no stored data, starting from configured StartDt")
	}

	return nil
}

func (c *CandleImport) fetchAndStore() error {
	klines, err := c.fetchOHLCVSeries()
	if err != nil {
		return err
	}

	rows := make([]model.OHLCVSeed, 0, len(klines))
	for _, k := range klines {
		rows = append(rows, model.OHLCVSeed{
			Datetime: time.Unix(k.Timestamp, 0).UTC(),
			Symbol:   k.Pair.String(),
			Open:     decimal.NewFromFloat(k.Open),
			High:     decimal.NewFromFloat(k.High),
			Low:      decimal.NewFromFloat(k.Low),
			Close:    decimal.NewFromFloat(k.Close),
			Volume:   decimal.NewFromFloat(k.Vol),
		})
	}

	if err := c.Repo.UpsertSeeds(context.Background(), rows); err != nil {
		c.Log.WithError(err).Error("fetchAndStore, UpsertSeeds")
		return err
	}

	c.Log.WithFields(logger.Fields{
		"Symbol":  c.symbol(),
		"Candles": len(rows),
	}).Info("OHLCV seed data inserted or updated in database")

	return nil
}

func (c *CandleImport) fetchOHLCVSeries() ([]goex.Kline, error) {
	targetSymbol := goex.NewCurrencyPair(
		goex.Currency{Symbol: c.Config.Symbol},
		goex.Currency{Symbol: c.Config.Quote},
	)

	const millis = 1000
	klines, err := c.exchange.GetKlineRecords(
		targetSymbol,
		c.parseDurationToGoex(),
		c.Config.Limit,
		goex.OptionalParameter{}.
			Optional("startTime", c.Config.StartDt.Unix()*millis).
			Optional("endTime", c.Config.EndDt.Unix()*millis),
	)
	if err != nil {
		return nil, err
	}

	return klines, nil
}

func (c *CandleImport) parseDuration() time.Duration {
	switch c.Config.DurationStr {
	case Duration1m:
		return time.Minute
	case Duration1h:
		return time.Hour
	default:
		panic("invalid DURATION env var")
	}
}

func (c *CandleImport) parseDurationToGoex() goex.KlinePeriod {
	switch c.Config.DurationStr {
	case Duration1m:
		return goex.KLINE_PERIOD_1MIN
	case Duration1h:
		return goex.KLINE_PERIOD_1H
	default:
		panic("invalid DURATION env var")
	}
}
