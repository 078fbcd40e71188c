package okx

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	logger "github.com/sirupsen/logrus"

	"charttrader/src/model"
)

// referenceInstID is the instrument whose last price is kept in the
// rates snapshot as the reference asset price.
const referenceInstID = "BTC-USDT"

// Rates is a snapshot of the currency-conversion state.
type Rates struct {
	UsdCny float64 `json:"usd_cny"`
	BtcUsd float64 `json:"btc_usd"`
}

// RatesCache is a single-writer cell for the latest known rates.
// Readers get a copy; only the market client writes to it.
type RatesCache struct {
	mu  sync.RWMutex
	cur Rates
}

func (c *RatesCache) Snapshot() Rates {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur
}

func (c *RatesCache) set(r Rates) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = r
}

// MarketClient wraps the read-only public endpoints.
type MarketClient struct {
	gw    *Gateway
	rates *RatesCache
}

func NewMarketClient(gw *Gateway) *MarketClient {
	return &MarketClient{
		gw:    gw,
		rates: &RatesCache{},
	}
}

// Rates returns the latest known rates snapshot without touching the
// network.
func (m *MarketClient) Rates() Rates {
	return m.rates.Snapshot()
}

// ExchangeRates refreshes the USD/CNY rate and the reference asset
// price, then returns a snapshot. On any failure the previous cached
// values are kept; this never errors to the caller.
func (m *MarketClient) ExchangeRates(ctx context.Context) Rates {
	next := m.rates.Snapshot()

	data, err := m.gw.Call(ctx, http.MethodGet, "/market/exchange-rate", nil, nil)
	if err != nil {
		logger.WithError(err).Warn("exchange-rate fetch failed, keeping cached value")
	} else {
		var rows []rawExchangeRate
		if err := decodeData(data, &rows); err == nil && len(rows) > 0 {
			if v := parseFloatSafe("usdCny", rows[0].UsdCny); v > 0 {
				next.UsdCny = v
			}
		}
	}

	query := url.Values{"instId": {referenceInstID}}
	data, err = m.gw.Call(ctx, http.MethodGet, "/market/ticker", query, nil)
	if err != nil {
		logger.WithError(err).Warn("reference ticker fetch failed, keeping cached value")
	} else {
		var rows []rawTicker
		if err := decodeData(data, &rows); err == nil && len(rows) > 0 {
			if v := parseFloatSafe("last", rows[0].Last); v > 0 {
				next.BtcUsd = v
			}
		}
	}

	m.rates.set(next)
	return next
}

// fallbackInstruments keeps the downstream UI from ever observing an
// empty instrument universe on first load.
var fallbackInstruments = []model.Instrument{
	{InstID: "BTC-USDT", BaseCcy: "BTC", QuoteCcy: "USDT", InstType: model.InstTypeSpot},
	{InstID: "ETH-USDT", BaseCcy: "ETH", QuoteCcy: "USDT", InstType: model.InstTypeSpot},
	{InstID: "BTC-USDT-SWAP", BaseCcy: "BTC", QuoteCcy: "USDT", InstType: model.InstTypeSwap, MaxLeverage: 100, CtVal: 0.01},
	{InstID: "ETH-USDT-SWAP", BaseCcy: "ETH", QuoteCcy: "USDT", InstType: model.InstTypeSwap, MaxLeverage: 100, CtVal: 0.1},
}

// Instruments fetches the tradable universe for one instrument type.
// On failure it returns the hard-coded fallback set filtered by type.
func (m *MarketClient) Instruments(ctx context.Context, instType string) []model.Instrument {
	query := url.Values{"instType": {instType}}
	data, err := m.gw.Call(ctx, http.MethodGet, "/public/instruments", query, nil)
	if err != nil {
		logger.WithError(err).WithField("instType", instType).
			Warn("instruments fetch failed, serving fallback set")
		return fallbackForType(instType)
	}

	var rows []rawInstrument
	if err := decodeData(data, &rows); err != nil {
		logger.WithError(err).Warn("instruments decode failed, serving fallback set")
		return fallbackForType(instType)
	}

	out := make([]model.Instrument, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Instrument{
			InstID:      r.InstID,
			BaseCcy:     r.BaseCcy,
			QuoteCcy:    r.QuoteCcy,
			InstType:    r.InstType,
			MaxLeverage: parseFloatSafe("lever", r.Lever),
			CtVal:       parseFloatSafe("ctVal", r.CtVal),
		})
	}
	if len(out) == 0 {
		return fallbackForType(instType)
	}
	return out
}

func fallbackForType(instType string) []model.Instrument {
	out := make([]model.Instrument, 0, len(fallbackInstruments))
	for _, inst := range fallbackInstruments {
		if inst.InstType == instType {
			out = append(out, inst)
		}
	}
	return out
}

// Tickers fetches all tickers of one instrument type. Failure degrades
// to an empty list.
func (m *MarketClient) Tickers(ctx context.Context, instType string) []model.Ticker {
	query := url.Values{"instType": {instType}}
	data, err := m.gw.Call(ctx, http.MethodGet, "/market/tickers", query, nil)
	if err != nil {
		logger.WithError(err).WithField("instType", instType).Warn("tickers fetch failed")
		return nil
	}

	var rows []rawTicker
	if err := decodeData(data, &rows); err != nil {
		logger.WithError(err).Warn("tickers decode failed")
		return nil
	}

	out := make([]model.Ticker, 0, len(rows))
	for _, r := range rows {
		vol := r.Vol24h
		if vol == "" {
			vol = r.VolCcy24h
		}
		out = append(out, model.Ticker{
			InstID:    r.InstID,
			Last:      parseFloatSafe("last", r.Last),
			Open24h:   parseFloatSafe("open24h", r.Open24h),
			BidPrice:  parseFloatSafe("bidPx", r.BidPx),
			AskPrice:  parseFloatSafe("askPx", r.AskPx),
			Vol24h:    parseFloatSafe("vol24h", vol),
			VolCcy24h: parseFloatSafe("volCcy24h", r.VolCcy24h),
			Ts:        parseInt64Safe("ts", r.Ts),
		})
	}
	return out
}

// Candles fetches history candles for an instrument. after is a cutoff
// in seconds: only candles strictly older than it are returned
// (exchange-native milliseconds on the wire); zero means newest page.
// The exchange returns newest first; the result is reversed to oldest
// first before returning.
func (m *MarketClient) Candles(ctx context.Context, instID, bar string, after int64) ([]model.Candle, error) {
	query := url.Values{
		"instId": {instID},
		"bar":    {bar},
		"limit":  {"100"},
	}
	if after > 0 {
		query.Set("after", strconv.FormatInt(after*1000, 10))
	}

	data, err := m.gw.Call(ctx, http.MethodGet, "/market/history-candles", query, nil)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	if err := decodeData(data, &rows); err != nil {
		return nil, err
	}

	out := make([]model.Candle, 0, len(rows))
	// newest -> oldest on the wire; walk backwards to return oldest first
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		if len(r) < 5 {
			continue
		}
		out = append(out, model.Candle{
			Time:  parseInt64Safe("candle.ts", r[0]) / 1000,
			Open:  parseFloatSafe("candle.o", r[1]),
			High:  parseFloatSafe("candle.h", r[2]),
			Low:   parseFloatSafe("candle.l", r[3]),
			Close: parseFloatSafe("candle.c", r[4]),
		})
	}
	return out, nil
}
