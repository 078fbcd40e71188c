package model

import "strings"

const (
	InstTypeSpot = "SPOT"
	InstTypeSwap = "SWAP"
)

// IsSwapInstID classifies an instrument id by its suffix, e.g.
// BTC-USDT-SWAP vs BTC-USDT.
func IsSwapInstID(instID string) bool {
	return strings.Contains(instID, "-SWAP")
}

// Instrument describes a tradable symbol. Immutable once fetched.
type Instrument struct {
	InstID      string  `json:"inst_id"`
	BaseCcy     string  `json:"base_ccy"`
	QuoteCcy    string  `json:"quote_ccy"`
	InstType    string  `json:"inst_type"`
	MaxLeverage float64 `json:"max_leverage,omitempty"`
	CtVal       float64 `json:"ct_val,omitempty"`
}

// Ticker is an ephemeral market snapshot, replaced wholesale on each
// poll.
type Ticker struct {
	InstID    string  `json:"inst_id"`
	Last      float64 `json:"last"`
	Open24h   float64 `json:"open_24h"`
	BidPrice  float64 `json:"bid_price"`
	AskPrice  float64 `json:"ask_price"`
	Vol24h    float64 `json:"vol_24h"`
	VolCcy24h float64 `json:"vol_ccy_24h"`
	Ts        int64   `json:"ts"`
}

// Candle is one OHLC bar. Time is in seconds. Series handed out by the
// market client are ordered oldest first.
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}
