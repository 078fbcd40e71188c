package okx

import (
	"encoding/json"
	"strconv"

	logger "github.com/sirupsen/logrus"
)

// Raw payload shapes for the endpoints consumed only inside this
// package. Order payloads live in src/model (okx_raw.go) because the
// mapper decomposes them.

type rawInstrument struct {
	InstID   string `json:"instId"`
	InstType string `json:"instType"`
	BaseCcy  string `json:"baseCcy"`
	QuoteCcy string `json:"quoteCcy"`
	CtValCcy string `json:"ctValCcy"`
	Lever    string `json:"lever"`
	CtVal    string `json:"ctVal"`
}

type rawTicker struct {
	InstID    string `json:"instId"`
	Last      string `json:"last"`
	Open24h   string `json:"open24h"`
	BidPx     string `json:"bidPx"`
	AskPx     string `json:"askPx"`
	Vol24h    string `json:"vol24h"`
	VolCcy24h string `json:"volCcy24h"`
	Ts        string `json:"ts"`
}

type rawExchangeRate struct {
	UsdCny string `json:"usdCny"`
}

type rawBalance struct {
	TotalEq string `json:"totalEq"`
	Details []struct {
		Ccy       string `json:"ccy"`
		AvailBal  string `json:"availBal"`
		FrozenBal string `json:"frozenBal"`
		EqUsd     string `json:"eqUsd"`
	} `json:"details"`
}

type rawPosition struct {
	InstID  string `json:"instId"`
	PosSide string `json:"posSide"`
	Pos     string `json:"pos"`
	AvgPx   string `json:"avgPx"`
	Upl     string `json:"upl"`
	MgnMode string `json:"mgnMode"`
	Ccy     string `json:"ccy"`
	Lever   string `json:"lever"`
}

type rawFill struct {
	InstID   string `json:"instId"`
	InstType string `json:"instType"`
	OrdID    string `json:"ordId"`
	Side     string `json:"side"`
	FillPx   string `json:"fillPx"`
	FillSz   string `json:"fillSz"`
	Fee      string `json:"fee"`
	FeeCcy   string `json:"feeCcy"`
	Ts       string `json:"ts"`
}

type rawClosedPosition struct {
	InstID     string `json:"instId"`
	PosSide    string `json:"posSide"`
	OpenAvgPx  string `json:"openAvgPx"`
	CloseAvgPx string `json:"closeAvgPx"`
	Pnl        string `json:"pnl"`
	Lever      string `json:"lever"`
	CTime      string `json:"cTime"`
	UTime      string `json:"uTime"`
}

// orderResult is the per-item acknowledgement for order mutations.
// sCode "0" means accepted.
type orderResult struct {
	OrdID  string `json:"ordId"`
	AlgoID string `json:"algoId"`
	SCode  string `json:"sCode"`
	SMsg   string `json:"sMsg"`
}

func parseFloatSafe(field, v string) float64 {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.WithFields(logger.Fields{
			"field": field,
			"value": v,
		}).WithError(err).Error("Failed to parse float from OKX response field; defaulting to 0")
		return 0
	}
	return f
}

func parseInt64Safe(field, v string) int64 {
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logger.WithFields(logger.Fields{
			"field": field,
			"value": v,
		}).WithError(err).Error("Failed to parse int from OKX response field; defaulting to 0")
		return 0
	}
	return n
}

func decodeData(data json.RawMessage, out interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
