package model

// OkxPendingOrder is one row from GET /trade/orders-pending, kept in
// the exchange's string-typed wire shape. The mapper package converts
// it to a canonical Order.
type OkxPendingOrder struct {
	OrdID   string `json:"ordId"`
	InstID  string `json:"instId"`
	Side    string `json:"side"`
	PosSide string `json:"posSide"`
	OrdType string `json:"ordType"`
	Px      string `json:"px"`
	Sz      string `json:"sz"`
	State   string `json:"state"`
	CTime   string `json:"cTime"`
}

// OkxAlgoOrder is one row from GET /trade/orders-algo-pending. A single
// record conflates a primary trigger leg with optional attached
// stop-loss and take-profit legs; the mapper decomposes it into 0-3
// canonical orders. Absent legs are reported as "", "0" or "-1".
type OkxAlgoOrder struct {
	AlgoID      string `json:"algoId"`
	InstID      string `json:"instId"`
	Side        string `json:"side"`
	PosSide     string `json:"posSide"`
	OrdType     string `json:"ordType"`
	OrdPx       string `json:"ordPx"`
	Sz          string `json:"sz"`
	State       string `json:"state"`
	CTime       string `json:"cTime"`
	TriggerPx   string `json:"triggerPx"`
	SlTriggerPx string `json:"slTriggerPx"`
	SlOrdPx     string `json:"slOrdPx"`
	TpTriggerPx string `json:"tpTriggerPx"`
	TpOrdPx     string `json:"tpOrdPx"`
}
