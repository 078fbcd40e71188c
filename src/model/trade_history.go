package model

import "time"

// Fill is one executed trade from the fills history endpoint.
type Fill struct {
	InstID    string  `json:"inst_id"`
	OrdID     string  `json:"ord_id"`
	Side      string  `json:"side"`
	FillPrice float64 `json:"fill_price"`
	FillSize  float64 `json:"fill_size"`
	Fee       float64 `json:"fee"`
	FeeCcy    string  `json:"fee_ccy,omitempty"`
	Ts        int64   `json:"ts"`
}

// TradeHistory bundles recent fills and closed positions for the
// status API.
type TradeHistory struct {
	Fills           []Fill           `json:"fills"`
	ClosedPositions []ClosedPosition `json:"closed_positions"`
}

// ClosedPosition is one row from the positions-history endpoint.
type ClosedPosition struct {
	InstID        string    `json:"inst_id"`
	PosSide       string    `json:"pos_side"`
	OpenAvgPrice  float64   `json:"open_avg_price"`
	CloseAvgPrice float64   `json:"close_avg_price"`
	Pnl           float64   `json:"pnl"`
	Leverage      float64   `json:"leverage,omitempty"`
	OpenedAt      time.Time `json:"opened_at"`
	ClosedAt      time.Time `json:"closed_at"`
}
