package model

import "time"

const (
	SideBuy  = "buy"
	SideSell = "sell"
)

const (
	OrdTypeLimit       = "limit"
	OrdTypeMarket      = "market"
	OrdTypeConditional = "conditional"
	OrdTypeSL          = "sl"
	OrdTypeTP          = "tp"
	OrdTypeOCO         = "oco"
	OrdTypeTrigger     = "trigger"
)

// OrderKind identifies which logical leg of an exchange record a
// canonical order represents. A single algo record can carry a trigger
// leg plus attached stop-loss and take-profit legs; each leg becomes
// its own Order so it stays individually addressable.
type OrderKind string

const (
	KindPlain      OrderKind = "plain"
	KindTrigger    OrderKind = "trigger"
	KindStopLoss   OrderKind = "stop_loss"
	KindTakeProfit OrderKind = "take_profit"
)

// Order is the canonical order entity used everywhere above the raw
// exchange payloads. ID is the exchange ordId for standard orders; for
// algo legs it is the algoId, suffixed with "-sl"/"-tp" for attached
// legs. AlgoID is set whenever the order must be cancelled or amended
// through the algo endpoints.
type Order struct {
	ID           string    `json:"id"`
	AlgoID       string    `json:"algo_id,omitempty"`
	Kind         OrderKind `json:"kind"`
	ParentAlgoID string    `json:"parent_algo_id,omitempty"`
	InstID       string    `json:"inst_id"`
	Side         string    `json:"side"`
	PosSide      string    `json:"pos_side,omitempty"`
	OrdType      string    `json:"ord_type"`
	Price        float64   `json:"price"`
	TriggerPrice float64   `json:"trigger_price,omitempty"`
	Size         float64   `json:"size"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAlgo reports whether cancel/amend must route through the algo
// endpoints for this order.
func (o Order) IsAlgo() bool {
	return o.AlgoID != ""
}

// AnchorPrice returns the price level the chart overlay should draw the
// order at: the trigger price when one is set, otherwise the order
// price.
func (o Order) AnchorPrice() float64 {
	if o.TriggerPrice > 0 {
		return o.TriggerPrice
	}
	return o.Price
}
