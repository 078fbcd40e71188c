package model

const (
	PosSideLong  = "long"
	PosSideShort = "short"
	PosSideNet   = "net"
)

const (
	MarginModeCross    = "cross"
	MarginModeIsolated = "isolated"
)

// Position is one live position row per instrument, refreshed wholesale
// on every poll. CtVal is the contract multiplier joined in from the
// instrument metadata; 1 when no instrument match was found.
type Position struct {
	InstID        string  `json:"inst_id"`
	PosSide       string  `json:"pos_side"`
	Size          float64 `json:"size"`
	AvgPrice      float64 `json:"avg_price"`
	UnrealizedPnl float64 `json:"unrealized_pnl"`
	MarginMode    string  `json:"margin_mode"`
	MarginCcy     string  `json:"margin_ccy,omitempty"`
	Leverage      float64 `json:"leverage,omitempty"`
	CtVal         float64 `json:"ct_val"`
}

// CloseSide returns the order side that reduces this position. Net-mode
// rows carry their direction in the sign of Size: a negative size is a
// short, closed by buying.
func (p Position) CloseSide() string {
	if p.PosSide == PosSideShort {
		return SideBuy
	}
	if p.PosSide != PosSideLong && p.Size < 0 {
		return SideBuy
	}
	return SideSell
}
