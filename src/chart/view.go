package chart

// View is the boundary to the chart rendering engine. It owns the
// candle plot and the pan/zoom state; the overlay only needs its
// price<->screen coordinate conversion and the visible range.
type View interface {
	// PriceY converts a price to a screen Y coordinate. ok is false
	// when the price has no valid on-screen coordinate.
	PriceY(price float64) (y float64, ok bool)

	// PriceAtY converts a cursor Y coordinate back to a price. ok is
	// false when the coordinate maps to no meaningful price.
	PriceAtY(y float64) (price float64, ok bool)

	// VisibleStart is the index of the first visible candle; it goes
	// negative when the viewport has been panned past the left edge of
	// the loaded series.
	VisibleStart() int
}

// Event kinds the overlay recomputes on. The coordinate space changes
// on every pan/zoom even when data is static, so both kinds trigger a
// full recompute.
type EventKind int

const (
	DataChanged EventKind = iota
	ViewportChanged
)

type Event struct {
	Kind EventKind
}
