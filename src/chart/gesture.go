package chart

import (
	"math"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"charttrader/src/model"
	"charttrader/src/tp_sl"
)

// hitRadius is the vertical pick tolerance around a drawn line, in
// screen pixels.
const hitRadius = 6.0

// Intent is a user action produced by a completed drag gesture. The
// overlay never talks to the exchange itself; intents go to the
// controller which owns validation and API routing.
type Intent interface {
	intent()
}

// ModifyOrderIntent asks for an existing order to be re-priced.
type ModifyOrderIntent struct {
	Order    model.Order
	NewPrice float64
}

// CreateStopIntent asks for a protective conditional order closing the
// full position at the trigger price.
type CreateStopIntent struct {
	Position     model.Position
	Kind         tp_sl.StopKind
	TriggerPrice float64
}

func (ModifyOrderIntent) intent() {}
func (CreateStopIntent) intent()  {}

type dragState int

const (
	stateIdle dragState = iota
	stateOrderDragging
	statePositionDragging
)

type gestureState struct {
	state      dragState
	order      model.Order
	position   model.Position
	price      float64
	priceValid bool
	stopKind   tp_sl.StopKind
}

func (g *gestureState) reset() {
	*g = gestureState{}
}

// MouseDown hit-tests the drawn lines and begins a drag when one is
// within hitRadius of the cursor. Orders take priority over the
// position line when both are in range.
func (s *OverlaySynchronizer) MouseDown(y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gesture.state != stateIdle {
		return false
	}

	bestDist := hitRadius
	bestIdx := -1
	for i, lvl := range s.levels {
		d := math.Abs(lvl.Y - y)
		if d <= bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	if bestIdx >= 0 {
		s.gesture = gestureState{
			state: stateOrderDragging,
			order: s.levels[bestIdx].Order,
		}
		return true
	}

	if s.handle != nil && math.Abs(s.handle.Y-y) <= hitRadius {
		s.gesture = gestureState{
			state:    statePositionDragging,
			position: s.handle.Position,
		}
		return true
	}
	return false
}

// MouseMove tracks the cursor during a drag. Position drags are
// reclassified on every move so the preview can flip between
// take-profit and stop-loss as the cursor crosses the entry price.
func (s *OverlaySynchronizer) MouseMove(y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gesture.state == stateIdle {
		return
	}

	price, ok := s.view.PriceAtY(y)
	if !ok || price <= 0 || math.IsNaN(price) {
		return
	}
	s.gesture.price = price
	s.gesture.priceValid = true

	if s.gesture.state == statePositionDragging {
		s.gesture.stopKind = tp_sl.Classify(
			s.gesture.position.PosSide,
			decimal.NewFromFloat(s.gesture.position.AvgPrice),
			decimal.NewFromFloat(price),
		)
	}
}

// MouseUp commits the drag. Releasing without ever reaching a valid
// price abandons the gesture without emitting anything.
func (s *OverlaySynchronizer) MouseUp() {
	s.mu.Lock()
	g := s.gesture
	s.gesture.reset()
	s.recompute()
	s.mu.Unlock()

	if g.state == stateIdle || !g.priceValid {
		return
	}

	switch g.state {
	case stateOrderDragging:
		logger.WithFields(logger.Fields{
			"order": g.order.ID,
			"price": g.price,
		}).Info("order drag committed")
		s.emit(ModifyOrderIntent{Order: g.order, NewPrice: g.price})
	case statePositionDragging:
		logger.WithFields(logger.Fields{
			"instId": g.position.InstID,
			"kind":   g.stopKind,
			"price":  g.price,
		}).Info("position drag committed")
		s.emit(CreateStopIntent{
			Position:     g.position,
			Kind:         g.stopKind,
			TriggerPrice: g.price,
		})
	}
}

// PointerLeave is treated as a release: leaving the chart area commits
// the gesture at the last valid price rather than leaving the drag
// stuck.
func (s *OverlaySynchronizer) PointerLeave() {
	s.MouseUp()
}

// Dragging reports whether a gesture is in progress, for render code
// that wants to draw the preview line at the cursor.
func (s *OverlaySynchronizer) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gesture.state != stateIdle
}
