package chart

import (
	"context"
	"math"
	"sync"

	logger "github.com/sirupsen/logrus"

	"charttrader/src/model"
)

// OrderLevel is one drawable horizontal line for a pending order.
type OrderLevel struct {
	Order model.Order
	Price float64
	Y     float64
}

// PositionHandle is the drawable entry-price line of the live position.
type PositionHandle struct {
	Position model.Position
	Price    float64
	Y        float64
}

// OverlaySynchronizer projects pending orders and the open position
// onto chart screen coordinates. It holds the latest domain state set
// by the poll loops and recomputes the drawable levels whenever a
// DataChanged or ViewportChanged event arrives; nothing is recomputed
// between events.
type OverlaySynchronizer struct {
	view View
	emit func(Intent)

	mu         sync.Mutex
	activeInst string
	orders     []model.Order
	position   *model.Position

	levels []OrderLevel
	handle *PositionHandle

	gesture gestureState
}

func NewOverlaySynchronizer(view View, emit func(Intent)) *OverlaySynchronizer {
	if emit == nil {
		emit = func(Intent) {}
	}
	return &OverlaySynchronizer{view: view, emit: emit}
}

// SetActiveInstrument switches which instrument's orders and position
// are projected. State for other instruments stays loaded but hidden.
func (s *OverlaySynchronizer) SetActiveInstrument(instID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeInst != instID {
		s.activeInst = instID
		s.gesture.reset()
	}
}

func (s *OverlaySynchronizer) SetOrders(orders []model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
}

func (s *OverlaySynchronizer) SetPosition(pos *model.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = pos
}

// Apply recomputes the overlay for one event. Both event kinds need a
// full recompute: data changes move the anchors, viewport changes move
// the coordinate space under them.
func (s *OverlaySynchronizer) Apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recompute()
}

// Run consumes events until the context is done.
func (s *OverlaySynchronizer) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.Apply(ev)
		}
	}
}

// Levels returns the current drawable order lines.
func (s *OverlaySynchronizer) Levels() []OrderLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]OrderLevel, len(s.levels))
	copy(out, s.levels)
	return out
}

// Handle returns the current position line, nil when none is drawable.
func (s *OverlaySynchronizer) Handle() *PositionHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return nil
	}
	h := *s.handle
	return &h
}

func (s *OverlaySynchronizer) recompute() {
	s.levels = s.levels[:0]
	s.handle = nil

	for _, o := range s.orders {
		if o.InstID != s.activeInst {
			continue
		}
		// The dragged order follows the cursor, not the stale anchor.
		if s.gesture.state == stateOrderDragging && o.ID == s.gesture.order.ID {
			continue
		}
		price := o.AnchorPrice()
		if price <= 0 || math.IsNaN(price) {
			logger.WithFields(logger.Fields{
				"order": o.ID,
				"price": price,
			}).Debug("skipping order with unusable anchor price")
			continue
		}
		y, ok := s.view.PriceY(price)
		if !ok {
			continue
		}
		s.levels = append(s.levels, OrderLevel{Order: o, Price: price, Y: y})
	}

	if s.position != nil && s.position.InstID == s.activeInst && s.position.Size != 0 {
		if s.gesture.state == statePositionDragging {
			return
		}
		price := s.position.AvgPrice
		if price > 0 && !math.IsNaN(price) {
			if y, ok := s.view.PriceY(price); ok {
				s.handle = &PositionHandle{Position: *s.position, Price: price, Y: y}
			}
		}
	}
}
