package alert

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"charttrader/src/model"
)

// Direction labels which bound a rule fired on.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// Trigger is one fired price alert.
type Trigger struct {
	InstID    string
	Direction Direction
	Bound     float64
	Price     float64
}

// Notify receives fired alerts; the UI layer implements it with a
// toast/sound sink.
type Notify func(Trigger)

// Notifier evaluates configured price bounds against ticker updates.
// Each rule fires at most once per breach: it re-arms only after the
// price comes back inside the bound.
type Notifier struct {
	notify Notify

	mu    sync.Mutex
	rules []model.AlertRule
	fired map[string]bool
}

func NewNotifier(notify Notify) *Notifier {
	if notify == nil {
		notify = func(Trigger) {}
	}
	return &Notifier{
		notify: notify,
		fired:  make(map[string]bool),
	}
}

// SetRules replaces the rule set. Latch state carries over by key so a
// config save does not re-fire everything that is already breached.
func (n *Notifier) SetRules(rules []model.AlertRule) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rules = rules

	keep := make(map[string]bool, len(n.fired))
	for _, r := range rules {
		for _, key := range []string{ruleKey(r, DirectionAbove), ruleKey(r, DirectionBelow)} {
			if n.fired[key] {
				keep[key] = true
			}
		}
	}
	n.fired = keep
}

// Observe evaluates one price tick against the rules for its
// instrument.
func (n *Notifier) Observe(instID string, last float64) {
	if last <= 0 {
		return
	}

	n.mu.Lock()
	var triggers []Trigger
	price := decimal.NewFromFloat(last)
	for _, r := range n.rules {
		if r.InstID != instID {
			continue
		}
		if r.Upper > 0 {
			key := ruleKey(r, DirectionAbove)
			breached := price.GreaterThanOrEqual(decimal.NewFromFloat(r.Upper))
			if breached && !n.fired[key] {
				n.fired[key] = true
				triggers = append(triggers, Trigger{InstID: instID, Direction: DirectionAbove, Bound: r.Upper, Price: last})
			} else if !breached {
				n.fired[key] = false
			}
		}
		if r.Lower > 0 {
			key := ruleKey(r, DirectionBelow)
			breached := price.LessThanOrEqual(decimal.NewFromFloat(r.Lower))
			if breached && !n.fired[key] {
				n.fired[key] = true
				triggers = append(triggers, Trigger{InstID: instID, Direction: DirectionBelow, Bound: r.Lower, Price: last})
			} else if !breached {
				n.fired[key] = false
			}
		}
	}
	n.mu.Unlock()

	for _, trg := range triggers {
		logger.WithFields(logger.Fields{
			"instId":    trg.InstID,
			"direction": trg.Direction,
			"bound":     trg.Bound,
			"price":     trg.Price,
		}).Info("price alert fired")
		n.notify(trg)
	}
}

func ruleKey(r model.AlertRule, dir Direction) string {
	bound := r.Upper
	if dir == DirectionBelow {
		bound = r.Lower
	}
	return fmt.Sprintf("%s/%s/%s", r.InstID, dir, strconv.FormatFloat(bound, 'f', -1, 64))
}
