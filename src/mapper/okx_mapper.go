package mapper

import (
	"sort"
	"strconv"
	"time"

	logger "github.com/sirupsen/logrus"

	"charttrader/src/model"
)

// parseFloatSafe converts a wire field, defaulting to 0 with a log on
// anything unparseable.
func parseFloatSafe(field, v string) float64 {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"field": field,
			"value": v,
		}).WithError(err).Error("Failed to parse float from OKX order field; defaulting to 0")
		return 0
	}
	return f
}

// legPrice reports whether a trigger-price field denotes a real leg.
// Absent legs come over the wire as "", "0" or "-1".
func legPrice(field, v string) (float64, bool) {
	if v == "" || v == "-1" {
		return 0, false
	}
	f := parseFloatSafe(field, v)
	if f <= 0 {
		return 0, false
	}
	return f, true
}

func parseCTime(field, v string) time.Time {
	if v == "" {
		return time.Unix(0, 0)
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"field": field,
			"value": v,
		}).WithError(err).Error("Failed to parse timestamp from OKX order field")
		return time.Unix(0, 0)
	}
	return time.UnixMilli(ms)
}

// MapPendingOrder converts one standard pending order into the
// canonical shape.
func MapPendingOrder(raw model.OkxPendingOrder) model.Order {
	return model.Order{
		ID:        raw.OrdID,
		Kind:      model.KindPlain,
		InstID:    raw.InstID,
		Side:      raw.Side,
		PosSide:   raw.PosSide,
		OrdType:   raw.OrdType,
		Price:     parseFloatSafe("px", raw.Px),
		Size:      parseFloatSafe("sz", raw.Sz),
		State:     raw.State,
		CreatedAt: parseCTime("cTime", raw.CTime),
	}
}

// DecomposeAlgoOrder splits one raw algo record into its canonical
// legs: a primary trigger leg when triggerPx is set, a stop-loss leg
// when slTriggerPx is set and a take-profit leg when tpTriggerPx is
// set. Attached legs get synthesized ids "<algoId>-sl" / "<algoId>-tp"
// so they remain individually addressable for modify/cancel even
// though the exchange treats them as one record. A record with no
// valid leg yields nothing.
func DecomposeAlgoOrder(raw model.OkxAlgoOrder) []model.Order {
	base := model.Order{
		AlgoID:       raw.AlgoID,
		ParentAlgoID: raw.AlgoID,
		InstID:       raw.InstID,
		Side:         raw.Side,
		PosSide:      raw.PosSide,
		Size:         parseFloatSafe("sz", raw.Sz),
		State:        raw.State,
		CreatedAt:    parseCTime("cTime", raw.CTime),
	}

	var out []model.Order

	if triggerPx, ok := legPrice("triggerPx", raw.TriggerPx); ok {
		leg := base
		leg.ID = raw.AlgoID
		leg.Kind = model.KindTrigger
		leg.OrdType = raw.OrdType
		leg.TriggerPrice = triggerPx
		leg.Price, _ = legPrice("ordPx", raw.OrdPx)
		out = append(out, leg)
	}

	if slPx, ok := legPrice("slTriggerPx", raw.SlTriggerPx); ok {
		leg := base
		leg.ID = raw.AlgoID + "-sl"
		leg.Kind = model.KindStopLoss
		leg.OrdType = model.OrdTypeSL
		leg.TriggerPrice = slPx
		leg.Price, _ = legPrice("slOrdPx", raw.SlOrdPx)
		out = append(out, leg)
	}

	if tpPx, ok := legPrice("tpTriggerPx", raw.TpTriggerPx); ok {
		leg := base
		leg.ID = raw.AlgoID + "-tp"
		leg.Kind = model.KindTakeProfit
		leg.OrdType = model.OrdTypeTP
		leg.TriggerPrice = tpPx
		leg.Price, _ = legPrice("tpOrdPx", raw.TpOrdPx)
		out = append(out, leg)
	}

	return out
}

// SortOrders orders the aggregated list descending by creation time.
// Ties fall back to id so the result is deterministic for mixed
// standard/algo input.
func SortOrders(orders []model.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}
