package mapper

import (
	"testing"
	"time"

	"charttrader/src/model"
)

func TestMapPendingOrder(t *testing.T) {
	raw := model.OkxPendingOrder{
		OrdID:   "ord-1",
		InstID:  "BTC-USDT",
		Side:    "buy",
		OrdType: "limit",
		Px:      "42000.5",
		Sz:      "0.25",
		State:   "live",
		CTime:   "1700000000000",
	}

	order := MapPendingOrder(raw)

	if order.ID != "ord-1" || order.Kind != model.KindPlain {
		t.Fatalf("unexpected identity mapping: %+v", order)
	}
	if order.AlgoID != "" {
		t.Fatalf("plain orders must not carry an algo id: %+v", order)
	}
	if order.Price != 42000.5 || order.Size != 0.25 {
		t.Fatalf("numeric fields not parsed correctly: %+v", order)
	}
	if !order.CreatedAt.Equal(time.UnixMilli(1700000000000)) {
		t.Fatalf("unexpected creation time: %v", order.CreatedAt)
	}
	if order.AnchorPrice() != 42000.5 {
		t.Fatalf("expected anchor at limit price, got %v", order.AnchorPrice())
	}
}

func TestDecomposeAlgoOrderThreeLegs(t *testing.T) {
	raw := model.OkxAlgoOrder{
		AlgoID:      "algo-1",
		InstID:      "BTC-USDT-SWAP",
		Side:        "sell",
		PosSide:     "long",
		OrdType:     "conditional",
		Sz:          "3",
		State:       "live",
		CTime:       "1700000000000",
		TriggerPx:   "45000",
		OrdPx:       "-1",
		SlTriggerPx: "40000",
		SlOrdPx:     "-1",
		TpTriggerPx: "48000",
		TpOrdPx:     "47900",
	}

	orders := DecomposeAlgoOrder(raw)
	if len(orders) != 3 {
		t.Fatalf("expected 3 legs, got %d: %+v", len(orders), orders)
	}

	byID := map[string]model.Order{}
	for _, o := range orders {
		byID[o.ID] = o
	}

	trigger, ok := byID["algo-1"]
	if !ok || trigger.Kind != model.KindTrigger || trigger.TriggerPrice != 45000 {
		t.Fatalf("unexpected trigger leg: %+v", trigger)
	}
	if trigger.Price != 0 {
		t.Fatalf("ordPx -1 must map to no price, got %+v", trigger)
	}

	sl, ok := byID["algo-1-sl"]
	if !ok || sl.Kind != model.KindStopLoss || sl.OrdType != model.OrdTypeSL || sl.TriggerPrice != 40000 {
		t.Fatalf("unexpected stop-loss leg: %+v", sl)
	}

	tp, ok := byID["algo-1-tp"]
	if !ok || tp.Kind != model.KindTakeProfit || tp.OrdType != model.OrdTypeTP || tp.TriggerPrice != 48000 {
		t.Fatalf("unexpected take-profit leg: %+v", tp)
	}
	if tp.Price != 47900 {
		t.Fatalf("expected tp execution price kept, got %+v", tp)
	}

	for _, o := range orders {
		if o.AlgoID != "algo-1" || o.ParentAlgoID != "algo-1" {
			t.Fatalf("every leg must route through the parent algo record: %+v", o)
		}
		if !o.IsAlgo() {
			t.Fatalf("algo legs must report IsAlgo: %+v", o)
		}
	}
}

func TestDecomposeAlgoOrderSingleTPLeg(t *testing.T) {
	raw := model.OkxAlgoOrder{
		AlgoID:      "algo-2",
		InstID:      "ETH-USDT-SWAP",
		Side:        "sell",
		OrdType:     "conditional",
		Sz:          "1",
		State:       "live",
		CTime:       "1700000000000",
		TriggerPx:   "",
		SlTriggerPx: "-1",
		TpTriggerPx: "2600",
		TpOrdPx:     "-1",
	}

	orders := DecomposeAlgoOrder(raw)
	if len(orders) != 1 {
		t.Fatalf("expected only the tp leg, got %+v", orders)
	}
	if orders[0].ID != "algo-2-tp" || orders[0].Kind != model.KindTakeProfit {
		t.Fatalf("unexpected leg: %+v", orders[0])
	}
}

func TestDecomposeAlgoOrderAbsentLegMarkers(t *testing.T) {
	for _, marker := range []string{"", "-1", "0"} {
		raw := model.OkxAlgoOrder{
			AlgoID:      "algo-3",
			TriggerPx:   marker,
			SlTriggerPx: marker,
			TpTriggerPx: marker,
		}
		if orders := DecomposeAlgoOrder(raw); len(orders) != 0 {
			t.Fatalf("marker %q must yield no legs, got %+v", marker, orders)
		}
	}
}

func TestSortOrdersDescendingWithTieBreak(t *testing.T) {
	older := time.UnixMilli(1700000000000)
	newer := time.UnixMilli(1700000100000)

	orders := []model.Order{
		{ID: "a", CreatedAt: older},
		{ID: "c", CreatedAt: newer},
		{ID: "b", CreatedAt: newer},
	}

	SortOrders(orders)

	if orders[0].ID != "c" || orders[1].ID != "b" || orders[2].ID != "a" {
		t.Fatalf("unexpected ordering: %+v", orders)
	}
}
