package controller

import (
	"context"
	"errors"
	"testing"

	"charttrader/src/chart"
	"charttrader/src/model"
	"charttrader/src/okx"
	"charttrader/src/tp_sl"
)

type fakeOrderAPI struct {
	amends   []okx.AmendOrderRequest
	places   []okx.PlaceOrderRequest
	placeErr error
	amendErr error
}

func (f *fakeOrderAPI) AmendOrder(_ context.Context, req okx.AmendOrderRequest) error {
	f.amends = append(f.amends, req)
	return f.amendErr
}

func (f *fakeOrderAPI) PlaceOrder(_ context.Context, req okx.PlaceOrderRequest) (string, error) {
	f.places = append(f.places, req)
	if f.placeErr != nil {
		return "", f.placeErr
	}
	return "algo-new", nil
}

func TestModifyOrderRoutesPriceFieldByKind(t *testing.T) {
	tests := []struct {
		name  string
		order model.Order
		check func(t *testing.T, req okx.AmendOrderRequest)
	}{
		{
			name:  "plain limit amends px",
			order: model.Order{ID: "ord-1", InstID: "BTC-USDT", Kind: model.KindPlain, OrdType: model.OrdTypeLimit},
			check: func(t *testing.T, req okx.AmendOrderRequest) {
				if req.OrdID != "ord-1" || req.AlgoID != "" {
					t.Fatalf("expected standard routing, got %+v", req)
				}
				if req.NewPrice == nil || *req.NewPrice != 43000 {
					t.Fatalf("expected new price set, got %+v", req)
				}
				if req.NewTriggerPrice != nil || req.NewSlTriggerPrice != nil || req.NewTpTriggerPrice != nil {
					t.Fatalf("expected only the price field, got %+v", req)
				}
			},
		},
		{
			name:  "trigger leg amends trigger px",
			order: model.Order{ID: "algo-1", AlgoID: "algo-1", InstID: "BTC-USDT-SWAP", Kind: model.KindTrigger},
			check: func(t *testing.T, req okx.AmendOrderRequest) {
				if req.AlgoID != "algo-1" {
					t.Fatalf("expected algo routing, got %+v", req)
				}
				if req.NewTriggerPrice == nil || *req.NewTriggerPrice != 43000 {
					t.Fatalf("expected new trigger price, got %+v", req)
				}
			},
		},
		{
			name:  "sl leg amends sl trigger px on parent record",
			order: model.Order{ID: "algo-1-sl", AlgoID: "algo-1", ParentAlgoID: "algo-1", InstID: "BTC-USDT-SWAP", Kind: model.KindStopLoss},
			check: func(t *testing.T, req okx.AmendOrderRequest) {
				if req.AlgoID != "algo-1" {
					t.Fatalf("expected parent algo id, got %+v", req)
				}
				if req.NewSlTriggerPrice == nil || *req.NewSlTriggerPrice != 43000 {
					t.Fatalf("expected new sl trigger price, got %+v", req)
				}
				if req.NewTpTriggerPrice != nil || req.NewPrice != nil {
					t.Fatalf("expected only the sl field, got %+v", req)
				}
			},
		},
		{
			name:  "tp leg amends tp trigger px",
			order: model.Order{ID: "algo-1-tp", AlgoID: "algo-1", InstID: "BTC-USDT-SWAP", Kind: model.KindTakeProfit},
			check: func(t *testing.T, req okx.AmendOrderRequest) {
				if req.NewTpTriggerPrice == nil || *req.NewTpTriggerPrice != 43000 {
					t.Fatalf("expected new tp trigger price, got %+v", req)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeOrderAPI{}
			c := NewIntentController(api, nil)

			err := c.Apply(context.Background(), chart.ModifyOrderIntent{Order: tc.order, NewPrice: 43000})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(api.amends) != 1 {
				t.Fatalf("expected one amend call, got %+v", api.amends)
			}
			tc.check(t, api.amends[0])
		})
	}
}

func TestModifyOrderValidation(t *testing.T) {
	api := &fakeOrderAPI{}
	c := NewIntentController(api, nil)

	var vErr *ValidationError

	err := c.Apply(context.Background(), chart.ModifyOrderIntent{
		Order:    model.Order{ID: "ord-1", Kind: model.KindPlain, OrdType: model.OrdTypeLimit},
		NewPrice: 0,
	})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for non-positive price, got %v", err)
	}

	err = c.Apply(context.Background(), chart.ModifyOrderIntent{
		Order:    model.Order{ID: "ord-2", Kind: model.KindPlain, OrdType: model.OrdTypeMarket},
		NewPrice: 42000,
	})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for market order, got %v", err)
	}

	if len(api.amends) != 0 {
		t.Fatalf("expected no api calls on validation failure, got %+v", api.amends)
	}
}

func TestCreateStopClosesFullPosition(t *testing.T) {
	api := &fakeOrderAPI{}
	c := NewIntentController(api, nil)

	pos := model.Position{
		InstID:     "BTC-USDT-SWAP",
		PosSide:    model.PosSideShort,
		Size:       5,
		AvgPrice:   43000,
		MarginMode: model.MarginModeIsolated,
	}

	err := c.Apply(context.Background(), chart.CreateStopIntent{
		Position:     pos,
		Kind:         tp_sl.StopLoss,
		TriggerPrice: 45000,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(api.places) != 1 {
		t.Fatalf("expected one place call, got %+v", api.places)
	}
	req := api.places[0]
	if req.OrdType != model.OrdTypeConditional {
		t.Fatalf("expected conditional order, got %+v", req)
	}
	if req.Side != model.SideBuy {
		t.Fatalf("expected closing side buy for a short, got %+v", req)
	}
	if req.PosSide != model.PosSideShort || req.TdMode != model.MarginModeIsolated {
		t.Fatalf("expected position routing kept, got %+v", req)
	}
	if req.Size != 5 || req.SlTriggerPrice != 45000 || req.TpTriggerPrice != 0 {
		t.Fatalf("unexpected stop parameters: %+v", req)
	}
}

func TestCreateStopNetModeOmitsPosSide(t *testing.T) {
	api := &fakeOrderAPI{}
	c := NewIntentController(api, nil)

	err := c.Apply(context.Background(), chart.CreateStopIntent{
		Position: model.Position{
			InstID:     "BTC-USDT-SWAP",
			PosSide:    model.PosSideNet,
			Size:       2,
			AvgPrice:   43000,
			MarginMode: model.MarginModeCross,
		},
		Kind:         tp_sl.StopTakeProfit,
		TriggerPrice: 48000,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	req := api.places[0]
	if req.PosSide != "" {
		t.Fatalf("net mode must omit posSide, got %+v", req)
	}
	if req.TpTriggerPrice != 48000 || req.SlTriggerPrice != 0 {
		t.Fatalf("expected tp parameters, got %+v", req)
	}
}

func TestCreateStopNetModeShort(t *testing.T) {
	api := &fakeOrderAPI{}
	c := NewIntentController(api, nil)

	// net mode reports shorts as a negative size
	err := c.Apply(context.Background(), chart.CreateStopIntent{
		Position: model.Position{
			InstID:     "BTC-USDT-SWAP",
			PosSide:    model.PosSideNet,
			Size:       -3,
			AvgPrice:   43000,
			MarginMode: model.MarginModeCross,
		},
		Kind:         tp_sl.StopLoss,
		TriggerPrice: 45000,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	req := api.places[0]
	if req.Side != model.SideBuy {
		t.Fatalf("expected buy to close a net short, got %+v", req)
	}
	if req.Size != 3 {
		t.Fatalf("expected positive size, got %+v", req)
	}
	if req.PosSide != "" {
		t.Fatalf("net mode must omit posSide, got %+v", req)
	}
}

func TestCreateStopValidation(t *testing.T) {
	api := &fakeOrderAPI{}
	c := NewIntentController(api, nil)

	var vErr *ValidationError

	err := c.Apply(context.Background(), chart.CreateStopIntent{
		Position:     model.Position{InstID: "BTC-USDT-SWAP", Size: 0},
		Kind:         tp_sl.StopLoss,
		TriggerPrice: 45000,
	})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for empty position, got %v", err)
	}
	if len(api.places) != 0 {
		t.Fatalf("expected no api calls, got %+v", api.places)
	}
}

func TestApplyPropagatesAPIErrors(t *testing.T) {
	rejection := &okx.OrderRejectedError{Code: "51008", Msg: "insufficient balance"}
	api := &fakeOrderAPI{placeErr: rejection}
	c := NewIntentController(api, nil)

	err := c.Apply(context.Background(), chart.CreateStopIntent{
		Position:     model.Position{InstID: "BTC-USDT-SWAP", PosSide: model.PosSideLong, Size: 1, MarginMode: model.MarginModeCross},
		Kind:         tp_sl.StopLoss,
		TriggerPrice: 40000,
	})

	var rej *okx.OrderRejectedError
	if !errors.As(err, &rej) || rej.Code != "51008" {
		t.Fatalf("expected rejection propagated, got %v", err)
	}
}
