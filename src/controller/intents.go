package controller

import (
	"context"
	"fmt"
	"math"

	logger "github.com/sirupsen/logrus"

	"charttrader/src/chart"
	"charttrader/src/model"
	"charttrader/src/okx"
	"charttrader/src/repository"
	"charttrader/src/tp_sl"
)

// ValidationError means the intent was rejected before any network
// call: the requested change is not expressible against the exchange.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// OrderAPI is the slice of the account client the intent controller
// needs.
type OrderAPI interface {
	AmendOrder(ctx context.Context, req okx.AmendOrderRequest) error
	PlaceOrder(ctx context.Context, req okx.PlaceOrderRequest) (string, error)
}

// IntentController turns completed chart gestures into exchange
// mutations. It owns validation; the chart emits intents blindly.
type IntentController struct {
	api        OrderAPI
	exceptions *repository.ExceptionRepository
}

func NewIntentController(api OrderAPI, exceptions *repository.ExceptionRepository) *IntentController {
	return &IntentController{api: api, exceptions: exceptions}
}

// Apply routes one intent. Errors are returned to the caller for
// display and also captured to the exception log.
func (c *IntentController) Apply(ctx context.Context, intent chart.Intent) error {
	var err error
	switch it := intent.(type) {
	case chart.ModifyOrderIntent:
		err = c.modifyOrder(ctx, it)
	case chart.CreateStopIntent:
		err = c.createStop(ctx, it)
	default:
		err = &ValidationError{Msg: fmt.Sprintf("unknown intent %T", intent)}
	}

	if err != nil {
		Capture(ctx, c.exceptions, "IntentController", "controller", "Apply", "error", err, map[string]interface{}{
			"intent": fmt.Sprintf("%T", intent),
		})
	}
	return err
}

// modifyOrder re-prices one order. Which amend field carries the new
// price depends on which leg of the exchange record the order is:
// attached stop legs amend their own trigger field on the parent algo
// record, trigger orders amend the trigger price, plain orders amend
// the limit price.
func (c *IntentController) modifyOrder(ctx context.Context, it chart.ModifyOrderIntent) error {
	o := it.Order
	if it.NewPrice <= 0 {
		return &ValidationError{Msg: fmt.Sprintf("invalid target price %v for order %s", it.NewPrice, o.ID)}
	}

	req := okx.AmendOrderRequest{InstID: o.InstID}
	if o.IsAlgo() {
		req.AlgoID = o.AlgoID
	} else {
		req.OrdID = o.ID
	}

	price := it.NewPrice
	switch o.Kind {
	case model.KindStopLoss:
		req.NewSlTriggerPrice = &price
	case model.KindTakeProfit:
		req.NewTpTriggerPrice = &price
	case model.KindTrigger:
		req.NewTriggerPrice = &price
	case model.KindPlain:
		if o.OrdType == model.OrdTypeMarket {
			return &ValidationError{Msg: "market order has no price to amend"}
		}
		req.NewPrice = &price
	default:
		return &ValidationError{Msg: fmt.Sprintf("order %s kind %q is not draggable", o.ID, o.Kind)}
	}

	logger.WithFields(logger.Fields{
		"order": o.ID,
		"kind":  o.Kind,
		"price": price,
	}).Info("amending order from chart drag")

	return c.api.AmendOrder(ctx, req)
}

// createStop places a conditional order closing the full position at
// the dragged trigger price.
func (c *IntentController) createStop(ctx context.Context, it chart.CreateStopIntent) error {
	pos := it.Position
	if it.TriggerPrice <= 0 {
		return &ValidationError{Msg: fmt.Sprintf("invalid trigger price %v", it.TriggerPrice)}
	}
	if pos.Size == 0 {
		return &ValidationError{Msg: "position is empty, nothing to protect"}
	}

	// net-mode shorts report a negative size; the exchange wants sz
	// positive with the direction expressed by the side
	req := okx.PlaceOrderRequest{
		InstID:  pos.InstID,
		TdMode:  pos.MarginMode,
		Side:    pos.CloseSide(),
		OrdType: model.OrdTypeConditional,
		Size:    math.Abs(pos.Size),
	}
	// net-mode accounts reject posSide
	if pos.PosSide != model.PosSideNet && pos.PosSide != "" {
		req.PosSide = pos.PosSide
	}

	switch it.Kind {
	case tp_sl.StopLoss:
		req.SlTriggerPrice = it.TriggerPrice
	case tp_sl.StopTakeProfit:
		req.TpTriggerPrice = it.TriggerPrice
	default:
		return &ValidationError{Msg: fmt.Sprintf("unknown stop kind %q", it.Kind)}
	}

	logger.WithFields(logger.Fields{
		"instId": pos.InstID,
		"kind":   it.Kind,
		"price":  it.TriggerPrice,
		"size":   pos.Size,
	}).Info("placing protective stop from chart drag")

	id, err := c.api.PlaceOrder(ctx, req)
	if err != nil {
		return err
	}
	logger.WithField("algoId", id).Info("protective stop placed")
	return nil
}
