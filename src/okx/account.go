package okx

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"charttrader/src/mapper"
	"charttrader/src/model"
)

// BalanceSink receives every successful balance fetch. The history
// recorder implements it.
type BalanceSink interface {
	Record(ctx context.Context, balances []model.AssetBalance)
}

// AccountClient wraps the private account and trading endpoints.
// Read paths degrade to empty results; mutation paths propagate errors
// and are never retried here.
type AccountClient struct {
	gw     *Gateway
	market *MarketClient
	sink   BalanceSink
}

func NewAccountClient(gw *Gateway, market *MarketClient, sink BalanceSink) *AccountClient {
	return &AccountClient{
		gw:     gw,
		market: market,
		sink:   sink,
	}
}

// HasKeys reports whether the underlying gateway holds a complete
// credential triple.
func (a *AccountClient) HasKeys() bool {
	return a.gw.HasKeys()
}

// Balances returns the per-currency balances. Without credentials it
// returns nil without a network call. It never errors: balance display
// degrading gracefully outranks erroring the whole view. Successful
// fetches are fed to the balance sink.
func (a *AccountClient) Balances(ctx context.Context) []model.AssetBalance {
	if !a.gw.HasKeys() {
		return nil
	}

	data, err := a.gw.Call(ctx, http.MethodGet, "/account/balance", nil, nil)
	if err != nil {
		logger.WithError(err).Warn("balance fetch failed")
		return nil
	}

	var rows []rawBalance
	if err := decodeData(data, &rows); err != nil || len(rows) == 0 {
		logger.WithError(err).Warn("balance decode failed")
		return nil
	}

	out := make([]model.AssetBalance, 0, len(rows[0].Details))
	for _, d := range rows[0].Details {
		out = append(out, model.AssetBalance{
			Ccy:       d.Ccy,
			Available: parseFloatSafe("availBal", d.AvailBal),
			Frozen:    parseFloatSafe("frozenBal", d.FrozenBal),
			EqUsd:     parseFloatSafe("eqUsd", d.EqUsd),
		})
	}

	if a.sink != nil {
		a.sink.Record(ctx, out)
	}

	return out
}

// Positions returns live positions joined with instrument metadata
// (fetched in parallel) so each row carries its contract value,
// defaulting to 1 when no instrument match is found. Any failure
// yields an empty result.
func (a *AccountClient) Positions(ctx context.Context) []model.Position {
	if !a.gw.HasKeys() {
		return nil
	}

	var (
		wg          sync.WaitGroup
		rows        []rawPosition
		posErr      error
		instruments []model.Instrument
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		data, err := a.gw.Call(ctx, http.MethodGet, "/account/positions", nil, nil)
		if err != nil {
			posErr = err
			return
		}
		posErr = decodeData(data, &rows)
	}()
	go func() {
		defer wg.Done()
		instruments = a.market.Instruments(ctx, model.InstTypeSwap)
	}()
	wg.Wait()

	if posErr != nil {
		logger.WithError(posErr).Warn("positions fetch failed")
		return nil
	}

	ctVals := make(map[string]float64, len(instruments))
	for _, inst := range instruments {
		ctVals[inst.InstID] = inst.CtVal
	}

	out := make([]model.Position, 0, len(rows))
	for _, r := range rows {
		ctVal, ok := ctVals[r.InstID]
		if !ok || ctVal <= 0 {
			ctVal = 1
		}
		out = append(out, model.Position{
			InstID:        r.InstID,
			PosSide:       r.PosSide,
			Size:          parseFloatSafe("pos", r.Pos),
			AvgPrice:      parseFloatSafe("avgPx", r.AvgPx),
			UnrealizedPnl: parseFloatSafe("upl", r.Upl),
			MarginMode:    r.MgnMode,
			MarginCcy:     r.Ccy,
			Leverage:      parseFloatSafe("lever", r.Lever),
			CtVal:         ctVal,
		})
	}
	return out
}

// algoOrdTypes are the three algo-pending queries issued per
// instrument type.
var algoOrdTypes = []string{model.OrdTypeConditional, model.OrdTypeOCO, model.OrdTypeTrigger}

// OpenOrders aggregates standard pending orders and decomposed algo
// orders across the relevant instrument types (or only the type
// implied by instID), sorted descending by creation time. Every
// sub-call is independently fault-tolerant: a failure contributes an
// empty list instead of aborting the aggregation.
func (a *AccountClient) OpenOrders(ctx context.Context, instID string) []model.Order {
	if !a.gw.HasKeys() {
		return nil
	}

	instTypes := []string{model.InstTypeSpot, model.InstTypeSwap}
	if instID != "" {
		if model.IsSwapInstID(instID) {
			instTypes = []string{model.InstTypeSwap}
		} else {
			instTypes = []string{model.InstTypeSpot}
		}
	}

	var all []model.Order
	for _, instType := range instTypes {
		query := url.Values{"instType": {instType}}
		if instID != "" {
			query.Set("instId", instID)
		}

		data, err := a.gw.Call(ctx, http.MethodGet, "/trade/orders-pending", query, nil)
		if err != nil {
			logger.WithError(err).WithField("instType", instType).Warn("pending orders fetch failed")
		} else {
			var rows []model.OkxPendingOrder
			if err := decodeData(data, &rows); err != nil {
				logger.WithError(err).Warn("pending orders decode failed")
			}
			for _, r := range rows {
				all = append(all, mapper.MapPendingOrder(r))
			}
		}

		for _, ordType := range algoOrdTypes {
			algoQuery := url.Values{"instType": {instType}, "ordType": {ordType}}
			if instID != "" {
				algoQuery.Set("instId", instID)
			}

			data, err := a.gw.Call(ctx, http.MethodGet, "/trade/orders-algo-pending", algoQuery, nil)
			if err != nil {
				logger.WithError(err).WithFields(logger.Fields{
					"instType": instType,
					"ordType":  ordType,
				}).Warn("algo pending orders fetch failed")
				continue
			}
			var rows []model.OkxAlgoOrder
			if err := decodeData(data, &rows); err != nil {
				logger.WithError(err).Warn("algo pending orders decode failed")
				continue
			}
			for _, r := range rows {
				all = append(all, mapper.DecomposeAlgoOrder(r)...)
			}
		}
	}

	mapper.SortOrders(all)
	return all
}

// PlaceOrderRequest carries one order submission. Price is ignored for
// market orders; PosSide is forwarded only when set (hedge-mode
// accounts require it, net-mode accounts reject it).
type PlaceOrderRequest struct {
	InstID         string
	TdMode         string
	Side           string
	PosSide        string
	OrdType        string
	Size           float64
	Price          float64
	SlTriggerPrice float64
	TpTriggerPrice float64
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// newClOrdID generates an exchange-safe client order id.
func newClOrdID() string {
	return "ct" + strings.ReplaceAll(uuid.NewString(), "-", "")[:30]
}

// PlaceOrder submits an order and returns the exchange-assigned order
// id (algo id for conditional orders). A soft failure embedded in a
// 2xx response surfaces as OrderRejectedError.
func (a *AccountClient) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (string, error) {
	if !a.gw.HasKeys() {
		return "", ErrAuthMissing
	}

	body := map[string]string{
		"instId":  req.InstID,
		"tdMode":  req.TdMode,
		"side":    req.Side,
		"ordType": req.OrdType,
		"sz":      formatNum(req.Size),
	}
	if req.PosSide != "" {
		body["posSide"] = req.PosSide
	}

	path := "/trade/order"
	if req.OrdType == model.OrdTypeConditional {
		path = "/trade/order-algo"
		// -1 requests market execution once the trigger fires
		if req.SlTriggerPrice > 0 {
			body["slTriggerPx"] = formatNum(req.SlTriggerPrice)
			body["slOrdPx"] = "-1"
		}
		if req.TpTriggerPrice > 0 {
			body["tpTriggerPx"] = formatNum(req.TpTriggerPrice)
			body["tpOrdPx"] = "-1"
		}
	} else {
		body["clOrdId"] = newClOrdID()
		if req.OrdType != model.OrdTypeMarket {
			body["px"] = formatNum(req.Price)
		}
	}

	env, err := a.gw.Request(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return "", err
	}

	var results []orderResult
	if decodeErr := decodeData(env.Data, &results); decodeErr != nil {
		logger.WithError(decodeErr).Warn("order result decode failed")
	}

	if env.Code != "0" {
		rej := &OrderRejectedError{Code: env.Code, Msg: env.Msg}
		if len(results) > 0 && results[0].SCode != "0" {
			rej.Code = results[0].SCode
			rej.Msg = results[0].SMsg
		}
		return "", rej
	}
	if len(results) == 0 {
		return "", &OrderRejectedError{Code: env.Code, Msg: "empty order result"}
	}
	if results[0].SCode != "" && results[0].SCode != "0" {
		return "", &OrderRejectedError{Code: results[0].SCode, Msg: results[0].SMsg}
	}

	if req.OrdType == model.OrdTypeConditional {
		return results[0].AlgoID, nil
	}
	return results[0].OrdID, nil
}

// CancelOrder cancels by ordId or algoId; an algo id routes to the
// batch-shaped algo endpoint even for a single item.
func (a *AccountClient) CancelOrder(ctx context.Context, instID, ordID, algoID string) error {
	if !a.gw.HasKeys() {
		return ErrAuthMissing
	}
	if ordID == "" && algoID == "" {
		return ErrMissingOrderID
	}

	var (
		env *Envelope
		err error
	)
	if algoID != "" {
		body := []map[string]string{{"algoId": algoID, "instId": instID}}
		env, err = a.gw.Request(ctx, http.MethodPost, "/trade/cancel-algos", nil, body)
	} else {
		body := map[string]string{"instId": instID, "ordId": ordID}
		env, err = a.gw.Request(ctx, http.MethodPost, "/trade/cancel-order", nil, body)
	}
	if err != nil {
		return err
	}

	return checkMutationAck(env)
}

// AmendOrderRequest is a sparse patch: nil fields are omitted from the
// wire body entirely.
type AmendOrderRequest struct {
	InstID            string
	OrdID             string
	AlgoID            string
	NewSize           *float64
	NewPrice          *float64
	NewTriggerPrice   *float64
	NewSlTriggerPrice *float64
	NewTpTriggerPrice *float64
}

// AmendOrder amends an open order; an algo id routes to the
// batch-shaped algo endpoint. Only fields the caller provided are
// forwarded.
func (a *AccountClient) AmendOrder(ctx context.Context, req AmendOrderRequest) error {
	if !a.gw.HasKeys() {
		return ErrAuthMissing
	}
	if req.OrdID == "" && req.AlgoID == "" {
		return ErrMissingOrderID
	}

	patch := map[string]string{"instId": req.InstID}
	if req.NewSize != nil {
		patch["newSz"] = formatNum(*req.NewSize)
	}
	if req.NewPrice != nil {
		patch["newPx"] = formatNum(*req.NewPrice)
	}

	var (
		env *Envelope
		err error
	)
	if req.AlgoID != "" {
		patch["algoId"] = req.AlgoID
		if req.NewTriggerPrice != nil {
			patch["newTriggerPx"] = formatNum(*req.NewTriggerPrice)
		}
		if req.NewSlTriggerPrice != nil {
			patch["newSlTriggerPx"] = formatNum(*req.NewSlTriggerPrice)
		}
		if req.NewTpTriggerPrice != nil {
			patch["newTpTriggerPx"] = formatNum(*req.NewTpTriggerPrice)
		}
		env, err = a.gw.Request(ctx, http.MethodPost, "/trade/amend-algos", nil, []map[string]string{patch})
	} else {
		patch["ordId"] = req.OrdID
		env, err = a.gw.Request(ctx, http.MethodPost, "/trade/amend-order", nil, patch)
	}
	if err != nil {
		return err
	}

	return checkMutationAck(env)
}

// SetLeverage is best-effort: the caller decides whether a failure
// matters (leverage may already be correct).
func (a *AccountClient) SetLeverage(ctx context.Context, instID string, lever float64, marginMode string) error {
	if !a.gw.HasKeys() {
		return ErrAuthMissing
	}
	body := map[string]string{
		"instId":  instID,
		"lever":   formatNum(lever),
		"mgnMode": marginMode,
	}
	_, err := a.gw.Call(ctx, http.MethodPost, "/account/set-leverage", nil, body)
	return err
}

// FillsHistory returns recent executed trades; failures degrade to an
// empty list.
func (a *AccountClient) FillsHistory(ctx context.Context, instType string, limit int) []model.Fill {
	if !a.gw.HasKeys() {
		return nil
	}
	query := url.Values{
		"instType": {instType},
		"limit":    {strconv.Itoa(limit)},
	}
	data, err := a.gw.Call(ctx, http.MethodGet, "/trade/fills-history", query, nil)
	if err != nil {
		logger.WithError(err).Warn("fills history fetch failed")
		return nil
	}
	var rows []rawFill
	if err := decodeData(data, &rows); err != nil {
		logger.WithError(err).Warn("fills history decode failed")
		return nil
	}
	out := make([]model.Fill, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Fill{
			InstID:    r.InstID,
			OrdID:     r.OrdID,
			Side:      r.Side,
			FillPrice: parseFloatSafe("fillPx", r.FillPx),
			FillSize:  parseFloatSafe("fillSz", r.FillSz),
			Fee:       parseFloatSafe("fee", r.Fee),
			FeeCcy:    r.FeeCcy,
			Ts:        parseInt64Safe("ts", r.Ts),
		})
	}
	return out
}

// PositionsHistory returns recently closed positions; failures degrade
// to an empty list.
func (a *AccountClient) PositionsHistory(ctx context.Context, instType string, limit int) []model.ClosedPosition {
	if !a.gw.HasKeys() {
		return nil
	}
	query := url.Values{
		"instType": {instType},
		"limit":    {strconv.Itoa(limit)},
	}
	data, err := a.gw.Call(ctx, http.MethodGet, "/account/positions-history", query, nil)
	if err != nil {
		logger.WithError(err).Warn("positions history fetch failed")
		return nil
	}
	var rows []rawClosedPosition
	if err := decodeData(data, &rows); err != nil {
		logger.WithError(err).Warn("positions history decode failed")
		return nil
	}
	out := make([]model.ClosedPosition, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.ClosedPosition{
			InstID:        r.InstID,
			PosSide:       r.PosSide,
			OpenAvgPrice:  parseFloatSafe("openAvgPx", r.OpenAvgPx),
			CloseAvgPrice: parseFloatSafe("closeAvgPx", r.CloseAvgPx),
			Pnl:           parseFloatSafe("pnl", r.Pnl),
			Leverage:      parseFloatSafe("lever", r.Lever),
			OpenedAt:      time.UnixMilli(parseInt64Safe("cTime", r.CTime)),
			ClosedAt:      time.UnixMilli(parseInt64Safe("uTime", r.UTime)),
		})
	}
	return out
}

// checkMutationAck surfaces per-item soft failures on cancel/amend.
func checkMutationAck(env *Envelope) error {
	var results []orderResult
	if err := decodeData(env.Data, &results); err != nil {
		logger.WithError(err).Warn("mutation ack decode failed")
	}
	if env.Code != "0" {
		rej := &OrderRejectedError{Code: env.Code, Msg: env.Msg}
		if len(results) > 0 && results[0].SCode != "0" {
			rej.Code = results[0].SCode
			rej.Msg = results[0].SMsg
		}
		return rej
	}
	if len(results) > 0 && results[0].SCode != "" && results[0].SCode != "0" {
		return &OrderRejectedError{Code: results[0].SCode, Msg: results[0].SMsg}
	}
	return nil
}
