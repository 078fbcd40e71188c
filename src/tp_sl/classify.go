package tp_sl

import (
	"github.com/shopspring/decimal"

	"charttrader/src/model"
)

// StopKind is the classification of a candidate protective price level
// relative to a position's entry.
type StopKind string

const (
	StopTakeProfit StopKind = "tp"
	StopLoss       StopKind = "sl"
)

// Classify decides whether a candidate price is profit-taking or
// loss-limiting for the given position direction.
//
// Short:
// - candidate below entry locks in profit -> tp
// - candidate above entry limits loss     -> sl
//
// Long (and net, which is treated as long):
// - candidate above entry -> tp
// - candidate below entry -> sl
func Classify(posSide string, entry, candidate decimal.Decimal) StopKind {
	if posSide == model.PosSideShort {
		if candidate.LessThan(entry) {
			return StopTakeProfit
		}
		return StopLoss
	}
	if candidate.GreaterThan(entry) {
		return StopTakeProfit
	}
	return StopLoss
}

// EstimatePnl computes the realized PnL of closing size contracts at
// exit, given the average entry price and the contract value
// multiplier (1 for spot).
func EstimatePnl(posSide string, entry, exit, size, ctVal decimal.Decimal) decimal.Decimal {
	diff := exit.Sub(entry)
	if posSide == model.PosSideShort {
		diff = entry.Sub(exit)
	}
	return diff.Mul(size).Mul(ctVal)
}
