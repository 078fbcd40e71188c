package tp_sl

import (
	"testing"

	"github.com/shopspring/decimal"

	"charttrader/src/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		posSide   string
		entry     string
		candidate string
		want      StopKind
	}{
		{"short below entry locks profit", model.PosSideShort, "100", "95", StopTakeProfit},
		{"short above entry limits loss", model.PosSideShort, "100", "105", StopLoss},
		{"long above entry locks profit", model.PosSideLong, "100", "105", StopTakeProfit},
		{"long below entry limits loss", model.PosSideLong, "100", "95", StopLoss},
		{"net treated as long", model.PosSideNet, "100", "105", StopTakeProfit},
		{"at entry defaults to sl", model.PosSideLong, "100", "100", StopLoss},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.posSide, decimal.RequireFromString(tc.entry), decimal.RequireFromString(tc.candidate))
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestEstimatePnl(t *testing.T) {
	tests := []struct {
		name    string
		posSide string
		entry   string
		exit    string
		size    string
		ctVal   string
		want    string
	}{
		{"long gain", model.PosSideLong, "100", "110", "2", "1", "20"},
		{"short gain", model.PosSideShort, "100", "90", "2", "1", "20"},
		{"short loss", model.PosSideShort, "100", "110", "2", "1", "-20"},
		{"contract multiplier", model.PosSideLong, "100", "110", "2", "0.01", "0.2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EstimatePnl(
				tc.posSide,
				decimal.RequireFromString(tc.entry),
				decimal.RequireFromString(tc.exit),
				decimal.RequireFromString(tc.size),
				decimal.RequireFromString(tc.ctVal),
			)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
