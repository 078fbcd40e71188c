package history

import (
	"testing"

	"charttrader/src/model"
)

func TestMergeSeriesUnionSortedAscending(t *testing.T) {
	base := []model.AssetHistoryPoint{
		{Ts: 100, TotalEq: 1},
		{Ts: 300, TotalEq: 3},
	}
	overlay := []model.AssetHistoryPoint{
		{Ts: 200, TotalEq: 2},
		{Ts: 300, TotalEq: 33},
	}

	merged := MergeSeries(base, overlay)

	if len(merged) != 3 {
		t.Fatalf("expected 3 points, got %+v", merged)
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].Ts <= merged[i-1].Ts {
			t.Fatalf("expected ascending order, got %+v", merged)
		}
	}
	if merged[2].TotalEq != 33 {
		t.Fatalf("expected overlay to win on shared timestamp, got %+v", merged[2])
	}
}

func TestMergeSeriesSelfMergeIsIdentity(t *testing.T) {
	series := []model.AssetHistoryPoint{
		{Ts: 100, TotalEq: 1},
		{Ts: 200, TotalEq: 2},
	}

	merged := MergeSeries(series, series)

	if len(merged) != len(series) {
		t.Fatalf("self-merge must not grow the series: %+v", merged)
	}
	for i := range series {
		if merged[i] != series[i] {
			t.Fatalf("self-merge changed the series: %+v", merged)
		}
	}
}

func TestMergeSeriesEmptySides(t *testing.T) {
	series := []model.AssetHistoryPoint{{Ts: 100, TotalEq: 1}}

	if got := MergeSeries(nil, series); len(got) != 1 {
		t.Fatalf("expected overlay-only merge, got %+v", got)
	}
	if got := MergeSeries(series, nil); len(got) != 1 {
		t.Fatalf("expected base-only merge, got %+v", got)
	}
	if got := MergeSeries(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty merge, got %+v", got)
	}
}
