package history

import (
	"sort"

	"charttrader/src/model"
)

// MergeSeries merges two equity series by timestamp key: the overlay
// wins for a timestamp present in both, and the union is returned
// sorted ascending. Merging a series with itself yields the same
// series.
func MergeSeries(base, overlay []model.AssetHistoryPoint) []model.AssetHistoryPoint {
	byTs := make(map[int64]model.AssetHistoryPoint, len(base)+len(overlay))
	for _, p := range base {
		byTs[p.Ts] = p
	}
	for _, p := range overlay {
		byTs[p.Ts] = p
	}

	out := make([]model.AssetHistoryPoint, 0, len(byTs))
	for _, p := range byTs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Ts < out[j].Ts
	})
	return out
}
