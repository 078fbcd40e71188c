package history

import (
	"context"

	"charttrader/src/model"
	"charttrader/src/repository"
)

// SettingsSeriesStore keeps the equity series as a JSON blob under the
// well-known asset-history key.
type SettingsSeriesStore struct {
	settings *repository.SettingsRepository
}

func NewSettingsSeriesStore(settings *repository.SettingsRepository) *SettingsSeriesStore {
	return &SettingsSeriesStore{settings: settings}
}

func (s *SettingsSeriesStore) LoadSeries(ctx context.Context) ([]model.AssetHistoryPoint, error) {
	var series []model.AssetHistoryPoint
	if _, err := s.settings.GetJSON(ctx, model.SettingKeyAssetHistory, &series); err != nil {
		return nil, err
	}
	return series, nil
}

func (s *SettingsSeriesStore) SaveSeries(ctx context.Context, points []model.AssetHistoryPoint) error {
	return s.settings.PutJSON(ctx, model.SettingKeyAssetHistory, points)
}
