package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"charttrader/src/database"
	"charttrader/src/model"
)

// CandleRepository stores imported seed candles so a fresh chart has
// history before the first exchange backfill completes.
type CandleRepository struct {
	db *gorm.DB
}

// NewCandleRepository creates a new repository instance.
func NewCandleRepository() *CandleRepository {
	return &CandleRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *CandleRepository) WithDB(db *gorm.DB) *CandleRepository {
	r.db = db
	return r
}

// UpsertSeeds inserts or updates candles on (datetime, symbol).
func (r *CandleRepository) UpsertSeeds(ctx context.Context, rows []model.OHLCVSeed) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "datetime"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(&rows).Error
}

// LatestSeedTime returns the newest stored candle time for a symbol,
// or an invalid time when none exists.
func (r *CandleRepository) LatestSeedTime(ctx context.Context, symbol string) (sql.NullTime, error) {
	var latest sql.NullTime
	err := r.db.WithContext(ctx).
		Model(&model.OHLCVSeed{}).
		Select("MAX(datetime)").
		Where("symbol = ?", symbol).
		Take(&latest).Error
	return latest, err
}

// SeedCandles returns up to limit stored candles for a symbol, oldest
// first.
func (r *CandleRepository) SeedCandles(ctx context.Context, symbol string, limit int) ([]model.Candle, error) {
	var rows []model.OHLCVSeed
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("datetime ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]model.Candle, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToCandle())
	}
	return out, nil
}
