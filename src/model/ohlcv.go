package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OHLCVSeed is an imported historical candle kept in the local store so
// a freshly opened chart has history before the first exchange backfill
// completes. Rows are upserted on (datetime, symbol).
type OHLCVSeed struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	Datetime time.Time       `gorm:"uniqueIndex:idx_seed_dt_symbol" json:"datetime"`
	Symbol   string          `gorm:"size:40;uniqueIndex:idx_seed_dt_symbol" json:"symbol"`
	Open     decimal.Decimal `gorm:"type:decimal(32,16)" json:"open"`
	High     decimal.Decimal `gorm:"type:decimal(32,16)" json:"high"`
	Low      decimal.Decimal `gorm:"type:decimal(32,16)" json:"low"`
	Close    decimal.Decimal `gorm:"type:decimal(32,16)" json:"close"`
	Volume   decimal.Decimal `gorm:"type:decimal(32,16)" json:"volume"`
}

// TableName controls the exact table name for seed candles.
func (OHLCVSeed) TableName() string {
	return "ohlcv_seed"
}

// ToCandle converts a stored seed row into the chart candle shape.
func (o OHLCVSeed) ToCandle() Candle {
	open, _ := o.Open.Float64()
	high, _ := o.High.Float64()
	low, _ := o.Low.Float64()
	closePx, _ := o.Close.Float64()
	return Candle{
		Time:  o.Datetime.Unix(),
		Open:  open,
		High:  high,
		Low:   low,
		Close: closePx,
	}
}
