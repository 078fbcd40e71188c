package chart

import (
	"context"
	"sync"

	logger "github.com/sirupsen/logrus"

	"charttrader/src/model"
)

// CandleSource fetches candles strictly older than the given cutoff
// (unix seconds), newest-window-first is already normalized away: the
// result is oldest-first.
type CandleSource interface {
	Candles(ctx context.Context, instID, bar string, after int64) ([]model.Candle, error)
}

// Backfiller extends the loaded candle series to the left when the
// viewport is panned past its start. Only one fetch runs at a time and
// an empty response latches the series as fully loaded until the next
// Reset.
type Backfiller struct {
	src CandleSource

	mu        sync.Mutex
	inFlight  bool
	exhausted bool
}

func NewBackfiller(src CandleSource) *Backfiller {
	return &Backfiller{src: src}
}

// Reset clears the exhausted latch, used when the instrument or bar
// interval changes.
func (b *Backfiller) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.exhausted = false
}

// MaybeBackfill starts an async fetch of candles older than the first
// loaded one when the visible range start has gone negative. prepend is
// called with the older chunk (oldest-first) on success. Returns true
// when a fetch was started.
func (b *Backfiller) MaybeBackfill(ctx context.Context, instID, bar string, visibleStart int, series []model.Candle, prepend func([]model.Candle)) bool {
	if visibleStart >= 0 || len(series) == 0 {
		return false
	}

	b.mu.Lock()
	if b.inFlight || b.exhausted {
		b.mu.Unlock()
		return false
	}
	b.inFlight = true
	b.mu.Unlock()

	after := series[0].Time

	go func() {
		candles, err := b.src.Candles(ctx, instID, bar, after)

		b.mu.Lock()
		b.inFlight = false
		if err == nil && len(candles) == 0 {
			b.exhausted = true
		}
		b.mu.Unlock()

		if err != nil {
			logger.WithError(err).WithFields(logger.Fields{
				"instId": instID,
				"bar":    bar,
			}).Warn("candle backfill failed")
			return
		}
		if len(candles) == 0 {
			logger.WithField("instId", instID).Debug("candle history exhausted")
			return
		}
		prepend(candles)
	}()
	return true
}
