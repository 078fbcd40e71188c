package history

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"charttrader/src/model"
)

// SeriesStore persists the local equity series.
type SeriesStore interface {
	LoadSeries(ctx context.Context) ([]model.AssetHistoryPoint, error)
	SaveSeries(ctx context.Context, points []model.AssetHistoryPoint) error
}

// RemoteSync pushes the local series to the cross-device backup
// collaborator. Failures are logged only; they never surface and never
// roll back the local write they followed.
type RemoteSync interface {
	SubmitSeries(ctx context.Context, points []model.AssetHistoryPoint) error
}

const remoteSubmitTimeout = 30 * time.Second

// Recorder samples total account equity from every successful balance
// fetch: at most one point per rolling hour, capped at
// model.HistoryMaxPoints with the oldest evicted first. The
// read-modify-persist sequence is serialized by a mutex.
type Recorder struct {
	store  SeriesStore
	remote RemoteSync

	mu  sync.Mutex
	now func() time.Time
}

func NewRecorder(store SeriesStore, remote RemoteSync) *Recorder {
	return &Recorder{
		store:  store,
		remote: remote,
		now:    time.Now,
	}
}

// Record implements the balance sink fed by the account client.
func (r *Recorder) Record(ctx context.Context, balances []model.AssetBalance) {
	if len(balances) == 0 {
		return
	}

	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(decimal.NewFromFloat(b.EqUsd))
	}
	totalEq, _ := total.Float64()

	r.mu.Lock()
	series, err := r.store.LoadSeries(ctx)
	if err != nil {
		r.mu.Unlock()
		logger.WithError(err).Error("failed to load asset history series")
		return
	}

	nowMs := r.now().UnixMilli()
	if len(series) > 0 && nowMs-series[len(series)-1].Ts <= time.Hour.Milliseconds() {
		r.mu.Unlock()
		return
	}

	series = append(series, model.AssetHistoryPoint{Ts: nowMs, TotalEq: totalEq})
	if excess := len(series) - model.HistoryMaxPoints; excess > 0 {
		series = series[excess:]
	}

	if err := r.store.SaveSeries(ctx, series); err != nil {
		r.mu.Unlock()
		logger.WithError(err).Error("failed to persist asset history series")
		return
	}
	snapshot := make([]model.AssetHistoryPoint, len(series))
	copy(snapshot, series)
	r.mu.Unlock()

	logger.WithFields(logger.Fields{
		"points":  len(snapshot),
		"totalEq": totalEq,
	}).Debug("asset history point recorded")

	if r.remote != nil {
		go func() {
			syncCtx, cancel := context.WithTimeout(context.Background(), remoteSubmitTimeout)
			defer cancel()
			if err := r.remote.SubmitSeries(syncCtx, snapshot); err != nil {
				logger.WithError(err).Warn("asset history remote sync failed")
			}
		}()
	}
}

// periodCutoffs maps a display period to its lookback window.
var periodCutoffs = map[string]time.Duration{
	"1D": 24 * time.Hour,
	"1W": 7 * 24 * time.Hour,
	"1M": 30 * 24 * time.Hour,
	"3M": 90 * 24 * time.Hour,
}

// AssetHistory returns recorded points with timestamp >= now-period.
// It never synthesizes data: periods with no recorded points return an
// empty series.
func (r *Recorder) AssetHistory(ctx context.Context, period string) []model.AssetHistoryPoint {
	window, ok := periodCutoffs[period]
	if !ok {
		logger.WithField("period", period).Warn("unknown history period, defaulting to 1D")
		window = periodCutoffs["1D"]
	}

	r.mu.Lock()
	series, err := r.store.LoadSeries(ctx)
	r.mu.Unlock()
	if err != nil {
		logger.WithError(err).Error("failed to load asset history series")
		return nil
	}

	cutoff := r.now().Add(-window).UnixMilli()
	out := make([]model.AssetHistoryPoint, 0, len(series))
	for _, p := range series {
		if p.Ts >= cutoff {
			out = append(out, p)
		}
	}
	return out
}

// Len reports the current number of stored points.
func (r *Recorder) Len(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	series, err := r.store.LoadSeries(ctx)
	if err != nil {
		return 0
	}
	return len(series)
}
