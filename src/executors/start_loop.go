package executors

import (
	"context"
	"reflect"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"charttrader/src/alert"
	"charttrader/src/chart"
	"charttrader/src/controller"
	"charttrader/src/gistsync"
	"charttrader/src/history"
	"charttrader/src/model"
	"charttrader/src/okx"
	"charttrader/src/repository"
	"charttrader/src/security"
)

// Session is one immutable wiring of exchange clients for a credential
// snapshot. A config change never mutates a live session: the loop
// builds a fresh one and drops the old.
type Session struct {
	cfg      model.ApiConfig
	gateway  *okx.Gateway
	market   *okx.MarketClient
	account  *okx.AccountClient
	recorder *history.Recorder
	intents  *controller.IntentController
	backfill *chart.Backfiller

	cancelFeed context.CancelFunc
}

// Loop is the headless data engine: it polls the exchange on fixed
// cadences, keeps the shared state cell fresh, and publishes
// DataChanged events for the chart overlay.
type Loop struct {
	config     Config
	state      *State
	events     chan chart.Event
	settings   *repository.SettingsRepository
	exceptions *repository.ExceptionRepository
	notifier   *alert.Notifier

	// the poll goroutine swaps the session on config changes while the
	// status handlers read it from server goroutines
	mu      sync.RWMutex
	session *Session
}

func NewLoop(notify alert.Notify) *Loop {
	config := GetConfig()
	return &Loop{
		config:     config,
		state:      NewState(config.ActiveInstrument),
		events:     make(chan chart.Event, 16),
		settings:   repository.NewSettingsRepository(),
		exceptions: repository.NewExceptionRepository(),
		notifier:   alert.NewNotifier(notify),
	}
}

func (l *Loop) State() *State {
	return l.state
}

// Events is the stream the chart overlay consumes.
func (l *Loop) Events() <-chan chart.Event {
	return l.events
}

func (l *Loop) currentSession() *Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.session
}

func (l *Loop) swapSession(s *Session) {
	l.mu.Lock()
	l.session = s
	l.mu.Unlock()
}

// AssetHistory serves the recorded equity series for one display
// period.
func (l *Loop) AssetHistory(ctx context.Context, period string) []model.AssetHistoryPoint {
	s := l.currentSession()
	if s == nil {
		return nil
	}
	return s.recorder.AssetHistory(ctx, period)
}

// TradeHistory returns recent fills and closed positions for the
// active instrument's type.
func (l *Loop) TradeHistory(ctx context.Context, limit int) model.TradeHistory {
	out := model.TradeHistory{
		Fills:           []model.Fill{},
		ClosedPositions: []model.ClosedPosition{},
	}
	s := l.currentSession()
	if s == nil {
		return out
	}
	instType := instTypeOf(l.state.Snapshot().ActiveInstrument)
	if fills := s.account.FillsHistory(ctx, instType, limit); fills != nil {
		out.Fills = fills
	}
	if closed := s.account.PositionsHistory(ctx, instType, limit); closed != nil {
		out.ClosedPositions = closed
	}
	return out
}

// ApplyIntent routes a completed chart gesture through the current
// session's controller.
func (l *Loop) ApplyIntent(ctx context.Context, intent chart.Intent) error {
	s := l.currentSession()
	if s == nil {
		return &controller.ValidationError{Msg: "no active session"}
	}
	return s.intents.Apply(ctx, intent)
}

// SetActiveInstrument switches the charted instrument and resets the
// candle series and backfill latch.
func (l *Loop) SetActiveInstrument(instID string) {
	l.state.SetActiveInstrument(instID)
	if s := l.currentSession(); s != nil {
		s.backfill.Reset()
	}
	l.publish(chart.DataChanged)
}

func (l *Loop) publish(kind chart.EventKind) {
	select {
	case l.events <- chart.Event{Kind: kind}:
	default:
		// overlay recomputes from full state on the next event anyway
	}
}

// loadApiConfig reads the persisted configuration and decrypts the
// credential fields. A missing row yields a zero config, not an error.
func (l *Loop) loadApiConfig(ctx context.Context) (model.ApiConfig, error) {
	var cfg model.ApiConfig
	found, err := l.settings.GetJSON(ctx, model.SettingKeyApiConfig, &cfg)
	if err != nil {
		return cfg, err
	}
	if !found {
		return cfg, nil
	}

	if cfg.APISecret != "" {
		secret, err := security.DecryptString(cfg.APISecret)
		if err != nil {
			logger.WithError(err).Error("failed to decrypt API secret")
			return model.ApiConfig{}, err
		}
		cfg.APISecret = secret
	}
	if cfg.Passphrase != "" {
		pass, err := security.DecryptString(cfg.Passphrase)
		if err != nil {
			logger.WithError(err).Error("failed to decrypt passphrase")
			return model.ApiConfig{}, err
		}
		cfg.Passphrase = pass
	}
	return cfg, nil
}

// buildSession wires the client graph for one credential snapshot and
// starts its ticker stream.
func (l *Loop) buildSession(ctx context.Context, cfg model.ApiConfig) *Session {
	gateway := okx.NewGateway(okx.Credentials{
		Key:        cfg.APIKey,
		Secret:     cfg.APISecret,
		Passphrase: cfg.Passphrase,
	})
	market := okx.NewMarketClient(gateway)

	var remote history.RemoteSync
	if cfg.GistToken != "" && cfg.GistID != "" {
		remote = gistsync.NewClient(cfg.GistToken, cfg.GistID)
	}
	recorder := history.NewRecorder(history.NewSettingsSeriesStore(l.settings), remote)

	account := okx.NewAccountClient(gateway, market, recorder)
	intents := controller.NewIntentController(account, l.exceptions)

	l.notifier.SetRules(cfg.AlertRules)

	feedCtx, cancelFeed := context.WithCancel(ctx)
	feed := okx.NewWSFeed(func(instID string, last float64) {
		l.state.UpdateLastPrice(instID, last)
		l.notifier.Observe(instID, last)
		l.publish(chart.DataChanged)
	})
	go feed.Run(feedCtx, []string{l.state.Snapshot().ActiveInstrument})

	logger.WithField("hasKeys", cfg.HasKeys()).Info("exchange session built")

	return &Session{
		cfg:        cfg,
		gateway:    gateway,
		market:     market,
		account:    account,
		recorder:   recorder,
		intents:    intents,
		backfill:   chart.NewBackfiller(market),
		cancelFeed: cancelFeed,
	}
}

// accountPeriod resolves the private poll cadence: the persisted
// setting wins over the env default.
func (l *Loop) accountPeriod(cfg model.ApiConfig) time.Duration {
	if cfg.PollIntervalSec > 0 {
		return time.Duration(cfg.PollIntervalSec) * time.Second
	}
	return l.config.AccountPeriod
}

// Backfill asks for older candles when the viewport has run past the
// left edge of the loaded series.
func (l *Loop) Backfill(ctx context.Context, visibleStart int) bool {
	s := l.currentSession()
	if s == nil {
		return false
	}
	snap := l.state.Snapshot()
	return s.backfill.MaybeBackfill(ctx, snap.ActiveInstrument, l.config.CandleBar, visibleStart, snap.Candles, func(older []model.Candle) {
		l.state.PrependCandles(older)
		l.publish(chart.DataChanged)
	})
}

// StartLoop runs the poll engine until the context is cancelled.
func (l *Loop) StartLoop(ctx context.Context) error {
	cfg, err := l.loadApiConfig(ctx)
	if err != nil {
		return err
	}
	l.swapSession(l.buildSession(ctx, cfg))

	accountTicker := time.NewTicker(l.accountPeriod(cfg))
	defer accountTicker.Stop()
	tickersTicker := time.NewTicker(l.config.TickersPeriod)
	defer tickersTicker.Stop()
	candlesTicker := time.NewTicker(l.config.CandlesPeriod)
	defer candlesTicker.Stop()
	ratesTicker := time.NewTicker(l.config.RatesPeriod)
	defer ratesTicker.Stop()
	configTicker := time.NewTicker(l.config.ConfigWatchPeriod)
	defer configTicker.Stop()

	// prime everything once instead of waiting a full period
	l.refreshRates(ctx)
	l.refreshTickers(ctx)
	l.refreshCandles(ctx)
	l.refreshAccount(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("poll loop stopped")
			l.currentSession().cancelFeed()
			return nil

		case <-accountTicker.C:
			l.refreshAccount(ctx)

		case <-tickersTicker.C:
			l.refreshTickers(ctx)

		case <-candlesTicker.C:
			l.refreshCandles(ctx)

		case <-ratesTicker.C:
			l.refreshRates(ctx)

		case <-configTicker.C:
			next, err := l.loadApiConfig(ctx)
			if err != nil {
				controller.Capture(ctx, l.exceptions, "Loop", "executors", "loadApiConfig", "error", err, nil)
				continue
			}
			current := l.currentSession()
			if reflect.DeepEqual(next, current.cfg) {
				continue
			}
			logger.Info("api config changed, rebuilding exchange session")
			current.cancelFeed()
			l.swapSession(l.buildSession(ctx, next))
			accountTicker.Reset(l.accountPeriod(next))
			l.refreshAccount(ctx)
		}
	}
}

func (l *Loop) refreshAccount(ctx context.Context) {
	account := l.currentSession().account
	if !account.HasKeys() {
		l.state.SetConnected(false)
		return
	}

	l.state.SetBalances(account.Balances(ctx))
	l.state.SetPositions(account.Positions(ctx))
	l.state.SetOrders(account.OpenOrders(ctx, ""))
	l.state.SetConnected(true)
	l.publish(chart.DataChanged)
}

func (l *Loop) refreshTickers(ctx context.Context) {
	tickers := l.currentSession().market.Tickers(ctx, instTypeOf(l.state.Snapshot().ActiveInstrument))
	if len(tickers) == 0 {
		return
	}
	l.state.SetTickers(tickers)
	for _, t := range tickers {
		l.notifier.Observe(t.InstID, t.Last)
	}
	l.publish(chart.DataChanged)
}

func (l *Loop) refreshCandles(ctx context.Context) {
	snap := l.state.Snapshot()
	candles, err := l.currentSession().market.Candles(ctx, snap.ActiveInstrument, l.config.CandleBar, 0)
	if err != nil {
		logger.WithError(err).Warn("candle refresh failed")
		return
	}
	if len(snap.Candles) == 0 {
		l.state.SetCandles(candles)
	} else {
		l.state.SetCandles(mergeCandleTail(snap.Candles, candles))
	}
	l.publish(chart.DataChanged)
}

func (l *Loop) refreshRates(ctx context.Context) {
	l.state.SetRates(l.currentSession().market.ExchangeRates(ctx))
	l.publish(chart.DataChanged)
}

func instTypeOf(instID string) string {
	if model.IsSwapInstID(instID) {
		return model.InstTypeSwap
	}
	return model.InstTypeSpot
}

// mergeCandleTail overlays a freshly fetched newest page onto the
// loaded series, preserving any backfilled history older than the
// page.
func mergeCandleTail(loaded, page []model.Candle) []model.Candle {
	if len(page) == 0 {
		return loaded
	}
	pageStart := page[0].Time
	out := make([]model.Candle, 0, len(loaded)+len(page))
	for _, c := range loaded {
		if c.Time < pageStart {
			out = append(out, c)
		}
	}
	return append(out, page...)
}
