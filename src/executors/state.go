package executors

import (
	"sync"
	"time"

	"charttrader/src/model"
	"charttrader/src/okx"
)

// Snapshot is one consistent copy of everything the poll loops have
// fetched, consumed by the status endpoint and the UI layer.
type Snapshot struct {
	Connected        bool                 `json:"connected"`
	ActiveInstrument string               `json:"active_instrument"`
	Rates            okx.Rates            `json:"rates"`
	Balances         []model.AssetBalance `json:"balances"`
	Positions        []model.Position     `json:"positions"`
	Orders           []model.Order        `json:"orders"`
	Tickers          []model.Ticker       `json:"tickers"`
	Candles          []model.Candle       `json:"candles"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// State is the shared cell the loops write into. Writers replace whole
// slices; readers get a shallow copy of the snapshot.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewState(activeInstrument string) *State {
	return &State{snap: Snapshot{ActiveInstrument: activeInstrument}}
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *State) update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
	s.snap.UpdatedAt = time.Now()
}

func (s *State) SetConnected(connected bool) {
	s.update(func(snap *Snapshot) { snap.Connected = connected })
}

func (s *State) SetActiveInstrument(instID string) {
	s.update(func(snap *Snapshot) {
		snap.ActiveInstrument = instID
		snap.Candles = nil
	})
}

func (s *State) SetRates(r okx.Rates) {
	s.update(func(snap *Snapshot) { snap.Rates = r })
}

func (s *State) SetBalances(b []model.AssetBalance) {
	s.update(func(snap *Snapshot) { snap.Balances = b })
}

func (s *State) SetPositions(p []model.Position) {
	s.update(func(snap *Snapshot) { snap.Positions = p })
}

func (s *State) SetOrders(o []model.Order) {
	s.update(func(snap *Snapshot) { snap.Orders = o })
}

func (s *State) SetTickers(t []model.Ticker) {
	s.update(func(snap *Snapshot) { snap.Tickers = t })
}

func (s *State) SetCandles(c []model.Candle) {
	s.update(func(snap *Snapshot) { snap.Candles = c })
}

// UpdateLastPrice patches one ticker row in place from a stream push.
func (s *State) UpdateLastPrice(instID string, last float64) {
	s.update(func(snap *Snapshot) {
		for i := range snap.Tickers {
			if snap.Tickers[i].InstID == instID {
				snap.Tickers[i].Last = last
				return
			}
		}
	})
}

// PrependCandles splices an older chunk in front of the loaded series,
// used by the backfiller.
func (s *State) PrependCandles(older []model.Candle) {
	if len(older) == 0 {
		return
	}
	s.update(func(snap *Snapshot) {
		merged := make([]model.Candle, 0, len(older)+len(snap.Candles))
		merged = append(merged, older...)
		merged = append(merged, snap.Candles...)
		snap.Candles = merged
	})
}
