package executors

import (
	"context"
	"sync"
	"testing"

	"charttrader/src/chart"
	"charttrader/src/history"
	"charttrader/src/model"
	"charttrader/src/okx"
)

type staticSeriesStore struct {
	points []model.AssetHistoryPoint
}

func (s *staticSeriesStore) LoadSeries(context.Context) ([]model.AssetHistoryPoint, error) {
	return s.points, nil
}

func (s *staticSeriesStore) SaveSeries(context.Context, []model.AssetHistoryPoint) error {
	return nil
}

func newBareSession() *Session {
	gw := okx.NewGateway(okx.Credentials{})
	market := okx.NewMarketClient(gw)
	return &Session{
		market:     market,
		account:    okx.NewAccountClient(gw, market, nil),
		recorder:   history.NewRecorder(&staticSeriesStore{}, nil),
		backfill:   chart.NewBackfiller(market),
		cancelFeed: func() {},
	}
}

// Session swaps happen on the poll goroutine while the status handlers
// read from server goroutines; run with -race.
func TestSessionSwapConcurrentWithHandlerReads(t *testing.T) {
	l := &Loop{
		state:  NewState("BTC-USDT-SWAP"),
		events: make(chan chart.Event, 16),
	}
	l.swapSession(newBareSession())

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			l.swapSession(newBareSession())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			l.AssetHistory(ctx, "1D")
			l.TradeHistory(ctx, 10)
			l.SetActiveInstrument("BTC-USDT-SWAP")
		}
	}()

	wg.Wait()

	if l.currentSession() == nil {
		t.Fatalf("expected a live session after concurrent swaps")
	}
}

func TestHandlerCallsBeforeFirstSession(t *testing.T) {
	l := &Loop{
		state:  NewState("BTC-USDT-SWAP"),
		events: make(chan chart.Event, 16),
	}

	if got := l.AssetHistory(context.Background(), "1D"); got != nil {
		t.Fatalf("expected nil history without a session, got %+v", got)
	}
	th := l.TradeHistory(context.Background(), 10)
	if len(th.Fills) != 0 || len(th.ClosedPositions) != 0 {
		t.Fatalf("expected empty trade history without a session, got %+v", th)
	}
	if l.Backfill(context.Background(), -5) {
		t.Fatalf("expected no backfill without a session")
	}
}
