package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"charttrader/src/executors"
	"charttrader/src/model"
)

// StatusProvider exposes the poll engine's current snapshot.
type StatusProvider interface {
	Snapshot() executors.Snapshot
}

// HistoryProvider exposes the recorded equity series and the recent
// trade history.
type HistoryProvider interface {
	AssetHistory(ctx context.Context, period string) []model.AssetHistoryPoint
	TradeHistory(ctx context.Context, limit int) model.TradeHistory
}

var _ HistoryProvider = (*executors.Loop)(nil)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to write json response")
	}
}

// StartServer serves the read-only status API and blocks until SIGINT
// or SIGTERM.
func StartServer(port string, status StatusProvider, hist HistoryProvider) {
	// Router with middleware
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status.Snapshot())
	})

	r.Get("/api/asset-history", func(w http.ResponseWriter, r *http.Request) {
		period := r.URL.Query().Get("period")
		if period == "" {
			period = "1D"
		}
		points := hist.AssetHistory(r.Context(), period)
		if points == nil {
			points = []model.AssetHistoryPoint{}
		}
		writeJSON(w, points)
	})

	r.Get("/api/trade-history", func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}
		writeJSON(w, hist.TradeHistory(r.Context(), limit))
	})

	// Graceful server
	// Server setup
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
