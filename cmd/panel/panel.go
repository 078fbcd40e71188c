package panel

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"charttrader/src/alert"
	"charttrader/src/executors"
	"charttrader/src/server"
)

// Panel runs the trading panel: the poll engine plus the local status
// API it is observed through.
type Panel struct{}

func (p *Panel) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := executors.NewLoop(func(trg alert.Trigger) {
		logger.WithFields(logger.Fields{
			"instId":    trg.InstID,
			"direction": trg.Direction,
			"bound":     trg.Bound,
			"price":     trg.Price,
		}).Warn("PRICE ALERT")
	})

	go func() {
		if err := loop.StartLoop(ctx); err != nil {
			logger.WithError(err).Error("poll loop exited")
		}
	}()

	// blocks until SIGINT/SIGTERM
	server.StartServer(server.GetConfig().Port, loop.State(), loop)

	return nil
}
