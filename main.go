package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"charttrader/src/alert"
	"charttrader/src/database"
	"charttrader/src/executors"
	"charttrader/src/server"
)

var (
	APP_NAME = os.Getenv("APP_NAME")
)

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	// Initialize main (read/write) database
	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

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

	server.StartServer(server.GetConfig().Port, loop.State(), loop)
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
