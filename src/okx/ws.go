package okx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

const wsReconnectDelay = 5 * time.Second

// TickHandler receives every pushed last price for a subscribed
// instrument.
type TickHandler func(instID string, last float64)

type wsSubscription struct {
	Op   string              `json:"op"`
	Args []map[string]string `json:"args"`
}

type wsTickerMessage struct {
	Arg struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Data []struct {
		InstID string `json:"instId"`
		Last   string `json:"last"`
	} `json:"data"`
}

// WSFeed streams public ticker pushes between REST polls. Read-only
// and best-effort: any failure logs and reconnects, never surfaces.
type WSFeed struct {
	url     string
	handler TickHandler
}

func NewWSFeed(handler TickHandler) *WSFeed {
	config := GetConfig()
	return &WSFeed{
		url:     config.WSURL,
		handler: handler,
	}
}

// Run keeps a subscription alive until the context is cancelled,
// reconnecting with a fixed delay after any failure.
func (f *WSFeed) Run(ctx context.Context, instIDs []string) {
	for {
		if err := f.connectAndRead(ctx, instIDs); err != nil {
			logger.WithError(err).Warn("ticker feed disconnected")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wsReconnectDelay):
		}
	}
}

func (f *WSFeed) connectAndRead(ctx context.Context, instIDs []string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	args := make([]map[string]string, 0, len(instIDs))
	for _, instID := range instIDs {
		args = append(args, map[string]string{
			"channel": "tickers",
			"instId":  instID,
		})
	}
	sub := wsSubscription{Op: "subscribe", Args: args}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}

	logger.WithField("instIds", instIDs).Info("ticker feed subscribed")

	// close the connection when the context dies so ReadMessage unblocks
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var msg wsTickerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.WithError(err).Debug("skipping unparseable ticker frame")
			continue
		}
		if msg.Arg.Channel != "tickers" {
			continue
		}
		for _, d := range msg.Data {
			last := parseFloatSafe("last", d.Last)
			if last > 0 {
				f.handler(d.InstID, last)
			}
		}
	}
}
