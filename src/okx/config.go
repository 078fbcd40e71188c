package okx

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseURL     string        `envconfig:"OKX_BASE_URL" default:"https://www.okx.com"`
	WSURL       string        `envconfig:"OKX_WS_URL" default:"wss://ws.okx.com:8443/ws/v5/public"`
	HTTPTimeout time.Duration `envconfig:"OKX_HTTP_TIMEOUT" default:"10s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
