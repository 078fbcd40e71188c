package gistsync

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	APIBaseURL  string        `envconfig:"GIST_API_BASE_URL" default:"https://api.github.com"`
	FileName    string        `envconfig:"GIST_FILE_NAME" default:"asset-history.json"`
	HTTPTimeout time.Duration `envconfig:"GIST_HTTP_TIMEOUT" default:"15s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
