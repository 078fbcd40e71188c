package keys

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"

	"charttrader/src/model"
	"charttrader/src/repository"
	"charttrader/src/security"
)

// Keys is the interactive credential setup command. It prompts for the
// exchange credential triple (and optional gist backup settings),
// encrypts the secret fields, and persists the configuration. Existing
// values are kept when the prompt is left empty.
type Keys struct {
	In  *bufio.Reader
	Out *os.File
}

func (k *Keys) Start() error {
	if k.In == nil {
		k.In = bufio.NewReader(os.Stdin)
	}
	if k.Out == nil {
		k.Out = os.Stdout
	}

	ctx := context.Background()
	settings := repository.NewSettingsRepository()

	var cfg model.ApiConfig
	if _, err := settings.GetJSON(ctx, model.SettingKeyApiConfig, &cfg); err != nil {
		logger.WithError(err).Error("failed to load existing api config")
		return err
	}

	apiKey, err := k.prompt("API key", cfg.APIKey != "")
	if err != nil {
		return err
	}
	apiSecret, err := k.prompt("API secret", cfg.APISecret != "")
	if err != nil {
		return err
	}
	passphrase, err := k.prompt("Passphrase", cfg.Passphrase != "")
	if err != nil {
		return err
	}
	gistToken, err := k.prompt("Gist token (optional)", cfg.GistToken != "")
	if err != nil {
		return err
	}
	gistID, err := k.prompt("Gist id (optional)", cfg.GistID != "")
	if err != nil {
		return err
	}

	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	if apiSecret != "" {
		enc, err := security.EncryptString(apiSecret)
		if err != nil {
			logger.WithError(err).Error("failed to encrypt API secret")
			return err
		}
		cfg.APISecret = enc
	}
	if passphrase != "" {
		enc, err := security.EncryptString(passphrase)
		if err != nil {
			logger.WithError(err).Error("failed to encrypt passphrase")
			return err
		}
		cfg.Passphrase = enc
	}
	if gistToken != "" {
		cfg.GistToken = gistToken
	}
	if gistID != "" {
		cfg.GistID = gistID
	}

	if err := settings.PutJSON(ctx, model.SettingKeyApiConfig, cfg); err != nil {
		logger.WithError(err).Error("failed to persist api config")
		return err
	}

	logger.WithField("hasKeys", cfg.HasKeys()).Info("api config saved")
	return nil
}

func (k *Keys) prompt(label string, hasExisting bool) (string, error) {
	suffix := ""
	if hasExisting {
		suffix = " [keep current]"
	}
	if _, err := fmt.Fprintf(k.Out, "%s%s: ", label, suffix); err != nil {
		return "", err
	}

	line, err := k.In.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
