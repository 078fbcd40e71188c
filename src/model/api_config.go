package model

// AlertRule fires a one-shot alert when an instrument's last price
// crosses the configured bound.
type AlertRule struct {
	InstID string  `json:"inst_id"`
	Upper  float64 `json:"upper,omitempty"`
	Lower  float64 `json:"lower,omitempty"`
}

// ApiConfig is the persisted runtime configuration. It is loaded once
// at startup and persisted wholesale on every change; a change always
// constructs a fresh set of clients instead of mutating a live one.
// APISecret and Passphrase are stored encrypted (security package).
type ApiConfig struct {
	APIKey     string `json:"api_key"`
	APISecret  string `json:"api_secret"`
	Passphrase string `json:"passphrase"`

	Language        string      `json:"language,omitempty"`
	Theme           string      `json:"theme,omitempty"`
	PollIntervalSec int         `json:"poll_interval_sec,omitempty"`
	ColorConvention string      `json:"color_convention,omitempty"`
	AlertRules      []AlertRule `json:"alert_rules,omitempty"`
	GistToken       string      `json:"gist_token,omitempty"`
	GistID          string      `json:"gist_id,omitempty"`
}

// HasKeys reports whether the full credential triple is present.
// Private endpoints are gated on this predicate.
func (c ApiConfig) HasKeys() bool {
	return c.APIKey != "" && c.APISecret != "" && c.Passphrase != ""
}
