package model

import "time"

// Well-known settings keys. Values are plain JSON blobs.
const (
	SettingKeyApiConfig    = "api-config"
	SettingKeyAssetHistory = "asset-history"
)

// Setting is one persisted JSON blob under a well-known key.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName controls the exact table name for settings.
func (Setting) TableName() string {
	return "settings"
}
