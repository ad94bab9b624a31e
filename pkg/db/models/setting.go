package models

import "time"

// SettingStoreName is the key whose value is sent as "loja" in webhooks.
const SettingStoreName = "store_name"

// Setting is a general key/value entry.
type Setting struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	Key         string    `gorm:"column:key;size:100;not null;uniqueIndex:ux_settings_key"`
	Value       string    `gorm:"column:value;type:text;not null"`
	Description string    `gorm:"column:description;type:text"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
