package models

import (
	"time"

	"github.com/pmcell/catalog-backend/pkg/enums"
)

const defaultWebhookTimeout = 30 * time.Second

// WebhookConfig holds the merchant endpoint for one business event.
type WebhookConfig struct {
	ID             uint               `gorm:"column:id;primaryKey"`
	Event          enums.WebhookEvent `gorm:"column:event;size:30;not null;uniqueIndex:ux_webhook_configs_event"`
	URL            string             `gorm:"column:url;size:500;not null"`
	Active         bool               `gorm:"column:active;not null"`
	TimeoutSeconds int                `gorm:"column:timeout_seconds;not null;default:30"`
	RetryEnabled   bool               `gorm:"column:retry_enabled;not null"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// Timeout falls back to 30s when unset.
func (c WebhookConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultWebhookTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
