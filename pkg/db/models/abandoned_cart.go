package models

import (
	"time"

	"github.com/shopspring/decimal"

	dbtypes "github.com/pmcell/catalog-backend/pkg/db/types"
)

// AbandonedCartUndeliveredIndex allows one undelivered cart per contact and is
// the conflict target of the tracking upsert.
const AbandonedCartUndeliveredIndex = "ux_abandoned_carts_whatsapp_undelivered"

// AbandonedCart is a cart snapshot waiting for its webhook to succeed.
type AbandonedCart struct {
	ID               uint            `gorm:"column:id;primaryKey"`
	WhatsApp         string          `gorm:"column:whatsapp;size:20;not null;uniqueIndex:ux_abandoned_carts_whatsapp_undelivered,where:webhook_sent = false"`
	SessionID        string          `gorm:"column:session_id;size:100"`
	CartData         dbtypes.JSON    `gorm:"column:cart_data;not null"`
	EstimatedValue   decimal.Decimal `gorm:"column:estimated_value;type:numeric(12,2);not null"`
	AbandonedAt      time.Time       `gorm:"column:abandoned_at;not null;index"`
	WebhookSent      bool            `gorm:"column:webhook_sent;not null"`
	DeliveryAttempts int             `gorm:"column:delivery_attempts;not null;default:0"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
