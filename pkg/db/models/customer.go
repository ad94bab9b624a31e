package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer aggregates per-contact state: the price gate and purchase stats.
type Customer struct {
	ID               uint            `gorm:"column:id;primaryKey"`
	WhatsApp         string          `gorm:"column:whatsapp;size:20;not null;uniqueIndex:ux_customers_whatsapp"`
	Name             string          `gorm:"column:name;size:200"`
	PricesReleased   bool            `gorm:"column:prices_released;not null"`
	PricesReleasedAt *time.Time      `gorm:"column:prices_released_at"`
	TotalOrders      int             `gorm:"column:total_orders;not null;default:0"`
	TotalSpent       decimal.Decimal `gorm:"column:total_spent;type:numeric(12,2);not null"`
	LastPurchaseAt   *time.Time      `gorm:"column:last_purchase_at"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
