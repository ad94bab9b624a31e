package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pmcell/catalog-backend/pkg/enums"
	"github.com/pmcell/catalog-backend/pkg/pricing"
)

// Order is a checkout submission awaiting WhatsApp follow-up.
type Order struct {
	ID           uint              `gorm:"column:id;primaryKey"`
	Code         string            `gorm:"column:code;size:20;not null;uniqueIndex:ux_orders_code"`
	WhatsApp     string            `gorm:"column:whatsapp;size:20;not null;index"`
	CustomerName string            `gorm:"column:customer_name;size:200;not null"`
	Status       enums.OrderStatus `gorm:"column:status;size:20;not null;index"`
	Total        decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Notes        string            `gorm:"column:notes;type:text"`
	Lines        []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// ErrNonPositiveQuantity rejects order lines with quantity below one.
var ErrNonPositiveQuantity = errors.New("order line quantity must be positive")

// OrderLine freezes the product name and price at checkout time.
type OrderLine struct {
	ID          uint              `gorm:"column:id;primaryKey"`
	OrderID     uint              `gorm:"column:order_id;not null;index"`
	ProductType enums.ProductType `gorm:"column:product_type;size:20;not null"`
	ProductID   uint              `gorm:"column:product_id;not null"`
	ModelID     *uint             `gorm:"column:model_id"`
	ProductName string            `gorm:"column:product_name;size:200;not null"`
	ModelName   string            `gorm:"column:model_name;size:200"`
	Quantity    int               `gorm:"column:quantity;not null;check:chk_order_lines_quantity,quantity > 0"`
	UnitPrice   decimal.Decimal   `gorm:"column:unit_price;type:numeric(10,2);not null"`
	LineTotal   decimal.Decimal   `gorm:"column:line_total;type:numeric(12,2);not null"`
}

// BeforeSave recomputes LineTotal so it always equals UnitPrice * Quantity.
func (l *OrderLine) BeforeSave(*gorm.DB) error {
	if l.Quantity <= 0 {
		return ErrNonPositiveQuantity
	}
	l.LineTotal = pricing.LineTotal(l.UnitPrice, l.Quantity)
	return nil
}
