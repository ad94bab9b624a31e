package models

import (
	"github.com/shopspring/decimal"

	"github.com/pmcell/catalog-backend/pkg/pricing"
)

type PhoneBrand struct {
	ID       uint   `gorm:"column:id;primaryKey"`
	Name     string `gorm:"column:name;size:100;not null;uniqueIndex:ux_phone_brands_name"`
	Slug     string `gorm:"column:slug;size:120;not null;uniqueIndex:ux_phone_brands_slug"`
	Active   bool   `gorm:"column:active;not null"`
	Position int    `gorm:"column:position;not null;default:0"`
}

type PhoneModel struct {
	ID       uint       `gorm:"column:id;primaryKey"`
	BrandID  uint       `gorm:"column:brand_id;not null;uniqueIndex:ux_phone_models_brand_slug,priority:1"`
	Brand    PhoneBrand `gorm:"foreignKey:BrandID"`
	Name     string     `gorm:"column:name;size:100;not null"`
	Slug     string     `gorm:"column:slug;size:120;not null;uniqueIndex:ux_phone_models_brand_slug,priority:2"`
	Active   bool       `gorm:"column:active;not null"`
	Position int        `gorm:"column:position;not null;default:0"`
}

// DisplayName renders "Brand Model" when the brand is loaded.
func (m PhoneModel) DisplayName() string {
	if m.Brand.Name == "" {
		return m.Name
	}
	return m.Brand.Name + " " + m.Name
}

// ModelPrice is the price pair of a variant product for one phone model.
type ModelPrice struct {
	ID            uint            `gorm:"column:id;primaryKey"`
	ProductID     uint            `gorm:"column:product_id;not null;uniqueIndex:ux_model_prices_product_model,priority:1"`
	ModelID       uint            `gorm:"column:model_id;not null;uniqueIndex:ux_model_prices_product_model,priority:2"`
	Model         PhoneModel      `gorm:"foreignKey:ModelID"`
	StandardPrice decimal.Decimal `gorm:"column:standard_price;type:numeric(10,2);not null"`
	BulkPrice     decimal.Decimal `gorm:"column:bulk_price;type:numeric(10,2);not null"`
	Active        bool            `gorm:"column:active;not null"`
}

// Pair returns nil for a nil receiver so callers can pass lookups straight
// into pricing.NewVariantTier.
func (m *ModelPrice) Pair() *pricing.Pair {
	if m == nil {
		return nil
	}
	return &pricing.Pair{Standard: m.StandardPrice, Bulk: m.BulkPrice}
}
