package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pmcell/catalog-backend/pkg/enums"
	"github.com/pmcell/catalog-backend/pkg/pricing"
)

// ProductBase holds the columns shared by both product tables.
type ProductBase struct {
	ID            uint      `gorm:"column:id;primaryKey"`
	Name          string    `gorm:"column:name;size:200;not null"`
	Slug          string    `gorm:"column:slug;size:220;not null;uniqueIndex"`
	Description   string    `gorm:"column:description;type:text"`
	CategoryID    uint      `gorm:"column:category_id;not null;index"`
	Manufacturer  string    `gorm:"column:manufacturer;size:100"`
	Features      string    `gorm:"column:features;type:text"`
	InStock       bool      `gorm:"column:in_stock;not null"`
	Featured      bool      `gorm:"column:featured;not null"`
	BulkThreshold int       `gorm:"column:bulk_threshold;not null;default:10"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// SimpleProduct carries a single standard/bulk price pair.
type SimpleProduct struct {
	ProductBase   `gorm:"embedded"`
	StandardPrice decimal.Decimal `gorm:"column:standard_price;type:numeric(10,2);not null"`
	BulkPrice     decimal.Decimal `gorm:"column:bulk_price;type:numeric(10,2);not null"`
	Category      Category        `gorm:"foreignKey:CategoryID"`
	Images        []ProductImage  `gorm:"polymorphic:Product;polymorphicValue:normal"`
}

func (SimpleProduct) TableName() string { return "simple_products" }

func (p *SimpleProduct) Type() enums.ProductType { return enums.ProductTypeNormal }

// Tier exposes the product's pricing.
func (p *SimpleProduct) Tier() pricing.PriceTier {
	return pricing.SimpleTier{Standard: p.StandardPrice, Bulk: p.BulkPrice, Threshold: p.BulkThreshold}
}

// VariantProduct is a case or screen protector priced per phone model.
type VariantProduct struct {
	ProductBase `gorm:"embedded"`
	Category    Category       `gorm:"foreignKey:CategoryID"`
	Images      []ProductImage `gorm:"polymorphic:Product;polymorphicValue:capa_pelicula"`
	Prices      []ModelPrice   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (VariantProduct) TableName() string { return "variant_products" }

func (p *VariantProduct) Type() enums.ProductType { return enums.ProductTypeCapaPelicula }

// Tier prices the product for one model. A nil price yields
// pricing.ErrMissingPrice when used.
func (p *VariantProduct) Tier(price *ModelPrice) pricing.PriceTier {
	return pricing.NewVariantTier(p.BulkThreshold, price.Pair())
}

// PriceRange summarises the loaded active Prices, nil when there are none.
func (p *VariantProduct) PriceRange() *pricing.Range {
	pairs := make([]pricing.Pair, 0, len(p.Prices))
	for i := range p.Prices {
		if p.Prices[i].Active {
			pairs = append(pairs, *p.Prices[i].Pair())
		}
	}
	return pricing.RangeOf(pairs)
}

// ProductImage belongs to either product table via (product_type, product_id).
type ProductImage struct {
	ID          uint              `gorm:"column:id;primaryKey"`
	ProductType enums.ProductType `gorm:"column:product_type;size:20;not null;index:ix_product_images_owner,priority:1"`
	ProductID   uint              `gorm:"column:product_id;not null;index:ix_product_images_owner,priority:2"`
	URL         string            `gorm:"column:url;size:500;not null"`
	AltText     string            `gorm:"column:alt_text;size:200"`
	Position    int               `gorm:"column:position;not null;default:0"`
	IsPrimary   bool              `gorm:"column:is_primary;not null"`
}

// PrimaryImageURL picks the image flagged primary, else the first by position.
func PrimaryImageURL(images []ProductImage) string {
	var best *ProductImage
	for i := range images {
		img := &images[i]
		if img.IsPrimary {
			return img.URL
		}
		if best == nil || img.Position < best.Position {
			best = img
		}
	}
	if best == nil {
		return ""
	}
	return best.URL
}
