package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
	"github.com/pmcell/catalog-backend/pkg/pagination"
	"github.com/pmcell/catalog-backend/pkg/pricing"
)

// Sort keys accepted by List.
const (
	SortName      = "name"
	SortNameDesc  = "name_desc"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortCategory  = "category"
)

// ListInput is the storefront listing query.
type ListInput struct {
	Query    string
	Category string
	Sort     string
	Page     int
}

// CategoryDTO is a navigation entry.
type CategoryDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ProductCard is one listing entry. Simple products carry their price pair,
// variant products a price range (null when unpriced).
type ProductCard struct {
	Type          enums.ProductType `json:"type"`
	ID            uint              `json:"id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Category      string            `json:"category"`
	CategorySlug  string            `json:"category_slug"`
	Manufacturer  string            `json:"manufacturer"`
	Image         string            `json:"image"`
	Featured      bool              `json:"featured"`
	BulkThreshold int               `json:"bulk_threshold"`
	StandardPrice *decimal.Decimal  `json:"standard_price,omitempty"`
	BulkPrice     *decimal.Decimal  `json:"bulk_price,omitempty"`
	PriceRange    *pricing.Range    `json:"price_range"`
}

// ListResult is a page of the listing plus the navigation categories.
type ListResult struct {
	Items []ProductCard `json:"items"`
	pagination.Page
	Query      string        `json:"query"`
	Category   string        `json:"category"`
	Sort       string        `json:"sort"`
	Categories []CategoryDTO `json:"categories"`
}

type ImageDTO struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	IsPrimary bool   `json:"is_primary"`
}

type BrandDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ProductDetail is the detail page payload.
type ProductDetail struct {
	ProductCard
	Description string     `json:"description"`
	Features    string     `json:"features"`
	Images      []ImageDTO `json:"images"`
	Brands      []BrandDTO `json:"brands,omitempty"`
}

// ModelOption is one selectable phone model with its price pair.
type ModelOption struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	DisplayName   string          `json:"display_name"`
	StandardPrice decimal.Decimal `json:"standard_price"`
	BulkPrice     decimal.Decimal `json:"bulk_price"`
}

type ModelsByBrandResult struct {
	ProductID uint          `json:"product_id"`
	Brand     BrandDTO      `json:"brand"`
	Models    []ModelOption `json:"models"`
}

// Suggestion is one search-box completion.
type Suggestion struct {
	Text string               `json:"text"`
	Type enums.SuggestionType `json:"type"`
}

// SitemapEntry is one URL of the public sitemap.
type SitemapEntry struct {
	Loc        string  `json:"loc"`
	ChangeFreq string  `json:"changefreq"`
	Priority   float64 `json:"priority"`
	LastMod    string  `json:"lastmod,omitempty"`
}

func toCategoryDTOs(categories []models.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryDTO{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	return out
}

func baseCard(kind enums.ProductType, p *models.ProductBase, category models.Category, images []models.ProductImage) ProductCard {
	return ProductCard{
		Type:          kind,
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Category:      category.Name,
		CategorySlug:  category.Slug,
		Manufacturer:  p.Manufacturer,
		Image:         models.PrimaryImageURL(images),
		Featured:      p.Featured,
		BulkThreshold: p.BulkThreshold,
	}
}

func simpleCard(p *models.SimpleProduct) ProductCard {
	card := baseCard(enums.ProductTypeNormal, &p.ProductBase, p.Category, p.Images)
	standard, bulk := p.StandardPrice, p.BulkPrice
	card.StandardPrice = &standard
	card.BulkPrice = &bulk
	return card
}

func variantCard(p *models.VariantProduct) ProductCard {
	card := baseCard(enums.ProductTypeCapaPelicula, &p.ProductBase, p.Category, p.Images)
	card.PriceRange = p.PriceRange()
	return card
}

func toImageDTOs(images []models.ProductImage) []ImageDTO {
	out := make([]ImageDTO, 0, len(images))
	for _, img := range images {
		out = append(out, ImageDTO{URL: img.URL, AltText: img.AltText, IsPrimary: img.IsPrimary})
	}
	return out
}
