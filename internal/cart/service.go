// Package cart turns the browser-held cart into priced line items.
package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pmcell/catalog-backend/pkg/db"
	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

// Entry is one cart line as stored client side.
type Entry struct {
	ProductID   uint   `json:"productId"`
	ProductType string `json:"productType"`
	ModelID     *uint  `json:"modelId"`
	Quantity    int    `json:"quantity"`
}

// Item is a hydrated cart line with current prices.
type Item struct {
	Key               string            `json:"key"`
	ProductID         uint              `json:"productId"`
	ProductType       enums.ProductType `json:"productType"`
	Name              string            `json:"name"`
	Category          string            `json:"category"`
	Image             *string           `json:"image"`
	Quantity          int               `json:"quantity"`
	UnitPrice         decimal.Decimal   `json:"unitPrice"`
	PriceAtacado      decimal.Decimal   `json:"priceAtacado"`
	PriceSuperAtacado decimal.Decimal   `json:"priceSuperAtacado"`
	IsSuperAtacado    bool              `json:"isSuperAtacado"`
	MinQuantitySuper  int               `json:"minQuantitySuper"`
	ModelID           *uint             `json:"modelId"`
	ModelName         *string           `json:"modelName"`
}

type productLookup interface {
	FindSimple(ctx context.Context, id uint) (*models.SimpleProduct, error)
	FindVariant(ctx context.Context, id uint) (*models.VariantProduct, error)
	FindModelPrice(ctx context.Context, productID, modelID uint) (*models.ModelPrice, error)
}

type Service interface {
	Hydrate(ctx context.Context, entries []Entry) ([]Item, error)
}

type service struct {
	products productLookup
	logg     *logger.Logger
}

func NewService(products productLookup, logg *logger.Logger) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product lookup is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{products: products, logg: logg}, nil
}

// Hydrate prices every resolvable entry. Stale or malformed entries are
// dropped; only store failures are returned.
func (s *service) Hydrate(ctx context.Context, entries []Entry) ([]Item, error) {
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if entry.Quantity < 1 || entry.ProductID == 0 {
			continue
		}
		kind, err := enums.ParseProductType(entry.ProductType)
		if err != nil {
			continue
		}

		var (
			item *Item
			ok   bool
		)
		if kind == enums.ProductTypeNormal {
			item, ok, err = s.simpleItem(ctx, entry)
		} else {
			item, ok, err = s.variantItem(ctx, entry)
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "hydrate cart")
		}
		if ok {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (s *service) simpleItem(ctx context.Context, entry Entry) (*Item, bool, error) {
	product, err := s.products.FindSimple(ctx, entry.ProductID)
	if err != nil {
		return nil, false, ignoreMissing(err)
	}
	unit, err := product.Tier().UnitPrice(entry.Quantity)
	if err != nil {
		return nil, false, nil
	}
	return &Item{
		Key:               fmt.Sprintf("%d", product.ID),
		ProductID:         product.ID,
		ProductType:       enums.ProductTypeNormal,
		Name:              product.Name,
		Category:          product.Category.Name,
		Image:             imageURL(product.Images),
		Quantity:          entry.Quantity,
		UnitPrice:         unit,
		PriceAtacado:      product.StandardPrice,
		PriceSuperAtacado: product.BulkPrice,
		IsSuperAtacado:    entry.Quantity >= product.BulkThreshold,
		MinQuantitySuper:  product.BulkThreshold,
	}, true, nil
}

func (s *service) variantItem(ctx context.Context, entry Entry) (*Item, bool, error) {
	if entry.ModelID == nil || *entry.ModelID == 0 {
		return nil, false, nil
	}
	product, err := s.products.FindVariant(ctx, entry.ProductID)
	if err != nil {
		return nil, false, ignoreMissing(err)
	}
	price, err := s.products.FindModelPrice(ctx, product.ID, *entry.ModelID)
	if err != nil {
		return nil, false, ignoreMissing(err)
	}
	unit, err := product.Tier(price).UnitPrice(entry.Quantity)
	if err != nil {
		return nil, false, nil
	}
	modelID := price.ModelID
	modelName := price.Model.DisplayName()
	return &Item{
		Key:               fmt.Sprintf("%d-%d", product.ID, modelID),
		ProductID:         product.ID,
		ProductType:       enums.ProductTypeCapaPelicula,
		Name:              product.Name,
		Category:          product.Category.Name,
		Image:             imageURL(product.Images),
		Quantity:          entry.Quantity,
		UnitPrice:         unit,
		PriceAtacado:      price.StandardPrice,
		PriceSuperAtacado: price.BulkPrice,
		IsSuperAtacado:    entry.Quantity >= product.BulkThreshold,
		MinQuantitySuper:  product.BulkThreshold,
		ModelID:           &modelID,
		ModelName:         &modelName,
	}, true, nil
}

func imageURL(images []models.ProductImage) *string {
	url := models.PrimaryImageURL(images)
	if url == "" {
		return nil
	}
	return &url
}

func ignoreMissing(err error) error {
	if db.IsNotFound(err) {
		return nil
	}
	return err
}
