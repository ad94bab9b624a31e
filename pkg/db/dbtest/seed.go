package dbtest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
)

// Catalog holds the rows created by SeedCatalog.
type Catalog struct {
	Cables, Cases, Hidden models.Category

	Apple, Samsung              models.PhoneBrand
	IPhone15, IPhone14, GalaxyS models.PhoneModel

	Cable, Charger, OutOfStock models.SimpleProduct
	SiliconeCase, Film         models.VariantProduct

	CaseIPhone15, CaseIPhone14, CaseGalaxy models.ModelPrice
}

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// SeedCatalog inserts a small catalog: two simple products in stock, one out
// of stock, a variant priced for three models and an unpriced variant.
func SeedCatalog(t testing.TB, conn *gorm.DB) *Catalog {
	t.Helper()
	c := &Catalog{}
	create := func(v any) {
		t.Helper()
		require.NoError(t, conn.Create(v).Error)
	}

	c.Cables = models.Category{Name: "Cabos", Slug: "cabos", Active: true, Position: 1}
	c.Cases = models.Category{Name: "Capas", Slug: "capas", Active: true, Position: 2}
	c.Hidden = models.Category{Name: "Antigos", Slug: "antigos", Active: false, Position: 0}
	create(&c.Cables)
	create(&c.Cases)
	create(&c.Hidden)

	c.Apple = models.PhoneBrand{Name: "Apple", Slug: "apple", Active: true}
	c.Samsung = models.PhoneBrand{Name: "Samsung", Slug: "samsung", Active: true}
	create(&c.Apple)
	create(&c.Samsung)

	c.IPhone15 = models.PhoneModel{BrandID: c.Apple.ID, Name: "iPhone 15", Slug: "iphone-15", Active: true}
	c.IPhone14 = models.PhoneModel{BrandID: c.Apple.ID, Name: "iPhone 14", Slug: "iphone-14", Active: true}
	c.GalaxyS = models.PhoneModel{BrandID: c.Samsung.ID, Name: "Galaxy S23", Slug: "galaxy-s23", Active: true}
	create(&c.IPhone15)
	create(&c.IPhone14)
	create(&c.GalaxyS)

	c.Cable = models.SimpleProduct{
		ProductBase: models.ProductBase{
			Name: "Cabo USB-C", Slug: "cabo-usb-c", CategoryID: c.Cables.ID,
			Manufacturer: "PMCELL", InStock: true, BulkThreshold: 10,
			Description: "Cabo reforçado de 1 metro",
		},
		StandardPrice: money("9.90"),
		BulkPrice:     money("7.50"),
	}
	c.Charger = models.SimpleProduct{
		ProductBase: models.ProductBase{
			Name: "Carregador Turbo", Slug: "carregador-turbo", CategoryID: c.Cables.ID,
			Manufacturer: "Baseus", InStock: true, Featured: true, BulkThreshold: 5,
		},
		StandardPrice: money("39.90"),
		BulkPrice:     money("32.00"),
	}
	c.OutOfStock = models.SimpleProduct{
		ProductBase: models.ProductBase{
			Name: "Fone Antigo", Slug: "fone-antigo", CategoryID: c.Cables.ID,
			InStock: false, BulkThreshold: 10,
		},
		StandardPrice: money("15.00"),
		BulkPrice:     money("12.00"),
	}
	create(&c.Cable)
	create(&c.Charger)
	create(&c.OutOfStock)

	c.SiliconeCase = models.VariantProduct{ProductBase: models.ProductBase{
		Name: "Capa Silicone", Slug: "capa-silicone", CategoryID: c.Cases.ID,
		InStock: true, BulkThreshold: 10,
	}}
	c.Film = models.VariantProduct{ProductBase: models.ProductBase{
		Name: "Película 3D", Slug: "pelicula-3d", CategoryID: c.Cases.ID,
		InStock: true, BulkThreshold: 10,
	}}
	create(&c.SiliconeCase)
	create(&c.Film)

	c.CaseIPhone15 = models.ModelPrice{ProductID: c.SiliconeCase.ID, ModelID: c.IPhone15.ID, StandardPrice: money("25.00"), BulkPrice: money("19.00"), Active: true}
	c.CaseIPhone14 = models.ModelPrice{ProductID: c.SiliconeCase.ID, ModelID: c.IPhone14.ID, StandardPrice: money("20.00"), BulkPrice: money("15.00"), Active: true}
	c.CaseGalaxy = models.ModelPrice{ProductID: c.SiliconeCase.ID, ModelID: c.GalaxyS.ID, StandardPrice: money("22.00"), BulkPrice: money("17.00"), Active: true}
	create(&c.CaseIPhone15)
	create(&c.CaseIPhone14)
	create(&c.CaseGalaxy)

	create(&models.ProductImage{ProductType: enums.ProductTypeNormal, ProductID: c.Cable.ID, URL: "https://cdn.example.com/cabo.jpg", IsPrimary: true})
	create(&models.ProductImage{ProductType: enums.ProductTypeCapaPelicula, ProductID: c.SiliconeCase.ID, URL: "https://cdn.example.com/capa.jpg"})

	return c
}
