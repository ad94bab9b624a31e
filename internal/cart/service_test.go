package cart_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmcell/catalog-backend/internal/cart"
	"github.com/pmcell/catalog-backend/internal/catalog"
	"github.com/pmcell/catalog-backend/pkg/db/dbtest"
	"github.com/pmcell/catalog-backend/pkg/enums"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

func uintPtr(v uint) *uint { return &v }

func TestHydrate(t *testing.T) {
	conn := dbtest.Open(t).DB()
	seed := dbtest.SeedCatalog(t, conn)

	svc, err := cart.NewService(catalog.NewRepository(conn), logger.Nop())
	require.NoError(t, err)

	items, err := svc.Hydrate(context.Background(), []cart.Entry{
		{ProductID: seed.Cable.ID, ProductType: "normal", Quantity: 10},
		{ProductID: seed.Charger.ID, ProductType: "normal", Quantity: 1},
		{ProductID: seed.SiliconeCase.ID, ProductType: "capa_pelicula", ModelID: uintPtr(seed.GalaxyS.ID), Quantity: 2},
		{ProductID: seed.OutOfStock.ID, ProductType: "normal", Quantity: 1},
		{ProductID: seed.Film.ID, ProductType: "capa_pelicula", ModelID: uintPtr(seed.IPhone15.ID), Quantity: 1},
		{ProductID: seed.SiliconeCase.ID, ProductType: "capa_pelicula", Quantity: 1},
		{ProductID: seed.Cable.ID, ProductType: "normal", Quantity: 0},
		{ProductID: seed.Cable.ID, ProductType: "other", Quantity: 1},
		{ProductID: 999, ProductType: "normal", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, items, 3)

	cable := items[0]
	assert.Equal(t, "1", cable.Key)
	assert.Equal(t, enums.ProductTypeNormal, cable.ProductType)
	assert.Equal(t, "Cabos", cable.Category)
	assert.True(t, cable.IsSuperAtacado)
	assert.Equal(t, "7.50", cable.UnitPrice.StringFixed(2))
	assert.Equal(t, "9.90", cable.PriceAtacado.StringFixed(2))
	assert.Equal(t, 10, cable.MinQuantitySuper)
	require.NotNil(t, cable.Image)
	assert.Equal(t, "https://cdn.example.com/cabo.jpg", *cable.Image)
	assert.Nil(t, cable.ModelID)

	charger := items[1]
	assert.False(t, charger.IsSuperAtacado)
	assert.Equal(t, "39.90", charger.UnitPrice.StringFixed(2))
	assert.Nil(t, charger.Image)

	capa := items[2]
	assert.Equal(t, enums.ProductTypeCapaPelicula, capa.ProductType)
	assert.Equal(t, "22.00", capa.UnitPrice.StringFixed(2))
	assert.Equal(t, "17.00", capa.PriceSuperAtacado.StringFixed(2))
	require.NotNil(t, capa.ModelID)
	assert.Equal(t, seed.GalaxyS.ID, *capa.ModelID)
	require.NotNil(t, capa.ModelName)
	assert.Equal(t, "Samsung Galaxy S23", *capa.ModelName)
	assert.Equal(t, "1-3", capa.Key)
}

func TestHydrateEmpty(t *testing.T) {
	conn := dbtest.Open(t).DB()
	svc, err := cart.NewService(catalog.NewRepository(conn), nil)
	require.NoError(t, err)

	items, err := svc.Hydrate(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
