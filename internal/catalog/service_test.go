package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pmcell/catalog-backend/pkg/db/dbtest"
	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

type memoryCache struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	if m.failGet {
		return false, errors.New("redis down")
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(raw), dest)
}

func (m *memoryCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = string(b)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCache) DelMatching(_ context.Context, pattern string) (int, error) {
	n := 0
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func (m *memoryCache) CacheKey(parts ...string) string {
	return "pm:cache:" + strings.Join(parts, ":")
}

type fixture struct {
	conn  *gorm.DB
	seed  *dbtest.Catalog
	store *memoryCache
	svc   Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t).DB()
	f := &fixture{conn: conn, seed: dbtest.SeedCatalog(t, conn), store: newMemoryCache()}
	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(conn),
		Cache:   NewCache(f.store, CacheTTLs{}, logger.Nop()),
		Logger:  logger.Nop(),
		BaseURL: "https://pmcell.example.com/",
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func names(cards []ProductCard) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Name)
	}
	return out
}

func TestListOnlyInStockSortedByName(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.List(context.Background(), ListInput{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Cabo USB-C", "Capa Silicone", "Carregador Turbo", "Película 3D"}, names(res.Items))
	assert.Equal(t, 1, res.Number)
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, 4, res.TotalItems)
	assert.Equal(t, "all", res.Category)
	assert.Equal(t, SortName, res.Sort)
	require.Len(t, res.Categories, 2, "inactive categories are hidden")
	assert.Equal(t, "cabos", res.Categories[0].Slug)
}

func TestListCardsCarryPrices(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.List(context.Background(), ListInput{})
	require.NoError(t, err)

	byName := map[string]ProductCard{}
	for _, c := range res.Items {
		byName[c.Name] = c
	}

	cable := byName["Cabo USB-C"]
	assert.Equal(t, enums.ProductTypeNormal, cable.Type)
	require.NotNil(t, cable.StandardPrice)
	assert.Equal(t, "9.90", cable.StandardPrice.StringFixed(2))
	assert.Nil(t, cable.PriceRange)
	assert.Equal(t, "https://cdn.example.com/cabo.jpg", cable.Image)

	capa := byName["Capa Silicone"]
	require.NotNil(t, capa.PriceRange)
	assert.Nil(t, capa.StandardPrice)
	assert.Equal(t, "20.00", capa.PriceRange.MinStandard.StringFixed(2))
	assert.Equal(t, "25.00", capa.PriceRange.MaxStandard.StringFixed(2))
	assert.Equal(t, "15.00", capa.PriceRange.MinBulk.StringFixed(2))
	assert.Equal(t, "19.00", capa.PriceRange.MaxBulk.StringFixed(2))

	assert.Nil(t, byName["Película 3D"].PriceRange)
}

func TestListSorts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string][]string{
		SortNameDesc:  {"Película 3D", "Carregador Turbo", "Capa Silicone", "Cabo USB-C"},
		SortPriceAsc:  {"Cabo USB-C", "Capa Silicone", "Carregador Turbo", "Película 3D"},
		SortPriceDesc: {"Carregador Turbo", "Capa Silicone", "Cabo USB-C", "Película 3D"},
		SortCategory:  {"Cabo USB-C", "Carregador Turbo", "Capa Silicone", "Película 3D"},
		"bogus":       {"Cabo USB-C", "Capa Silicone", "Carregador Turbo", "Película 3D"},
	}
	for sortKey, want := range cases {
		res, err := f.svc.List(ctx, ListInput{Sort: sortKey})
		require.NoError(t, err)
		assert.Equal(t, want, names(res.Items), sortKey)
	}
}

func TestListSearchAndCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.List(ctx, ListInput{Query: "baseus"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Carregador Turbo"}, names(res.Items), "manufacturer match")

	res, err = f.svc.List(ctx, ListInput{Query: "GALAXY"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Capa Silicone"}, names(res.Items), "priced model match")

	res, err = f.svc.List(ctx, ListInput{Query: "apple"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Capa Silicone"}, names(res.Items), "brand match")

	res, err = f.svc.List(ctx, ListInput{Query: "capas"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Capa Silicone", "Película 3D"}, names(res.Items), "category name match")

	res, err = f.svc.List(ctx, ListInput{Category: "cabos"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cabo USB-C", "Carregador Turbo"}, names(res.Items))
	assert.Equal(t, "cabos", res.Category)

	res, err = f.svc.List(ctx, ListInput{Query: "100%"})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestListPaginationClampsToLastPage(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 21; i++ {
		require.NoError(t, f.conn.Create(&models.SimpleProduct{
			ProductBase: models.ProductBase{
				Name:          "Produto " + string(rune('A'+i)),
				Slug:          "produto-" + string(rune('a'+i)),
				CategoryID:    f.seed.Cables.ID,
				InStock:       true,
				BulkThreshold: 10,
			},
			StandardPrice: decimal.NewFromInt(1),
			BulkPrice:     decimal.NewFromInt(1),
		}).Error)
	}

	res, err := f.svc.List(context.Background(), ListInput{Page: 9})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Number)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, 25, res.TotalItems)
	assert.Len(t, res.Items, 5)
	assert.False(t, res.HasNext)
	assert.True(t, res.HasPrevious)
}

func TestDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	detail, err := f.svc.Detail(ctx, f.seed.Cable.ID, "normal")
	require.NoError(t, err)
	assert.Equal(t, "Cabo reforçado de 1 metro", detail.Description)
	assert.Len(t, detail.Images, 1)
	assert.Empty(t, detail.Brands)

	detail, err = f.svc.Detail(ctx, f.seed.SiliconeCase.ID, "capa_pelicula")
	require.NoError(t, err)
	require.Len(t, detail.Brands, 2)
	assert.Equal(t, "Apple", detail.Brands[0].Name)
	assert.Equal(t, "Samsung", detail.Brands[1].Name)

	_, err = f.svc.Detail(ctx, f.seed.Cable.ID, "other")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Detail(ctx, f.seed.OutOfStock.ID, "normal")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Detail(ctx, 999, "capa_pelicula")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestModelsByBrand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.ModelsByBrand(ctx, f.seed.SiliconeCase.ID, f.seed.Apple.ID)
	require.NoError(t, err)
	require.Len(t, res.Models, 2)
	assert.Equal(t, "iPhone 14", res.Models[0].Name)
	assert.Equal(t, "Apple iPhone 14", res.Models[0].DisplayName)
	assert.Equal(t, "20.00", res.Models[0].StandardPrice.StringFixed(2))
	assert.Equal(t, "iPhone 15", res.Models[1].Name)

	_, err = f.svc.ModelsByBrand(ctx, f.seed.SiliconeCase.ID, 999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSuggestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.Suggestions(ctx, " c ")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.svc.Suggestions(ctx, "Ca")
	require.NoError(t, err)
	assert.Equal(t, []Suggestion{
		{Text: "Cabos", Type: enums.SuggestionTypeCategoria},
		{Text: "Capas", Type: enums.SuggestionTypeCategoria},
		{Text: "Cabo USB-C", Type: enums.SuggestionTypeProduto},
		{Text: "Carregador Turbo", Type: enums.SuggestionTypeProduto},
		{Text: "Capa Silicone", Type: enums.SuggestionTypeProduto},
	}, got)
	assert.Contains(t, f.store.data, "pm:cache:search_suggestions_ca")
	assert.Equal(t, DefaultSuggestionsTTL, f.store.ttls["pm:cache:search_suggestions_ca"])

	require.NoError(t, f.conn.Model(&models.Category{}).Where("id = ?", f.seed.Cables.ID).Update("name", "Fios").Error)
	cached, err := f.svc.Suggestions(ctx, "CA")
	require.NoError(t, err)
	assert.Equal(t, got, cached, "served from cache under the lower-cased key")
}

func TestCategoriesCacheAndInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.List(ctx, ListInput{})
	require.NoError(t, err)
	require.Contains(t, f.store.data, "pm:cache:categories_active")
	assert.Equal(t, DefaultCategoriesTTL, f.store.ttls["pm:cache:categories_active"])

	require.NoError(t, f.svc.SetCategoryActive(ctx, f.seed.Hidden.ID, true))
	assert.NotContains(t, f.store.data, "pm:cache:categories_active")

	res, err := f.svc.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.Len(t, res.Categories, 3)

	assert.True(t, pkgerrors.IsCode(f.svc.SetCategoryActive(ctx, 999, true), pkgerrors.CodeNotFound))
}

func TestCacheFailureFallsThrough(t *testing.T) {
	f := newFixture(t)
	f.store.failGet = true
	res, err := f.svc.List(context.Background(), ListInput{})
	require.NoError(t, err)
	assert.Len(t, res.Categories, 2)
}

func TestSetProductStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	count, err := f.svc.ProductCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	require.NoError(t, f.svc.SetProductStock(ctx, "normal", f.seed.Cable.ID, false))
	assert.NotContains(t, f.store.data, "pm:cache:product_count_total")

	count, err = f.svc.ProductCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	assert.True(t, pkgerrors.IsCode(f.svc.SetProductStock(ctx, "x", 1, true), pkgerrors.CodeValidation))
	assert.True(t, pkgerrors.IsCode(f.svc.SetProductStock(ctx, "capa_pelicula", 999, true), pkgerrors.CodeNotFound))
}

func TestWarmCache(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.WarmCache(context.Background()))
	assert.Equal(t, "4", f.store.data["pm:cache:product_count_total"])
	assert.Contains(t, f.store.data["pm:cache:categories_active"], `"slug":"cabos"`)
}

func TestSitemap(t *testing.T) {
	f := newFixture(t)
	entries, err := f.svc.Sitemap(context.Background())
	require.NoError(t, err)

	locs := make([]string, 0, len(entries))
	for _, e := range entries {
		locs = append(locs, e.Loc)
	}
	assert.Contains(t, locs, "https://pmcell.example.com/")
	assert.Contains(t, locs, "https://pmcell.example.com/?category=cabos")
	assert.NotContains(t, locs, "https://pmcell.example.com/?category=antigos")
	assert.Contains(t, locs, fmt.Sprintf("https://pmcell.example.com/product/%d/capa_pelicula/", f.seed.SiliconeCase.ID))
	assert.Len(t, entries, 2+2+4)
}
