// Package catalog serves the storefront listing, product pages, search
// suggestions and sitemap, with a Redis document cache in front.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pmcell/catalog-backend/pkg/db"
	"github.com/pmcell/catalog-backend/pkg/enums"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/pagination"
)

const (
	// PageSize is the fixed storefront page size.
	PageSize = 20

	minSuggestionQuery    = 2
	maxCategorySuggestion = 3
	maxBrandSuggestion    = 3
	maxNamesPerKind       = 2
	maxProductSuggestion  = 4
	maxSuggestions        = 8
)

var (
	unpricedAscKey  = decimal.NewFromInt(9999)
	unpricedDescKey = decimal.Zero
)

type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Detail(ctx context.Context, id uint, productType string) (*ProductDetail, error)
	ModelsByBrand(ctx context.Context, productID, brandID uint) (*ModelsByBrandResult, error)
	Suggestions(ctx context.Context, q string) ([]Suggestion, error)
	Sitemap(ctx context.Context) ([]SitemapEntry, error)
	ProductCount(ctx context.Context) (int64, error)
	WarmCache(ctx context.Context) error
	SetProductStock(ctx context.Context, productType string, id uint, inStock bool) error
	SetCategoryActive(ctx context.Context, id uint, active bool) error
}

// ServiceParams groups the catalog dependencies.
type ServiceParams struct {
	Repo    *Repository
	Cache   *Cache
	Logger  *logger.Logger
	BaseURL string
}

type service struct {
	repo    *Repository
	cache   *Cache
	logg    *logger.Logger
	baseURL string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repository is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &service{
		repo:    params.Repo,
		cache:   params.Cache,
		logg:    params.Logger,
		baseURL: strings.TrimRight(params.BaseURL, "/"),
	}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	filter := ProductFilter{Query: strings.TrimSpace(input.Query)}
	if slug := strings.TrimSpace(input.Category); slug != "" && slug != "all" {
		filter.CategorySlug = slug
	}
	sortKey := normalizeSort(input.Sort)

	simple, err := s.repo.ListSimple(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list simple products")
	}
	variant, err := s.repo.ListVariant(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list variant products")
	}

	cards := make([]ProductCard, 0, len(simple)+len(variant))
	for i := range simple {
		cards = append(cards, simpleCard(&simple[i]))
	}
	for i := range variant {
		cards = append(cards, variantCard(&variant[i]))
	}
	sortCards(cards, sortKey)

	page := pagination.Resolve(input.Page, PageSize, len(cards))
	start, end := page.Bounds()

	categories, err := s.activeCategories(ctx)
	if err != nil {
		return nil, err
	}

	category := input.Category
	if category == "" {
		category = "all"
	}
	return &ListResult{
		Items:      cards[start:end],
		Page:       page,
		Query:      filter.Query,
		Category:   category,
		Sort:       sortKey,
		Categories: categories,
	}, nil
}

func normalizeSort(raw string) string {
	switch raw {
	case SortNameDesc, SortPriceAsc, SortPriceDesc, SortCategory:
		return raw
	}
	return SortName
}

// sortCards orders by name first so every other key breaks ties by name.
func sortCards(cards []ProductCard, key string) {
	byName := func(i, j int) bool {
		return strings.ToLower(cards[i].Name) < strings.ToLower(cards[j].Name)
	}
	sort.SliceStable(cards, byName)

	switch key {
	case SortNameDesc:
		sort.SliceStable(cards, func(i, j int) bool { return byName(j, i) })
	case SortPriceAsc:
		sort.SliceStable(cards, func(i, j int) bool {
			return priceKey(cards[i], unpricedAscKey).LessThan(priceKey(cards[j], unpricedAscKey))
		})
	case SortPriceDesc:
		sort.SliceStable(cards, func(i, j int) bool {
			return priceKey(cards[i], unpricedDescKey).GreaterThan(priceKey(cards[j], unpricedDescKey))
		})
	case SortCategory:
		sort.SliceStable(cards, func(i, j int) bool {
			return strings.ToLower(cards[i].Category) < strings.ToLower(cards[j].Category)
		})
	}
}

func priceKey(card ProductCard, unpriced decimal.Decimal) decimal.Decimal {
	if card.StandardPrice != nil {
		return *card.StandardPrice
	}
	if card.PriceRange != nil {
		return card.PriceRange.MinStandard
	}
	return unpriced
}

func (s *service) activeCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.cache.Categories(ctx, func(ctx context.Context) ([]CategoryDTO, error) {
		rows, err := s.repo.ActiveCategories(ctx)
		if err != nil {
			return nil, err
		}
		return toCategoryDTOs(rows), nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) Detail(ctx context.Context, id uint, productType string) (*ProductDetail, error) {
	kind, err := enums.ParseProductType(productType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid product type")
	}

	if kind == enums.ProductTypeNormal {
		product, err := s.repo.FindSimple(ctx, id)
		if err != nil {
			return nil, notFoundOr(err, "load product", "Produto não encontrado")
		}
		return &ProductDetail{
			ProductCard: simpleCard(product),
			Description: product.Description,
			Features:    product.Features,
			Images:      toImageDTOs(product.Images),
		}, nil
	}

	product, err := s.repo.FindVariant(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load product", "Produto não encontrado")
	}
	brands, err := s.repo.BrandsForProduct(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product brands")
	}
	detail := &ProductDetail{
		ProductCard: variantCard(product),
		Description: product.Description,
		Features:    product.Features,
		Images:      toImageDTOs(product.Images),
		Brands:      make([]BrandDTO, 0, len(brands)),
	}
	for _, b := range brands {
		detail.Brands = append(detail.Brands, BrandDTO{ID: b.ID, Name: b.Name, Slug: b.Slug})
	}
	return detail, nil
}

func (s *service) ModelsByBrand(ctx context.Context, productID, brandID uint) (*ModelsByBrandResult, error) {
	if _, err := s.repo.FindVariant(ctx, productID); err != nil {
		return nil, notFoundOr(err, "load product", "Produto não encontrado")
	}
	brand, err := s.repo.FindBrand(ctx, brandID)
	if err != nil {
		return nil, notFoundOr(err, "load brand", "Marca não encontrada")
	}
	prices, err := s.repo.ModelPricesByBrand(ctx, productID, brandID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list model prices")
	}

	result := &ModelsByBrandResult{
		ProductID: productID,
		Brand:     BrandDTO{ID: brand.ID, Name: brand.Name, Slug: brand.Slug},
		Models:    make([]ModelOption, 0, len(prices)),
	}
	for _, p := range prices {
		result.Models = append(result.Models, ModelOption{
			ID:            p.ModelID,
			Name:          p.Model.Name,
			DisplayName:   p.Model.DisplayName(),
			StandardPrice: p.StandardPrice,
			BulkPrice:     p.BulkPrice,
		})
	}
	return result, nil
}

func (s *service) Suggestions(ctx context.Context, q string) ([]Suggestion, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < minSuggestionQuery {
		return []Suggestion{}, nil
	}
	suggestions, err := s.cache.Suggestions(ctx, q, func(ctx context.Context) ([]Suggestion, error) {
		return s.loadSuggestions(ctx, q)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load suggestions")
	}
	return suggestions, nil
}

func (s *service) loadSuggestions(ctx context.Context, q string) ([]Suggestion, error) {
	out := make([]Suggestion, 0, maxSuggestions)

	categories, err := s.repo.SearchCategoryNames(ctx, q, maxCategorySuggestion)
	if err != nil {
		return nil, err
	}
	for _, name := range categories {
		out = append(out, Suggestion{Text: name, Type: enums.SuggestionTypeCategoria})
	}

	brands, err := s.repo.SearchBrandNames(ctx, q, maxBrandSuggestion)
	if err != nil {
		return nil, err
	}
	for _, name := range brands {
		out = append(out, Suggestion{Text: name, Type: enums.SuggestionTypeMarca})
	}

	var names []string
	for _, kind := range []enums.ProductType{enums.ProductTypeNormal, enums.ProductTypeCapaPelicula} {
		found, err := s.repo.SearchProductNames(ctx, kind, q, maxNamesPerKind)
		if err != nil {
			return nil, err
		}
		names = append(names, found...)
	}
	if len(names) > maxProductSuggestion {
		names = names[:maxProductSuggestion]
	}
	for _, name := range names {
		out = append(out, Suggestion{Text: name, Type: enums.SuggestionTypeProduto})
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out, nil
}

func (s *service) Sitemap(ctx context.Context) ([]SitemapEntry, error) {
	entries := []SitemapEntry{
		{Loc: s.baseURL + "/", ChangeFreq: "daily", Priority: 0.8},
		{Loc: s.baseURL + "/cart/", ChangeFreq: "daily", Priority: 0.8},
	}

	categories, err := s.repo.ActiveCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	for _, c := range categories {
		entries = append(entries, SitemapEntry{
			Loc:        fmt.Sprintf("%s/?category=%s", s.baseURL, c.Slug),
			ChangeFreq: "weekly",
			Priority:   0.7,
			LastMod:    c.CreatedAt.UTC().Format("2006-01-02"),
		})
	}

	products, err := s.repo.SitemapProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sitemap products")
	}
	for _, p := range products {
		entries = append(entries, SitemapEntry{
			Loc:        fmt.Sprintf("%s/product/%d/%s/", s.baseURL, p.ID, p.Type),
			ChangeFreq: "daily",
			Priority:   0.6,
			LastMod:    p.UpdatedAt.UTC().Format("2006-01-02"),
		})
	}
	return entries, nil
}

func (s *service) ProductCount(ctx context.Context) (int64, error) {
	count, err := s.cache.ProductCount(ctx, s.repo.CountInStock)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	return count, nil
}

// WarmCache reloads the cached category list and product count from the
// database.
func (s *service) WarmCache(ctx context.Context) error {
	rows, err := s.repo.ActiveCategories(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	count, err := s.repo.CountInStock(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	s.cache.Warm(ctx, toCategoryDTOs(rows), count)
	return nil
}

func (s *service) SetProductStock(ctx context.Context, productType string, id uint, inStock bool) error {
	kind, err := enums.ParseProductType(productType)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid product type")
	}
	found, err := s.repo.SetStock(ctx, kind, id, inStock)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) SetCategoryActive(ctx context.Context, id uint, active bool) error {
	found, err := s.repo.SetCategoryActive(ctx, id, active)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog.cache.invalidate_failed")
	}
}

func notFoundOr(err error, action, missing string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, missing)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
