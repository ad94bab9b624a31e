package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/pmcell/catalog-backend/pkg/logger"
)

// Cache TTL defaults.
const (
	DefaultCategoriesTTL   = time.Hour
	DefaultProductCountTTL = 30 * time.Minute
	DefaultSuggestionsTTL  = 5 * time.Minute
)

type cacheStore interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DelMatching(ctx context.Context, pattern string) (int, error)
	CacheKey(parts ...string) string
}

// CacheTTLs configures the lifetime of each cached document.
type CacheTTLs struct {
	Categories   time.Duration
	ProductCount time.Duration
	Suggestions  time.Duration
}

// Cache is a JSON document cache in front of the catalog queries. Store
// errors are logged and treated as misses; a nil Cache never caches.
type Cache struct {
	store cacheStore
	ttls  CacheTTLs
	logg  *logger.Logger
}

func NewCache(store cacheStore, ttls CacheTTLs, logg *logger.Logger) *Cache {
	if ttls.Categories <= 0 {
		ttls.Categories = DefaultCategoriesTTL
	}
	if ttls.ProductCount <= 0 {
		ttls.ProductCount = DefaultProductCountTTL
	}
	if ttls.Suggestions <= 0 {
		ttls.Suggestions = DefaultSuggestionsTTL
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Cache{store: store, ttls: ttls, logg: logg}
}

func (c *Cache) categoriesKey() string   { return c.store.CacheKey("categories_active") }
func (c *Cache) productCountKey() string { return c.store.CacheKey("product_count_total") }
func (c *Cache) suggestionsKey(q string) string {
	return c.store.CacheKey("search_suggestions_" + strings.ToLower(strings.TrimSpace(q)))
}

func (c *Cache) enabled() bool {
	return c != nil && c.store != nil
}

func (c *Cache) get(ctx context.Context, key string, dest any) bool {
	if !c.enabled() {
		return false
	}
	hit, err := c.store.GetJSON(ctx, key, dest)
	if err != nil {
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{"key": key, "error": err.Error()}), "catalog.cache.read_failed")
		return false
	}
	return hit
}

func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.enabled() {
		return
	}
	if err := c.store.SetJSON(ctx, key, value, ttl); err != nil {
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{"key": key, "error": err.Error()}), "catalog.cache.write_failed")
	}
}

// Categories memoizes the active category list.
func (c *Cache) Categories(ctx context.Context, load func(context.Context) ([]CategoryDTO, error)) ([]CategoryDTO, error) {
	var cached []CategoryDTO
	if c.enabled() && c.get(ctx, c.categoriesKey(), &cached) {
		return cached, nil
	}
	fresh, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if c.enabled() {
		c.set(ctx, c.categoriesKey(), fresh, c.ttls.Categories)
	}
	return fresh, nil
}

// ProductCount memoizes the in-stock product count.
func (c *Cache) ProductCount(ctx context.Context, load func(context.Context) (int64, error)) (int64, error) {
	var cached int64
	if c.enabled() && c.get(ctx, c.productCountKey(), &cached) {
		return cached, nil
	}
	fresh, err := load(ctx)
	if err != nil {
		return 0, err
	}
	if c.enabled() {
		c.set(ctx, c.productCountKey(), fresh, c.ttls.ProductCount)
	}
	return fresh, nil
}

// Suggestions memoizes completions per lower-cased query.
func (c *Cache) Suggestions(ctx context.Context, q string, load func(context.Context) ([]Suggestion, error)) ([]Suggestion, error) {
	var cached []Suggestion
	if c.enabled() && c.get(ctx, c.suggestionsKey(q), &cached) {
		return cached, nil
	}
	fresh, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if c.enabled() {
		c.set(ctx, c.suggestionsKey(q), fresh, c.ttls.Suggestions)
	}
	return fresh, nil
}

// Warm reloads the categories and product count documents.
func (c *Cache) Warm(ctx context.Context, categories []CategoryDTO, productCount int64) {
	if !c.enabled() {
		return
	}
	c.set(ctx, c.categoriesKey(), categories, c.ttls.Categories)
	c.set(ctx, c.productCountKey(), productCount, c.ttls.ProductCount)
}

// Invalidate drops every cached catalog document.
func (c *Cache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	_, err := c.store.DelMatching(ctx, c.store.CacheKey("*"))
	return err
}
