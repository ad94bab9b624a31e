package catalog

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
)

// ProductFilter narrows the storefront listing queries.
type ProductFilter struct {
	Query        string
	CategorySlug string
}

// Repository reads the catalog tables. Storefront reads only ever see
// in-stock products.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func likePattern(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
	return "%" + q + "%"
}

func (r *Repository) ListSimple(ctx context.Context, filter ProductFilter) ([]models.SimpleProduct, error) {
	q := r.db.WithContext(ctx).
		Model(&models.SimpleProduct{}).
		Select("simple_products.*").
		Joins("JOIN categories ON categories.id = simple_products.category_id").
		Where("simple_products.in_stock = ?", true)

	if filter.Query != "" {
		like := likePattern(filter.Query)
		q = q.Where(
			`(LOWER(simple_products.name) LIKE ? ESCAPE '\' OR LOWER(simple_products.description) LIKE ? ESCAPE '\' OR LOWER(categories.name) LIKE ? ESCAPE '\' OR LOWER(simple_products.manufacturer) LIKE ? ESCAPE '\')`,
			like, like, like, like,
		)
	}
	if filter.CategorySlug != "" {
		q = q.Where("categories.slug = ?", filter.CategorySlug)
	}

	var products []models.SimpleProduct
	err := q.Preload("Category").
		Preload("Images", orderImages).
		Order("simple_products.name ASC").
		Find(&products).Error
	return products, err
}

func (r *Repository) ListVariant(ctx context.Context, filter ProductFilter) ([]models.VariantProduct, error) {
	q := r.db.WithContext(ctx).
		Model(&models.VariantProduct{}).
		Select("variant_products.*").
		Joins("JOIN categories ON categories.id = variant_products.category_id").
		Where("variant_products.in_stock = ?", true)

	if filter.Query != "" {
		like := likePattern(filter.Query)
		q = q.Where(
			`(LOWER(variant_products.name) LIKE ? ESCAPE '\' OR LOWER(variant_products.description) LIKE ? ESCAPE '\' OR LOWER(categories.name) LIKE ? ESCAPE '\' OR LOWER(variant_products.manufacturer) LIKE ? ESCAPE '\' OR EXISTS (
				SELECT 1 FROM model_prices mp
				JOIN phone_models pm ON pm.id = mp.model_id
				JOIN phone_brands pb ON pb.id = pm.brand_id
				WHERE mp.product_id = variant_products.id AND mp.active = ?
				AND (LOWER(pm.name) LIKE ? ESCAPE '\' OR LOWER(pb.name) LIKE ? ESCAPE '\')))`,
			like, like, like, like, true, like, like,
		)
	}
	if filter.CategorySlug != "" {
		q = q.Where("categories.slug = ?", filter.CategorySlug)
	}

	var products []models.VariantProduct
	err := q.Preload("Category").
		Preload("Images", orderImages).
		Preload("Prices", "active = ?", true).
		Order("variant_products.name ASC").
		Find(&products).Error
	return products, err
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// FindSimple loads an in-stock simple product.
func (r *Repository) FindSimple(ctx context.Context, id uint) (*models.SimpleProduct, error) {
	var product models.SimpleProduct
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", orderImages).
		Where("id = ? AND in_stock = ?", id, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindVariant loads an in-stock variant product without its prices.
func (r *Repository) FindVariant(ctx context.Context, id uint) (*models.VariantProduct, error) {
	var product models.VariantProduct
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", orderImages).
		Where("id = ? AND in_stock = ?", id, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindModelPrice loads the active price of productID for modelID together
// with the model and its brand.
func (r *Repository) FindModelPrice(ctx context.Context, productID, modelID uint) (*models.ModelPrice, error) {
	var price models.ModelPrice
	err := r.db.WithContext(ctx).
		Preload("Model.Brand").
		Where("product_id = ? AND model_id = ? AND active = ?", productID, modelID, true).
		First(&price).Error
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// BrandsForProduct lists brands having at least one active price for the
// product, ordered by name.
func (r *Repository) BrandsForProduct(ctx context.Context, productID uint) ([]models.PhoneBrand, error) {
	var brands []models.PhoneBrand
	err := r.db.WithContext(ctx).
		Where(`phone_brands.id IN (
			SELECT pm.brand_id FROM phone_models pm
			JOIN model_prices mp ON mp.model_id = pm.id
			WHERE mp.product_id = ? AND mp.active = ?)`, productID, true).
		Order("phone_brands.name ASC").
		Find(&brands).Error
	return brands, err
}

func (r *Repository) FindBrand(ctx context.Context, id uint) (*models.PhoneBrand, error) {
	var brand models.PhoneBrand
	if err := r.db.WithContext(ctx).First(&brand, id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// ModelPricesByBrand lists the product's active prices for models of brandID,
// ordered by model name.
func (r *Repository) ModelPricesByBrand(ctx context.Context, productID, brandID uint) ([]models.ModelPrice, error) {
	var prices []models.ModelPrice
	err := r.db.WithContext(ctx).
		Select("model_prices.*").
		Joins("JOIN phone_models ON phone_models.id = model_prices.model_id").
		Where("model_prices.product_id = ? AND model_prices.active = ? AND phone_models.brand_id = ?", productID, true, brandID).
		Preload("Model.Brand").
		Order("phone_models.name ASC").
		Find(&prices).Error
	return prices, err
}

// ActiveCategories returns active categories ordered by (position, name).
func (r *Repository) ActiveCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

// CountInStock counts in-stock products of both kinds.
func (r *Repository) CountInStock(ctx context.Context) (int64, error) {
	var simple, variant int64
	if err := r.db.WithContext(ctx).Model(&models.SimpleProduct{}).Where("in_stock = ?", true).Count(&simple).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Model(&models.VariantProduct{}).Where("in_stock = ?", true).Count(&variant).Error; err != nil {
		return 0, err
	}
	return simple + variant, nil
}

func (r *Repository) SearchCategoryNames(ctx context.Context, q string, limit int) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where(`active = ? AND LOWER(name) LIKE ? ESCAPE '\'`, true, likePattern(q)).
		Order("name ASC").
		Limit(limit).
		Pluck("name", &names).Error
	return names, err
}

func (r *Repository) SearchBrandNames(ctx context.Context, q string, limit int) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.PhoneBrand{}).
		Where(`active = ? AND LOWER(name) LIKE ? ESCAPE '\'`, true, likePattern(q)).
		Order("name ASC").
		Limit(limit).
		Pluck("name", &names).Error
	return names, err
}

// SearchProductNames matches in-stock product names of one kind.
func (r *Repository) SearchProductNames(ctx context.Context, kind enums.ProductType, q string, limit int) ([]string, error) {
	var model any = &models.SimpleProduct{}
	if kind == enums.ProductTypeCapaPelicula {
		model = &models.VariantProduct{}
	}
	var names []string
	err := r.db.WithContext(ctx).
		Model(model).
		Where(`in_stock = ? AND LOWER(name) LIKE ? ESCAPE '\'`, true, likePattern(q)).
		Order("name ASC").
		Limit(limit).
		Pluck("name", &names).Error
	return names, err
}

// SitemapProduct is the minimum needed to emit a product URL.
type SitemapProduct struct {
	ID        uint
	Type      enums.ProductType
	UpdatedAt time.Time
}

func (r *Repository) SitemapProducts(ctx context.Context) ([]SitemapProduct, error) {
	var out []SitemapProduct
	for _, kind := range []enums.ProductType{enums.ProductTypeNormal, enums.ProductTypeCapaPelicula} {
		var model any = &models.SimpleProduct{}
		if kind == enums.ProductTypeCapaPelicula {
			model = &models.VariantProduct{}
		}
		var rows []struct {
			ID        uint
			UpdatedAt time.Time
		}
		err := r.db.WithContext(ctx).
			Model(model).
			Select("id, updated_at").
			Where("in_stock = ?", true).
			Order("id ASC").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			out = append(out, SitemapProduct{ID: row.ID, Type: kind, UpdatedAt: row.UpdatedAt})
		}
	}
	return out, nil
}

// SetStock flips in_stock on one product and reports whether it existed.
func (r *Repository) SetStock(ctx context.Context, kind enums.ProductType, id uint, inStock bool) (bool, error) {
	var model any = &models.SimpleProduct{}
	if kind == enums.ProductTypeCapaPelicula {
		model = &models.VariantProduct{}
	}
	res := r.db.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		Updates(map[string]any{"in_stock": inStock, "updated_at": time.Now().UTC()})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) SetCategoryActive(ctx context.Context, id uint, active bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Update("active", active)
	return res.RowsAffected > 0, res.Error
}
