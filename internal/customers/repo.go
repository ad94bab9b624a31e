package customers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pmcell/catalog-backend/pkg/db/models"
)

// Repository persists per-contact customer aggregates.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// UpsertPriceLiberation flags the contact as having released prices.
func (r *Repository) UpsertPriceLiberation(ctx context.Context, whatsapp string, at time.Time) error {
	row := models.Customer{
		WhatsApp:         whatsapp,
		PricesReleased:   true,
		PricesReleasedAt: &at,
		TotalSpent:       decimal.Zero,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "whatsapp"}},
		DoUpdates: clause.Assignments(map[string]any{
			"prices_released":    true,
			"prices_released_at": at,
			"updated_at":         at,
		}),
	}).Create(&row).Error
}

// UpsertPurchase bumps the contact's order count and spend atomically.
func (r *Repository) UpsertPurchase(ctx context.Context, whatsapp, name string, total decimal.Decimal, at time.Time) error {
	row := models.Customer{
		WhatsApp:       whatsapp,
		Name:           name,
		TotalOrders:    1,
		TotalSpent:     total,
		LastPurchaseAt: &at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "whatsapp"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_orders":     gorm.Expr("customers.total_orders + 1"),
			"total_spent":      gorm.Expr("customers.total_spent + ?", total),
			"last_purchase_at": at,
			"name":             gorm.Expr("CASE WHEN ? <> '' THEN ? ELSE customers.name END", name, name),
			"updated_at":       at,
		}),
	}).Create(&row).Error
}

func (r *Repository) FindByWhatsApp(ctx context.Context, whatsapp string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("whatsapp = ?", whatsapp).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}
