package abandonedcart

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pmcell/catalog-backend/pkg/db/models"
)

// undeliveredPredicate must match the partial index predicate verbatim so
// the database accepts it as the conflict target.
const undeliveredPredicate = "webhook_sent = false"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts the contact's undelivered cart or overwrites the existing
// one in a single statement.
func (r *Repository) Upsert(ctx context.Context, cart *models.AbandonedCart) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "whatsapp"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: undeliveredPredicate},
		}},
		DoUpdates: clause.AssignmentColumns([]string{
			"session_id", "cart_data", "estimated_value", "abandoned_at", "updated_at",
		}),
	}).Create(cart).Error
}

// MarkDelivered flips webhook_sent. It reports false when the cart was
// already delivered.
func (r *Repository) MarkDelivered(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.AbandonedCart{}).
		Where("id = ? AND "+undeliveredPredicate, id).
		Updates(map[string]any{"webhook_sent": true, "updated_at": time.Now().UTC()})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) IncrementAttempts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.AbandonedCart{}).
		Where("id = ?", id).
		UpdateColumn("delivery_attempts", gorm.Expr("delivery_attempts + 1")).Error
}

// ListUndelivered returns pending carts abandoned before cutoff with fewer
// than maxAttempts failed deliveries, oldest first.
func (r *Repository) ListUndelivered(ctx context.Context, cutoff time.Time, maxAttempts, limit int) ([]models.AbandonedCart, error) {
	var carts []models.AbandonedCart
	q := r.db.WithContext(ctx).
		Where(undeliveredPredicate).
		Where("abandoned_at < ?", cutoff)
	if maxAttempts > 0 {
		q = q.Where("delivery_attempts < ?", maxAttempts)
	}
	err := q.Order("abandoned_at ASC, id ASC").Limit(limit).Find(&carts).Error
	return carts, err
}
