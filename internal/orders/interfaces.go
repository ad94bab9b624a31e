package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
)

// Repository defines persistence operations for the order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByCode(ctx context.Context, code string) (*models.Order, error)
	Count(ctx context.Context, status *enums.OrderStatus) (int64, error)
	List(ctx context.Context, status *enums.OrderStatus, offset, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uint, from, to enums.OrderStatus) (bool, error)
}
