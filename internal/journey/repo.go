package journey

import (
	"context"

	"gorm.io/gorm"

	"github.com/pmcell/catalog-backend/pkg/db/models"
)

// Repository appends journey events. There is deliberately no update path.
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

func (r *Repository) Append(ctx context.Context, event *models.JourneyEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListBySession returns a session's events oldest first.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]models.JourneyEvent, error) {
	var events []models.JourneyEvent
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}
