package notifications

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
)

// Repository reads webhook configuration and the store settings that feed
// webhook payloads.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindActive returns the active configuration for event, or nil when the
// event has no active endpoint.
func (r *Repository) FindActive(ctx context.Context, event enums.WebhookEvent) (*models.WebhookConfig, error) {
	var cfg models.WebhookConfig
	err := r.db.WithContext(ctx).
		Where("event = ? AND active = ?", event, true).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *Repository) List(ctx context.Context) ([]models.WebhookConfig, error) {
	var configs []models.WebhookConfig
	err := r.db.WithContext(ctx).Order("event ASC").Find(&configs).Error
	return configs, err
}

// Upsert writes the configuration keyed by its event.
func (r *Repository) Upsert(ctx context.Context, cfg *models.WebhookConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "active", "timeout_seconds", "retry_enabled", "updated_at"}),
	}).Create(cfg).Error
}

func (r *Repository) FindByEvent(ctx context.Context, event enums.WebhookEvent) (*models.WebhookConfig, error) {
	var cfg models.WebhookConfig
	if err := r.db.WithContext(ctx).Where("event = ?", event).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Setting returns the value stored under key, empty when unset.
func (r *Repository) Setting(ctx context.Context, key string) (string, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).Where(map[string]any{"key": key}).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}
