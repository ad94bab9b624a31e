package notifications

import (
	"context"
	"net/url"
	"strings"

	"github.com/pmcell/catalog-backend/pkg/db"
	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
)

const maxTimeoutSeconds = 120

// UpsertInput configures the endpoint of one event.
type UpsertInput struct {
	Event          string
	URL            string
	Active         bool
	TimeoutSeconds int
	RetryEnabled   bool
}

// Service exposes webhook configuration to the back office.
type Service interface {
	List(ctx context.Context) ([]models.WebhookConfig, error)
	Upsert(ctx context.Context, input UpsertInput) (*models.WebhookConfig, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.WebhookConfig, error) {
	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list webhook configs")
	}
	return configs, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*models.WebhookConfig, error) {
	event, err := enums.ParseWebhookEvent(input.Event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown webhook event")
	}
	target := strings.TrimSpace(input.URL)
	if target != "" {
		parsed, err := url.Parse(target)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook url must be an absolute http(s) url")
		}
	} else if input.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "an active webhook requires a url")
	}
	if input.TimeoutSeconds < 0 || input.TimeoutSeconds > maxTimeoutSeconds {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "timeout must be between 1 and %d seconds", maxTimeoutSeconds)
	}
	timeout := input.TimeoutSeconds
	if timeout == 0 {
		timeout = 30
	}

	cfg := &models.WebhookConfig{
		Event:          event,
		URL:            target,
		Active:         input.Active,
		TimeoutSeconds: timeout,
		RetryEnabled:   input.RetryEnabled,
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save webhook config")
	}
	stored, err := s.repo.FindByEvent(ctx, event)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "webhook config not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload webhook config")
	}
	return stored, nil
}
