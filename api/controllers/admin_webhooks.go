package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pmcell/catalog-backend/api/responses"
	"github.com/pmcell/catalog-backend/api/validators"
	"github.com/pmcell/catalog-backend/internal/notifications"
	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

type webhookConfigService interface {
	List(ctx context.Context) ([]models.WebhookConfig, error)
	Upsert(ctx context.Context, input notifications.UpsertInput) (*models.WebhookConfig, error)
}

type webhookConfigDTO struct {
	Event          enums.WebhookEvent `json:"event"`
	URL            string             `json:"url"`
	Active         bool               `json:"active"`
	TimeoutSeconds int                `json:"timeout_seconds"`
	RetryEnabled   bool               `json:"retry_enabled"`
	UpdatedAt      *time.Time         `json:"updated_at,omitempty"`
}

func toWebhookConfigDTO(cfg models.WebhookConfig) webhookConfigDTO {
	dto := webhookConfigDTO{
		Event:          cfg.Event,
		URL:            cfg.URL,
		Active:         cfg.Active,
		TimeoutSeconds: cfg.TimeoutSeconds,
		RetryEnabled:   cfg.RetryEnabled,
	}
	if !cfg.UpdatedAt.IsZero() {
		updated := cfg.UpdatedAt
		dto.UpdatedAt = &updated
	}
	return dto
}

// webhookListing returns one entry per known event, with unconfigured events
// shown inactive.
func webhookListing(configs []models.WebhookConfig) []webhookConfigDTO {
	byEvent := make(map[enums.WebhookEvent]models.WebhookConfig, len(configs))
	for _, cfg := range configs {
		byEvent[cfg.Event] = cfg
	}
	out := make([]webhookConfigDTO, 0, len(enums.WebhookEvents()))
	for _, event := range enums.WebhookEvents() {
		cfg, ok := byEvent[event]
		if !ok {
			cfg = models.WebhookConfig{Event: event, TimeoutSeconds: 30}
		}
		out = append(out, toWebhookConfigDTO(cfg))
	}
	return out
}

func AdminListWebhooks(svc webhookConfigService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configs, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, webhookListing(configs))
	}
}

func AdminGetWebhook(svc webhookConfigService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := enums.ParseWebhookEvent(strings.TrimSpace(chi.URLParam(r, "event")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "unknown webhook event"))
			return
		}
		configs, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		for _, dto := range webhookListing(configs) {
			if dto.Event == event {
				responses.WriteSuccess(w, dto)
				return
			}
		}
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown webhook event"))
	}
}

type upsertWebhookRequest struct {
	URL            string `json:"url" validate:"max=500"`
	Active         bool   `json:"active"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"min=0,max=120"`
	RetryEnabled   bool   `json:"retry_enabled"`
}

func AdminUpsertWebhook(svc webhookConfigService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req upsertWebhookRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		event := strings.TrimSpace(chi.URLParam(r, "event"))
		cfg, err := svc.Upsert(r.Context(), notifications.UpsertInput{
			Event:          event,
			URL:            req.URL,
			Active:         req.Active,
			TimeoutSeconds: req.TimeoutSeconds,
			RetryEnabled:   req.RetryEnabled,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithFields(r.Context(), map[string]any{"event": event, "active": cfg.Active}), "admin.webhook.updated")
		}
		responses.WriteSuccess(w, toWebhookConfigDTO(*cfg))
	}
}
