package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/pmcell/catalog-backend/internal/notifications"
	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/phone"
	"github.com/pmcell/catalog-backend/pkg/webhook"
)

const (
	defaultRedeliveryMinAge      = 15 * time.Minute
	defaultRedeliveryBatchSize   = 50
	defaultRedeliveryMaxAttempts = 5
	defaultRedeliveryPerSecond   = 2
)

// RedeliveryJobParams configure the abandoned-cart webhook redelivery.
type RedeliveryJobParams struct {
	Logger      *logger.Logger
	Carts       undeliveredCarts
	Webhooks    webhookDeliverer
	MinAge      time.Duration
	BatchSize   int
	MaxAttempts int
	PerSecond   float64
}

type undeliveredCarts interface {
	ListUndelivered(ctx context.Context, olderThan time.Duration, maxAttempts, limit int) ([]models.AbandonedCart, error)
	MarkDelivered(ctx context.Context, id uint) error
	IncrementAttempts(ctx context.Context, id uint) error
}

type webhookDeliverer interface {
	Deliver(ctx context.Context, event enums.WebhookEvent, payload map[string]any) webhook.Result
}

// NewRedeliveryJob builds the job that re-sends carrinho_abandonado webhooks
// for carts whose first delivery failed.
func NewRedeliveryJob(params RedeliveryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("abandoned cart service required")
	}
	if params.Webhooks == nil {
		return nil, fmt.Errorf("webhook dispatcher required")
	}
	if params.MinAge <= 0 {
		params.MinAge = defaultRedeliveryMinAge
	}
	if params.BatchSize <= 0 {
		params.BatchSize = defaultRedeliveryBatchSize
	}
	if params.MaxAttempts <= 0 {
		params.MaxAttempts = defaultRedeliveryMaxAttempts
	}
	if params.PerSecond <= 0 {
		params.PerSecond = defaultRedeliveryPerSecond
	}
	return &redeliveryJob{
		logg:        params.Logger,
		carts:       params.Carts,
		webhooks:    params.Webhooks,
		minAge:      params.MinAge,
		batchSize:   params.BatchSize,
		maxAttempts: params.MaxAttempts,
		limiter:     rate.NewLimiter(rate.Limit(params.PerSecond), 1),
	}, nil
}

type redeliveryJob struct {
	logg        *logger.Logger
	carts       undeliveredCarts
	webhooks    webhookDeliverer
	minAge      time.Duration
	batchSize   int
	maxAttempts int
	limiter     *rate.Limiter
}

func (j *redeliveryJob) Name() string { return "abandoned-cart-redelivery" }

// Run walks one batch. A failed delivery bumps the cart's attempt counter;
// only bookkeeping failures make the job fail.
func (j *redeliveryJob) Run(ctx context.Context) error {
	carts, err := j.carts.ListUndelivered(ctx, j.minAge, j.maxAttempts, j.batchSize)
	if err != nil {
		return fmt.Errorf("list undelivered carts: %w", err)
	}

	var errs []error
	var delivered, failed, skipped int
	for i := range carts {
		cart := &carts[i]
		if err := j.limiter.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("pacing: %w", err))
			break
		}

		cartCtx := j.logg.WithFields(ctx, map[string]any{
			"cart_id":  cart.ID,
			"whatsapp": phone.Mask(cart.WhatsApp),
			"attempts": cart.DeliveryAttempts,
		})
		res := j.webhooks.Deliver(cartCtx, enums.WebhookEventCarrinhoAbandonado, notifications.AbandonedCart(cart))
		switch {
		case res.Skipped:
			skipped++
		case res.Delivered:
			delivered++
			if err := j.carts.MarkDelivered(cartCtx, cart.ID); err != nil {
				errs = append(errs, fmt.Errorf("mark cart %d delivered: %w", cart.ID, err))
			}
		default:
			failed++
			if err := j.carts.IncrementAttempts(cartCtx, cart.ID); err != nil {
				errs = append(errs, fmt.Errorf("count attempt for cart %d: %w", cart.ID, err))
			}
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"candidates": len(carts),
		"delivered":  delivered,
		"failed":     failed,
		"skipped":    skipped,
	}), "cron.redelivery.complete")
	return multierr.Combine(errs...)
}
