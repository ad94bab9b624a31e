// Package abandonedcart keeps at most one undelivered cart snapshot per
// contact and notifies the merchant about it.
package abandonedcart

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pmcell/catalog-backend/internal/journey"
	"github.com/pmcell/catalog-backend/internal/notifications"
	"github.com/pmcell/catalog-backend/pkg/db/models"
	dbtypes "github.com/pmcell/catalog-backend/pkg/db/types"
	"github.com/pmcell/catalog-backend/pkg/enums"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/phone"
)

const msgRequired = "WhatsApp and cart data required"

// TrackInput is one abandonment ping from the storefront.
type TrackInput struct {
	WhatsApp       string
	CartData       json.RawMessage
	EstimatedValue decimal.Decimal
	SessionID      string
}

type Service interface {
	Track(ctx context.Context, input TrackInput) (*models.AbandonedCart, error)
	MarkDelivered(ctx context.Context, id uint) error
	IncrementAttempts(ctx context.Context, id uint) error
	ListUndelivered(ctx context.Context, olderThan time.Duration, maxAttempts, limit int) ([]models.AbandonedCart, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, event enums.WebhookEvent, payload map[string]any, onDelivered notifications.DeliveredFunc)
}

type journeyTracker interface {
	Track(ctx context.Context, input journey.TrackInput) (string, error)
}

// ServiceParams groups the abandoned-cart dependencies.
type ServiceParams struct {
	Repo       *Repository
	Journey    journeyTracker
	Dispatcher dispatcher
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo       *Repository
	journey    journeyTracker
	dispatcher dispatcher
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "abandoned cart repository is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:       params.Repo,
		journey:    params.Journey,
		dispatcher: params.Dispatcher,
		logg:       params.Logger,
		now:        params.Now,
	}, nil
}

// Track stores the snapshot, appends a carrinho_abandonado journey event and
// fires the webhook. Journey and webhook failures never fail the call.
func (s *service) Track(ctx context.Context, input TrackInput) (*models.AbandonedCart, error) {
	number := phone.Digits(input.WhatsApp)
	if number == "" || isEmptyCart(input.CartData) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgRequired)
	}
	if !json.Valid(input.CartData) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgRequired)
	}
	if input.EstimatedValue.IsNegative() {
		input.EstimatedValue = decimal.Zero
	}

	now := s.now().UTC()
	cart := &models.AbandonedCart{
		WhatsApp:       number,
		SessionID:      strings.TrimSpace(input.SessionID),
		CartData:       dbtypes.JSON(input.CartData),
		EstimatedValue: input.EstimatedValue.Round(2),
		AbandonedAt:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Upsert(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert abandoned cart")
	}
	// The upsert returns the row id; reading the row back could race with
	// the previous ping's delivery marking it sent.
	stored := cart
	if stored.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "abandoned cart upsert returned no id")
	}

	ctx = s.logg.WithWhatsApp(ctx, number)
	if s.journey != nil {
		if _, err := s.journey.Track(ctx, journey.TrackInput{
			Event:     string(enums.JourneyEventCarrinhoAbandonado),
			SessionID: stored.SessionID,
			WhatsApp:  number,
			Payload: map[string]any{
				"estimated_value": stored.EstimatedValue.StringFixed(2),
				"cart_id":         stored.ID,
			},
		}); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "abandoned_cart.journey_failed")
		}
	}
	if s.dispatcher != nil {
		id := stored.ID
		s.dispatcher.Dispatch(ctx, enums.WebhookEventCarrinhoAbandonado, notifications.AbandonedCart(stored), func(ctx context.Context) error {
			return s.MarkDelivered(ctx, id)
		})
	}
	s.logg.Info(ctx, "abandoned_cart.tracked")
	return stored, nil
}

func (s *service) MarkDelivered(ctx context.Context, id uint) error {
	if _, err := s.repo.MarkDelivered(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark abandoned cart delivered")
	}
	return nil
}

func (s *service) IncrementAttempts(ctx context.Context, id uint) error {
	if err := s.repo.IncrementAttempts(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment delivery attempts")
	}
	return nil
}

func (s *service) ListUndelivered(ctx context.Context, olderThan time.Duration, maxAttempts, limit int) ([]models.AbandonedCart, error) {
	carts, err := s.repo.ListUndelivered(ctx, s.now().UTC().Add(-olderThan), maxAttempts, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list undelivered carts")
	}
	return carts, nil
}

func isEmptyCart(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "[]", "{}", `""`:
		return true
	}
	return false
}
