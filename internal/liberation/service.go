// Package liberation unlocks storefront prices for a WhatsApp contact.
package liberation

import (
	"context"
	"strings"
	"time"

	"github.com/pmcell/catalog-backend/internal/journey"
	"github.com/pmcell/catalog-backend/internal/notifications"
	"github.com/pmcell/catalog-backend/pkg/enums"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/phone"
)

const msgInvalidWhatsApp = "WhatsApp inválido"

// Input is one price liberation request. Timestamp is the client clock and
// is optional.
type Input struct {
	WhatsApp  string
	Timestamp string
	SessionID string
}

type Service interface {
	Liberate(ctx context.Context, input Input) (string, error)
}

type journeyTracker interface {
	Track(ctx context.Context, input journey.TrackInput) (string, error)
}

type customerRecorder interface {
	RecordPriceLiberation(ctx context.Context, whatsapp string, at time.Time) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, event enums.WebhookEvent, payload map[string]any, onDelivered notifications.DeliveredFunc)
}

// ServiceParams groups the liberation dependencies. Every collaborator is
// optional.
type ServiceParams struct {
	Journey    journeyTracker
	Customers  customerRecorder
	Dispatcher dispatcher
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	journey    journeyTracker
	customers  customerRecorder
	dispatcher dispatcher
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		journey:    params.Journey,
		customers:  params.Customers,
		dispatcher: params.Dispatcher,
		logg:       params.Logger,
		now:        params.Now,
	}, nil
}

// Liberate validates the number and returns its digits. The journey event,
// customer upsert and webhook are side effects: their failures are logged
// and never reach the caller.
func (s *service) Liberate(ctx context.Context, input Input) (string, error) {
	number, ok := phone.Normalize(input.WhatsApp)
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, msgInvalidWhatsApp)
	}

	at := s.now().UTC()
	if ts := strings.TrimSpace(input.Timestamp); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			at = parsed.UTC()
		}
	}

	ctx = s.logg.WithWhatsApp(ctx, number)
	if s.journey != nil {
		if _, err := s.journey.Track(ctx, journey.TrackInput{
			Event:     string(enums.JourneyEventLiberacaoPreco),
			SessionID: input.SessionID,
			WhatsApp:  number,
			Payload:   map[string]any{"whatsapp": number, "timestamp": at.Format(time.RFC3339)},
		}); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "liberation.journey_failed")
		}
	}
	if s.customers != nil {
		if err := s.customers.RecordPriceLiberation(ctx, number, at); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "liberation.customer_failed")
		}
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, enums.WebhookEventLiberacaoPreco, notifications.PriceLiberation(number, at), nil)
	}

	s.logg.Info(ctx, "liberation.granted")
	return number, nil
}
