package journey

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pmcell/catalog-backend/pkg/db/models"
	dbtypes "github.com/pmcell/catalog-backend/pkg/db/types"
	"github.com/pmcell/catalog-backend/pkg/enums"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/phone"
)

// TrackInput is one funnel event reported by the storefront.
type TrackInput struct {
	Event     string
	Payload   map[string]any
	SessionID string
	WhatsApp  string
}

type Service interface {
	Track(ctx context.Context, input TrackInput) (string, error)
	SessionEvents(ctx context.Context, sessionID string) ([]models.JourneyEvent, error)
}

type appender interface {
	Append(ctx context.Context, event *models.JourneyEvent) error
	ListBySession(ctx context.Context, sessionID string) ([]models.JourneyEvent, error)
}

type service struct {
	repo  appender
	logg  *logger.Logger
	newID func() string
}

// NewService builds the journey tracker.
func NewService(repo appender, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "journey repository is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg, newID: uuid.NewString}, nil
}

// maxEventLen matches the journey_events.event column width.
const maxEventLen = 30

// Track appends the event and returns the session id, generating one when
// the caller has none yet.
func (s *service) Track(ctx context.Context, input TrackInput) (string, error) {
	name := strings.TrimSpace(input.Event)
	if name == "" || len(name) > maxEventLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "evento inválido")
	}
	kind, err := enums.ParseJourneyEventType(name)
	if err != nil {
		// Unknown kinds from older storefront builds are still recorded.
		kind = enums.JourneyEventType(name)
		s.logg.Warn(s.logg.WithField(ctx, "event", name), "journey.unknown_event")
	}

	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		sessionID = s.newID()
	}

	payload := dbtypes.JSON("{}")
	if len(input.Payload) > 0 {
		payload, err = dbtypes.NewJSON(input.Payload)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "dados inválidos")
		}
	}

	event := &models.JourneyEvent{
		WhatsApp:  phone.Digits(input.WhatsApp),
		SessionID: sessionID,
		Event:     kind,
		Payload:   payload,
	}
	if err := s.repo.Append(ctx, event); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append journey event")
	}

	ctx = s.logg.WithSessionID(ctx, sessionID)
	s.logg.Debug(s.logg.WithField(ctx, "event", string(kind)), "journey.tracked")
	return sessionID, nil
}

func (s *service) SessionEvents(ctx context.Context, sessionID string) ([]models.JourneyEvent, error) {
	events, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list journey events")
	}
	return events, nil
}
