package abandonedcart_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pmcell/catalog-backend/internal/abandonedcart"
	"github.com/pmcell/catalog-backend/internal/journey"
	"github.com/pmcell/catalog-backend/internal/notifications"
	"github.com/pmcell/catalog-backend/pkg/db/dbtest"
	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

type dispatched struct {
	event       enums.WebhookEvent
	payload     map[string]any
	onDelivered notifications.DeliveredFunc
}

type stubDispatcher struct {
	mu    sync.Mutex
	calls []dispatched
}

func (s *stubDispatcher) Dispatch(_ context.Context, event enums.WebhookEvent, payload map[string]any, onDelivered notifications.DeliveredFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, dispatched{event: event, payload: payload, onDelivered: onDelivered})
}

type fixture struct {
	conn       *gorm.DB
	svc        abandonedcart.Service
	dispatcher *stubDispatcher
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t).DB()
	tracker, err := journey.NewService(journey.NewRepository(conn), logger.Nop())
	require.NoError(t, err)

	f := &fixture{conn: conn, dispatcher: &stubDispatcher{}, now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.svc, err = abandonedcart.NewService(abandonedcart.ServiceParams{
		Repo:       abandonedcart.NewRepository(conn),
		Journey:    tracker,
		Dispatcher: f.dispatcher,
		Logger:     logger.Nop(),
		Now:        func() time.Time { return f.now },
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) countCarts(t *testing.T) int64 {
	var n int64
	require.NoError(t, f.conn.Model(&models.AbandonedCart{}).Count(&n).Error)
	return n
}

func TestTrackKeepsSingleUndeliveredCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Track(ctx, abandonedcart.TrackInput{
		WhatsApp:       "(11) 99999-9999",
		CartData:       json.RawMessage(`[{"productId":1,"quantity":2}]`),
		EstimatedValue: decimal.RequireFromString("19.80"),
		SessionID:      "sess-1",
	})
	require.NoError(t, err)

	f.now = f.now.Add(time.Minute)
	second, err := f.svc.Track(ctx, abandonedcart.TrackInput{
		WhatsApp:       "11999999999",
		CartData:       json.RawMessage(`[{"productId":1,"quantity":2},{"productId":2,"quantity":1}]`),
		EstimatedValue: decimal.RequireFromString("35.70"),
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), f.countCarts(t))

	var stored models.AbandonedCart
	require.NoError(t, f.conn.First(&stored, second.ID).Error)
	assert.JSONEq(t, `[{"productId":1,"quantity":2},{"productId":2,"quantity":1}]`, string(stored.CartData))
	assert.True(t, stored.EstimatedValue.Equal(decimal.RequireFromString("35.70")))
	assert.True(t, stored.AbandonedAt.Equal(f.now))
	assert.False(t, stored.WebhookSent)

	require.Len(t, f.dispatcher.calls, 2)
	assert.Equal(t, enums.WebhookEventCarrinhoAbandonado, f.dispatcher.calls[1].event)
	assert.Equal(t, 2, f.dispatcher.calls[1].payload["items_count"])

	var events int64
	require.NoError(t, f.conn.Model(&models.JourneyEvent{}).
		Where("event = ?", enums.JourneyEventCarrinhoAbandonado).Count(&events).Error)
	assert.Equal(t, int64(2), events)
}

func TestTrackUsesUpsertedRowWithoutReadBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := abandonedcart.TrackInput{
		WhatsApp:       "11999999999",
		CartData:       json.RawMessage(`[{"productId":1}]`),
		EstimatedValue: decimal.NewFromInt(10),
	}

	first, err := f.svc.Track(ctx, input)
	require.NoError(t, err)

	require.NoError(t, f.conn.Callback().Query().Before("gorm:query").Register("test:fail_cart_reads", func(tx *gorm.DB) {
		if tx.Statement.Table == "abandoned_carts" {
			_ = tx.AddError(errors.New("cart row no longer pending"))
		}
	}))

	second, err := f.svc.Track(ctx, input)
	require.NoError(t, err)
	assert.NotZero(t, second.ID)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, f.dispatcher.calls, 2)
	assert.Equal(t, "11999999999", f.dispatcher.calls[1].payload["whatsapp"])
}

func TestDeliveredCartStartsANewRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := abandonedcart.TrackInput{
		WhatsApp:       "11999999999",
		CartData:       json.RawMessage(`[{"productId":1}]`),
		EstimatedValue: decimal.NewFromInt(10),
	}

	first, err := f.svc.Track(ctx, input)
	require.NoError(t, err)
	require.NoError(t, f.dispatcher.calls[0].onDelivered(ctx))

	var stored models.AbandonedCart
	require.NoError(t, f.conn.First(&stored, first.ID).Error)
	assert.True(t, stored.WebhookSent)

	second, err := f.svc.Track(ctx, input)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(2), f.countCarts(t))
}

func TestTrackRequiresWhatsAppAndCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, in := range []abandonedcart.TrackInput{
		{WhatsApp: "", CartData: json.RawMessage(`[{"productId":1}]`)},
		{WhatsApp: "11999999999", CartData: nil},
		{WhatsApp: "11999999999", CartData: json.RawMessage(`[]`)},
		{WhatsApp: "11999999999", CartData: json.RawMessage(`{broken`)},
	} {
		_, err := f.svc.Track(ctx, in)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		assert.Equal(t, "WhatsApp and cart data required", pkgerrors.As(err).Message())
	}
	assert.Zero(t, f.countCarts(t))
	assert.Empty(t, f.dispatcher.calls)
}

func TestListUndeliveredHonoursAgeAndAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old, err := f.svc.Track(ctx, abandonedcart.TrackInput{WhatsApp: "11999999991", CartData: json.RawMessage(`[1]`)})
	require.NoError(t, err)
	exhausted, err := f.svc.Track(ctx, abandonedcart.TrackInput{WhatsApp: "11999999992", CartData: json.RawMessage(`[1]`)})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, f.svc.IncrementAttempts(ctx, exhausted.ID))
	}

	f.now = f.now.Add(20 * time.Minute)
	_, err = f.svc.Track(ctx, abandonedcart.TrackInput{WhatsApp: "11999999993", CartData: json.RawMessage(`[1]`)})
	require.NoError(t, err)

	carts, err := f.svc.ListUndelivered(ctx, 15*time.Minute, 5, 50)
	require.NoError(t, err)
	require.Len(t, carts, 1)
	assert.Equal(t, old.ID, carts[0].ID)

	require.NoError(t, f.svc.MarkDelivered(ctx, old.ID))
	carts, err = f.svc.ListUndelivered(ctx, 15*time.Minute, 5, 50)
	require.NoError(t, err)
	assert.Empty(t, carts)
}
