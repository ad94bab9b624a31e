package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/pmcell/catalog-backend/pkg/db/models"
	dbtypes "github.com/pmcell/catalog-backend/pkg/db/types"
	"github.com/pmcell/catalog-backend/pkg/enums"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/webhook"
)

type fakeCarts struct {
	carts       []models.AbandonedCart
	listErr     error
	markErr     error
	delivered   []uint
	incremented []uint

	gotAge      time.Duration
	gotAttempts int
	gotLimit    int
}

func (f *fakeCarts) ListUndelivered(_ context.Context, olderThan time.Duration, maxAttempts, limit int) ([]models.AbandonedCart, error) {
	f.gotAge, f.gotAttempts, f.gotLimit = olderThan, maxAttempts, limit
	return f.carts, f.listErr
}

func (f *fakeCarts) MarkDelivered(_ context.Context, id uint) error {
	f.delivered = append(f.delivered, id)
	return f.markErr
}

func (f *fakeCarts) IncrementAttempts(_ context.Context, id uint) error {
	f.incremented = append(f.incremented, id)
	return nil
}

type scriptedWebhooks struct {
	results map[string]webhook.Result
	events  []enums.WebhookEvent
}

func (s *scriptedWebhooks) Deliver(_ context.Context, event enums.WebhookEvent, payload map[string]any) webhook.Result {
	s.events = append(s.events, event)
	return s.results[payload["whatsapp"].(string)]
}

func cart(id uint, whatsapp string) models.AbandonedCart {
	return models.AbandonedCart{
		ID:          id,
		WhatsApp:    whatsapp,
		CartData:    dbtypes.JSON(`[{"productId":1}]`),
		AbandonedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newRedeliveryJob(t *testing.T, carts *fakeCarts, hooks *scriptedWebhooks) *redeliveryJob {
	t.Helper()
	jobIface, err := NewRedeliveryJob(RedeliveryJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Carts:    carts,
		Webhooks: hooks,
	})
	if err != nil {
		t.Fatalf("NewRedeliveryJob: %v", err)
	}
	job, ok := jobIface.(*redeliveryJob)
	if !ok {
		t.Fatalf("expected redeliveryJob, got %T", jobIface)
	}
	job.limiter = rate.NewLimiter(rate.Inf, 1)
	return job
}

func TestRedeliveryJobMarksAndCounts(t *testing.T) {
	carts := &fakeCarts{carts: []models.AbandonedCart{
		cart(1, "11911111111"),
		cart(2, "11922222222"),
		cart(3, "11933333333"),
	}}
	hooks := &scriptedWebhooks{results: map[string]webhook.Result{
		"11911111111": {Delivered: true, Attempts: 1, StatusCode: 200},
		"11922222222": {Attempts: 2, StatusCode: 500, Err: errors.New("status 500")},
		"11933333333": {Delivered: true, Skipped: true},
	}}
	job := newRedeliveryJob(t, carts, hooks)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if carts.gotAge != defaultRedeliveryMinAge || carts.gotAttempts != defaultRedeliveryMaxAttempts || carts.gotLimit != defaultRedeliveryBatchSize {
		t.Fatalf("unexpected list arguments: %s %d %d", carts.gotAge, carts.gotAttempts, carts.gotLimit)
	}
	if len(hooks.events) != 3 || hooks.events[0] != enums.WebhookEventCarrinhoAbandonado {
		t.Fatalf("expected three carrinho_abandonado deliveries, got %v", hooks.events)
	}
	if len(carts.delivered) != 1 || carts.delivered[0] != 1 {
		t.Fatalf("expected cart 1 marked delivered, got %v", carts.delivered)
	}
	if len(carts.incremented) != 1 || carts.incremented[0] != 2 {
		t.Fatalf("expected cart 2 attempt counted, got %v", carts.incremented)
	}
}

func TestRedeliveryJobCombinesBookkeepingErrors(t *testing.T) {
	carts := &fakeCarts{
		carts:   []models.AbandonedCart{cart(1, "11911111111"), cart(2, "11922222222")},
		markErr: errors.New("db down"),
	}
	hooks := &scriptedWebhooks{results: map[string]webhook.Result{
		"11911111111": {Delivered: true},
		"11922222222": {Delivered: true},
	}}
	job := newRedeliveryJob(t, carts, hooks)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(carts.delivered) != 2 {
		t.Fatalf("expected both carts attempted, got %v", carts.delivered)
	}
}

func TestRedeliveryJobListFailure(t *testing.T) {
	carts := &fakeCarts{listErr: errors.New("boom")}
	job := newRedeliveryJob(t, carts, &scriptedWebhooks{})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRedeliveryJobStopsWhenCanceled(t *testing.T) {
	carts := &fakeCarts{carts: []models.AbandonedCart{cart(1, "11911111111")}}
	hooks := &scriptedWebhooks{results: map[string]webhook.Result{}}
	job := newRedeliveryJob(t, carts, hooks)
	job.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	job.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := job.Run(ctx); err == nil {
		t.Fatal("expected pacing error")
	}
	if len(hooks.events) != 0 {
		t.Fatalf("expected no deliveries, got %d", len(hooks.events))
	}
}

type fakeWarmer struct {
	calls int
	err   error
}

func (f *fakeWarmer) WarmCache(context.Context) error {
	f.calls++
	return f.err
}

func TestCacheWarmJob(t *testing.T) {
	warmer := &fakeWarmer{}
	job, err := NewCacheWarmJob(logger.New(logger.Options{ServiceName: "test"}), warmer)
	if err != nil {
		t.Fatalf("NewCacheWarmJob: %v", err)
	}
	if job.Name() != "catalog-cache-warm" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	warmer.err = errors.New("redis down")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if warmer.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", warmer.calls)
	}
}
