package notifications

import (
	"context"
	"sync"

	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/metrics"
	"github.com/pmcell/catalog-backend/pkg/webhook"
)

type configStore interface {
	FindActive(ctx context.Context, event enums.WebhookEvent) (*models.WebhookConfig, error)
	Setting(ctx context.Context, key string) (string, error)
}

type sender interface {
	Send(ctx context.Context, target webhook.Target, event string, data map[string]any) webhook.Result
}

// DeliveredFunc runs after a successful delivery. Its error is logged only.
type DeliveredFunc func(ctx context.Context) error

// Dispatcher resolves the endpoint for an event and delivers payloads to it.
type Dispatcher struct {
	configs configStore
	sender  sender
	metrics *metrics.WebhookMetrics
	logg    *logger.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(configs configStore, sender sender, m *metrics.WebhookMetrics, logg *logger.Logger) *Dispatcher {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Dispatcher{configs: configs, sender: sender, metrics: m, logg: logg}
}

// Dispatch delivers in the background. The caller's cancellation does not
// abort the delivery and no error ever reaches the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, event enums.WebhookEvent, payload map[string]any, onDelivered DeliveredFunc) {
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		res := d.Deliver(detached, event, payload)
		if !res.Delivered || res.Skipped || onDelivered == nil {
			return
		}
		if err := onDelivered(detached); err != nil {
			d.logg.Error(d.logg.WithField(detached, "event", string(event)), "webhook.after_delivery_failed", err)
		}
	}()
}

// Deliver sends synchronously. A missing or inactive configuration counts
// as a skipped success.
func (d *Dispatcher) Deliver(ctx context.Context, event enums.WebhookEvent, payload map[string]any) webhook.Result {
	ctx = d.logg.WithField(ctx, "event", string(event))

	cfg, err := d.configs.FindActive(ctx, event)
	if err != nil {
		d.logg.Error(ctx, "webhook.config_lookup_failed", err)
		d.metrics.Observe(string(event), metrics.OutcomeFailed, 0)
		return webhook.Result{Err: err}
	}
	if cfg == nil || cfg.URL == "" {
		d.logg.Info(ctx, "webhook.skipped")
		d.metrics.Observe(string(event), metrics.OutcomeSkipped, 0)
		return webhook.Result{Delivered: true, Skipped: true}
	}

	data := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		data[k] = v
	}
	if store, err := d.configs.Setting(ctx, models.SettingStoreName); err == nil && store != "" {
		data["loja"] = store
	}

	res := d.sender.Send(ctx, webhook.Target{
		URL:          cfg.URL,
		Timeout:      cfg.Timeout(),
		RetryEnabled: cfg.RetryEnabled,
	}, string(event), data)

	ctx = d.logg.WithFields(ctx, map[string]any{
		"attempts":    res.Attempts,
		"status_code": res.StatusCode,
	})
	if res.Delivered {
		d.logg.Info(ctx, "webhook.delivered")
		d.metrics.Observe(string(event), metrics.OutcomeDelivered, res.Attempts)
	} else {
		d.logg.Error(ctx, "webhook.failed", res.Err)
		d.metrics.Observe(string(event), metrics.OutcomeFailed, res.Attempts)
	}
	return res
}

// Wait blocks until every background dispatch has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
