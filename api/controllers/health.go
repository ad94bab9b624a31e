package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/pmcell/catalog-backend/api/responses"
	"github.com/pmcell/catalog-backend/pkg/config"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is anything the readiness probe can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": r.Header.Get("X-Request-Timestamp"),
			"service":   cfg.App.ServiceName,
		})
	}
}

// HealthReady pings every dependency and answers 503 when one is down.
func HealthReady(cfg *config.Config, deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		status := http.StatusOK
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				status = http.StatusServiceUnavailable
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "health.dependency_down", err)
				}
				continue
			}
			checks[name] = "up"
		}

		overall := "ready"
		if status != http.StatusOK {
			overall = "unavailable"
		}
		responses.WriteJSON(w, status, map[string]any{
			"status":  overall,
			"service": cfg.App.ServiceName,
			"checks":  checks,
		})
	}
}
