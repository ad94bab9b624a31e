package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pmcell/catalog-backend/api/responses"
	"github.com/pmcell/catalog-backend/pkg/config"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/metrics"
)

const (
	msgRateLimited      = "Rate limit exceeded. Please try again later."
	msgWebhookThrottled = "Webhook throttle limit exceeded."

	defaultRateWindow  = 60 * time.Second
	defaultThrottleTTL = 5 * time.Second
)

// Storefront paths guarded by the limiter.
const (
	PathLiberatePrices = "/api/liberate-prices/"
	PathTrackJourney   = "/api/track-journey/"
	PathAbandonedCart  = "/api/track-abandoned-cart/"
	PathSearchSuggest  = "/api/search-suggestions/"
)

type rateLimiterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(ip, path string) string
}

type throttleStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ThrottleKey(ip, path string) string
}

// RatePolicy caps requests to every path under Prefix.
type RatePolicy struct {
	Prefix string
	Limit  int
}

// RatePolicies builds the storefront policy table from configuration.
func RatePolicies(cfg config.RateLimitConfig) []RatePolicy {
	return []RatePolicy{
		{Prefix: PathLiberatePrices, Limit: cfg.LiberatePricesLimit},
		{Prefix: PathTrackJourney, Limit: cfg.TrackJourneyLimit},
		{Prefix: PathAbandonedCart, Limit: cfg.AbandonedCartLimit},
		{Prefix: PathSearchSuggest, Limit: cfg.SearchSuggestionLimit},
	}
}

// ThrottledPaths lists the endpoints that trigger outbound webhooks.
func ThrottledPaths() []string {
	return []string{PathLiberatePrices, PathAbandonedCart}
}

func matchPolicy(policies []RatePolicy, path string) (RatePolicy, bool) {
	for _, p := range policies {
		if p.Limit > 0 && strings.HasPrefix(path, p.Prefix) {
			return p, true
		}
	}
	return RatePolicy{}, false
}

// PathRateLimit enforces a fixed-window counter per client IP and request
// path. Every request increments the counter in one store call and is
// rejected once the count passes the limit, so concurrent requests cannot
// share a stale read. The window expiry is set on the first hit only. Store
// failures let the request through.
func PathRateLimit(policies []RatePolicy, window time.Duration, store rateLimiterStore, m *metrics.RateLimitMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	if window <= 0 {
		window = defaultRateWindow
	}
	return func(next http.Handler) http.Handler {
		if store == nil || len(policies) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy, ok := matchPolicy(policies, r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := clientIP(r)
			key := store.RateLimitKey(ip, r.URL.Path)

			count, err := store.IncrWithTTL(ctx, key, window)
			if err != nil {
				failOpen(ctx, logg, "rate_limit.store_failed", err)
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(policy.Limit) {
				m.IncBlocked(policy.Prefix, metrics.LayerCounter)
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"ip":     ip,
						"policy": policy.Prefix,
						"count":  count,
						"limit":  policy.Limit,
					}), "rate_limit.blocked")
				}
				responses.WriteText(w, http.StatusTooManyRequests, msgRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WebhookThrottle allows one request per IP every ttl on the exact paths
// given.
func WebhookThrottle(paths []string, ttl time.Duration, store throttleStore, m *metrics.RateLimitMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultThrottleTTL
	}
	guarded := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		guarded[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		if store == nil || len(guarded) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := guarded[r.URL.Path]; !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := clientIP(r)
			acquired, err := store.SetNX(ctx, store.ThrottleKey(ip, r.URL.Path), 1, ttl)
			if err != nil {
				failOpen(ctx, logg, "webhook_throttle.store_failed", err)
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				m.IncBlocked(r.URL.Path, metrics.LayerThrottle)
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"ip": ip, "path": r.URL.Path}), "webhook_throttle.blocked")
				}
				responses.WriteText(w, http.StatusTooManyRequests, msgWebhookThrottled)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func failOpen(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil {
		return
	}
	logg.Error(ctx, msg, err)
}

// clientIP trusts the first X-Forwarded-For hop, else the socket peer.
func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
