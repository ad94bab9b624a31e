package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pmcell/catalog-backend/api/controllers"
	"github.com/pmcell/catalog-backend/api/middleware"
	"github.com/pmcell/catalog-backend/internal/abandonedcart"
	"github.com/pmcell/catalog-backend/internal/cart"
	"github.com/pmcell/catalog-backend/internal/catalog"
	"github.com/pmcell/catalog-backend/internal/journey"
	"github.com/pmcell/catalog-backend/internal/liberation"
	"github.com/pmcell/catalog-backend/internal/notifications"
	"github.com/pmcell/catalog-backend/internal/orders"
	"github.com/pmcell/catalog-backend/pkg/config"
	"github.com/pmcell/catalog-backend/pkg/db"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/metrics"
)

// RateStore is the Redis surface the limiter, the throttle and the
// readiness probe need.
type RateStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	RateLimitKey(ip, path string) string
	ThrottleKey(ip, path string) string
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	rateStore RateStore,
	metricsHandler http.Handler,
	rateMetrics *metrics.RateLimitMetrics,
	catalogService catalog.Service,
	cartService cart.Service,
	journeyService journey.Service,
	liberationService liberation.Service,
	abandonedCartService abandonedcart.Service,
	ordersService orders.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.PathRateLimit(middleware.RatePolicies(cfg.RateLimit), cfg.RateLimit.Window, rateStore, rateMetrics, logg),
		middleware.WebhookThrottle(middleware.ThrottledPaths(), cfg.RateLimit.WebhookThrottle, rateStore, rateMetrics, logg),
	)

	live := controllers.HealthLive(cfg)
	r.Get("/health", live)
	r.Get("/health/", live)
	r.Get("/health/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
		"database": dbP,
		"redis":    rateStore,
	}, logg))
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	listing := controllers.ProductList(catalogService, logg)
	r.Get("/", listing)
	r.Get("/api/products/", listing)
	r.Get("/product/{id}/{type}/", controllers.ProductDetail(catalogService, logg))
	r.Get("/product/{id}/brand/{brandID}/models/", controllers.ModelsByBrand(catalogService, logg))
	r.Get("/sitemap.json", controllers.Sitemap(catalogService, logg))

	suggestions := controllers.SearchSuggestions(catalogService, logg)
	r.Get("/api/search-suggestions/", suggestions)
	r.Post("/api/search-suggestions/", suggestions)
	r.Post("/api/liberate-prices/", controllers.LiberatePrices(liberationService, logg))
	r.Post("/api/add-to-cart/", controllers.AddToCart(journeyService, logg))
	r.Post("/api/get-cart-items/", controllers.GetCartItems(cartService, logg))
	r.Post("/api/track-journey/", controllers.TrackJourney(journeyService, logg))
	r.Post("/api/track-abandoned-cart/", controllers.TrackAbandonedCart(abandonedCartService, logg))

	r.Post("/checkout/", controllers.Checkout(ordersService, logg))
	r.Get("/checkout/success/", controllers.CheckoutSuccess(ordersService, logg))

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AdminLogin(cfg, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))

			r.Get("/orders", controllers.AdminListOrders(ordersService, logg))
			r.Patch("/orders/{code}/status", controllers.AdminUpdateOrderStatus(ordersService, logg))

			r.Get("/webhooks", controllers.AdminListWebhooks(notificationsService, logg))
			r.Get("/webhooks/{event}", controllers.AdminGetWebhook(notificationsService, logg))
			r.Put("/webhooks/{event}", controllers.AdminUpsertWebhook(notificationsService, logg))

			r.Patch("/products/{type}/{id}/stock", controllers.AdminSetProductStock(catalogService, logg))
			r.Patch("/categories/{id}/active", controllers.AdminSetCategoryActive(catalogService, logg))
		})
	})

	return r
}
