package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/collections"
	"github.com/angelmondragon/storefront-backend/internal/media"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// RedisStore is the redis surface the HTTP layer needs: readiness,
// idempotency records and rate limit counters.
type RedisStore interface {
	Ping(context.Context) error
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Services bundles the domain services served over HTTP.
type Services struct {
	Collections collections.Service
	Products    product.Service
	Media       media.Service
	Cart        cart.Service
	Orders      orders.Service
}

// Probes are the dependencies pinged by /health/ready. Nil entries are
// reported as skipped.
type Probes map[string]controllers.Pinger

// NewRouter wires middleware and routes. metricsHandler defaults to the
// global prometheus registry when nil.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisStore RedisStore,
	probes Probes,
	metricsHandler http.Handler,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	// Avoid storing a typed nil in the middleware interfaces.
	var idempotencyStore pkgredis.IdempotencyStore
	var limiter pkgredis.RateLimiter
	if redisStore != nil {
		idempotencyStore = redisStore
		limiter = redisStore
		if probes == nil {
			probes = Probes{}
		}
		if _, ok := probes["redis"]; !ok {
			probes["redis"] = redisStore
		}
	}

	catalogPolicy := middleware.NewRateLimitPolicy("catalog", cfg.RateLimit.Window, cfg.RateLimit.CatalogPerIP)
	auth := middleware.Auth(cfg.JWT, logg)
	idempotent := middleware.Idempotency(idempotencyStore, cfg.RateLimit.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, probes))
	})
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(catalogPolicy, limiter, logg))
			r.Get("/collections/{slug}", controllers.CollectionPage(svc.Collections, logg))
			r.Get("/products/{productId}", controllers.GetProduct(svc.Products, logg))
			r.Get("/catalog/filters", controllers.CatalogFilters())
			r.Get("/checkout/options", controllers.CheckoutOptions())
			r.Post("/checkout/steps/{step}", controllers.ValidateCheckoutStep(logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(auth, idempotent)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(svc.Cart, logg))
				r.Delete("/", controllers.ClearCart(svc.Cart, logg))
				r.Post("/items", controllers.AddCartItem(svc.Cart, logg))
				r.Delete("/items/{sku}", controllers.RemoveCartItem(svc.Cart, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.CreateOrder(svc.Orders, logg))
				r.Get("/", controllers.ListOrders(svc.Orders, logg))
				r.Get("/{orderId}", controllers.GetOrder(svc.Orders, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth, middleware.RequireRole(logg, enums.RoleAdmin), idempotent)

			r.Post("/products", controllers.AdminCreateProduct(svc.Products, logg))
			r.Get("/products/{productId}", controllers.AdminGetProduct(svc.Products, logg))
			r.Put("/products/{productId}", controllers.AdminUpdateProduct(svc.Products, logg))
			r.Delete("/products/{productId}", controllers.AdminDeleteProduct(svc.Products, logg))

			r.Post("/media/uploads", controllers.AdminPresignUploads(svc.Media, logg))
			r.Delete("/media", controllers.AdminDeleteMedia(svc.Media, logg))
		})
	})

	return r
}
