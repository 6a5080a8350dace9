package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/collections"
	"github.com/angelmondragon/storefront-backend/internal/media"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/pubsub"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	requireResource(ctx, logg, "gcs", err)
	defer gcsClient.Close()

	probes := routes.Probes{"db": dbClient, "gcs": gcsClient}

	// Deletions are queued for the worker when a topic is configured and
	// applied inline otherwise.
	var mediaSvc media.Service
	if cfg.PubSub.Enabled() {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, false, logg)
		requireResource(ctx, logg, "pubsub", err)
		defer pubsubClient.Close()
		probes["pubsub"] = pubsubClient

		publisher := pubsub.NewJSONPublisher(pubsubClient.MediaDeletionPublisher())
		defer publisher.Stop()
		mediaSvc, err = media.NewService(mediaConfig(cfg, gcsClient), gcsClient, gcsClient, publisher, logg)
		requireResource(ctx, logg, "media service", err)
	} else {
		mediaSvc, err = media.NewService(mediaConfig(cfg, gcsClient), gcsClient, gcsClient, nil, logg)
		requireResource(ctx, logg, "media service", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	collectionSvc, err := collections.NewService(
		collections.NewRepository(dbClient.DB()),
		metrics.NewCatalogMetrics(registry),
		logg,
		cfg.Catalog.PageSize,
	)
	requireResource(ctx, logg, "collections service", err)

	productSvc, err := product.NewService(product.NewRepository(dbClient.DB()), dbClient, mediaSvc, logg)
	requireResource(ctx, logg, "product service", err)

	cartSvc, err := cart.NewService(redisClient, productSvc, cart.Config{
		TTL:         cfg.Cart.TTL,
		MaxQuantity: cfg.Cart.MaxQuantity,
	})
	requireResource(ctx, logg, "cart service", err)

	orderSvc, err := orders.NewService(orders.NewRepository(dbClient.DB()), cartSvc, logg)
	requireResource(ctx, logg, "orders service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"serviceKind": cfg.Service.Kind,
		"env":         cfg.App.Env,
		"addr":        addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, probes,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			routes.Services{
				Collections: collectionSvc,
				Products:    productSvc,
				Media:       mediaSvc,
				Cart:        cartSvc,
				Orders:      orderSvc,
			}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}()

	logg.Info(ctx, "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func mediaConfig(cfg *config.Config, gcsClient *gcs.Client) media.Config {
	return media.Config{
		Directory:      cfg.Media.Directory,
		Bucket:         gcsClient.DefaultBucket(),
		UploadTTL:      cfg.GCS.UploadURLExpiry,
		MaxUploadBytes: int64(cfg.Media.MaxUploadMB) * 1024 * 1024,
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
