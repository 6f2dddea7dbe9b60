package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"catalog-sync-api/internal/cache"
	"catalog-sync-api/internal/client"
	"catalog-sync-api/internal/config"
	"catalog-sync-api/internal/handler"
	"catalog-sync-api/internal/metrics"
	"catalog-sync-api/internal/middleware"
	"catalog-sync-api/internal/normalize"
	"catalog-sync-api/internal/repository"
	"catalog-sync-api/internal/router"
	"catalog-sync-api/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting catalog-sync-api...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize the product store based on config
	var repo repository.ProductRepository
	var mongoStore *repository.MongoProductRepository
	switch cfg.Store.Type {
	case "sqlite":
		sqliteRepo, err := repository.NewSQLiteProductRepository(cfg.Store.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite store: %v", err)
		}
		repo = sqliteRepo
		log.Println("SQLite product store initialized")
	default: // mongodb
		var err error
		mongoStore, err = repository.NewMongoProductRepository(repository.MongoConfig{
			URI:               cfg.Store.MongoURI,
			Database:          cfg.Store.MongoDatabase,
			RawCollection:     cfg.Store.RawCollection,
			ProductCollection: cfg.Store.ProductCollection,
		})
		if err != nil {
			log.Fatalf("Failed to initialize MongoDB store: %v", err)
		}
		repo = mongoStore
		log.Println("MongoDB product store initialized")
	}
	defer repo.Close()

	// Initialize the sync log (optional; runs fine without one)
	var syncLog repository.SyncLogRepository
	switch cfg.SyncLog.Type {
	case "mysql":
		mysqlLog, err := repository.NewMySQLSyncLogRepository(cfg.SyncLog.MySQLDSN())
		if err != nil {
			log.Printf("Warning: MySQL sync log unavailable: %v", err)
		} else {
			syncLog = mysqlLog
			log.Println("MySQL sync log initialized")
		}
	default: // mongodb, shares the store connection
		if mongoStore != nil {
			syncLog = repository.NewMongoSyncLogRepository(mongoStore, "sync_log")
			log.Println("MongoDB sync log initialized")
		} else {
			log.Println("Warning: Mongo sync log requires the mongodb store; sync log disabled")
		}
	}
	if syncLog != nil {
		defer syncLog.Close()
	}

	// Initialize the classifier cache
	var classifierCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis unavailable, falling back to memory cache: %v", err)
			classifierCache = cache.NewMemoryCache()
		} else {
			classifierCache = redisCache
			log.Println("Redis classifier cache initialized")
		}
	default:
		classifierCache = cache.NewMemoryCache()
	}

	// Initialize the external classifier (optional)
	var external normalize.SemanticClassifier
	if cfg.Classifier.URL != "" {
		external = client.NewCachedClassifier(
			client.NewHTTPClassifier(client.HTTPClassifierConfig{
				URL:     cfg.Classifier.URL,
				APIKey:  cfg.Classifier.APIKey,
				Model:   cfg.Classifier.Model,
				Timeout: cfg.Classifier.Timeout,
			}),
			classifierCache,
			cfg.Cache.TTL,
		)
		log.Printf("External classifier enabled (%s)", cfg.Classifier.Model)
	}

	// Build the normalizer on the default tables
	normalizer := normalize.NewNormalizer(
		normalize.NewResolver(normalize.TaxonomyConfig{}),
		normalize.NewAttributeClassifier(normalize.ClassifierTables{}),
		normalize.NewTagSynthesizer(normalize.TagConfig{RecentWindow: cfg.Sync.RecentWindow}),
		normalize.NewCollectionClassifier(normalize.CollectionConfig{Identity: cfg.Classifier.Model}, external),
	)

	// Initialize the marketplace and downstream store clients (both optional)
	var listings client.ListingClient
	if cfg.Ebay.OAuthToken != "" {
		listings = client.NewEbayClient(client.EbayConfig{
			BaseURL:    cfg.Ebay.BaseURL,
			OAuthToken: cfg.Ebay.OAuthToken,
			PageSize:   cfg.Ebay.PageSize,
			Timeout:    cfg.Ebay.Timeout,
		})
		log.Println("eBay listing client initialized")
	} else {
		log.Println("Warning: no eBay token configured; raw ingest disabled")
	}

	var store client.StoreClient
	var reconciler *service.Reconciler
	if cfg.Shopify.StoreURL != "" && cfg.Shopify.AccessToken != "" {
		store = client.NewShopifyClient(client.ShopifyConfig{
			StoreURL:    cfg.Shopify.StoreURL,
			AccessToken: cfg.Shopify.AccessToken,
			APIVersion:  cfg.Shopify.APIVersion,
			Timeout:     cfg.Shopify.Timeout,
			RateLimit:   cfg.Shopify.RateLimit,
			RateBurst:   cfg.Shopify.RateBurst,
		})
		reconciler = service.NewReconciler(repo, store, cfg.Sync.PageSize, cfg.Sync.MaxWrites)
		log.Println("Shopify store client initialized")
	} else {
		log.Println("Warning: Shopify not configured; reconciliation disabled")
	}

	// Initialize services
	syncService := service.NewSyncService(listings, repo, normalizer, reconciler, syncLog, cfg.Sync.PageSize)

	var reactor *service.OrderReactor
	if store != nil {
		reactor = service.NewOrderReactor(repo, store, syncLog)
	}

	scheduler := service.NewScheduler(syncService, cfg.Sync.Interval)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version, repo)
	syncHandler := handler.NewSyncHandler(syncService)
	productHandler := handler.NewProductHandler(repo)

	var webhookHandler *handler.WebhookHandler
	if reactor != nil {
		webhookHandler = handler.NewWebhookHandler(reactor)
	}

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		SyncHandler:    syncHandler,
		ProductHandler: productHandler,
		WebhookHandler: webhookHandler,
		MetricsHandler: metrics.Handler(),
		AuthMiddleware: middleware.APIKey(cfg.App.APIKey),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
