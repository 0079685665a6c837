package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/analytics"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/auth"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/cache"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/config"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/logger"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/notification"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/payment"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/persistence"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/shipping"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/storage"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/telemetry"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/handler"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/middleware"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:    true,
			LogFullSQL: cfg.Telemetry.DBLogFullSQL,
			DBSystem:   "postgresql",
		}, log)
		if err := plugin.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		log.Info("Database schema migrated")
	}

	gateway, err := payment.NewRazorpayAdapter(&payment.RazorpayConfig{
		KeyID:         cfg.Payment.KeyID,
		KeySecret:     cfg.Payment.KeySecret,
		WebhookSecret: cfg.Payment.WebhookSecret,
		BaseURL:       cfg.Payment.BaseURL,
		Timeout:       cfg.Payment.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to configure payment gateway", zap.Error(err))
	}

	carrier, err := shipping.NewDelhiveryAdapter(&shipping.DelhiveryConfig{
		BaseURL:           cfg.Shipping.BaseURL,
		APIToken:          cfg.Shipping.APIToken,
		PickupLocation:    cfg.Shipping.PickupLocation,
		TrackingURLFormat: cfg.Shipping.TrackingURL,
		Timeout:           cfg.Shipping.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to configure carrier", zap.Error(err))
	}

	dedup, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create webhook de-duplication store", zap.Error(err))
	}
	defer func() {
		_ = dedup.Close()
	}()

	stores := db.Stores()
	serviceCfg := apporder.ServiceConfig{
		UnitOfWork:   stores.UnitOfWork,
		Orders:       stores.Orders,
		Products:     stores.Products,
		Gateway:      gateway,
		Carrier:      carrier,
		WebhookDedup: dedup,
		Options: apporder.Options{
			Currency:              cfg.Checkout.Currency,
			TaxPercent:            cfg.Checkout.TaxPercent,
			AutoShip:              cfg.Checkout.AutoShip,
			TrackingWebhookSecret: cfg.Shipping.WebhookSecret,
			ReportURLTTL:          cfg.Storage.PresignExpiry,
		},
		Logger: log,
	}

	if cfg.Kafka.Enabled {
		producer, err := notification.NewSyncProducer(notification.ProducerConfig{
			Brokers:  cfg.Kafka.Brokers,
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			log.Fatal("Failed to connect notification producer", zap.Error(err))
		}
		notifier := notification.NewKafkaNotifier(producer, cfg.Kafka.NotificationsTopic, log)
		defer func() {
			_ = notifier.Close()
		}()
		tracker := analytics.NewKafkaTracker(analytics.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.AnalyticsTopic), cfg.App.Name)
		defer func() {
			_ = tracker.Close()
		}()
		serviceCfg.Notifier = notifier
		serviceCfg.Analytics = tracker
		log.Info("Kafka publishing enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	} else {
		serviceCfg.Notifier = notification.NewLogNotifier(log)
		serviceCfg.Analytics = analytics.NewLogTracker(log)
	}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.NewMetrics("storefront")
		serviceCfg.Metrics = metrics
	}

	if cfg.Storage.Enabled {
		reports, err := storage.NewS3ReportStorage(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to configure report storage", zap.Error(err))
		}
		if err := reports.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare report bucket", zap.Error(err))
		}
		serviceCfg.Reports = reports
	}

	orders := apporder.NewService(serviceCfg)
	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request ID feeds the logger and the span, and the
	// tracing middleware must run before anything that reads the span.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(metrics))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check and metrics stay outside API versioning
	engine.GET("/health", handler.NewSystemHandler(cfg.App.Name, db).Health)
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterStorefront(r, router.StorefrontHandlers{
		Checkout: handler.NewCheckoutHandler(orders),
		Payment:  handler.NewPaymentHandler(orders),
		Order:    handler.NewOrderHandler(orders),
		Admin:    handler.NewAdminHandler(orders),
		Shipping: handler.NewShippingWebhookHandler(orders),
	}, router.StorefrontConfig{
		JWTService: jwtService,
		Limiter:    limiter,
	}).Setup()
	engine.NoRoute(router.NoRoute)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
