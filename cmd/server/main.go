package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	notificationapp "github.com/storefront/backend/internal/application/notification"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/email"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	_ "github.com/storefront/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const eventChannel = "storefront:events"

//	@title			Storefront API
//	@version		1.0
//	@description	Catalog, order and admin API for the storefront and its admin dashboard.

//	@host		localhost:5000
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if core := providers.LogCore(); core != nil {
		log = logger.Tee(log, core)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		SlowQueryThreshold: 200 * time.Millisecond,
		DBName:             cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backs the duplicate order guard, token revocation and
	// cross-instance event fan-out; each falls back to memory without it.
	stores := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log.Named("cache")),
		cache.WithInMemoryFallback(!cfg.Redis.Enabled || cfg.App.IsDevelopment()),
	)
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}()
	idempotencyStore, err := stores.CreateIdempotencyStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	bus, blacklist := eventBusAndBlacklist(cfg, stores, log)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := bus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	images, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	var mailer orderapp.Mailer = email.NewLogMailer(log.Named("email"))
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPSender(email.Config{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			FromName:    cfg.SMTP.FromName,
			FromAddress: cfg.SMTP.FromAddress,
			AdminEmail:  cfg.Admin.Email,
		}, log.Named("email"))
	}

	orderMetrics, err := telemetry.NewOrderMetrics(otel.GetMeterProvider())
	if err != nil {
		log.Fatal("Failed to create order metrics", zap.Error(err))
	}

	// Repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	subcategoryRepo := persistence.NewGormSubcategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)

	// Application services
	categoryService := catalogapp.NewCategoryService(categoryRepo, images, bus)
	subcategoryService := catalogapp.NewSubcategoryService(subcategoryRepo, categoryRepo, images, bus)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, subcategoryRepo, images, bus)
	placementService := orderapp.NewPlacementService(
		persistence.NewGormOrderTransactionScope(db.DB),
		notificationRepo,
		mailer,
		orderapp.WithIdempotency(idempotencyStore, shared.IdempotencyConfig{
			Enabled: cfg.Idempotency.Enabled,
			TTL:     cfg.Idempotency.TTL,
		}),
		orderapp.WithDispatcher(orderapp.NewDispatcher(cfg.SMTP.Timeout, log.Named("dispatch"))),
		orderapp.WithEventPublisher(bus),
		orderapp.WithMetrics(orderMetrics),
		orderapp.WithLogger(log.Named("orders")),
	)
	orderService := orderapp.NewOrderService(orderRepo, notificationRepo, bus, log.Named("orders"))
	notificationService := notificationapp.NewService(notificationRepo)

	jwtService := auth.NewJWTService(cfg.JWT)
	if cfg.Admin.PasswordHash == "" {
		log.Warn("admin.password_hash is empty, admin login is disabled")
	}

	streamHub := handler.NewStreamHub(bus, handler.WithStreamLogger(log.Named("stream")))
	if err := streamHub.Start(); err != nil {
		log.Fatal("Failed to start notification stream", zap.Error(err))
	}
	defer streamHub.Stop()

	limits := catalogapp.UploadLimits{MaxFileSize: cfg.Storage.MaxFileSize, MaxFiles: cfg.Storage.MaxFiles}
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(auth.NewAdminCredentials(cfg.Admin.Username, cfg.Admin.PasswordHash), jwtService, blacklist),
		Category:     handler.NewCategoryHandler(categoryService, subcategoryService, limits),
		Subcategory:  handler.NewSubcategoryHandler(subcategoryService, productService, limits),
		Product:      handler.NewProductHandler(productService, limits),
		Order:        handler.NewOrderHandler(placementService, orderService),
		Notification: handler.NewNotificationHandler(notificationService),
		Stream:       streamHub,
		System:       handler.NewSystemHandler(db, cfg.App.Name, version),
	}

	engine, err := newEngine(cfg, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}
	engine.GET("/health", handlers.System.Health)
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		engine.Static(cfg.Storage.PublicBaseURL, cfg.Storage.UploadDir)
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger.Enabled, cfg.Swagger.AllowedIPs),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	adminAuth := middleware.AdminAuthConfig{
		Validator: jwtService,
		Blacklist: blacklist,
		Logger:    log.Named("auth"),
	}
	streamAuth := adminAuth
	streamAuth.AllowQueryToken = true

	r := router.NewRouter(engine, router.WithBasePath("/api"))
	for _, registrar := range router.StorefrontRoutes(handlers, router.Guards{
		Admin:       middleware.AdminAuth(adminAuth),
		StreamAdmin: middleware.AdminAuth(streamAuth),
		JSONBody:    middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		UploadBody:  middleware.BodyLimit(uploadBodyLimit(cfg.Storage)),
	}) {
		r.Register(registrar)
	}
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}
	// SSE handlers clear their own write deadline and end on shutdown instead
	srv.RegisterOnShutdown(streamHub.Stop)

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
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newEngine builds the gin engine with the global middleware chain
func newEngine(cfg *config.Config, log *zap.Logger) (*gin.Engine, error) {
	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.MaxMultipartMemory = 8 << 20
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log, cfg.App.IsDevelopment()))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
		engine.Use(middleware.SpanAnnotator())
	}
	httpMetrics, err := middleware.HTTPMetrics(otel.GetMeterProvider())
	if err != nil {
		return nil, err
	}
	engine.Use(httpMetrics)
	engine.Use(middleware.Secure(middleware.DefaultSecurityConfig()))

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}
	return engine, nil
}

// eventBusAndBlacklist picks Redis-backed implementations when Redis is
// reachable so every instance sees the same events and revoked tokens.
func eventBusAndBlacklist(cfg *config.Config, stores *cache.StoreFactory, log *zap.Logger) (shared.EventBus, auth.TokenBlacklist) {
	if cfg.Redis.Enabled {
		client, err := stores.Client()
		if err == nil {
			bus := event.NewRedisEventBus(client, eventChannel, event.NewDefaultSerializer(), log.Named("events"))
			return bus, auth.NewRedisTokenBlacklist(client, "storefront:revoked:")
		}
		log.Warn("Redis unavailable, using in-process event bus and token blacklist", zap.Error(err))
	}
	return event.NewInMemoryEventBus(log.Named("events")), auth.NewInMemoryTokenBlacklist()
}

// uploadBodyLimit leaves room for every allowed file plus multipart framing
func uploadBodyLimit(cfg config.StorageConfig) int64 {
	return cfg.MaxFileSize*int64(cfg.MaxFiles) + 1<<20
}
