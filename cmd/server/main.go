package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appanalytics "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/analytics"
	appintegration "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/shared"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/auth"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/cache"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/config"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/logger"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/persistence"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/scheduler"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/social"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/storage"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/telemetry"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/handler"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/middleware"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	shutdownTimeout    = 30 * time.Second
	slowQueryThreshold = 200 * time.Millisecond
	rateLimitSweep     = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting feed service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	var metrics *telemetry.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.NewMetrics()
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracingCfg := telemetry.DefaultDBTracingConfig()
		tracingCfg.Enabled = true
		if db.Driver == persistence.DriverSQLite {
			tracingCfg.DBSystem = "sqlite"
		}
		if err := telemetry.NewDBTracingPlugin(tracingCfg, log).Register(db.DB); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	// Redis is optional; every consumer has an in-process fallback
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = client.Close()
		}()
		redisClient = client
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	accounts := persistence.NewGormAccountRepository(db.DB)
	metas := persistence.NewGormPostMetaRepository(db.DB)
	settingsRepo := persistence.NewGormFeedSettingsRepository(db.DB)
	counters := persistence.NewGormCounterRepository(db.DB)

	// Adapters
	store, err := storage.NewMetafieldStore(&cfg.Publish, redisClient, log)
	if err != nil {
		log.Fatal("Failed to create publish store", zap.Error(err))
	}
	locker, err := cache.NewLockerFactory(redisClient,
		cache.WithLogger(log),
		cache.WithLockTTL(cfg.Sync.LockTTL),
	).CreateLocker()
	if err != nil {
		log.Fatal("Failed to create tenant locker", zap.Error(err))
	}
	platform, err := social.NewInstagramAdapter(&social.InstagramConfig{
		ClientID:          cfg.Instagram.ClientID,
		ClientSecret:      cfg.Instagram.ClientSecret,
		RedirectURI:       cfg.Instagram.RedirectURI,
		Scopes:            cfg.Instagram.Scopes,
		AuthorizeURL:      cfg.Instagram.AuthorizeURL,
		TokenURL:          cfg.Instagram.TokenURL,
		GraphURL:          cfg.Instagram.GraphURL,
		TimeoutSeconds:    cfg.Instagram.TimeoutSeconds,
		RequestsPerSecond: cfg.Instagram.RequestsPerSecond,
	}, log)
	if err != nil {
		log.Fatal("Failed to create Instagram adapter", zap.Error(err))
	}
	codec, err := auth.NewStateTokenCodec(cfg.OAuth.StateSecret, cfg.OAuth.StateTTL)
	if err != nil {
		log.Fatal("Failed to create handshake state codec", zap.Error(err))
	}

	// Application services
	publisher := appintegration.NewPublisher(store, cfg.Publish.Namespace, cfg.TrackingURL())
	syncService := appintegration.NewSyncService(accounts, metas, settingsRepo, platform, publisher, locker, log)
	syncService.SetMetrics(metrics)
	syncService.SetDefaultPostLimit(cfg.Sync.DefaultPostLimit)

	connectService := appintegration.NewConnectService(platform, codec, accounts, counters, syncService, cfg.App.AdminURL, log)
	connectService.SetMetrics(metrics)
	connectService.SetRefreshWindow(cfg.Sync.RefreshWindow)

	postMetaService := appintegration.NewPostMetaService(metas, accounts, platform, syncService, log)
	settingsService := appintegration.NewSettingsService(settingsRepo, syncService, log)
	lifecycleService := appintegration.NewLifecycleService(accounts, metas, settingsRepo, counters, syncService, log)

	recorder := appanalytics.NewRecorder(counters, log)
	recorder.SetMetrics(metrics)
	aggregator := appanalytics.NewAggregator(counters)

	// Sync worker pool and cron
	if cfg.Sync.Enabled {
		syncScheduler, err := scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{
			Workers:       cfg.Sync.Workers,
			QueueSize:     cfg.Sync.QueueSize,
			JobTimeout:    cfg.Sync.JobTimeout,
			RetryAttempts: cfg.Sync.RetryAttempts,
			RetryDelay:    cfg.Sync.RetryDelay,
			MaxHistory:    scheduler.DefaultSyncSchedulerConfig().MaxHistory,
		}, scheduler.NewSyncExecutor(syncService), log, metrics)
		if err != nil {
			log.Fatal("Failed to create sync scheduler", zap.Error(err))
		}
		if err := syncScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := syncScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping sync scheduler", zap.Error(err))
			}
		}()
		syncService.SetQueue(syncScheduler)

		trigger, err := scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
			SyncSchedule:    cfg.Sync.CronSchedule,
			RefreshSchedule: cfg.Sync.RefreshCronSchedule,
		}, syncScheduler, accounts, connectService, log)
		if err != nil {
			log.Fatal("Failed to create cron trigger", zap.Error(err))
		}
		trigger.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := trigger.Stop(stopCtx); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
	} else {
		log.Warn("Sync worker pool disabled; syncs run on detached goroutines and no cron is scheduled")
	}

	// Admin session revocation and webhook de-duplication
	var (
		revoker     auth.TokenRevoker
		idempotency shared.IdempotencyStore
	)
	if redisClient != nil {
		revoker = auth.NewRedisTokenRevoker(redisClient)
		idempotency = cache.NewRedisIdempotencyStore(redisClient, "igfeed:webhook:")
	} else {
		revoker = auth.NewInMemoryTokenRevoker()
		idempotency = cache.NewInMemoryIdempotencyStore()
	}
	defer func() {
		_ = idempotency.Close()
	}()

	// HTTP
	jwtService := auth.NewJWTService(cfg.JWT)
	beacon, err := handler.NewBeaconHandler(cfg.TrackingURL(), handler.DefaultProxyPaths)
	if err != nil {
		log.Fatal("Failed to build beacon script", zap.Error(err))
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version).
		AddCheck("database", func(context.Context) error { return db.Ping() })
	if redisClient != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	handlers := router.Handlers{
		System:    systemHandler,
		Connect:   handler.NewConnectHandler(connectService),
		Sync:      handler.NewSyncHandler(syncService),
		Posts:     handler.NewPostsHandler(postMetaService),
		Settings:  handler.NewSettingsHandler(settingsService),
		Analytics: handler.NewAnalyticsHandler(aggregator),
		Tracking:  handler.NewTrackingHandler(recorder),
		Webhook: handler.NewWebhookHandler(lifecycleService, log,
			handler.WithIdempotency(idempotency),
			handler.WithRevoker(revoker, cfg.JWT.Expiration),
		),
		Beacon: beacon,
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order: request id, panic recovery, tracing, request log, metrics, security headers, body limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanAttributes(), middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(metrics))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	adminCORS := middleware.DefaultCORSConfig()
	adminCORS.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		adminCORS.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		adminCORS.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	mw := router.Middleware{
		Admin: []gin.HandlerFunc{
			middleware.CORSWithConfig(adminCORS),
			middleware.AdminAuth(middleware.JWTMiddlewareConfig{
				Validator: jwtService,
				Revoker:   revoker,
				Logger:    log,
			}),
		},
		Webhook: []gin.HandlerFunc{
			middleware.WebhookSignature(cfg.Storefront.WebhookSecret, log),
		},
	}

	sweeperStop := make(chan struct{})
	defer close(sweeperStop)
	if cfg.HTTP.RateLimitEnabled {
		adminLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		trackingLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go adminLimiter.RunSweeper(rateLimitSweep, sweeperStop)
		go trackingLimiter.RunSweeper(rateLimitSweep, sweeperStop)

		mw.Admin = append(mw.Admin, middleware.RateLimitByKey(adminLimiter, func(c *gin.Context) string {
			return middleware.GetShop(c)
		}))
		mw.Tracking = append(mw.Tracking, middleware.RateLimit(trackingLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	var metricsHandler http.Handler
	if metrics != nil {
		metricsHandler = metrics.Handler()
	}
	router.Mount(engine, handlers, mw, metricsHandler)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
