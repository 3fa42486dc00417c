package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditapp "github.com/leaseledger/backend/internal/application/audit"
	billingapp "github.com/leaseledger/backend/internal/application/billing"
	eventapp "github.com/leaseledger/backend/internal/application/event"
	leasingapp "github.com/leaseledger/backend/internal/application/leasing"
	"github.com/leaseledger/backend/internal/infrastructure/auth"
	"github.com/leaseledger/backend/internal/infrastructure/cache"
	"github.com/leaseledger/backend/internal/infrastructure/config"
	"github.com/leaseledger/backend/internal/infrastructure/event"
	"github.com/leaseledger/backend/internal/infrastructure/logger"
	"github.com/leaseledger/backend/internal/infrastructure/persistence"
	"github.com/leaseledger/backend/internal/infrastructure/scheduler"
	"github.com/leaseledger/backend/internal/infrastructure/telemetry"
	"github.com/leaseledger/backend/internal/interfaces/http/handler"
	"github.com/leaseledger/backend/internal/interfaces/http/middleware"
	"github.com/leaseledger/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/leaseledger/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			LeaseLedger API
//	@version		1.0
//	@description	Rent payment lifecycle and reconciliation backend

//	@contact.name	API Support
//	@contact.url	https://github.com/leaseledger/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting LeaseLedger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection, GORM logging mapped from the app log level
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Telemetry providers (tracing, metrics) when enabled
	var businessMetrics *telemetry.BusinessMetrics
	var meterProvider *telemetry.MeterProvider
	if cfg.Telemetry.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize tracer provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()

		meterProvider, err = telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down meter provider", zap.Error(err))
			}
		}()

		// Database query tracing via otelgorm
		if cfg.Telemetry.DBTraceEnabled {
			tracingPlugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
				Enabled:         true,
				LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
				SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			}, log)
			if err := tracingPlugin.RegisterOtelGorm(db.DB); err != nil {
				log.Warn("Failed to register database tracing plugin", zap.Error(err))
			}
		}

		// Billing business metrics with periodic gauge collection
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           meterProvider.Meter("leaseledger.billing"),
			Logger:          log,
			BillingProvider: telemetry.NewGormBillingMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		businessMetrics.StartPeriodicCollection(context.Background(), 5*time.Minute)

		log.Info("Telemetry enabled",
			zap.String("collector", cfg.Telemetry.CollectorEndpoint),
			zap.Float64("sampling_ratio", cfg.Telemetry.SamplingRatio),
		)
	}

	// Continuous profiling via Pyroscope when configured
	if cfg.Telemetry.ProfilingEnabled {
		profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:           true,
			ServerAddress:     cfg.Telemetry.ProfilingServerAddr,
			ApplicationName:   cfg.Telemetry.ServiceName,
			ProfileCPU:        true,
			ProfileAllocSpace: true,
			ProfileInuseSpace: true,
			ProfileGoroutines: true,
		}, log)
		if err != nil {
			log.Warn("Failed to start continuous profiler", zap.Error(err))
		} else {
			defer func() {
				if err := profiler.Stop(); err != nil {
					log.Error("Error stopping profiler", zap.Error(err))
				}
			}()
		}
	}

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	leaseRepo := persistence.NewGormLeaseRepository(db.DB)
	depositRepo := persistence.NewGormSecurityDepositRepository(db.DB)
	settlementRepo := persistence.NewGormSettlementRepository(db.DB)
	obligationRepo := persistence.NewGormRentObligationRepository(db.DB)
	submissionRepo := persistence.NewGormPaymentSubmissionRepository(db.DB)
	chargeRepo := persistence.NewGormUtilityChargeRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	activityRepo := persistence.NewGormActivityRecordRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Transaction scopes for multi-aggregate writes
	billingScope := persistence.NewGormBillingTransactionScope(db.DB)
	leasingScope := persistence.NewGormLeasingTransactionScope(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Notification dispatch runs idempotently: redelivered events (outbox
	// retries, bus restarts) must not produce duplicate notifications.
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	notificationDispatcher := eventapp.NewNotificationDispatcher(notificationRepo, log)
	eventBus.Subscribe(event.NewIdempotentHandler(notificationDispatcher, idempotencyStore, log))
	log.Info("Event handlers registered",
		zap.Strings("notification_events", notificationDispatcher.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor: drains the outbox_events table back onto the bus so
	// events survive a crash between commit and dispatch
	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			processorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			processorConfig.PollInterval = cfg.Event.PollInterval
		}
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			processorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Initialize application services
	billingService := billingapp.NewBillingService(obligationRepo, billingScope, eventBus, activityRepo, log)
	generationService := billingapp.NewObligationGenerationService(obligationRepo, leaseRepo, eventBus, activityRepo, log)
	overdueService := billingapp.NewOverdueService(obligationRepo, leaseRepo, eventBus, activityRepo, log)
	submissionService := billingapp.NewSubmissionService(submissionRepo, obligationRepo, leaseRepo, tenantRepo, billingScope, eventBus, activityRepo, log)
	utilityService := billingapp.NewUtilityService(chargeRepo, leaseRepo, billingScope, eventBus, activityRepo, log)
	leaseService := leasingapp.NewLeaseService(leaseRepo, unitRepo, tenantRepo, depositRepo, leasingScope, eventBus, activityRepo, log)
	portfolioService := leasingapp.NewPortfolioService(tenantRepo, unitRepo, log)
	settlementService := leasingapp.NewSettlementService(leaseRepo, settlementRepo, depositRepo, obligationRepo, leasingScope, eventBus, activityRepo, log)
	notificationService := eventapp.NewNotificationService(notificationRepo, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)
	activityService := auditapp.NewActivityService(activityRepo, log)

	if businessMetrics != nil {
		billingService.SetBusinessMetrics(businessMetrics)
		generationService.SetBusinessMetrics(businessMetrics)
		overdueService.SetBusinessMetrics(businessMetrics)
		submissionService.SetBusinessMetrics(businessMetrics)
		settlementService.SetBusinessMetrics(businessMetrics)
	}

	// Bearer token validation (tokens issued by the identity provider)
	jwtService := auth.NewJWTService(cfg.Auth)

	// Billing batch scheduler: nightly obligation generation, overdue
	// promotion and utility merge
	if cfg.Scheduler.Enabled {
		cronHour, cronMinute, err := scheduler.ParseCronSchedule(cfg.Scheduler.DailyCronSchedule)
		if err != nil {
			log.Warn("Invalid cron schedule, using default",
				zap.String("schedule", cfg.Scheduler.DailyCronSchedule),
				zap.Error(err),
			)
		}
		jobExecutor := billingapp.NewBillingJobExecutor(generationService, overdueService, utilityService, log)
		jobRepo := scheduler.NewSchedulerJobRepository(db.DB)
		billingScheduler := scheduler.NewBillingCronScheduler(scheduler.BillingCronSchedulerConfig{
			Enabled:           cfg.Scheduler.Enabled,
			CronHour:          cronHour,
			CronMinute:        cronMinute,
			DailyCronSchedule: cfg.Scheduler.DailyCronSchedule,
			GenerationDay:     cfg.Scheduler.GenerationDay,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}, jobExecutor, jobRepo, log)
		if err := billingScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start billing scheduler", zap.Error(err))
		}
		defer func() {
			if err := billingScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping billing scheduler", zap.Error(err))
			}
		}()
		log.Info("Billing scheduler started",
			zap.Int("cron_hour", cronHour),
			zap.Int("cron_minute", cronMinute),
			zap.Int("generation_day", cfg.Scheduler.GenerationDay),
		)
	}

	// Initialize HTTP handlers
	leaseHandler := handler.NewLeaseHandler(leaseService)
	portfolioHandler := handler.NewPortfolioHandler(portfolioService)
	settlementHandler := handler.NewSettlementHandler(settlementService)
	obligationHandler := handler.NewObligationHandler(billingService, generationService, overdueService)
	submissionHandler := handler.NewSubmissionHandler(submissionService)
	utilityHandler := handler.NewUtilityChargeHandler(utilityService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	activityHandler := handler.NewActivityHandler(activityService)
	outboxHandler := handler.NewOutboxHandler(outboxService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// JWT authentication for API routes; system probes stay public
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		swaggerProtection := middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
		engine.GET("/swagger/*any", swaggerProtection, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	staffOnly := middleware.RequireStaff()
	adminOnly := middleware.RequireAdmin()

	// Leasing domain (tenants, units, leases, deposits, settlement)
	leasingRoutes := router.NewDomainGroup("leasing", "/leasing")
	leasingRoutes.POST("/tenants", staffOnly, portfolioHandler.RegisterTenant)
	leasingRoutes.GET("/tenants", portfolioHandler.ListTenants)
	leasingRoutes.GET("/tenants/:id", portfolioHandler.GetTenant)
	leasingRoutes.PUT("/tenants/:id/blacklist", staffOnly, portfolioHandler.SetBlacklist)
	leasingRoutes.POST("/units", staffOnly, portfolioHandler.RegisterUnit)
	leasingRoutes.GET("/units", portfolioHandler.ListUnits)
	leasingRoutes.GET("/units/:id", portfolioHandler.GetUnit)
	leasingRoutes.POST("/leases", staffOnly, leaseHandler.Create)
	leasingRoutes.GET("/leases", leaseHandler.List)
	leasingRoutes.GET("/leases/number/:number", leaseHandler.GetByNumber)
	leasingRoutes.GET("/leases/:id", leaseHandler.GetByID)
	leasingRoutes.PUT("/leases/:id", staffOnly, leaseHandler.Amend)
	leasingRoutes.POST("/leases/:id/activate", staffOnly, leaseHandler.Activate)
	leasingRoutes.GET("/leases/:id/deposit", leaseHandler.GetDeposit)
	leasingRoutes.GET("/leases/:id/settlement", settlementHandler.GetByLease)
	leasingRoutes.GET("/leases/:id/settlement/preview", settlementHandler.Preview)
	leasingRoutes.POST("/leases/:id/settle", staffOnly, settlementHandler.Settle)
	leasingRoutes.GET("/settlements", settlementHandler.List)
	leasingRoutes.GET("/settlements/:id", settlementHandler.GetByID)

	// Billing domain (obligations, payments, submissions, utility charges)
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.GET("/obligations", obligationHandler.List)
	billingRoutes.GET("/obligations/number/:number", obligationHandler.GetByNumber)
	billingRoutes.GET("/obligations/:id", obligationHandler.GetByID)
	billingRoutes.GET("/obligations/:id/history", obligationHandler.GetHistory)
	billingRoutes.POST("/obligations/:id/payments", staffOnly, obligationHandler.ApplyPayment)
	billingRoutes.POST("/obligations/generate", staffOnly, obligationHandler.RunGeneration)
	billingRoutes.POST("/obligations/promote-overdue", staffOnly, obligationHandler.RunOverduePromotion)
	billingRoutes.GET("/summary", obligationHandler.GetSummary)
	billingRoutes.GET("/leases/:id/outstanding", obligationHandler.GetLeaseOutstanding)
	billingRoutes.POST("/submissions", submissionHandler.Submit)
	billingRoutes.GET("/submissions", submissionHandler.List)
	billingRoutes.GET("/submissions/pending", staffOnly, submissionHandler.ListPending)
	billingRoutes.GET("/submissions/:id", submissionHandler.GetByID)
	billingRoutes.POST("/submissions/:id/verify", staffOnly, submissionHandler.Verify)
	billingRoutes.POST("/submissions/:id/reject", staffOnly, submissionHandler.Reject)
	billingRoutes.POST("/submissions/bulk-verify", staffOnly, submissionHandler.BulkVerify)
	billingRoutes.POST("/utility-charges", staffOnly, utilityHandler.Create)
	billingRoutes.GET("/utility-charges", utilityHandler.List)
	billingRoutes.GET("/utility-charges/:id", utilityHandler.GetByID)
	billingRoutes.PUT("/utility-charges/:id", staffOnly, utilityHandler.Update)
	billingRoutes.POST("/utility-charges/:id/finalize", staffOnly, utilityHandler.Finalize)
	billingRoutes.POST("/utility-charges/merge", staffOnly, utilityHandler.RunMerge)

	// In-app notifications
	notificationRoutes := router.NewDomainGroup("notifications", "/notifications")
	notificationRoutes.GET("", notificationHandler.List)
	notificationRoutes.GET("/unread-count", notificationHandler.UnreadCount)
	notificationRoutes.POST("/:id/read", notificationHandler.MarkRead)
	notificationRoutes.POST("/read-all", notificationHandler.MarkAllRead)

	// Audit trail
	auditRoutes := router.NewDomainGroup("audit", "/audit")
	auditRoutes.GET("/activities", activityHandler.List)
	auditRoutes.GET("/trail/:resource_type/:resource_id", activityHandler.GetTrail)

	// System routes: probes and outbox administration
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/outbox/stats", adminOnly, outboxHandler.GetStats)
	systemRoutes.GET("/outbox/dead", adminOnly, outboxHandler.GetDeadLetterEntries)
	systemRoutes.POST("/outbox/dead/retry-all", adminOnly, outboxHandler.RetryAllDeadEntries)
	systemRoutes.GET("/outbox/:id", adminOnly, outboxHandler.GetEntry)
	systemRoutes.POST("/outbox/:id/retry", adminOnly, outboxHandler.RetryDeadEntry)

	r.Register(leasingRoutes).
		Register(billingRoutes).
		Register(notificationRoutes).
		Register(auditRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Simple ping at root API level for basic liveness checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
