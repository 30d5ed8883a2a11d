package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/uniformco/backoffice/internal/application/catalog"
	eventapp "github.com/uniformco/backoffice/internal/application/event"
	identityapp "github.com/uniformco/backoffice/internal/application/identity"
	partnerapp "github.com/uniformco/backoffice/internal/application/partner"
	reportapp "github.com/uniformco/backoffice/internal/application/report"
	salesapp "github.com/uniformco/backoffice/internal/application/sales"
	tradeapp "github.com/uniformco/backoffice/internal/application/trade"
	"github.com/uniformco/backoffice/internal/infrastructure/auth"
	"github.com/uniformco/backoffice/internal/infrastructure/cache"
	"github.com/uniformco/backoffice/internal/infrastructure/config"
	"github.com/uniformco/backoffice/internal/infrastructure/event"
	"github.com/uniformco/backoffice/internal/infrastructure/imaging"
	"github.com/uniformco/backoffice/internal/infrastructure/logger"
	"github.com/uniformco/backoffice/internal/infrastructure/notification"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence"
	"github.com/uniformco/backoffice/internal/infrastructure/scheduler"
	"github.com/uniformco/backoffice/internal/infrastructure/storage"
	"github.com/uniformco/backoffice/internal/infrastructure/telemetry"
	"github.com/uniformco/backoffice/internal/interfaces/http/handler"
	"github.com/uniformco/backoffice/internal/interfaces/http/middleware"
	"github.com/uniformco/backoffice/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.Must(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	log.Info("Starting uniform back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.GormLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Tracing, cfg.App.Name, version, log)
	if err != nil {
		log.Fatal("Failed to start tracing", zap.Error(err))
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			log.Warn("Tracing not flushed", zap.Error(err))
		}
	}()
	logExport, err := telemetry.NewLogExporter(ctx, cfg.Tracing, cfg.App.Name, version)
	if err != nil {
		log.Fatal("Failed to start log export", zap.Error(err))
	}
	defer func() { _ = logExport.Shutdown(context.Background()) }()
	log = logExport.Attach(log, logger.ParseLevel(cfg.Log.Level))

	if tracer.Enabled() {
		if err := telemetry.TraceDB(db.DB, cfg.Database.Driver, cfg.Tracing.TraceSQL); err != nil {
			log.Fatal("Failed to trace database", zap.Error(err))
		}
	}

	metrics := telemetry.NewMetrics()

	// Redis backs the report cache, the token blacklist and notification
	// de-duplication; without it everything stays in process.
	cacheBackend, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log)).Open(ctx)
	if err != nil {
		log.Fatal("Failed to open cache", zap.Error(err))
	}
	defer func() { _ = cacheBackend.Close() }()

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if cacheBackend.Client != nil {
		blacklist = auth.NewRedisTokenBlacklist(cacheBackend.Client)
	}

	store, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to open object storage", zap.Error(err))
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	inquiryRepo := persistence.NewGormInquiryRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	tx := persistence.NewGormTransactionManager(db.DB)
	orderNumbers := persistence.NewOrderNumberGenerator(db.DB, cfg.Numbering.OrderPrefix)
	inquiryNumbers := persistence.NewInquiryNumberGenerator(db.DB, cfg.Numbering.InquiryPrefix)

	eventBus := event.NewInMemoryEventBus(log)

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, eventBus, log)
	userService := identityapp.NewUserService(userRepo, blacklist, cfg.JWT.RefreshTokenExpiration, eventBus, log)
	customerService := partnerapp.NewCustomerService(customerRepo, orderRepo, eventBus, log)
	productService := catalogapp.NewProductService(productRepo, orderRepo, store, eventBus, log)
	imageService := catalogapp.NewImageService(productRepo, imaging.NewPipeline(cfg.Image), store, log)
	orderService := tradeapp.NewOrderService(orderRepo, productRepo, customerRepo, orderNumbers, tx, eventBus, metrics, log)
	inquiryService := salesapp.NewInquiryService(inquiryRepo, customerRepo, orderRepo, inquiryNumbers, tx, eventBus, metrics, log)
	reportService := reportapp.NewReportService(reportRepo, productRepo, cacheBackend.Store, cfg.Report.CacheTTL, log)

	// Notifications leave through the dispatcher; the subscriber also drops
	// cached reports on every write event.
	var sender notification.Sender = notification.NopSender{}
	if cfg.Notification.Enabled {
		setup, err := notification.NewSetup(ctx, cfg, log, metrics)
		if err != nil {
			log.Fatal("Failed to start notifications", zap.Error(err))
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Notification.SendTimeout*2)
			defer cancel()
			if err := setup.Close(closeCtx); err != nil {
				log.Warn("Notifications not fully drained", zap.Error(err))
			}
		}()
		sender = setup.Dispatcher
		log.Info("Notifications enabled",
			zap.String("provider", cfg.Notification.Provider),
			zap.String("transport", cfg.Notification.Transport),
		)
	}
	subscriber := eventapp.NewNotificationSubscriber(sender, inquiryRepo, customerRepo, orderRepo, userRepo, reportService, log)
	subscriber.Register(eventBus)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	sched := scheduler.New(scheduler.Config{JobTimeout: cfg.Scheduler.JobTimeout}, log, metrics)
	if err := registerJobs(sched, cfg.Scheduler, jobDeps{
		inquiries: inquiryService,
		orders:    orderService,
		products:  productRepo,
		metrics:   metrics,
		log:       log,
	}); err != nil {
		log.Fatal("Failed to register scheduled jobs", zap.Error(err))
	}
	if cfg.Scheduler.Enabled {
		sched.Start()
		defer func() {
			if err := sched.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		log.Info("Scheduler started", zap.Strings("jobs", sched.Jobs()))
	}

	// Initialize HTTP handlers
	reportHandler := handler.NewReportHandler(reportService)
	reportHandler.SetJobRunner(sched)

	checks := map[string]handler.Pinger{"database": db}
	if cacheBackend.Client != nil {
		checks["redis"] = pingFunc(func(ctx context.Context) error {
			return cacheBackend.Client.Ping(ctx).Err()
		})
	}

	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Customer: handler.NewCustomerHandler(customerService),
		Product:  handler.NewProductHandler(productService, imageService),
		Order:    handler.NewOrderHandler(orderService),
		Inquiry:  handler.NewInquiryHandler(inquiryService),
		Report:   reportHandler,
		System:   handler.NewSystemHandler(version, checks, metrics.Handler()),
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

	// Middleware order: request id, panic recovery, access log, metrics,
	// security headers, tracing, CORS, body limit, global rate limit.
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.Env == "production"
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(metrics),
		middleware.SecureWithConfig(security),
	)
	if tracer.Enabled() {
		engine.Use(middleware.Tracing(cfg.App.Name)...)
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	var limiters []*middleware.RateLimiter
	newLimiter := func(n int, window time.Duration) gin.HandlerFunc {
		l := middleware.NewRateLimiter(n, window)
		limiters = append(limiters, l)
		return middleware.RateLimit(l)
	}
	defer func() {
		for _, l := range limiters {
			l.Close()
		}
	}()

	if cfg.HTTP.RateLimitEnabled {
		engine.Use(newLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	guards := router.Guards{
		Authenticate: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		PublicLimit: newLimiter(cfg.HTTP.PublicRateLimitRequests, cfg.HTTP.PublicRateLimitWindow),
		AuthLimit:   newLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow),
		UploadLimit: middleware.BodyLimit(cfg.HTTP.MaxUploadSize),
	}

	engine.Use(middleware.JSONBodyLimit(cfg.HTTP.MaxBodySize))

	router.Mount(engine, handlers, guards)

	if local, ok := store.(*storage.LocalStorage); ok {
		engine.Static(staticPath(cfg.Storage.PublicBaseURL), local.Root())
	}

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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// pingFunc adapts a function to handler.Pinger
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// staticPath returns the URL path local files are served under. A full
// public URL (CDN or proxy) keeps only its path.
func staticPath(publicBaseURL string) string {
	u, err := url.Parse(publicBaseURL)
	if err != nil || u.Path == "" {
		return "/uploads"
	}
	return u.Path
}
