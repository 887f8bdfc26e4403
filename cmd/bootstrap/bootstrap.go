package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-scheduling-api/config"
	deliveryHttp "clinic-scheduling-api/internal/delivery/http"
	"clinic-scheduling-api/internal/delivery/http/handler"
	"clinic-scheduling-api/internal/delivery/http/middleware"
	"clinic-scheduling-api/internal/infrastructure/cache"
	"clinic-scheduling-api/internal/infrastructure/database"
	"clinic-scheduling-api/internal/infrastructure/telemetry"
	"clinic-scheduling-api/internal/repository"
	"clinic-scheduling-api/internal/service"
	"clinic-scheduling-api/internal/usecase"
	"clinic-scheduling-api/pkg/jwt"
	"clinic-scheduling-api/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	slotLocks         *service.SlotLockService
	bookingLimiter    middleware.Limiter
	notifier          service.Notifier
	shutdownTelemetry func(context.Context) error
}

// Load reads configuration and prepares the shared logger.
func Load() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg.App.LogLevel)
	log.Info("Configuration loaded successfully")
	return cfg, log, nil
}

// New creates a new App instance with all dependencies initialized
func New(ctx context.Context) (*App, error) {
	cfg, log, err := Load()
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Log: log}

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	app.shutdownTelemetry = shutdown

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.DB = db

	// Redis is optional; without it the availability cache and limiter stay in process.
	if cfg.Redis.RedisEnabled() {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.RedisClient = redisClient
	}

	if err := app.initializeServer(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

// initializeServer wires repositories, usecases and handlers into the HTTP server
func (app *App) initializeServer() error {
	cfg, log, db := app.Config, app.Log, app.DB

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Initialize repositories
	appointmentRepo := repository.NewAppointmentRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	providerDirectory := repository.NewProviderDirectory(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	availabilityCache := service.NewNoopAvailabilityCache()
	if app.RedisClient != nil {
		availabilityCache = service.NewRedisAvailabilityCache(app.RedisClient, log, cfg.Redis.CacheTTL)
	}

	app.notifier = service.NewNoopNotifier()
	if brokers := service.SplitBrokers(cfg.Kafka.Brokers); len(brokers) > 0 {
		app.notifier = service.NewKafkaNotifier(brokers, cfg.Kafka.Topic, cfg.Kafka.WriteTimeout, log)
		log.Infof("Publishing appointment events to Kafka topic %s", cfg.Kafka.Topic)
	}

	app.slotLocks = service.NewSlotLockService(log, cfg.Scheduling.LockIdleTTL)
	auditService := service.NewAuditService(log, auditLogRepo)

	if cfg.RateLimit.BookingsPerSecond > 0 {
		if app.RedisClient != nil {
			app.bookingLimiter = middleware.NewRedisLimiter(app.RedisClient, cfg.RateLimit.BookingsPerSecond, cfg.RateLimit.Burst)
		} else {
			app.bookingLimiter = middleware.NewMemoryLimiter(cfg.RateLimit.BookingsPerSecond, cfg.RateLimit.Burst)
		}
	}

	// Initialize usecases
	availabilityStore := usecase.NewAvailabilityStore(log, availabilityRepo, availabilityCache, cfg.Scheduling.DefaultTimezone)
	schedulingUsecase := usecase.NewSchedulingUsecase(
		log, cfg.Scheduling, appointmentRepo, providerDirectory, availabilityStore,
		app.slotLocks, auditService, app.notifier,
	)
	availabilityUsecase := usecase.NewAvailabilityUsecase(log, availabilityStore, providerDirectory, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo)

	// Initialize handlers
	slotHandler := handler.NewSlotHandler(schedulingUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(schedulingUsecase, customValidator)
	providerHandler := handler.NewProviderHandler(schedulingUsecase, availabilityUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, app.RedisClient, cfg.JWT.RequireSession, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.AllowedOrigins)

	router := deliveryHttp.NewRouter(
		log,
		slotHandler,
		appointmentHandler,
		providerHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		app.bookingLimiter,
		sqlDB,
	)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Handler(cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or a signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			app.Close()
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	app.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()
	app.Log.Info("Server shutdown complete")
	return nil
}

// Close releases background workers and connections. Safe on a partially built App.
func (app *App) Close() {
	if app.slotLocks != nil {
		app.slotLocks.Stop()
	}

	if stopper, ok := app.bookingLimiter.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	if app.notifier != nil {
		if err := app.notifier.Close(); err != nil {
			app.Log.Warnf("Failed to close notifier: %+v", err)
		}
	}

	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}

	if app.shutdownTelemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.shutdownTelemetry(ctx); err != nil {
			app.Log.Warnf("Failed to flush telemetry: %+v", err)
		}
	}
}
