package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fleetdesk/internal/config"
	"fleetdesk/internal/handlers"
	"fleetdesk/internal/middleware"
	"fleetdesk/internal/repositories/mongodb"
	"fleetdesk/internal/services"
	"fleetdesk/pkg/cache"
	"fleetdesk/pkg/database"
	"fleetdesk/pkg/email"
	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/sms"
	"fleetdesk/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	if err := database.EnsureIndexes(db.Database); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure indexes")
	}

	// Redis is optional; without it the repositories skip caching and the
	// sweep runs without the cross-instance lock.
	var redisCache services.CacheService
	rc, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Warn("Redis unavailable, continuing without cache")
	} else {
		redisCache = rc
		defer rc.Close()
	}

	smsProvider, err := buildSMSProvider(cfg.SMS)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize SMS provider")
	}

	emailProvider := email.NewSMTPProvider(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.FromEmail,
		cfg.SMTP.FromName,
	)

	// Repositories
	companyRepo := mongodb.NewCompanyRepository(db.Database, redisCache)
	driverRepo := mongodb.NewDriverRepository(db.Database, redisCache)
	vehicleRepo := mongodb.NewVehicleRepository(db.Database, redisCache)
	subscriberRepo := mongodb.NewSubscriberRepository(db.Database)
	planRepo := mongodb.NewPlanRepository(db.Database)
	notificationRepo := mongodb.NewNotificationRepository(db.Database)

	// Services
	classifier := services.NewClassifier(
		cfg.Compliance.ExpiryWarningDays,
		cfg.Compliance.GracePeriodDays,
		cfg.Compliance.DeactivateAfterDays,
	)
	notificationService := services.NewNotificationService(emailProvider, smsProvider, notificationRepo, appLogger)
	entitlementService := services.NewEntitlementService(companyRepo, subscriberRepo, planRepo, driverRepo, vehicleRepo, appLogger)
	fleetService := services.NewFleetService(companyRepo, driverRepo, vehicleRepo, entitlementService, appLogger)
	subscriptionService := services.NewSubscriptionService(subscriberRepo, planRepo, appLogger)
	sweepService := services.NewComplianceSweepService(
		companyRepo,
		driverRepo,
		vehicleRepo,
		notificationService,
		classifier,
		redisCache,
		appLogger,
		services.SweepOptions{
			CompanyTimeout: cfg.Compliance.CompanyTimeout,
			MaxConcurrent:  cfg.Compliance.MaxConcurrentSweeps,
		},
	)

	// Handlers
	companyHandler := handlers.NewCompanyHandler(companyRepo, notificationRepo, fleetService)
	fleetHandler := handlers.NewFleetHandler(fleetService, driverRepo, vehicleRepo)
	complianceHandler := handlers.NewComplianceHandler(sweepService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, entitlementService)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(appLogger))

	v1 := router.Group("/api/v1")
	{
		routes.SetupCompanyRoutes(v1, companyHandler, cfg.Security.JWTSecret)
		routes.SetupFleetRoutes(v1, fleetHandler, cfg.Security.JWTSecret)
		routes.SetupComplianceRoutes(v1, complianceHandler, cfg.Security.JWTSecret)
		routes.SetupSubscriptionRoutes(v1, subscriptionHandler, cfg.Security.JWTSecret)
	}

	router.GET("/health", func(c *gin.Context) {
		status := gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		}
		if err := db.Ping(); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
		}
		c.JSON(http.StatusOK, status)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Compliance.SweepEnabled {
		go runSweepScheduler(ctx, sweepService, cfg.Compliance.SweepInterval, appLogger)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("port", cfg.App.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Graceful shutdown failed")
	}
}

// runSweepScheduler runs the compliance sweep on a fixed interval until the
// context is cancelled. An overlapping manual trigger is rejected by the
// sweep's redis lock, not here.
func runSweepScheduler(ctx context.Context, sweep services.ComplianceSweepService, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.WithField("interval", interval.String()).Info("Compliance sweep scheduler started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Compliance sweep scheduler stopped")
			return
		case <-ticker.C:
			if _, err := sweep.RunSweep(ctx, time.Now()); err != nil {
				log.WithError(err).Warn("Scheduled compliance sweep failed")
			}
		}
	}
}

func buildSMSProvider(cfg *config.SMSConfig) (sms.SMSProvider, error) {
	switch cfg.Provider {
	case "sns":
		return sms.NewAWSSNSProvider(cfg.AWS.Region)
	case "twilio", "":
		return sms.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber), nil
	default:
		return nil, fmt.Errorf("unknown SMS provider %q", cfg.Provider)
	}
}
