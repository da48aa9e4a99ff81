package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"autoassist/internal/config"
	"autoassist/internal/handlers"
	"autoassist/internal/middleware"
	"autoassist/internal/repositories/mongodb"
	"autoassist/internal/services"
	"autoassist/pkg/cache"
	"autoassist/pkg/database"
	"autoassist/pkg/logger"
	"autoassist/pkg/sms"
	"autoassist/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Connect to MongoDB
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	// Redis is an accelerator, not a dependency. The coordinator degrades
	// to store-only reads and best-effort locking when it is down.
	var cacheService services.CacheService
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
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
		cacheService = redisCache
		defer redisCache.Close()
	}

	// Repositories
	requestRepo := mongodb.NewBreakdownRequestRepository(db.Database, cacheService, cfg.Sync.RequestCacheTTL)
	employeeRepo := mongodb.NewEmployeeRepository(db.Database, cacheService)

	// SMS provider for customer notifications. A missing provider config
	// leaves notifications as wa.me links only.
	smsProvider := buildSMSProvider(cfg, appLogger)

	// Services
	notificationService := services.NewNotificationService(smsProvider, appLogger)
	requestService := services.NewRequestService(requestRepo, appLogger)
	employeeService := services.NewEmployeeService(employeeRepo, appLogger)
	assignmentService := services.NewAssignmentService(requestRepo, employeeRepo, cacheService, cfg.Sync.DriverLockTTL, appLogger)
	statusService := services.NewStatusService(requestRepo, notificationService, appLogger)

	// Dispatcher view: polls the full request set on the sync cadence and
	// serves dashboard reads from the local snapshot.
	dispatcherView := services.NewSyncPoller(requestRepo, services.RoleDispatcher, cfg.Sync.PollInterval, appLogger)
	if err := dispatcherView.Start(context.Background(), ""); err != nil {
		appLogger.Fatalf("Failed to start dispatcher view: %v", err)
	}
	defer dispatcherView.Stop()

	// Handlers
	breakdownHandler := handlers.NewBreakdownHandler(requestService, assignmentService, statusService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService, assignmentService)
	dashboardHandler := handlers.NewDashboardHandler(dispatcherView)

	// Initialize Gin router
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	// API routes
	v1 := router.Group("/api/v1")
	{
		routes.SetupBreakdownRoutes(v1, breakdownHandler)
		routes.SetupEmployeeRoutes(v1, employeeHandler)
		routes.SetupDashboardRoutes(v1, dashboardHandler)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := db.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": cfg.App.Version,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	appLogger.WithField("addr", addr).Info("Starting server")
	if err := http.ListenAndServe(addr, router); err != nil {
		appLogger.Fatalf("Server stopped: %v", err)
	}
}

func buildSMSProvider(cfg *config.Config, appLogger *logger.Logger) sms.SMSProvider {
	switch cfg.SMS.Provider {
	case "twilio":
		if cfg.SMS.Twilio.AccountSID == "" {
			appLogger.Warn("Twilio credentials missing, SMS notifications disabled")
			return nil
		}
		return sms.NewTwilioProvider(cfg.SMS.Twilio.AccountSID, cfg.SMS.Twilio.AuthToken, cfg.SMS.Twilio.FromNumber)
	case "sns":
		provider, err := sms.NewAWSSNSProvider(cfg.SMS.AWS.Region)
		if err != nil {
			appLogger.WithError(err).Warn("SNS provider unavailable, SMS notifications disabled")
			return nil
		}
		return provider
	default:
		appLogger.WithField("provider", cfg.SMS.Provider).Warn("Unknown SMS provider, SMS notifications disabled")
		return nil
	}
}
