package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/adapter/ai/gemini"
	"github.com/arialabs/aria/internal/adapter/ai/openai"
	"github.com/arialabs/aria/internal/adapter/cache"
	"github.com/arialabs/aria/internal/adapter/http/fiber/handlers"
	"github.com/arialabs/aria/internal/adapter/http/fiber/middleware"
	"github.com/arialabs/aria/internal/adapter/queue"
	"github.com/arialabs/aria/internal/adapter/storage/postgres"
	"github.com/arialabs/aria/internal/adapter/vault"
	wsAdapter "github.com/arialabs/aria/internal/adapter/websocket"
	"github.com/arialabs/aria/internal/observability/telemetry"
	"github.com/arialabs/aria/internal/ports"
	"github.com/arialabs/aria/internal/service/auth"
	"github.com/arialabs/aria/internal/service/history"
	"github.com/arialabs/aria/internal/service/profile"
	"github.com/arialabs/aria/pkg/config"
)

const (
	serviceName    = "aria-assistant"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting Aria assistant backend",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Optional Vault secret overrides
	if cfg.Vault.Enabled {
		loadVaultSecrets(cfg, logger)
	}

	// 4. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgres.Close(db)

	if err := postgres.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// 6. Initialize Cache (Redis, in-memory fallback)
	appCache, err := cache.NewRedisCache(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		appCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer appCache.Close()

	// 7. Initialize Message Queue
	messageQueue := newMessageQueue(cfg, logger)
	if messageQueue != nil {
		defer messageQueue.Close()
	}

	// 8. Initialize Repositories
	userRepo := postgres.NewUserRepository(db, logger)
	historyRepo := postgres.NewHistoryRepository(db, logger)

	// 9. Initialize Services
	authService := auth.NewService(userRepo, appCache, cfg.JWT.Secret,
		cfg.JWT.AccessTokenDuration, cfg.JWT.RefreshTokenDuration, logger)

	hub := wsAdapter.NewHub(logger)
	profileService := profile.NewService(userRepo, appCache, hub, logger)

	historyService := history.NewService(historyRepo, messageQueue, logger)
	if err := historyService.StartWorker(); err != nil {
		logger.Fatal("Failed to start history worker", zap.Error(err))
	}

	// 10. Initialize Remote Interpreter
	interpreter, conversationalist := newInterpreter(cfg, logger)

	// 11. Initialize Voice Session Handler
	voiceHandler := wsAdapter.NewHandler(wsAdapter.HandlerConfig{
		Hub:         hub,
		Interpreter: interpreter,
		Chat:        conversationalist,
		Profiles:    profileService,
		RecorderFor: historyService.RecorderFor,
		Timeout:     cfg.Interpreter.Timeout,
		Greet:       cfg.Assistant.GreetOnConnect,
		Logger:      logger,
	})

	// 12. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		BodyLimit:             int(cfg.Uploads.MaxSizeBytes) + 1024*1024,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.CORS))
	if cfg.CircuitBreaker.Enabled {
		app.Use(middleware.CircuitBreaker(logger))
	}

	// Static avatars
	app.Static("/uploads", cfg.Uploads.Dir)

	// Health Check Endpoints
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		if err := sqlDB.Ping(); err != nil {
			return c.Status(503).SendString("Database not ready")
		}
		if err := appCache.Ping(); err != nil {
			return c.Status(503).SendString("Cache not ready")
		}
		return c.SendString("Ready")
	})

	// Metrics endpoint for Prometheus
	app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
		handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		handler(c.Context())
		return nil
	})

	// API v1 Routes
	v1 := app.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(authService, logger)
	v1.Post("/auth/login", authHandler.Login)
	v1.Post("/auth/register", authHandler.Register)
	v1.Post("/auth/refresh", authHandler.RefreshToken)
	v1.Post("/auth/logout", authHandler.Logout)

	authGuard := middleware.AuthRequired(authService)
	protected := v1.Group("", authGuard)

	protected.Get("/auth/me", authHandler.Me)

	userHandler := handlers.NewUserHandler(profileService, historyService,
		cfg.Uploads.Dir, cfg.Uploads.MaxSizeBytes, logger)
	protected.Get("/user/me", userHandler.Me)
	protected.Post("/user/assistant", userHandler.UpdateAssistant)
	protected.Post("/user/profile", userHandler.UpdateProfile)
	protected.Get("/user/command-history", userHandler.ListCommands)
	protected.Post("/user/command-history", userHandler.AddCommand)

	aiHandler := handlers.NewAIHandler(interpreter, conversationalist, logger)
	protected.Post("/ai/interpret", aiHandler.Interpret)
	protected.Post("/ai/chat", aiHandler.Chat)

	// WebSocket voice sessions
	wsAdapter.SetupRoutes(app, voiceHandler, authGuard)

	// 13. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 14. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// newMessageQueue builds the configured broker, or nil for the synchronous
// history path.
func newMessageQueue(cfg *config.Config, logger *zap.Logger) queue.MessageQueue {
	switch cfg.Queue.Provider {
	case "nats":
		mq, err := queue.NewNATSQueue(cfg.NATS, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		return mq
	case "rabbitmq":
		mq, err := queue.NewRabbitMQQueue(cfg.RabbitMQ, logger)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		return mq
	case "":
		logger.Info("No message queue configured, history writes are synchronous")
		return nil
	default:
		logger.Fatal("Unknown queue provider", zap.String("provider", cfg.Queue.Provider))
		return nil
	}
}

// newInterpreter builds the configured remote interpreter. With no provider
// the pipeline runs on the rule table alone.
func newInterpreter(cfg *config.Config, logger *zap.Logger) (ports.Interpreter, ports.Conversationalist) {
	switch cfg.Interpreter.Provider {
	case "openai":
		client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, logger)
		return client, client
	case "gemini":
		return gemini.NewLiveClient(cfg.Gemini.APIKey, cfg.Gemini.Model, logger), nil
	case "":
		logger.Info("No interpreter configured, using rule table only")
		return nil, nil
	default:
		logger.Fatal("Unknown interpreter provider", zap.String("provider", cfg.Interpreter.Provider))
		return nil, nil
	}
}

func loadVaultSecrets(cfg *config.Config, logger *zap.Logger) {
	sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token, cfg.Vault.Path)
	if err != nil {
		logger.Fatal("Failed to connect to Vault", zap.Error(err))
	}

	if v, err := sm.GetDatabaseURL(); err == nil && v != "" {
		cfg.Database.URL = v
	}
	if v, err := sm.GetJWTSecret(); err == nil && v != "" {
		cfg.JWT.Secret = v
	}
	if v, err := sm.GetOpenAIKey(); err == nil && v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v, err := sm.GetGeminiKey(); err == nil && v != "" {
		cfg.Gemini.APIKey = v
	}
	logger.Info("Vault secrets loaded")
}
