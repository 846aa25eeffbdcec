// main.go - F1 card collection API server
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"f1cards/cardgen"
	"f1cards/config"
	"f1cards/database"
	"f1cards/handlers"
	"f1cards/middleware"
	"f1cards/services"
	"f1cards/storage"
	"f1cards/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.Load()
	logger := utils.InitLogger(cfg.LogLevel, cfg.LogFile)
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid_config", zap.Error(err))
	}
	utils.InitMetrics()

	ctx := context.Background()

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		logger.Fatal("database_init_failed", zap.Error(err))
	}
	defer func() { _ = database.CloseDB() }()
	repo := storage.NewGorm(database.GetDB())

	var states storage.StateStore = repo
	if cfg.RedisAddr != "" {
		client, err := storage.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis_unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			states = storage.NewCachedStateStore(repo, client, cfg.RedisTTL, logger)
			logger.Info("redis_cache_enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.RedisTTL))
		}
	}

	tables := cardgen.DefaultTables()
	if cfg.CardTablesPath != "" {
		loaded, err := cardgen.LoadTables(cfg.CardTablesPath)
		if err != nil {
			logger.Fatal("card_tables_invalid", zap.String("path", cfg.CardTablesPath), zap.Error(err))
		}
		tables = loaded
		logger.Info("card_tables_loaded", zap.String("path", cfg.CardTablesPath))
	}

	loc, err := time.LoadLocation(cfg.DailyResetTZ)
	if err != nil {
		logger.Fatal("invalid_timezone", zap.String("tz", cfg.DailyResetTZ), zap.Error(err))
	}
	engine, err := services.BuildEngine(ctx, repo, tables, loc, logger)
	if err != nil {
		logger.Fatal("engine_init_failed", zap.Error(err))
	}

	notifier := services.NewNotifier(logger)
	gameService := services.NewGameService(states, repo, repo, engine, notifier, logger, cfg.StartingCoins)
	marketService := services.NewMarketService(states, repo, repo, engine, notifier, logger)
	userService := services.NewUserService(repo, gameService, cfg.JWTSecret, cfg.JWTTTL, logger)
	handlers.Init(userService, gameService, marketService, notifier)
	middleware.InitAuth(cfg.JWTSecret)

	// Initialize the daily reset worker
	services.InitDailyResetService(engine.Tracker(), notifier, marketService, logger)
	services.GetDailyResetService().Start()
	defer services.GetDailyResetService().Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler(cfg.IsProduction()),
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(middleware.RequestLogger())
	app.Use(recover.New())

	origins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: !strings.Contains(origins, "*"),
	}))

	var generalLimiter, authLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		stop := make(chan struct{})
		defer close(stop)
		generalLimiter = middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
		authLimiter = middleware.NewRateLimiter(cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow)
		generalLimiter.StartSweeper(10*time.Minute, stop)
		authLimiter.StartSweeper(10*time.Minute, stop)
	}

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   version,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.SetupRoutes(app, generalLimiter, authLimiter)

	go func() {
		logger.Info("http_server_starting",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.AppEnv),
			zap.String("db", string(cfg.DBDriver)),
			zap.Strings("origins", cfg.AllowedOrigins))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("http_server_failed", zap.Error(err))
		}
	}()

	sig, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	<-sig.Done()

	logger.Info("shutting_down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("http_shutdown_failed", zap.Error(err))
	}
}

func customErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		// Don't expose internal errors in production
		if production && code == 500 {
			message = "An error occurred. Please try again later."
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}
