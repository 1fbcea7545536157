// Package main is the entry point for the application.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"log"
	"time"

	"bastion/internal/config"
	"bastion/internal/repositories"
	"bastion/internal/routes"
	"bastion/internal/services/rerank"
	"bastion/internal/services/riskcache"
	"bastion/internal/services/scoring"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// main initializes and starts the HTTP server.
// It performs the following setup:
// - Loads configuration
// - Initializes the record store (PostgreSQL) and redis row cache
// - Builds the scoring engine and risk score cache
// - Starts the cache warm-up as a detached background task
// - Configures routes and starts the HTTP server
func main() {
	// Load environment variables
	config.LoadEnv()

	// Initialize databases (PostgreSQL + Redis)
	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := repositories.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	maxIdleConns := config.GetIntEnv("DB_MAX_IDLE_CONNS", 10)
	maxOpenConns := config.GetIntEnv("DB_MAX_OPEN_CONNS", 100)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(config.GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour))
	sqlDB.SetConnMaxIdleTime(config.GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute))

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("✅ Successfully connected to database with connection pooling")

	// Clear the redis row cache on startup so stale rows never survive a
	// schema or scoring change.
	if repositories.CacheService != nil {
		if err := repositories.CacheService.FlushAll(context.Background()); err != nil {
			log.Printf("⚠️ Failed to flush Redis cache: %v", err)
		} else {
			log.Println("✅ Redis cache flushed on startup")
		}
	}

	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Printf("⚠️ Failed to close database connection: %v", err)
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("⚠️ Failed to close Redis connection: %v", err)
			}
		}
	}()

	// Build the scoring engine and risk score cache
	reranker := rerank.NewClient(rerank.Config{
		Endpoint: config.GetEnv("RERANK_API_URL", rerank.DefaultEndpoint),
		APIKey:   config.GetEnv("RERANK_API_KEY", ""),
		Model:    config.GetEnv("RERANK_MODEL", rerank.DefaultModel),
		Timeout:  config.GetDurationEnv("RERANK_TIMEOUT", rerank.DefaultTimeout),
	})
	calculator := scoring.NewCalculator(reranker, scoring.Options{})

	userRepo := repositories.NewUserRepository(repositories.DB, repositories.CacheService)
	claimRepo := repositories.NewClaimRepository(repositories.DB, repositories.CacheService)
	riskCache := riskcache.NewService(userRepo, claimRepo, calculator, riskcache.Options{
		BatchSize:  config.GetIntEnv("RISK_CACHE_BATCH_SIZE", 5),
		BatchPause: config.GetDurationEnv("RISK_CACHE_BATCH_PAUSE", 100*time.Millisecond),
	})

	// Warm the cache in the background; it must not gate server readiness.
	go riskCache.Initialize(context.Background())

	// Create Fiber app
	app := fiber.New()

	// CORS middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Use("/api/v1/customers/register", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	// Routes
	routes.SetupRoutes(app, riskCache, calculator)

	// Start server
	log.Fatal(app.Listen(":" + config.GetEnv("PORT", "8080")))
}
