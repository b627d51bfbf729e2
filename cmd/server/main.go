package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"patternhub/internal/config"
	"patternhub/internal/database"
	"patternhub/internal/handlers"
	"patternhub/internal/logging"
	"patternhub/internal/middleware"
	"patternhub/internal/models"
	"patternhub/internal/services"
	"patternhub/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting PatternHub Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Patterns: %s)", cfg.Port, cfg.PatternsPath)

	// Initialize SQLite usage analytics database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to open analytics database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize analytics database: %v", err)
	}

	// Load the pattern catalog
	patternStore, err := store.New(cfg.PatternsPath)
	if err != nil {
		log.Fatalf("❌ Failed to load pattern catalog: %v", err)
	}
	defer patternStore.Close()
	log.Printf("✅ Pattern catalog loaded (%d patterns)", patternStore.Count())

	// Initialize Redis service (optional - cross-instance refresh relay)
	var redisService *services.RedisService
	if cfg.RedisURL != "" {
		log.Println("🔗 Connecting to Redis...")
		redisService, err = services.NewRedisService(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (refresh relay disabled)", err)
			redisService = nil
		} else {
			log.Println("✅ Redis connected successfully")
		}
	} else {
		log.Println("⚠️ REDIS_URL not set - refresh relay disabled")
	}

	// Initialize services
	connManager := services.NewConnectionManager()
	analyticsService := services.NewAnalyticsService(db)
	catalogService := services.NewCatalogService(patternStore, analyticsService)

	// Initialize Prometheus metrics
	services.InitMetrics(connManager)
	log.Println("✅ Prometheus metrics initialized")

	// Initialize PubSub service (requires Redis)
	var pubsubService *services.PubSubService
	if redisService != nil {
		instanceID := fmt.Sprintf("instance-%d", time.Now().UnixNano()%10000)
		pubsubService = services.NewPubSubService(redisService, instanceID)
		catalogService.SetPubSub(pubsubService)
		if err := pubsubService.Start(); err != nil {
			log.Printf("⚠️ Failed to start PubSub service: %v", err)
		} else {
			log.Printf("✅ PubSub service initialized (instance: %s)", instanceID)
		}
	}

	// Broadcast catalog reloads to connected WebSocket clients
	catalogService.SetOnRefresh(func(patterns int, version string) {
		connManager.Broadcast(models.ServerMessage{
			Type: "catalog_refreshed",
			Payload: fiber.Map{
				"patterns": patterns,
				"version":  version,
			},
		})
	})

	// Initialize scheduler service (periodic refresh + analytics pruning)
	var schedulerService *services.SchedulerService
	if cfg.RefreshInterval > 0 || cfg.AnalyticsRetention > 0 {
		schedulerService, err = services.NewSchedulerService(catalogService, analyticsService)
		if err != nil {
			log.Printf("⚠️ Failed to initialize scheduler: %v", err)
		} else if err := schedulerService.Start(cfg.RefreshInterval, cfg.AnalyticsRetention); err != nil {
			log.Printf("⚠️ Failed to start scheduler: %v", err)
		} else {
			log.Println("✅ Scheduler started successfully")
		}
	}

	// Watch the patterns file for edits and hot-reload the catalog
	if cfg.WatchPatterns {
		go patternStore.Watch(func(snap *store.Snapshot) {
			catalogService.NotifyFileReload()
		})
		log.Printf("👀 Watching %s for changes", cfg.PatternsPath)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "PatternHub v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB — search and generate payloads are small
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(middleware.TraceID())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("patternhub")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Load rate limiting configuration
	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, Public=%d/min, Generate=%d/min, WS=%d/min",
		rateLimitConfig.GlobalAPIMax,
		rateLimitConfig.PublicReadMax,
		rateLimitConfig.GenerateMax,
		rateLimitConfig.WebSocketMax,
	)

	// CORS configuration with environment-based origins
	allowedOrigins := cfg.AllowedOrigins
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,X-API-Key,X-Trace-Id",
		AllowCredentials: allowedOrigins != "*",
	}))
	log.Printf("🔒 [SECURITY] CORS allowed origins: %s", allowedOrigins)

	// Global API rate limiter - first line of DDoS defense
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))
	log.Println("🛡️  [RATE-LIMIT] Global API rate limiter enabled")

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(catalogService, connManager)
	patternHandler := handlers.NewPatternHandler(catalogService)
	statsHandler := handlers.NewStatsHandler(analyticsService)
	mcpHandler := handlers.NewMCPHandler(catalogService)
	wsHandler := handlers.NewWebSocketHandler(connManager, catalogService)

	// Endpoint-specific rate limiters
	publicReadLimiter := middleware.PublicReadRateLimiter(rateLimitConfig)
	generateLimiter := middleware.GenerateRateLimiter(rateLimitConfig)

	// Routes

	// Health check (public)
	app.Get("/health", healthHandler.Handle)

	// API routes
	api := app.Group("/api")
	{
		// Catalog browsing (public read-only with rate limiting)
		api.Get("/patterns", publicReadLimiter, patternHandler.List)
		api.Get("/patterns/categories", publicReadLimiter, patternHandler.Categories) // Must be before /:id
		api.Get("/patterns/:id", publicReadLimiter, patternHandler.Get)
		api.Get("/patterns/:id/doc", publicReadLimiter, patternHandler.Doc)

		// Search and snippet generation
		api.Post("/search", publicReadLimiter, patternHandler.Search)
		api.Post("/generate", generateLimiter, patternHandler.Generate)

		// MCP-flavored JSON-RPC endpoint for chat clients
		api.Post("/mcp", publicReadLimiter, mcpHandler.Handle)

		// Admin endpoints (API key protected)
		admin := api.Group("/admin", middleware.APIKeyMiddleware(cfg.AdminAPIKeys))
		admin.Post("/refresh", patternHandler.Refresh)
		admin.Get("/stats", statsHandler.Get)
	}

	// WebSocket route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	wsConnectionLimiter := middleware.WebSocketRateLimiter(rateLimitConfig)
	app.Use("/ws/catalog", wsConnectionLimiter)
	app.Get("/ws/catalog", websocket.New(wsHandler.Handle))

	// Start server
	log.Printf("✅ Server ready on port %s", cfg.Port)
	log.Printf("🔗 WebSocket endpoint: ws://localhost:%s/ws/catalog", cfg.Port)
	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)
	if schedulerService != nil {
		log.Printf("⏰ Scheduler enabled (refresh: %v, analytics retention: %v)", cfg.RefreshInterval, cfg.AnalyticsRetention)
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		// Stop scheduler first
		if schedulerService != nil {
			if err := schedulerService.Stop(); err != nil {
				log.Printf("⚠️ Error stopping scheduler: %v", err)
			}
		}

		// Stop PubSub service
		if pubsubService != nil {
			pubsubService.Stop()
		}

		// Close Redis connection
		if redisService != nil {
			if err := redisService.Close(); err != nil {
				log.Printf("⚠️ Error closing Redis: %v", err)
			}
		}

		// Shutdown Fiber
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
