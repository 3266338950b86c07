package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/callstream/backend/config"
	"github.com/callstream/backend/internal/auth"
	"github.com/callstream/backend/internal/cache"
	"github.com/callstream/backend/internal/callsession"
	"github.com/callstream/backend/internal/database"
	"github.com/callstream/backend/internal/handlers"
	"github.com/callstream/backend/internal/middleware"
	"github.com/callstream/backend/internal/payment"
	"github.com/callstream/backend/internal/repository"
	"github.com/callstream/backend/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.RunMigrations(db.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Connect to Redis
	redis, err := cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Running without Redis - catalog caching and event fan-out stay in-process")
		redis = nil
	} else {
		defer redis.Close()
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	verifier := auth.NewStaticVerifier(cfg.Admin.Username, cfg.Admin.PasswordHash, cfg.Admin.Password)
	checkout := payment.NewCheckout(cfg.Payment.CheckoutBaseURL)
	grants := payment.NewGrantService(cfg.JWT.Secret, cfg.Payment.GrantTTL)

	// Initialize repositories
	videoRepo := repository.NewVideoRepository(db)
	callRepo := repository.NewCallRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Live call registry and WebSocket hub
	registry := callsession.NewRegistry()
	defer registry.Shutdown()

	hub := websocket.NewHub(redis)
	go hub.Run()
	wsHandler := websocket.NewHandler(hub, jwtService, grants, registry, callRepo, videoRepo, cfg.CORS.AllowedOrigins)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(verifier, jwtService, sessionRepo)
	planHandler := handlers.NewPlanHandler(videoRepo, checkout, redis)
	videoHandler := handlers.NewVideoHandler(videoRepo, redis, cfg.Upload.MaxBytes, cfg.Upload.ProbeTimeout)
	callHandler := handlers.NewCallHandler(videoRepo, callRepo, registry, hub, jwtService, grants, cfg.Call, cfg.Payment.RatePerMinute)
	paymentHandler := handlers.NewPaymentHandler(grants)
	statsHandler := handlers.NewStatsHandler(videoRepo, callRepo)

	// Initialize login rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.Admin.LoginRatePerMinute)
	rateLimiter.Cleanup()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes
	router.GET("/plans", planHandler.GetPlans)
	router.GET("/payment/return", paymentHandler.Return)
	router.POST("/calls", callHandler.StartCall)
	router.POST("/calls/:id/end", callHandler.EndCall)
	router.GET("/calls/:id", callHandler.GetCall)
	router.GET("/videos/:id/content", videoHandler.GetContent)
	router.POST("/auth/login", middleware.RateLimitMiddleware(rateLimiter), authHandler.Login)

	// WebSocket endpoints
	router.GET("/ws/calls/:id", wsHandler.HandleCallFeed)
	router.GET("/ws/admin", wsHandler.HandleAdminFeed)

	// Protected admin routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService, sessionRepo))
	{
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/session", authHandler.GetSession)

		api.GET("/stats", statsHandler.GetStats)

		api.GET("/videos", videoHandler.List)
		api.POST("/videos", videoHandler.Upload)
		api.PUT("/videos/:id/active", videoHandler.ToggleActive)
		api.PUT("/videos/:id/price", videoHandler.UpdatePrice)
		api.DELETE("/videos/:id", videoHandler.Delete)
	}

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Starting callstream server on %s (env: %s)", addr, cfg.Server.Env)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
