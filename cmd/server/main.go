package main

import (
	"log"
	"net/http"
	"time"

	"clicker-backend/internal/config"
	"clicker-backend/internal/database"
	"clicker-backend/internal/handlers"
	"clicker-backend/internal/middleware"
	"clicker-backend/internal/services"
	"clicker-backend/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Click Counter API
// @version         1.0
// @description     Real-time multiplayer click counter: REST auth plus a WebSocket channel for presses and live leaderboard updates
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()

	authService := services.NewAuthService(db, cfg.JWTSecret)
	counterService := services.NewCounterService(db)
	limiter := services.NewRateLimiter(services.PressWindow, services.PressCap, clockwork.NewRealClock())
	coordinator := services.NewPressCoordinator(counterService, limiter, hub)
	resolver := middleware.NewSessionResolver(authService)

	authHandler := handlers.NewAuthHandler(authService, resolver)
	statsHandler := handlers.NewStatsHandler(counterService, coordinator, resolver)
	wsHandler := handlers.NewWSHandler(hub, coordinator, resolver)

	// Disconnected clients leave limiter buckets behind only until the
	// next sweep.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.Prune(5 * time.Minute)
		}
	}()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws", wsHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authHandler.Me)
		}

		api.GET("/stats", statsHandler.GetStats)

		me := api.Group("/me")
		me.Use(middleware.JWTAuth(resolver))
		{
			me.PUT("/name", statsHandler.UpdateDisplayName)
		}
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
