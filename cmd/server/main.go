package main

import (
	"log/slog"
	"net/http"
	"os"

	"gamehub/backend/internal/config"
	"gamehub/backend/internal/database"
	"gamehub/backend/internal/giantbomb"
	"gamehub/backend/internal/handler"
	"gamehub/backend/internal/hub"
	"gamehub/backend/internal/logger"
	"gamehub/backend/internal/metrics"
	"gamehub/backend/internal/service"
	"gamehub/backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Swagger imports
	_ "gamehub/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Gamehub API
// @version         1.0
// @description     CRUD API for users, games, articles and reviews with consistent cross references.
// @host            localhost:8080
// @BasePath        /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	// Connect to the database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	events := hub.NewHub()
	games := giantbomb.NewClient(cfg.GiantBombURL, cfg.GiantBombAPIKey, cfg.GiantBombRatePerMinute)
	if !games.Configured() {
		log.Warn("GIANT_BOMB_API_KEY not set, random game import disabled")
	}
	svc := service.New(store.New(db), events, games, log)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.Middleware(log), metrics.Middleware())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	handler.New(svc, events, log).Register(router)

	addr := ":" + cfg.Port
	log.Info("server is running", "addr", addr, "swagger", "http://localhost"+addr+"/swagger/index.html")
	if err := router.Run(addr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
