package main

import (
	"log"
	"net/http"

	"gnexgym_backend/internal/config"
	"gnexgym_backend/internal/database"
	"gnexgym_backend/internal/router"
	"gnexgym_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize Logger
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	if err := database.InitDB(
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode,
		cfg.Database.SchemaPath,
	); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	utils.LogInfo("Database initialized", map[string]interface{}{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	})

	engine := gin.Default()
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.Setup(engine, database.GetDB(), cfg)

	utils.LogInfo("Starting server", map[string]interface{}{"port": cfg.Server.Port})
	if err := engine.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
