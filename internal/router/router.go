package router

import (
	"database/sql"

	"gnexgym_backend/internal/aiplans"
	"gnexgym_backend/internal/config"
	"gnexgym_backend/internal/handlers"
	"gnexgym_backend/internal/repositories"
	"gnexgym_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg *config.Config) {
	// Initialize Repositories
	memberRepo := repositories.NewMemberRepository(db)
	walkinRepo := repositories.NewWalkinRepository(db)
	checkinRepo := repositories.NewCheckinRepository(db)
	planRepo := repositories.NewPricePlanRepository(db)
	classRepo := repositories.NewClassRepository(db)
	productRepo := repositories.NewProductRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)

	// Initialize Services
	memberService := services.NewMemberService(memberRepo, planRepo, db)
	walkinService := services.NewWalkinService(walkinRepo, memberRepo, db)
	checkinService := services.NewCheckinService(checkinRepo, memberRepo, walkinRepo, planRepo, productRepo, memberService, db)
	planService := services.NewPricePlanService(planRepo, db)
	classService := services.NewClassService(classRepo, db)
	productService := services.NewProductService(productRepo, db)
	taskService := services.NewTaskService(taskRepo, db)
	settingsService := services.NewSettingsService(settingsRepo, db)
	planGenerator := aiplans.NewGenerator(aiplans.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL))

	// Initialize Handlers
	memberHandler := handlers.NewMemberHandler(memberService)
	walkinHandler := handlers.NewWalkinHandler(walkinService)
	checkinHandler := handlers.NewCheckinHandler(checkinService)
	planHandler := handlers.NewPricePlanHandler(planService)
	classHandler := handlers.NewClassHandler(classService)
	productHandler := handlers.NewProductHandler(productService)
	taskHandler := handlers.NewTaskHandler(taskService, settingsService)
	aiPlanHandler := handlers.NewAIPlanHandler(planGenerator)

	apiV1 := engine.Group("/api/v1")
	{
		SetupMemberRoutes(apiV1, memberHandler)
		SetupWalkinRoutes(apiV1, walkinHandler)
		SetupCheckinRoutes(apiV1, checkinHandler)
		SetupPricePlanRoutes(apiV1, planHandler)
		SetupClassRoutes(apiV1, classHandler)
		SetupProductRoutes(apiV1, productHandler)
		SetupTaskRoutes(apiV1, taskHandler)
		SetupAIPlanRoutes(apiV1, aiPlanHandler)
	}
}
