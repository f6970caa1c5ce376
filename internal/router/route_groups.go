package router

import (
	"gnexgym_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupMemberRoutes sets up the member ledger routes.
func SetupMemberRoutes(apiGroup *gin.RouterGroup, memberHandler *handlers.MemberHandler) {
	memberRoutes := apiGroup.Group("/members")
	{
		memberRoutes.POST("", memberHandler.EnrollMember)
		memberRoutes.GET("", memberHandler.GetMembers)
		memberRoutes.GET("/export/csv", memberHandler.ExportMembersCSV)
		memberRoutes.GET("/export/excel", memberHandler.ExportMembersExcel)
		memberRoutes.POST("/import/csv", memberHandler.ImportMembersCSV)
		memberRoutes.GET("/by-gym-number/:gym_number", memberHandler.GetMemberByGymNumber)
		memberRoutes.GET("/:id", memberHandler.GetMemberByID)
		memberRoutes.PUT("/:id", memberHandler.UpdateMember)
		memberRoutes.DELETE("/:id", memberHandler.DeleteMember)
		memberRoutes.POST("/:id/plans", memberHandler.ApplyPlans)
		memberRoutes.POST("/:id/sessions/use", memberHandler.UseSession)
		memberRoutes.POST("/:id/sessions/complete", memberHandler.MarkSessionComplete)
		memberRoutes.GET("/:id/history", memberHandler.GetMemberHistory)
		memberRoutes.GET("/:id/status", memberHandler.GetMemberStatus)
	}
}

// SetupWalkinRoutes sets up the walk-in client routes.
func SetupWalkinRoutes(apiGroup *gin.RouterGroup, walkinHandler *handlers.WalkinHandler) {
	walkinRoutes := apiGroup.Group("/walkins")
	{
		walkinRoutes.POST("", walkinHandler.CreateWalkin)
		walkinRoutes.GET("", walkinHandler.GetWalkins)
		walkinRoutes.GET("/:id", walkinHandler.GetWalkinByID)
		walkinRoutes.PUT("/:id", walkinHandler.UpdateWalkin)
		walkinRoutes.DELETE("/:id", walkinHandler.DeleteWalkin)
		walkinRoutes.POST("/:id/sessions/use", walkinHandler.UseWalkinSession)
		walkinRoutes.POST("/:id/convert", walkinHandler.ConvertWalkinToMember)
		walkinRoutes.GET("/:id/history", walkinHandler.GetWalkinHistory)
	}
}

// SetupCheckinRoutes sets up the check-in record routes.
func SetupCheckinRoutes(apiGroup *gin.RouterGroup, checkinHandler *handlers.CheckinHandler) {
	checkinRoutes := apiGroup.Group("/checkins")
	{
		checkinRoutes.POST("", checkinHandler.CreateCheckin)
		checkinRoutes.GET("", checkinHandler.GetCheckins)
		checkinRoutes.GET("/:id", checkinHandler.GetCheckinByID)
		checkinRoutes.POST("/:id/confirm", checkinHandler.ConfirmCheckin)
		checkinRoutes.POST("/:id/cancel", checkinHandler.CancelCheckin)
		checkinRoutes.POST("/:id/checkout/request", checkinHandler.RequestCheckout)
		checkinRoutes.POST("/:id/checkout/confirm", checkinHandler.ConfirmCheckout)
		checkinRoutes.POST("/:id/checkout/cancel", checkinHandler.CancelPendingCheckout)
		checkinRoutes.POST("/:id/products", checkinHandler.AddProductsToCheckin)
		checkinRoutes.POST("/:id/plans", checkinHandler.AddPlansToCheckin)
		checkinRoutes.POST("/:id/services", checkinHandler.AddServicesToCheckin)
		checkinRoutes.DELETE("/:id/items/:item_id", checkinHandler.RemoveCheckinItem)
		checkinRoutes.POST("/:id/payments", checkinHandler.RecordCheckinPayment)
		checkinRoutes.POST("/:id/coach", checkinHandler.AssignCheckinCoach)
		checkinRoutes.POST("/:id/session/complete", checkinHandler.CompleteCheckinSession)
	}
}

// SetupPricePlanRoutes sets up the price plan catalog routes.
func SetupPricePlanRoutes(apiGroup *gin.RouterGroup, planHandler *handlers.PricePlanHandler) {
	planRoutes := apiGroup.Group("/price-plans")
	{
		planRoutes.POST("", planHandler.CreatePricePlan)
		planRoutes.GET("", planHandler.GetPricePlans)
		planRoutes.GET("/:id", planHandler.GetPricePlanByID)
		planRoutes.PUT("/:id", planHandler.UpdatePricePlan)
		planRoutes.DELETE("/:id", planHandler.DeletePricePlan)
	}
}

// SetupClassRoutes sets up the class and attendance routes.
func SetupClassRoutes(apiGroup *gin.RouterGroup, classHandler *handlers.ClassHandler) {
	classRoutes := apiGroup.Group("/classes")
	{
		classRoutes.POST("", classHandler.CreateClass)
		classRoutes.GET("", classHandler.GetClasses)
		classRoutes.GET("/:id", classHandler.GetClassByID)
		classRoutes.PUT("/:id", classHandler.UpdateClass)
		classRoutes.DELETE("/:id", classHandler.DeleteClass)
		classRoutes.POST("/:id/attendance", classHandler.MarkAttendance)
		classRoutes.GET("/:id/attendance", classHandler.GetAttendance)
	}
}

// SetupProductRoutes sets up the retail product routes.
func SetupProductRoutes(apiGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	productRoutes := apiGroup.Group("/products")
	{
		productRoutes.POST("", productHandler.CreateProduct)
		productRoutes.GET("", productHandler.GetProducts)
		productRoutes.GET("/:id", productHandler.GetProductByID)
		productRoutes.PUT("/:id", productHandler.UpdateProduct)
		productRoutes.DELETE("/:id", productHandler.DeleteProduct)
	}
}

// SetupTaskRoutes sets up the staff task and settings routes.
func SetupTaskRoutes(apiGroup *gin.RouterGroup, taskHandler *handlers.TaskHandler) {
	taskRoutes := apiGroup.Group("/tasks")
	{
		taskRoutes.POST("", taskHandler.CreateTask)
		taskRoutes.GET("", taskHandler.GetTasks)
		taskRoutes.PUT("/:id", taskHandler.UpdateTask)
		taskRoutes.DELETE("/:id", taskHandler.DeleteTask)
	}

	settingsRoutes := apiGroup.Group("/settings")
	{
		settingsRoutes.GET("/free-pass-code", taskHandler.GetFreePassCode)
		settingsRoutes.PUT("/free-pass-code", taskHandler.SetFreePassCode)
		settingsRoutes.POST("/free-pass-code/verify", taskHandler.VerifyFreePassCode)
	}
}

// SetupAIPlanRoutes sets up the generative plan routes.
func SetupAIPlanRoutes(apiGroup *gin.RouterGroup, aiPlanHandler *handlers.AIPlanHandler) {
	aiRoutes := apiGroup.Group("/ai-plans")
	{
		aiRoutes.POST("/workout", aiPlanHandler.GenerateWorkoutPlan)
		aiRoutes.POST("/diet", aiPlanHandler.GenerateDietPlan)
	}
}
