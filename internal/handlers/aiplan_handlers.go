package handlers

import (
	"errors"
	"net/http"

	"gnexgym_backend/internal/aiplans"
	"gnexgym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AIPlanHandler holds the generative plan service.
type AIPlanHandler struct {
	generator *aiplans.Generator
}

// NewAIPlanHandler creates a new AIPlanHandler.
func NewAIPlanHandler(g *aiplans.Generator) *AIPlanHandler {
	return &AIPlanHandler{generator: g}
}

// GenerateWorkoutPlan handles generating a weekly training program.
func (h *AIPlanHandler) GenerateWorkoutPlan(c *gin.Context) {
	var req struct {
		Goal        string `json:"goal" binding:"required"`
		Level       string `json:"level"`
		DaysPerWeek int    `json:"days_per_week" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	plan, err := h.generator.GenerateWorkoutPlan(c.Request.Context(), req.Goal, req.Level, req.DaysPerWeek)
	if err != nil {
		utils.LogError(err, "GenerateWorkoutPlan: Error from generator.GenerateWorkoutPlan")
		if errors.Is(err, aiplans.ErrUpstream) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadGateway, utils.ErrCodeUpstreamFailed, "Plan generation service is unavailable.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Failed to generate workout plan.", err.Error()))
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GenerateDietPlan handles generating a weekly meal plan.
func (h *AIPlanHandler) GenerateDietPlan(c *gin.Context) {
	var req struct {
		Goal          string `json:"goal" binding:"required"`
		DailyCalories int    `json:"daily_calories" binding:"required"`
		Preference    string `json:"preference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	plan, err := h.generator.GenerateDietPlan(c.Request.Context(), req.Goal, req.DailyCalories, req.Preference)
	if err != nil {
		utils.LogError(err, "GenerateDietPlan: Error from generator.GenerateDietPlan")
		if errors.Is(err, aiplans.ErrUpstream) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadGateway, utils.ErrCodeUpstreamFailed, "Plan generation service is unavailable.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Failed to generate diet plan.", err.Error()))
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}
