package handlers

import (
	"errors"
	"net/http"

	"gnexgym_backend/internal/services"
	"gnexgym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PricePlanHandler holds the price plan service.
type PricePlanHandler struct {
	planService services.PricePlanService
}

// NewPricePlanHandler creates a new PricePlanHandler.
func NewPricePlanHandler(ps services.PricePlanService) *PricePlanHandler {
	return &PricePlanHandler{planService: ps}
}

// CreatePricePlan handles adding a catalog entry.
func (h *PricePlanHandler) CreatePricePlan(c *gin.Context) {
	var req services.CreatePricePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreatePricePlan: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	plan, err := h.planService.Create(req)
	if err != nil {
		utils.LogError(err, "CreatePricePlan: Error from planService.Create")
		if errors.Is(err, services.ErrPlanNameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "A price plan with this name already exists.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create price plan.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetPricePlans handles listing the catalog, optionally filtered by type.
func (h *PricePlanHandler) GetPricePlans(c *gin.Context) {
	var planType *string
	if t := c.Query("type"); t != "" {
		planType = &t
	}

	plans, err := h.planService.List(planType)
	if err != nil {
		utils.LogError(err, "GetPricePlans: Error from planService.List")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch price plans.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetPricePlanByID handles fetching a single catalog entry.
func (h *PricePlanHandler) GetPricePlanByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	plan, err := h.planService.GetByID(id)
	if err != nil {
		utils.LogError(err, "GetPricePlanByID: Error from planService.GetByID")
		if errors.Is(err, services.ErrPlanNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Price plan not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch price plan.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}

// UpdatePricePlan handles editing a catalog entry.
func (h *PricePlanHandler) UpdatePricePlan(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	var req services.UpdatePricePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdatePricePlan: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	plan, err := h.planService.Update(id, req)
	if err != nil {
		utils.LogError(err, "UpdatePricePlan: Error from planService.Update")
		if errors.Is(err, services.ErrPlanNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Price plan not found.", err.Error()))
		} else if errors.Is(err, services.ErrPlanNameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "A price plan with this name already exists.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update price plan.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeletePricePlan handles removing a catalog entry.
func (h *PricePlanHandler) DeletePricePlan(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	if err := h.planService.Delete(id); err != nil {
		utils.LogError(err, "DeletePricePlan: Error from planService.Delete")
		if errors.Is(err, services.ErrPlanNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Price plan not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete price plan.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}
