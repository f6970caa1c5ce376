package handlers

import (
	"errors"
	"net/http"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/internal/services"
	"gnexgym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CheckinHandler holds the check-in service.
type CheckinHandler struct {
	checkinService services.CheckinService
}

// NewCheckinHandler creates a new CheckinHandler.
func NewCheckinHandler(cs services.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinService: cs}
}

// respondCheckinError maps check-in service errors to API responses. The
// check-in endpoints share one error vocabulary, so the mapping lives in one
// place instead of being repeated per handler.
func respondCheckinError(c *gin.Context, err error, action string) {
	utils.LogError(err, action)
	switch {
	case errors.Is(err, services.ErrCheckinNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Check-in record not found.", err.Error()))
	case errors.Is(err, services.ErrMemberNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
	case errors.Is(err, services.ErrWalkinNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Walk-in client not found.", err.Error()))
	case errors.Is(err, services.ErrAlreadyCheckedIn),
		errors.Is(err, services.ErrRecordClosed),
		errors.Is(err, services.ErrInvalidCheckinState),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrNoCoachPlan),
		errors.Is(err, services.ErrNoSessionsRemaining):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrDateFormat),
		errors.Is(err, services.ErrInvalidPaymentAmount),
		errors.Is(err, services.ErrDueDateRequired),
		errors.Is(err, services.ErrCancelReasonRequired),
		errors.Is(err, services.ErrPlanNotFound),
		errors.Is(err, services.ErrProductNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Check-in operation failed.", "Internal error"))
	}
}

// CreateCheckin handles opening a new check-in record.
func (h *CheckinHandler) CreateCheckin(c *gin.Context) {
	var req services.CreateCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateCheckin: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	rec, err := h.checkinService.Create(req)
	if err != nil {
		respondCheckinError(c, err, "CreateCheckin: Error from checkinService.Create")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// GetCheckins handles fetching check-in records with filters and pagination.
func (h *CheckinHandler) GetCheckins(c *gin.Context) {
	var filters models.CheckinFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters: "+err.Error(), err.Error()))
		return
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}

	records, totalCount, err := h.checkinService.List(filters)
	if err != nil {
		utils.LogError(err, "GetCheckins: Error from checkinService.List")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch check-in records.", "Internal error"))
		return
	}
	if records == nil {
		records = []models.CheckinRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      records,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetCheckinByID handles fetching a single check-in record.
func (h *CheckinHandler) GetCheckinByID(c *gin.Context) {
	rec, err := h.checkinService.GetByID(c.Param("id"))
	if err != nil {
		respondCheckinError(c, err, "GetCheckinByID: Error from checkinService.GetByID")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ConfirmCheckin handles confirming a pending check-in.
func (h *CheckinHandler) ConfirmCheckin(c *gin.Context) {
	var req services.ConfirmCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ConfirmCheckin: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	rec, err := h.checkinService.Confirm(c.Param("id"), req)
	if err != nil {
		respondCheckinError(c, err, "ConfirmCheckin: Error from checkinService.Confirm")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// CancelCheckin handles cancelling a record with a mandatory reason.
func (h *CheckinHandler) CancelCheckin(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "A cancellation reason is required.", err.Error()))
		return
	}
	rec, err := h.checkinService.Cancel(c.Param("id"), req.Reason)
	if err != nil {
		respondCheckinError(c, err, "CancelCheckin: Error from checkinService.Cancel")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// RequestCheckout handles flagging a record for checkout.
func (h *CheckinHandler) RequestCheckout(c *gin.Context) {
	ok, err := h.checkinService.RequestCheckout(c.Param("id"))
	if err != nil {
		respondCheckinError(c, err, "RequestCheckout: Error from checkinService.RequestCheckout")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requested": ok})
}

// ConfirmCheckout handles closing the visit.
func (h *CheckinHandler) ConfirmCheckout(c *gin.Context) {
	var req struct {
		BalanceDueDate *string `json:"balance_due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	rec, err := h.checkinService.ConfirmCheckout(c.Param("id"), req.BalanceDueDate)
	if err != nil {
		respondCheckinError(c, err, "ConfirmCheckout: Error from checkinService.ConfirmCheckout")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// CancelPendingCheckout handles reverting a requested checkout.
func (h *CheckinHandler) CancelPendingCheckout(c *gin.Context) {
	rec, err := h.checkinService.CancelPendingCheckout(c.Param("id"))
	if err != nil {
		respondCheckinError(c, err, "CancelPendingCheckout: Error from checkinService.CancelPendingCheckout")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// AddProductsToCheckin handles putting retail products on the tab.
func (h *CheckinHandler) AddProductsToCheckin(c *gin.Context) {
	var req struct {
		Items []services.TabProductRequest `json:"items" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	rec, err := h.checkinService.AddProducts(c.Param("id"), req.Items)
	if err != nil {
		respondCheckinError(c, err, "AddProductsToCheckin: Error from checkinService.AddProducts")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// AddPlansToCheckin handles putting price plan purchases on a member's tab.
func (h *CheckinHandler) AddPlansToCheckin(c *gin.Context) {
	var req struct {
		PlanIDs []int64 `json:"plan_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	rec, err := h.checkinService.AddPlansToTab(c.Param("id"), req.PlanIDs)
	if err != nil {
		respondCheckinError(c, err, "AddPlansToCheckin: Error from checkinService.AddPlansToTab")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// AddServicesToCheckin handles putting ad hoc services on a walk-in tab.
func (h *CheckinHandler) AddServicesToCheckin(c *gin.Context) {
	var req struct {
		Items []services.TabServiceRequest `json:"items" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	rec, err := h.checkinService.AddServicesToWalkin(c.Param("id"), req.Items)
	if err != nil {
		respondCheckinError(c, err, "AddServicesToCheckin: Error from checkinService.AddServicesToWalkin")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// RemoveCheckinItem handles taking one line item off the tab.
func (h *CheckinHandler) RemoveCheckinItem(c *gin.Context) {
	rec, err := h.checkinService.RemoveItem(c.Param("id"), c.Param("item_id"))
	if err != nil {
		respondCheckinError(c, err, "RemoveCheckinItem: Error from checkinService.RemoveItem")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// RecordCheckinPayment handles settling part or all of the balance.
func (h *CheckinHandler) RecordCheckinPayment(c *gin.Context) {
	var req services.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	rec, err := h.checkinService.RecordPayment(c.Param("id"), req)
	if err != nil {
		respondCheckinError(c, err, "RecordCheckinPayment: Error from checkinService.RecordPayment")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// AssignCheckinCoach handles assigning a coach to the visit.
func (h *CheckinHandler) AssignCheckinCoach(c *gin.Context) {
	var req struct {
		CoachName string `json:"coach_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "A coach name is required.", err.Error()))
		return
	}
	rec, err := h.checkinService.AssignCoach(c.Param("id"), req.CoachName)
	if err != nil {
		respondCheckinError(c, err, "AssignCheckinCoach: Error from checkinService.AssignCoach")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// CompleteCheckinSession handles the coach confirming the session on the
// day's record.
func (h *CheckinHandler) CompleteCheckinSession(c *gin.Context) {
	result, err := h.checkinService.CompleteSession(c.Param("id"))
	if err != nil {
		respondCheckinError(c, err, "CompleteCheckinSession: Error from checkinService.CompleteSession")
		return
	}
	c.JSON(http.StatusOK, result)
}
