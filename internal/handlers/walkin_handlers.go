package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/internal/services"
	"gnexgym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// WalkinHandler holds the walk-in client service.
type WalkinHandler struct {
	walkinService services.WalkinService
}

// NewWalkinHandler creates a new WalkinHandler.
func NewWalkinHandler(ws services.WalkinService) *WalkinHandler {
	return &WalkinHandler{walkinService: ws}
}

// CreateWalkin handles registering a new walk-in client.
func (h *WalkinHandler) CreateWalkin(c *gin.Context) {
	var req services.CreateWalkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateWalkin: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	client, err := h.walkinService.Create(req)
	if err != nil {
		utils.LogError(err, "CreateWalkin: Error from walkinService.Create")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create walk-in client.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetWalkins handles fetching walk-in clients with search and pagination.
func (h *WalkinHandler) GetWalkins(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	var search *string
	if s := c.Query("search"); s != "" {
		search = &s
	}

	clients, totalCount, err := h.walkinService.List(search, page, pageSize)
	if err != nil {
		utils.LogError(err, "GetWalkins: Error from walkinService.List")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch walk-in clients.", "Internal error"))
		return
	}
	if clients == nil {
		clients = []models.WalkinClient{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      clients,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetWalkinByID handles fetching a single walk-in client.
func (h *WalkinHandler) GetWalkinByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	client, err := h.walkinService.GetByID(id)
	if err != nil {
		utils.LogError(err, "GetWalkinByID: Error from walkinService.GetByID")
		if errors.Is(err, services.ErrWalkinNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Walk-in client not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch walk-in client.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateWalkin handles updating a walk-in client.
func (h *WalkinHandler) UpdateWalkin(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	var req services.UpdateWalkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateWalkin: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	client, err := h.walkinService.Update(id, req)
	if err != nil {
		utils.LogError(err, "UpdateWalkin: Error from walkinService.Update")
		if errors.Is(err, services.ErrWalkinNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Walk-in client not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update walk-in client.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteWalkin handles deleting a walk-in client.
func (h *WalkinHandler) DeleteWalkin(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	if err := h.walkinService.Delete(id); err != nil {
		utils.LogError(err, "DeleteWalkin: Error from walkinService.Delete")
		if errors.Is(err, services.ErrWalkinNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Walk-in client not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete walk-in client.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// UseWalkinSession handles consuming one session from a walk-in pack.
func (h *WalkinHandler) UseWalkinSession(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	client, err := h.walkinService.UseSession(id)
	if err != nil {
		utils.LogError(err, "UseWalkinSession: Error from walkinService.UseSession")
		if errors.Is(err, services.ErrWalkinNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Walk-in client not found.", err.Error()))
		} else if errors.Is(err, services.ErrNoSessionPlan) || errors.Is(err, services.ErrSessionPlanExhausted) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to use session.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, client)
}

// ConvertWalkinToMember handles promoting a walk-in client to a member.
func (h *WalkinHandler) ConvertWalkinToMember(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	member, err := h.walkinService.ConvertToMember(id)
	if err != nil {
		utils.LogError(err, "ConvertWalkinToMember: Error from walkinService.ConvertToMember")
		if errors.Is(err, services.ErrWalkinNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Walk-in client not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to convert walk-in client.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, member)
}

// GetWalkinHistory handles fetching a walk-in client's activity log.
func (h *WalkinHandler) GetWalkinHistory(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	entries, err := h.walkinService.History(id)
	if err != nil {
		utils.LogError(err, "GetWalkinHistory: Error from walkinService.History")
		if errors.Is(err, services.ErrWalkinNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Walk-in client not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch walk-in history.", "Internal error"))
		}
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
