package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/internal/services"
	"gnexgym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// MemberHandler holds the member service.
type MemberHandler struct {
	memberService services.MemberService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(ms services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: ms}
}

// EnrollMember handles enrolling a new member.
func (h *MemberHandler) EnrollMember(c *gin.Context) {
	var req services.EnrollMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "EnrollMember: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	member, err := h.memberService.Enroll(req)
	if err != nil {
		utils.LogError(err, "EnrollMember: Error from memberService.Enroll")
		if errors.Is(err, services.ErrGymNumberExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Gym number already exists.", err.Error()))
		} else if errors.Is(err, services.ErrPlanNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "One or more price plans do not exist.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrDateFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to enroll member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, member)
}

// GetMembers handles fetching members with filters and pagination.
func (h *MemberHandler) GetMembers(c *gin.Context) {
	var filters models.MemberFilters
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

	members, totalCount, err := h.memberService.List(filters)
	if err != nil {
		utils.LogError(err, "GetMembers: Error from memberService.List")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch members.", "Internal error"))
		return
	}
	if members == nil {
		members = []models.Member{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      members,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetMemberByID handles fetching a single member by ID.
func (h *MemberHandler) GetMemberByID(c *gin.Context) {
	memberID, err := parseIDParam(c)
	if err != nil {
		return
	}

	member, err := h.memberService.GetByID(memberID)
	if err != nil {
		utils.LogError(err, "GetMemberByID: Error from memberService.GetByID")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, member)
}

// GetMemberByGymNumber handles the front-desk lookup by gym number.
func (h *MemberHandler) GetMemberByGymNumber(c *gin.Context) {
	gymNumber := c.Param("gym_number")
	member, err := h.memberService.GetByGymNumber(gymNumber)
	if err != nil {
		utils.LogError(err, "GetMemberByGymNumber: Error for gym number "+gymNumber)
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, member)
}

// UpdateMember handles updating a member.
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	memberID, err := parseIDParam(c)
	if err != nil {
		return
	}
	var req services.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateMember: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	member, err := h.memberService.Update(memberID, req)
	if err != nil {
		utils.LogError(err, "UpdateMember: Error from memberService.Update")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrDateFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, member)
}

// DeleteMember handles deleting a member.
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	memberID, err := parseIDParam(c)
	if err != nil {
		return
	}
	if err := h.memberService.Delete(memberID); err != nil {
		utils.LogError(err, "DeleteMember: Error from memberService.Delete")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete member.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// ApplyPlans handles applying purchased price plans to a member's ledger.
func (h *MemberHandler) ApplyPlans(c *gin.Context) {
	memberID, err := parseIDParam(c)
	if err != nil {
		return
	}
	var req services.ApplyPlansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ApplyPlans: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	member, err := h.memberService.ApplyPlans(memberID, req)
	if err != nil {
		utils.LogError(err, "ApplyPlans: Error from memberService.ApplyPlans")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else if errors.Is(err, services.ErrPlanNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "One or more price plans do not exist.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrDateFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to apply plans.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, member)
}

// UseSession handles consuming one coaching session.
func (h *MemberHandler) UseSession(c *gin.Context) {
	memberID, err := parseIDParam(c)
	if err != nil {
		return
	}
	ok, err := h.memberService.UseSession(memberID)
	if err != nil {
		utils.LogError(err, "UseSession: Error from memberService.UseSession")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to use session.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"used": ok})
}

// MarkSessionComplete handles the coach's confirmation that a session happened.
func (h *MemberHandler) MarkSessionComplete(c *gin.Context) {
	memberID, err := parseIDParam(c)
	if err != nil {
		return
	}
	result, err := h.memberService.MarkSessionComplete(memberID)
	if err != nil {
		utils.LogError(err, "MarkSessionComplete: Error from memberService.MarkSessionComplete")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else if errors.Is(err, services.ErrNoCoachPlan) || errors.Is(err, services.ErrNoSessionsRemaining) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to complete session.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMemberHistory handles fetching a member's activity log.
func (h *MemberHandler) GetMemberHistory(c *gin.Context) {
	memberID, err := parseIDParam(c)
	if err != nil {
		return
	}
	entries, err := h.memberService.History(memberID)
	if err != nil {
		utils.LogError(err, "GetMemberHistory: Error from memberService.History")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch member history.", "Internal error"))
		}
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// GetMemberStatus handles fetching a member's derived status.
func (h *MemberHandler) GetMemberStatus(c *gin.Context) {
	memberID, err := parseIDParam(c)
	if err != nil {
		return
	}
	status, err := h.memberService.Status(memberID)
	if err != nil {
		utils.LogError(err, "GetMemberStatus: Error from memberService.Status")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to derive member status.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// ImportMembersCSV handles a multipart CSV upload of members.
func (h *MemberHandler) ImportMembersCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "A CSV file is required in the 'file' form field.", err.Error()))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.LogError(err, "ImportMembersCSV: Failed to open uploaded file")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Failed to read uploaded file.", err.Error()))
		return
	}
	defer file.Close()

	result, err := h.memberService.ImportMembersCSV(file)
	if err != nil {
		utils.LogError(err, "ImportMembersCSV: Error from memberService.ImportMembersCSV")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to import members.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportMembersCSV streams the filtered member list as a CSV download.
func (h *MemberHandler) ExportMembersCSV(c *gin.Context) {
	var filters models.MemberFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters: "+err.Error(), err.Error()))
		return
	}

	filename := fmt.Sprintf("members-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	if err := h.memberService.ExportMembersCSV(c.Writer, filters); err != nil {
		utils.LogError(err, "ExportMembersCSV: Error from memberService.ExportMembersCSV")
	}
}

// ExportMembersExcel streams the filtered member list as an XLSX download.
func (h *MemberHandler) ExportMembersExcel(c *gin.Context) {
	var filters models.MemberFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters: "+err.Error(), err.Error()))
		return
	}

	file, err := h.memberService.ExportMembersExcel(filters)
	if err != nil {
		utils.LogError(err, "ExportMembersExcel: Error from memberService.ExportMembersExcel")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to export members.", "Internal error"))
		return
	}

	filename := fmt.Sprintf("members-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	if err := file.Write(c.Writer); err != nil {
		utils.LogError(err, "ExportMembersExcel: Failed to write workbook")
	}
}

// parseIDParam parses the :id path parameter, writing the error response on
// failure.
func parseIDParam(c *gin.Context) (int64, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid ID format.", err.Error()))
		return 0, err
	}
	return id, nil
}
