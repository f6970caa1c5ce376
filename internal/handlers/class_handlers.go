package handlers

import (
	"errors"
	"net/http"

	"gnexgym_backend/internal/services"
	"gnexgym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ClassHandler holds the class service.
type ClassHandler struct {
	classService services.ClassService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(cs services.ClassService) *ClassHandler {
	return &ClassHandler{classService: cs}
}

// CreateClass handles adding a class.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req services.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateClass: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	class, err := h.classService.Create(req)
	if err != nil {
		utils.LogError(err, "CreateClass: Error from classService.Create")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create class.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, class)
}

// GetClasses handles listing classes.
func (h *ClassHandler) GetClasses(c *gin.Context) {
	classes, err := h.classService.List()
	if err != nil {
		utils.LogError(err, "GetClasses: Error from classService.List")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch classes.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, classes)
}

// GetClassByID handles fetching a single class.
func (h *ClassHandler) GetClassByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	class, err := h.classService.GetByID(id)
	if err != nil {
		utils.LogError(err, "GetClassByID: Error from classService.GetByID")
		if errors.Is(err, services.ErrClassNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Class not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch class.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, class)
}

// UpdateClass handles editing a class.
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	var req services.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateClass: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	class, err := h.classService.Update(id, req)
	if err != nil {
		utils.LogError(err, "UpdateClass: Error from classService.Update")
		if errors.Is(err, services.ErrClassNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Class not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update class.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, class)
}

// DeleteClass handles removing a class and its attendance.
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	if err := h.classService.Delete(id); err != nil {
		utils.LogError(err, "DeleteClass: Error from classService.Delete")
		if errors.Is(err, services.ErrClassNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Class not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete class.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAttendance handles saving the roster for one class on one date.
func (h *ClassHandler) MarkAttendance(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	var req services.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "MarkAttendance: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	attendance, err := h.classService.MarkAttendance(id, req)
	if err != nil {
		utils.LogError(err, "MarkAttendance: Error from classService.MarkAttendance")
		if errors.Is(err, services.ErrClassNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Class not found.", err.Error()))
		} else if errors.Is(err, services.ErrDateFormat) || errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to save attendance.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, attendance)
}

// GetAttendance handles fetching attendance history, or a single date's
// roster when a date query parameter is supplied.
func (h *ClassHandler) GetAttendance(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	if date := c.Query("date"); date != "" {
		attendance, err := h.classService.AttendanceByDate(id, date)
		if err != nil {
			utils.LogError(err, "GetAttendance: Error from classService.AttendanceByDate")
			if errors.Is(err, services.ErrDateFormat) {
				utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
			} else {
				utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch attendance.", "Internal error"))
			}
			return
		}
		c.JSON(http.StatusOK, attendance)
		return
	}

	entries, err := h.classService.Attendance(id)
	if err != nil {
		utils.LogError(err, "GetAttendance: Error from classService.Attendance")
		if errors.Is(err, services.ErrClassNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Class not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch attendance.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, entries)
}
