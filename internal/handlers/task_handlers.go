package handlers

import (
	"errors"
	"net/http"

	"gnexgym_backend/internal/services"
	"gnexgym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TaskHandler holds the task and settings services.
type TaskHandler struct {
	taskService     services.TaskService
	settingsService services.SettingsService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(ts services.TaskService, ss services.SettingsService) *TaskHandler {
	return &TaskHandler{taskService: ts, settingsService: ss}
}

// CreateTask handles adding a staff task.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	task, err := h.taskService.Create(req)
	if err != nil {
		utils.LogError(err, "CreateTask: Error from taskService.Create")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create task.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetTasks handles listing staff tasks.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	tasks, err := h.taskService.List()
	if err != nil {
		utils.LogError(err, "GetTasks: Error from taskService.List")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch tasks.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// UpdateTask handles editing or completing a task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	task, err := h.taskService.Update(id, req)
	if err != nil {
		utils.LogError(err, "UpdateTask: Error from taskService.Update")
		if errors.Is(err, services.ErrTaskNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Task not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update task.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles removing a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	if err := h.taskService.Delete(id); err != nil {
		utils.LogError(err, "DeleteTask: Error from taskService.Delete")
		if errors.Is(err, services.ErrTaskNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Task not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete task.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// GetFreePassCode handles fetching the kiosk free-pass code.
func (h *TaskHandler) GetFreePassCode(c *gin.Context) {
	code, err := h.settingsService.FreePassCode()
	if err != nil {
		utils.LogError(err, "GetFreePassCode: Error from settingsService.FreePassCode")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch free-pass code.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

// SetFreePassCode handles updating the kiosk free-pass code.
func (h *TaskHandler) SetFreePassCode(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "A code is required.", err.Error()))
		return
	}
	if err := h.settingsService.SetFreePassCode(req.Code); err != nil {
		utils.LogError(err, "SetFreePassCode: Error from settingsService.SetFreePassCode")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to set free-pass code.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// VerifyFreePassCode handles a kiosk code check.
func (h *TaskHandler) VerifyFreePassCode(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "A code is required.", err.Error()))
		return
	}
	ok, err := h.settingsService.VerifyFreePassCode(req.Code)
	if err != nil {
		utils.LogError(err, "VerifyFreePassCode: Error from settingsService.VerifyFreePassCode")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to verify free-pass code.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": ok})
}
