package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/usecase"
)

// ScheduleHandler triggers scheduled scans on demand.
type ScheduleHandler struct {
	triggerUC *usecase.TriggerScanUsecase
	logger    *zap.Logger
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(triggerUC *usecase.TriggerScanUsecase, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{triggerUC: triggerUC, logger: logger}
}

// Run handles POST /api/v1/schedule/run. The body is optional.
func (h *ScheduleHandler) Run(c *gin.Context) {
	var req domain.ScheduleRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
	}

	scan, err := h.triggerUC.Execute(c.Request.Context(), req.UserQuery, req.Subreddits)
	if err != nil {
		switch {
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrPublishFailed):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		default:
			h.logger.Error("Trigger scan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusAccepted, domain.ScheduleRunResponse{
		Message:   "Scan scheduled",
		RequestID: scan.RequestID,
	})
}
