package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/usecase"
)

// SearchHandler handles HTTP requests for manual lead searches.
type SearchHandler struct {
	submitUC *usecase.SubmitSearchUsecase
	getUC    *usecase.GetSearchUsecase
	cancelUC *usecase.CancelSearchUsecase
	logger   *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(
	submitUC *usecase.SubmitSearchUsecase,
	getUC *usecase.GetSearchUsecase,
	cancelUC *usecase.CancelSearchUsecase,
	logger *zap.Logger,
) *SearchHandler {
	return &SearchHandler{
		submitUC: submitUC,
		getUC:    getUC,
		cancelUC: cancelUC,
		logger:   logger,
	}
}

// Submit handles POST /api/v1/reddit/search
func (h *SearchHandler) Submit(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	resp, err := h.submitUC.Execute(c.Request.Context(), &req)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Submit search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

// GetByID handles GET /api/v1/reddit/search/:id
func (h *SearchHandler) GetByID(c *gin.Context) {
	view, err := h.getUC.Execute(c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		h.logger.Error("Get search failed", zap.Error(err), zap.String("job_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// Cancel handles DELETE /api/v1/reddit/search/:id?purge=true
func (h *SearchHandler) Cancel(c *gin.Context) {
	id := c.Param("id")

	purge := false
	if raw := c.Query("purge"); raw != "" {
		var err error
		if purge, err = strconv.ParseBool(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "purge must be a boolean"})
			return
		}
	}

	if err := h.cancelUC.Execute(id, purge); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		h.logger.Error("Cancel search failed", zap.Error(err), zap.String("job_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Cancellation requested",
		"job_id":  id,
		"purged":  purge,
	})
}

// isValidationError reports whether err is caused by bad client input.
func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrNoSources) ||
		errors.Is(err, domain.ErrTooManySources) ||
		errors.Is(err, domain.ErrInvalidSource) ||
		errors.Is(err, domain.ErrEmptyQuery)
}
