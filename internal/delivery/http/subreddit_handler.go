package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/usecase"
)

// SubredditHandler manages the subreddits covered by scheduled scans.
type SubredditHandler struct {
	sourcesUC *usecase.ManageSourcesUsecase
	logger    *zap.Logger
}

// NewSubredditHandler creates a new SubredditHandler.
func NewSubredditHandler(sourcesUC *usecase.ManageSourcesUsecase, logger *zap.Logger) *SubredditHandler {
	return &SubredditHandler{sourcesUC: sourcesUC, logger: logger}
}

// List handles GET /api/v1/config/subreddits
func (h *SubredditHandler) List(c *gin.Context) {
	resp, err := h.sourcesUC.List(c.Request.Context())
	if err != nil {
		h.logger.Error("List subreddits failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrDatabaseUnavailable.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Add handles POST /api/v1/config/subreddits
func (h *SubredditHandler) Add(c *gin.Context) {
	var req domain.AddSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	name, err := h.sourcesUC.Add(c.Request.Context(), req.Subreddit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Subreddit added",
		"subreddit": name,
	})
}

// Remove handles DELETE /api/v1/config/subreddits/:name
func (h *SubredditHandler) Remove(c *gin.Context) {
	name := c.Param("name")
	if err := h.sourcesUC.Remove(c.Request.Context(), name); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Subreddit removed",
		"subreddit": name,
	})
}

func (h *SubredditHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrInvalidSource) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("Subreddit update failed", zap.Error(err))
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrDatabaseUnavailable.Error()})
}
