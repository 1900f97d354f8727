package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/usecase"
)

// LeadHandler serves stored leads.
type LeadHandler struct {
	listUC *usecase.ListLeadsUsecase
	logger *zap.Logger
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(listUC *usecase.ListLeadsUsecase, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{listUC: listUC, logger: logger}
}

// List handles GET /api/v1/leads?limit&offset&category&subreddit
func (h *LeadHandler) List(c *gin.Context) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}
	offset, err := intQuery(c, "offset")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be an integer"})
		return
	}

	filter := domain.LeadFilter{
		Limit:     limit,
		Offset:    offset,
		Category:  domain.Category(strings.ToLower(strings.TrimSpace(c.Query("category")))),
		Subreddit: strings.TrimSpace(c.Query("subreddit")),
	}

	resp, err := h.listUC.Execute(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCategory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("List leads failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrDatabaseUnavailable.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// intQuery parses an optional integer query parameter; missing means zero.
func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
