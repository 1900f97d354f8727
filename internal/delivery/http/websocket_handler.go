package http

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/usecase"
)

const streamInterval = 500 * time.Millisecond

// WebSocketHandler handles WebSocket connections for real-time job progress.
type WebSocketHandler struct {
	getUC    *usecase.GetSearchUsecase
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler. An empty origins list accepts any origin.
func NewWebSocketHandler(getUC *usecase.GetSearchUsecase, origins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		getUC: getUC,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(origins) == 0 || slices.Contains(origins, "*") || slices.Contains(origins, origin)
			},
		},
		logger: logger,
	}
}

// Stream handles GET /api/v1/reddit/search/:id/stream (WebSocket upgrade).
// The stream closes when the job reaches a terminal status, or once a
// cancelled job has no running task and stops changing.
func (h *WebSocketHandler) Stream(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.getUC.Execute(id); errors.Is(err, domain.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Debug("WebSocket connection opened", zap.String("job_id", id))

	// Drain client frames so close messages are noticed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var lastUpdate time.Time
	for {
		view, err := h.getUC.Execute(id)
		if err != nil {
			_ = conn.WriteJSON(gin.H{"error": "Job not found"})
			return
		}

		if err := conn.WriteJSON(view); err != nil {
			h.logger.Debug("WebSocket write failed (client disconnected)", zap.Error(err))
			return
		}

		// Stop streaming once the job reaches a terminal state
		if view.Status.IsTerminal() {
			h.logger.Debug("Job reached terminal state, closing WebSocket", zap.String("job_id", id))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(view.Status)),
				time.Now().Add(time.Second))
			return
		}

		if view.UpdatedAt.Equal(lastUpdate) && !h.getUC.Running(id) {
			h.logger.Debug("Job is no longer running, closing WebSocket", zap.String("job_id", id))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "cancelled"),
				time.Now().Add(time.Second))
			return
		}
		lastUpdate = view.UpdatedAt

		select {
		case <-ticker.C:
		case <-gone:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
