package api

import (
	"errors"
	"net/http"
	"strconv"

	"PipocaFlix/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ViewerHeader 观众标识请求头
const ViewerHeader = "X-Viewer-ID"

// HistoryHandler 观看历史与播放进度接口
type HistoryHandler struct {
	history *service.HistoryService
	logger  *logrus.Logger
}

// NewHistoryHandler 创建 HistoryHandler
func NewHistoryHandler(history *service.HistoryService, logger *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

type progressRequest struct {
	CurrentTime float64 `json:"current_time"`
	Duration    float64 `json:"duration" binding:"required"`
}

// Register 挂载历史与进度路由
func (h *HistoryHandler) Register(r gin.IRouter) {
	r.POST("/api/history", h.RecordWatch)
	r.GET("/api/history", h.ListHistory)
	r.PUT("/api/progress/:episode_id", h.SaveProgress)
	r.GET("/api/progress/:episode_id", h.GetProgress)
}

// RecordWatch POST /api/history
func (h *HistoryHandler) RecordWatch(c *gin.Context) {
	var req service.WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	entry, err := h.history.RecordWatch(c.Request.Context(), c.GetHeader(ViewerHeader), req)
	if err != nil {
		h.fail(c, "RecordWatch", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListHistory GET /api/history?limit=20
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	list, err := h.history.History(c.Request.Context(), c.GetHeader(ViewerHeader), queryInt(c, "limit"))
	if err != nil {
		h.fail(c, "ListHistory", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SaveProgress PUT /api/progress/:episode_id  body: {"current_time": 30, "duration": 120}
func (h *HistoryHandler) SaveProgress(c *gin.Context) {
	episodeID, err := strconv.ParseInt(c.Param("episode_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid episode_id"})
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	p, err := h.history.SaveProgress(c.Request.Context(), c.GetHeader(ViewerHeader), episodeID, req.CurrentTime, req.Duration)
	if err != nil {
		h.fail(c, "SaveProgress", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"episode_id": p.EpisodeID, "percent": p.Percent})
}

// GetProgress GET /api/progress/:episode_id
func (h *HistoryHandler) GetProgress(c *gin.Context) {
	episodeID, err := strconv.ParseInt(c.Param("episode_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid episode_id"})
		return
	}
	pct, err := h.history.Progress(c.Request.Context(), c.GetHeader(ViewerHeader), episodeID)
	if err != nil {
		h.fail(c, "GetProgress", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"episode_id": episodeID, "percent": pct})
}

func (h *HistoryHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrMissingViewer):
		c.JSON(http.StatusBadRequest, gin.H{"error": ViewerHeader + " header is required"})
	case errors.Is(err, service.ErrInvalidEpisode), errors.Is(err, service.ErrInvalidProgress):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Error(op + " failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
