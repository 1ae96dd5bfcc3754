package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vidqueue/app/database"
	"vidqueue/app/videos"
)

type Handler struct {
	service   *videos.Service
	videoRepo database.VideoRepository
	userRepo  database.UserRepository
}

func NewHandler(service *videos.Service, videoRepo database.VideoRepository,
	userRepo database.UserRepository) *Handler {
	return &Handler{
		service:   service,
		videoRepo: videoRepo,
		userRepo:  userRepo,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if videoCount, err := h.videoRepo.GetVideoCount(); err == nil {
		health["videos"] = videoCount
	}
	if userCount, err := h.userRepo.GetUserCount(); err == nil {
		health["users"] = userCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListVideos(c *gin.Context) {
	userID := currentUserID(c)

	list, err := h.service.List(userID)
	if err != nil {
		slog.Error("Database error", "operation", "list_videos", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load videos"})
		return
	}

	out := make([]VideoResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toVideoResponse(v))
	}

	c.JSON(http.StatusOK, gin.H{
		"videos": out,
		"total":  len(out),
	})
}

func (h *Handler) ToggleWatched(c *gin.Context) {
	userID := currentUserID(c)
	videoID := c.Param("id")

	video, err := h.service.ToggleWatched(userID, videoID)
	if errors.Is(err, videos.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "toggle_watched", "video_id", videoID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update video"})
		return
	}

	c.JSON(http.StatusOK, toVideoResponse(*video))
}

func (h *Handler) DeleteVideo(c *gin.Context) {
	userID := currentUserID(c)
	videoID := c.Param("id")

	err := h.service.Delete(userID, videoID)
	if errors.Is(err, videos.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "delete_video", "video_id", videoID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete video"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) GetProgress(c *gin.Context) {
	userID := currentUserID(c)
	videoID := c.Param("id")

	progress, err := h.service.GetProgress(userID, videoID)
	if errors.Is(err, videos.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "get_progress", "video_id", videoID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load progress"})
		return
	}

	resp := ProgressResponse{VideoID: videoID}
	if progress != nil {
		resp.PositionSeconds = &progress.PositionSeconds
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SaveProgress(c *gin.Context) {
	userID := currentUserID(c)

	var req SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err := h.service.SaveProgress(userID, req.VideoID, req.PositionSeconds)
	if errors.Is(err, videos.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "save_progress", "video_id", req.VideoID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save progress"})
		return
	}

	c.Status(http.StatusNoContent)
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(contextUserIDKey)
}
