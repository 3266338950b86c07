package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/callstream/backend/internal/cache"
	"github.com/callstream/backend/internal/media"
	"github.com/callstream/backend/internal/models"
	"github.com/callstream/backend/internal/repository"
)

type VideoHandler struct {
	videoRepo    repository.VideoStore
	redis        *cache.RedisClient
	maxBytes     int64
	probeTimeout time.Duration
}

func NewVideoHandler(videoRepo repository.VideoStore, redis *cache.RedisClient, maxBytes int64, probeTimeout time.Duration) *VideoHandler {
	return &VideoHandler{
		videoRepo:    videoRepo,
		redis:        redis,
		maxBytes:     maxBytes,
		probeTimeout: probeTimeout,
	}
}

// Upload accepts a multipart video file, probes its true duration from
// container metadata and stores the record. The new video replaces any
// prior active video in the same plan bucket.
func (h *VideoHandler) Upload(c *gin.Context) {
	planMinutes, err := parsePlanMinutes(c.PostForm("duration"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	price := models.DefaultPrices[planMinutes]
	if p := c.PostForm("price"); p != "" {
		if _, err := fmt.Sscanf(p, "%f", &price); err != nil || price < 0 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid price")
			return
		}
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Video file required")
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		ErrorResponse(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %d MB limit", h.maxBytes/(1024*1024)))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !models.IsAllowedContentType(contentType) {
		ErrorResponse(c, http.StatusBadRequest, "Unsupported file type. Use MP4 or WebM.")
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to read upload")
		return
	}
	if int64(len(content)) > h.maxBytes {
		ErrorResponse(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %d MB limit", h.maxBytes/(1024*1024)))
		return
	}

	// Bounded probe: a corrupt file fails the upload instead of hanging it
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.probeTimeout)
	defer cancel()
	duration, err := media.ProbeDuration(ctx, contentType, content)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Could not read video duration; the file may be corrupt")
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = header.Filename
	}

	video := &models.Video{
		ID:              uuid.New(),
		Name:            name,
		ContentType:     contentType,
		SizeBytes:       int64(len(content)),
		DurationSeconds: int(duration.Round(time.Second) / time.Second),
		PlanMinutes:     planMinutes,
		Price:           price,
		Active:          true,
		UploadDate:      time.Now(),
	}
	if err := video.Validate(); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.videoRepo.Create(video, content); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to store video")
		return
	}

	h.invalidateCatalog()
	c.JSON(http.StatusCreated, video)
}

// List returns all video records without payloads
func (h *VideoHandler) List(c *gin.Context) {
	videos, err := h.videoRepo.List()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to list videos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos, "count": len(videos)})
}

// GetContent streams the stored payload
func (h *VideoHandler) GetContent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid video id")
		return
	}

	content, contentType, err := h.videoRepo.GetContent(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Video not found")
		return
	}
	if len(content) == 0 {
		ErrorResponse(c, http.StatusNotFound, "Video has no stored content")
		return
	}

	c.Data(http.StatusOK, contentType, content)
}

// ToggleActive flips a video's catalog visibility
func (h *VideoHandler) ToggleActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid video id")
		return
	}

	active, err := h.videoRepo.ToggleActive(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Video not found")
		return
	}

	h.invalidateCatalog()
	c.JSON(http.StatusOK, gin.H{"id": id, "active": active})
}

// UpdatePrice sets a video's price
func (h *VideoHandler) UpdatePrice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid video id")
		return
	}

	var req models.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.videoRepo.UpdatePrice(id, req.Price); err != nil {
		ErrorResponse(c, http.StatusNotFound, "Video not found")
		return
	}

	h.invalidateCatalog()
	c.JSON(http.StatusOK, gin.H{"id": id, "price": req.Price})
}

// Delete removes a video and its payload. Deleting an id twice is a no-op.
func (h *VideoHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid video id")
		return
	}

	removed, err := h.videoRepo.Delete(id)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete video")
		return
	}

	if removed {
		h.invalidateCatalog()
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": removed})
}

func (h *VideoHandler) invalidateCatalog() {
	if h.redis == nil {
		return
	}
	if err := h.redis.InvalidatePlans(); err != nil {
		log.Printf("Failed to invalidate plan cache: %v", err)
	}
}

func parsePlanMinutes(s string) (int, error) {
	var minutes int
	if _, err := fmt.Sscanf(s, "%d", &minutes); err != nil {
		return 0, fmt.Errorf("plan duration is required")
	}
	if !models.IsPlanDuration(minutes) {
		return 0, fmt.Errorf("plan duration must be one of 5, 10 or 15 minutes")
	}
	return minutes, nil
}
