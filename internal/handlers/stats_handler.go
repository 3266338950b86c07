package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/callstream/backend/internal/repository"
	"github.com/callstream/backend/internal/stats"
)

// StatsHandler serves the aggregated admin dashboard figures.
type StatsHandler struct {
	videoRepo repository.VideoStore
	callRepo  repository.CallStore
}

func NewStatsHandler(videoRepo repository.VideoStore, callRepo repository.CallStore) *StatsHandler {
	return &StatsHandler{videoRepo: videoRepo, callRepo: callRepo}
}

// GetStats aggregates the video registry and completed call log on demand.
func (h *StatsHandler) GetStats(c *gin.Context) {
	videos, err := h.videoRepo.List()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load videos")
		return
	}

	sessions, err := h.callRepo.ListCompleted()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load call history")
		return
	}

	c.JSON(http.StatusOK, stats.Compute(videos, sessions))
}
