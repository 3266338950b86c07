package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/callstream/backend/internal/cache"
	"github.com/callstream/backend/internal/models"
	"github.com/callstream/backend/internal/payment"
	"github.com/callstream/backend/internal/repository"
)

type PlanHandler struct {
	videoRepo repository.VideoStore
	checkout  *payment.Checkout
	redis     *cache.RedisClient
}

func NewPlanHandler(videoRepo repository.VideoStore, checkout *payment.Checkout, redis *cache.RedisClient) *PlanHandler {
	return &PlanHandler{
		videoRepo: videoRepo,
		checkout:  checkout,
		redis:     redis,
	}
}

// GetPlans returns the three fixed plans with availability and checkout
// links. A plan is selectable only when an active video exists for its
// duration; unavailable plans carry an inline message instead of an error.
func (h *PlanHandler) GetPlans(c *gin.Context) {
	if h.redis != nil {
		if plans, err := h.redis.GetCachedPlans(); err == nil && plans != nil {
			c.JSON(http.StatusOK, gin.H{"plans": plans})
			return
		}
	}

	plans := make([]models.Plan, 0, len(models.PlanDurations))
	for _, minutes := range models.PlanDurations {
		plan := models.Plan{
			ID:      planID(minutes),
			Minutes: minutes,
			Price:   models.DefaultPrices[minutes],
			Popular: minutes == 10,
		}

		video, err := h.videoRepo.GetActiveByDuration(minutes)
		switch {
		case err == nil:
			plan.Available = true
			plan.Price = video.Price
			plan.CheckoutURL = h.checkout.URL(minutes)
		default:
			plan.Message = "Currently unavailable"
		}

		plans = append(plans, plan)
	}

	if h.redis != nil {
		if err := h.redis.CachePlans(plans); err != nil {
			log.Printf("Failed to cache plans: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func planID(minutes int) string {
	switch minutes {
	case 5:
		return "5min"
	case 10:
		return "10min"
	default:
		return "15min"
	}
}
