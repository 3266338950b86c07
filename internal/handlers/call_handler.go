package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/callstream/backend/config"
	"github.com/callstream/backend/internal/auth"
	"github.com/callstream/backend/internal/callsession"
	"github.com/callstream/backend/internal/models"
	"github.com/callstream/backend/internal/payment"
	"github.com/callstream/backend/internal/repository"
	"github.com/callstream/backend/internal/stats"
	"github.com/callstream/backend/internal/websocket"
)

type CallHandler struct {
	videoRepo  repository.VideoStore
	callRepo   repository.CallStore
	registry   *callsession.Registry
	hub        *websocket.Hub
	jwtService *auth.JWTService
	grants     *payment.GrantService
	callCfg    config.CallConfig
	rate       float64
}

func NewCallHandler(
	videoRepo repository.VideoStore,
	callRepo repository.CallStore,
	registry *callsession.Registry,
	hub *websocket.Hub,
	jwtService *auth.JWTService,
	grants *payment.GrantService,
	callCfg config.CallConfig,
	ratePerMinute float64,
) *CallHandler {
	return &CallHandler{
		videoRepo:  videoRepo,
		callRepo:   callRepo,
		registry:   registry,
		hub:        hub,
		jwtService: jwtService,
		grants:     grants,
		callCfg:    callCfg,
		rate:       ratePerMinute,
	}
}

// StartCall creates a call session for a plan. The caller must hold either
// an admin token (direct entry) or a payment grant for that duration. The
// active video for the bucket is loaded, a view recorded and the server-side
// runner started; the screen then attaches over the call WebSocket.
func (h *CallHandler) StartCall(c *gin.Context) {
	var req models.StartCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !models.IsPlanDuration(req.Duration) {
		ErrorResponse(c, http.StatusBadRequest, "Plan duration must be one of 5, 10 or 15 minutes")
		return
	}

	if !h.authorized(c, req.Duration) {
		ErrorResponse(c, http.StatusUnauthorized, "Admin token or payment grant required")
		return
	}

	video, err := h.videoRepo.GetActiveByDuration(req.Duration)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "No video available for this plan")
		return
	}

	call := &models.CallSession{
		ID:        uuid.New(),
		VideoID:   video.ID,
		StartTime: time.Now(),
		Revenue:   stats.Revenue(float64(video.DurationSeconds), h.rate),
		Completed: false,
	}
	if err := h.callRepo.Create(call); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create call")
		return
	}

	if err := h.videoRepo.IncrementViews(video.ID); err != nil {
		// A lost view count never blocks a paid call
		log.Printf("Failed to record view for video %s: %v", video.ID, err)
	}

	callID := call.ID
	runner := callsession.NewRunner(callsession.RunnerConfig{
		Duration:         time.Duration(video.DurationSeconds) * time.Second,
		ConnectDelay:     h.callCfg.ConnectDelay,
		WarningThreshold: h.callCfg.WarningThreshold,
		TickInterval:     h.callCfg.TickInterval,
	}, func(u callsession.Update) {
		h.hub.Publish(callID, wsMessageFor(u))
	}, func(final callsession.State) {
		h.completeCall(callID)
	})

	h.registry.Add(callID, runner)

	c.JSON(http.StatusCreated, models.StartCallResponse{Call: *call, Video: *video})
}

// EndCall hangs up an in-progress call. Ending a finished call is a no-op.
func (h *CallHandler) EndCall(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid call id")
		return
	}

	if runner, ok := h.registry.Get(id); ok {
		runner.Hangup()
		c.JSON(http.StatusOK, gin.H{"id": id, "status": "closed"})
		return
	}

	// Runner already gone; make sure the record is closed too
	call, err := h.callRepo.GetByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Call not found")
		return
	}
	if !call.Completed {
		h.callRepo.Complete(id, time.Now())
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "closed"})
}

// GetCall returns a call record with its live state when in progress
func (h *CallHandler) GetCall(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid call id")
		return
	}

	call, err := h.callRepo.GetByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Call not found")
		return
	}

	resp := gin.H{"call": call}
	if runner, ok := h.registry.Get(id); ok {
		u := runner.Snapshot()
		resp["live"] = models.WSCallStatePayload{
			State:     u.State,
			Remaining: u.Remaining,
			Formatted: u.Formatted,
			Warning:   u.Warning,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CallHandler) completeCall(id uuid.UUID) {
	if _, err := h.callRepo.Complete(id, time.Now()); err != nil {
		return
	}
}

// authorized accepts an admin bearer token or a payment grant covering the
// requested duration.
func (h *CallHandler) authorized(c *gin.Context, minutes int) bool {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		token := strings.TrimPrefix(header, "Bearer ")
		if _, err := h.jwtService.ValidateToken(token); err == nil {
			return true
		}
		if h.grants.Validate(token, minutes) == nil {
			return true
		}
	}
	return false
}

func wsMessageFor(u callsession.Update) models.WSMessage {
	event := models.EventCallTick
	switch u.Event {
	case callsession.UpdateState:
		event = models.EventCallState
	case callsession.UpdateEnded:
		event = models.EventCallEnded
	}
	return models.WSMessage{
		Event: event,
		Payload: models.WSCallStatePayload{
			State:     u.State,
			Remaining: u.Remaining,
			Formatted: u.Formatted,
			Warning:   u.Warning,
		},
	}
}
