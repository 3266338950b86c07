package websocket

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/callstream/backend/internal/auth"
	"github.com/callstream/backend/internal/callsession"
	"github.com/callstream/backend/internal/payment"
	"github.com/callstream/backend/internal/repository"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, validate origin properly
		return true
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub            *Hub
	jwtService     *auth.JWTService
	grants         *payment.GrantService
	registry       *callsession.Registry
	callRepo       repository.CallStore
	videoRepo      repository.VideoStore
	allowedOrigins []string
}

// NewHandler creates a new WebSocket handler
func NewHandler(
	hub *Hub,
	jwtService *auth.JWTService,
	grants *payment.GrantService,
	registry *callsession.Registry,
	callRepo repository.CallStore,
	videoRepo repository.VideoStore,
	allowedOrigins []string,
) *Handler {
	return &Handler{
		hub:            hub,
		jwtService:     jwtService,
		grants:         grants,
		registry:       registry,
		callRepo:       callRepo,
		videoRepo:      videoRepo,
		allowedOrigins: allowedOrigins,
	}
}

// HandleCallFeed upgrades a call screen connection. The caller presents
// either an admin token or the payment grant that started the call.
func (h *Handler) HandleCallFeed(c *gin.Context) {
	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid call id"})
		return
	}

	call, err := h.callRepo.GetByID(callID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Call not found"})
		return
	}

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}
	if !h.authorizeCallToken(token, call.VideoID) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, ok := h.upgrade(c)
	if !ok {
		return
	}

	client := NewClient(h.hub, conn, callID, false, h.registry)
	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

// HandleAdminFeed upgrades an admin dashboard connection that receives
// every call event.
func (h *Handler) HandleAdminFeed(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}
	if _, err := h.jwtService.ValidateToken(token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, ok := h.upgrade(c)
	if !ok {
		return
	}

	client := NewClient(h.hub, conn, uuid.Nil, true, h.registry)
	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

// authorizeCallToken accepts an admin token, or a payment grant matching the
// plan of the video the call plays.
func (h *Handler) authorizeCallToken(token string, videoID uuid.UUID) bool {
	if _, err := h.jwtService.ValidateToken(token); err == nil {
		return true
	}

	video, err := h.videoRepo.GetByID(videoID)
	if err != nil {
		return false
	}
	return h.grants.Validate(token, video.PlanMinutes) == nil
}

func (h *Handler) upgrade(c *gin.Context) (*websocket.Conn, bool) {
	// Validate origin using configured allowed origins if provided
	if len(h.allowedOrigins) > 0 {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return false
			}
			for _, pattern := range h.allowedOrigins {
				if matchOrigin(pattern, origin) {
					return true
				}
			}
			return false
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return nil, false
	}
	return conn, true
}

// matchOrigin supports exact matches or wildcard patterns like *.example.com
func matchOrigin(pattern, origin string) bool {
	if pattern == origin {
		return true
	}
	// simple wildcard support: pattern starts with *.
	if strings.HasPrefix(pattern, "*.") {
		originHost := origin
		if u, err := url.Parse(origin); err == nil {
			originHost = u.Hostname()
		}
		patHost := strings.TrimPrefix(pattern, "*.")
		if strings.HasSuffix(originHost, patHost) {
			return true
		}
	}
	return false
}
