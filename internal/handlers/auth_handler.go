package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/callstream/backend/internal/auth"
	"github.com/callstream/backend/internal/models"
	"github.com/callstream/backend/internal/repository"
)

type AuthHandler struct {
	verifier    auth.CredentialVerifier
	jwtService  *auth.JWTService
	sessionRepo repository.SessionStore
}

func NewAuthHandler(verifier auth.CredentialVerifier, jwtService *auth.JWTService, sessionRepo repository.SessionStore) *AuthHandler {
	return &AuthHandler{
		verifier:    verifier,
		jwtService:  jwtService,
		sessionRepo: sessionRepo,
	}
}

// Login handles admin login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	// Any mismatch yields the same generic message
	if err := h.verifier.Verify(req.Username, req.Password); err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	session := &models.AdminSession{
		ID:        uuid.New(),
		Username:  req.Username,
		IssuedAt:  now,
		ExpiresAt: now.Add(h.jwtService.Expiry()),
	}
	if err := h.sessionRepo.Create(session); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create session")
		return
	}

	// Sweep expired sessions while we are here; there is no background job
	h.sessionRepo.DeleteExpired(now)

	token, err := h.jwtService.GenerateToken(session.ID, session.Username)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout deletes the stored session, invalidating the token early
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, _ := c.Get("session_id")
	id := sessionID.(uuid.UUID)

	if err := h.sessionRepo.Delete(id); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// GetSession returns the current admin session
func (h *AuthHandler) GetSession(c *gin.Context) {
	sessionID, _ := c.Get("session_id")
	id := sessionID.(uuid.UUID)

	session, err := h.sessionRepo.Get(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Session not found")
		return
	}

	c.JSON(http.StatusOK, session)
}
