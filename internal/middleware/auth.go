package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/callstream/backend/internal/auth"
	"github.com/callstream/backend/internal/repository"
)

// AuthMiddleware guards admin routes. A request is authenticated when its
// token signature is valid AND the referenced session row still exists and
// has not expired; validity is re-derived on every request, there is no
// refresh. Expired rows are deleted on sight.
func AuthMiddleware(jwtService *auth.JWTService, sessions repository.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		session, err := sessions.Get(claims.SessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			c.Abort()
			return
		}

		if !session.Valid(time.Now()) {
			sessions.Delete(session.ID)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			c.Abort()
			return
		}

		c.Set("session_id", session.ID)
		c.Set("username", session.Username)
		c.Next()
	}
}
