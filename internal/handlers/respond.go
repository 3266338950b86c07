package handlers

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse writes the error envelope shared by every endpoint. The
// message is user-facing; anything worth operator attention is logged at
// the call site.
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
