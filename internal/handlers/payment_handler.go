package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/callstream/backend/internal/payment"
)

// PaymentHandler exchanges checkout return parameters for call grants.
type PaymentHandler struct {
	grants *payment.GrantService
}

func NewPaymentHandler(grants *payment.GrantService) *PaymentHandler {
	return &PaymentHandler{grants: grants}
}

// Return handles the redirect back from the hosted checkout page. A
// successful return for a known plan duration is exchanged for a signed
// grant the caller presents when starting the call.
func (h *PaymentHandler) Return(c *gin.Context) {
	minutes, err := payment.ParseReturn(c.Query("payment"), c.Query("duration"))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidReturn) {
			ErrorResponse(c, http.StatusBadRequest, "Invalid payment return")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to process payment return")
		return
	}

	grant, err := h.grants.Issue(minutes)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to issue call grant")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"grant":    grant,
		"duration": minutes,
		// Clean target: the checkout parameters never reach the call screen URL
		"redirect": fmt.Sprintf("/call?duration=%d", minutes),
	})
}
