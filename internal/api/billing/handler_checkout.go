package billing

import (
	"net/http"

	"lessons-api/internal/api/respond"
	"lessons-api/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	Amount   float64 `json:"amount" binding:"required"`
	Currency string  `json:"currency" binding:"required"`
}

type confirmRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type confirmResponse struct {
	Paid          bool   `json:"paid"`
	Status        string `json:"status"`
	TrackingID    string `json:"trackingId,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

// CreateCheckoutSession opens a session for the caller. An email in the body
// is never read; the session is bound to the token's email.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body createSessionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": "amount and currency are required"})
		return
	}

	created, err := h.checkout.CreateSession(c.Request.Context(), middleware.Identity(c), body.Amount, body.Currency)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": created.RedirectURL})
}

// PaymentSuccess confirms a session named by ?session_id= (the gateway
// redirect) or by a JSON body {"sessionId": ...}.
func (h *Handler) PaymentSuccess(c *gin.Context) {
	sessionID := c.Query("session_id")
	if c.Request.Method == http.MethodPost {
		var body confirmRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": "sessionId is required"})
			return
		}
		sessionID = body.SessionID
	}

	conf, err := h.checkout.ConfirmSession(c.Request.Context(), middleware.Identity(c), sessionID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	if !conf.Paid {
		c.JSON(http.StatusAccepted, confirmResponse{Paid: false, Status: conf.Status})
		return
	}

	c.JSON(http.StatusOK, confirmResponse{
		Paid:          true,
		Status:        conf.Status,
		TrackingID:    conf.TrackingID,
		TransactionID: conf.TransactionID,
	})
}
