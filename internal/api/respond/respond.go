package respond

import (
	"log/slog"
	"net/http"

	"lessons-api/internal/checkout"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every checkout failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusOf maps a checkout error kind to its HTTP status code.
func StatusOf(kind checkout.Kind) int {
	switch kind {
	case checkout.KindUnauthorized:
		return http.StatusUnauthorized
	case checkout.KindForbidden:
		return http.StatusForbidden
	case checkout.KindInvalidArgument:
		return http.StatusBadRequest
	case checkout.KindSessionNotFound, checkout.KindAccountNotFound:
		return http.StatusNotFound
	case checkout.KindPaymentGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as an ErrorResponse. Internal failures are logged with
// the underlying cause and answered with a generic message.
func Error(c *gin.Context, err error) {
	kind := checkout.KindOf(err)
	status := StatusOf(kind)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"route", c.FullPath(),
			"kind", string(kind),
			"request_id", c.GetString("request_id"),
			"error", err,
		)
	}
	c.JSON(status, ErrorResponse{Error: string(kind), Message: checkout.MessageOf(err)})
}
