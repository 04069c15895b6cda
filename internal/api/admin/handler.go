package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"lessons-api/internal/domain/billing"
	"lessons-api/internal/infra/store"

	"github.com/gin-gonic/gin"
)

const defaultPaymentsLimit = 100

type Payments interface {
	List(ctx context.Context, limit int) ([]billing.Payment, error)
	RevenueByCurrency(ctx context.Context) ([]store.CurrencyRevenue, error)
}

type Accounts interface {
	Count(ctx context.Context) (int64, error)
	CountPremium(ctx context.Context) (int64, error)
}

type Handler struct {
	payments Payments
	accounts Accounts
}

func NewHandler(payments Payments, accounts Accounts) *Handler {
	return &Handler{payments: payments, accounts: accounts}
}

// AdminPayment is a ledger row plus the issue time decoded from its tracking
// id. A row whose tracking id does not parse is listed without it.
type AdminPayment struct {
	billing.Payment
	TrackingIssuedAt *time.Time `json:"trackingIssuedAt,omitempty"`
}

type AdminStats struct {
	TotalUsers   int64                   `json:"total_users"`
	PremiumUsers int64                   `json:"premium_users"`
	Payments     int64                   `json:"payments"`
	Revenue      []store.CurrencyRevenue `json:"revenue"`
}

func (h *Handler) ListAllPayments(c *gin.Context) {
	limit := defaultPaymentsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	payments, err := h.payments.List(c.Request.Context(), limit)
	if err != nil {
		slog.Error("admin list payments", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	result := make([]AdminPayment, 0, len(payments))
	for _, p := range payments {
		row := AdminPayment{Payment: p}
		issued, err := billing.ParseTrackingID(p.TrackingID)
		if err != nil {
			slog.Warn("malformed tracking id in ledger", "payment_id", p.ID, "tracking_id", p.TrackingID)
		} else {
			issued = issued.UTC()
			row.TrackingIssuedAt = &issued
		}
		result = append(result, row)
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetAdminStats(c *gin.Context) {
	ctx := c.Request.Context()
	var stats AdminStats
	var err error

	if stats.TotalUsers, err = h.accounts.Count(ctx); err != nil {
		h.statsFailed(c, err)
		return
	}
	if stats.PremiumUsers, err = h.accounts.CountPremium(ctx); err != nil {
		h.statsFailed(c, err)
		return
	}
	if stats.Revenue, err = h.payments.RevenueByCurrency(ctx); err != nil {
		h.statsFailed(c, err)
		return
	}
	if stats.Revenue == nil {
		stats.Revenue = []store.CurrencyRevenue{}
	}
	for _, r := range stats.Revenue {
		stats.Payments += r.Count
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) statsFailed(c *gin.Context, err error) {
	slog.Error("admin stats", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
}
