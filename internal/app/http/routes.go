package routes

import (
	"log/slog"

	adminapi "lessons-api/internal/api/admin"
	authapi "lessons-api/internal/api/auth"
	"lessons-api/internal/api/billing"
	"lessons-api/internal/api/users"
	"lessons-api/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Users   *users.Handler
	Auth    *authapi.Handler
	Billing *billing.Handler
	Admin   *adminapi.Handler
}

type Deps struct {
	JWTSecret string
	Accounts  middleware.AccountLookup
	Log       *slog.Logger
}

func RegisterRoutes(r *gin.Engine, h Handlers, d Deps) {
	r.Use(middleware.RequestLogger(d.Log), middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Apply input sanitization to public routes only
	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/users", h.Users.Register)
	public.POST("/login", h.Auth.Login)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(d.JWTSecret))
	auth.GET("/me", h.Users.GetCurrentUser)
	auth.GET("/users/:email/role", h.Users.GetRole)
	auth.GET("/payments", h.Billing.GetPaymentHistory)
	auth.POST("/create-checkout-session", h.Billing.CreateCheckoutSession)
	auth.GET("/payment-success", h.Billing.PaymentSuccess)
	auth.POST("/payment-success", h.Billing.PaymentSuccess)

	// Premium members
	premium := auth.Group("/premium")
	premium.Use(middleware.RequirePremium(d.Accounts))
	premium.GET("/status", h.Users.PremiumStatus)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.RequireRole("admin"))
	admin.GET("/payments", h.Admin.ListAllPayments)
	admin.GET("/stats", h.Admin.GetAdminStats)
}
