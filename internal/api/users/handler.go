package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	authapi "lessons-api/internal/api/auth"
	"lessons-api/internal/domain/access"
	"lessons-api/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type Store interface {
	Create(ctx context.Context, u *users.User) error
	FindByEmail(ctx context.Context, email string) (*users.User, error)
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Register creates a user with role "user". An existing email is answered
// with 200 and {"message": "User exist"}.
func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,strongpassword"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, valid email and a password of 8+ characters with letters and numbers are required"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	ctx := c.Request.Context()
	_, err := h.store.FindByEmail(ctx, email)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "User exist"})
		return
	}
	if !errors.Is(err, users.ErrUserNotFound) {
		slog.Error("register lookup failed", "email", email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	hashed, err := authapi.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := users.User{
		Name:     input.Name,
		Email:    email,
		Password: &hashed,
		Role:     users.RoleUser,
	}
	err = h.store.Create(ctx, &user)
	if errors.Is(err, users.ErrEmailTaken) {
		c.JSON(http.StatusOK, gin.H{"message": "User exist"})
		return
	}
	if err != nil {
		slog.Error("register insert failed", "email", email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	})
}

// GetRole answers {role, isPremium}. Only the account itself or an admin may
// ask.
func (h *Handler) GetRole(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Param("email")))
	caller := c.GetString("email")
	if caller == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if !strings.EqualFold(caller, email) && c.GetString("role") != users.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	user, err := h.store.FindByEmail(c.Request.Context(), email)
	if errors.Is(err, users.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		slog.Error("role lookup failed", "email", email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	policy := access.ComputePolicy(*user)
	c.JSON(http.StatusOK, RoleResponse{Role: policy.Role, IsPremium: policy.IsPremium})
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	email := c.GetString("email")
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.store.FindByEmail(c.Request.Context(), email)
	if errors.Is(err, users.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		slog.Error("me lookup failed", "email", email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	c.JSON(http.StatusOK, BuildMeResponse(*user))
}

// PremiumStatus runs behind middleware.RequirePremium, which stores the
// loaded account under "account".
func (h *Handler) PremiumStatus(c *gin.Context) {
	v, ok := c.Get("account")
	user, _ := v.(*users.User)
	if !ok || user == nil {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Premium membership required"})
		return
	}
	c.JSON(http.StatusOK, BuildPremiumDTO(*user))
}
