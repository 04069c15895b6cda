package billing

import (
	"context"

	"lessons-api/internal/checkout"
	"lessons-api/internal/domain/billing"
)

type Checkout interface {
	CreateSession(ctx context.Context, id checkout.Identity, amount float64, currency string) (checkout.CreatedSession, error)
	ConfirmSession(ctx context.Context, id checkout.Identity, sessionID string) (checkout.Confirmation, error)
}

type PaymentHistory interface {
	ListByEmail(ctx context.Context, email string) ([]billing.Payment, error)
}

type Handler struct {
	checkout Checkout
	payments PaymentHistory
}

func NewHandler(co Checkout, payments PaymentHistory) *Handler {
	return &Handler{checkout: co, payments: payments}
}
