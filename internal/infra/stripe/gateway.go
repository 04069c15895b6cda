package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	stripego "github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"

	"lessons-api/internal/checkout"
	"lessons-api/internal/domain/billing"
)

type Config struct {
	SecretKey string
	// APIURL overrides https://api.stripe.com, used for local stubs.
	APIURL            string
	AppURL            string
	Timeout           time.Duration
	MaxNetworkRetries int64
}

// Gateway is the Stripe Checkout implementation of checkout.Gateway.
type Gateway struct {
	sessions   checkoutsession.Client
	successURL string
	cancelURL  string
}

func NewGateway(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	backendConfig := &stripego.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripego.Int64(cfg.MaxNetworkRetries),
	}
	if cfg.APIURL != "" {
		backendConfig.URL = stripego.String(cfg.APIURL)
	}
	backend := stripego.GetBackendWithConfig(stripego.APIBackend, backendConfig)

	appURL := strings.TrimRight(cfg.AppURL, "/")
	return &Gateway{
		sessions:   checkoutsession.Client{B: backend, Key: cfg.SecretKey},
		successURL: appURL + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  appURL + "/payment-cancelled",
	}
}

func (g *Gateway) CreateSession(ctx context.Context, email string, amountMinor int64, currency string) (checkout.CreatedSession, error) {
	params := &stripego.CheckoutSessionParams{
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripego.StringSlice([]string{string(stripego.PaymentMethodTypeCard)}),
		CustomerEmail:      stripego.String(email),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{
				PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripego.String(currency),
					UnitAmount: stripego.Int64(amountMinor),
					ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripego.String(billing.ProductName),
						Description: stripego.String(billing.ProductDescription),
					},
				},
				Quantity: stripego.Int64(1),
			},
		},
		SuccessURL: stripego.String(g.successURL),
		CancelURL:  stripego.String(g.cancelURL),
	}
	params.AddMetadata("email", email)
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		return checkout.CreatedSession{}, classify(err)
	}
	return checkout.CreatedSession{SessionID: s.ID, RedirectURL: s.URL}, nil
}

func (g *Gateway) RetrieveSession(ctx context.Context, sessionID string) (checkout.Session, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.sessions.Get(sessionID, params)
	if err != nil {
		return checkout.Session{}, classify(err)
	}

	out := checkout.Session{
		ID:          s.ID,
		Status:      NormalizeSessionStatus(s.PaymentStatus, s.Status),
		Email:       sessionEmail(s),
		AmountMinor: s.AmountTotal,
		Currency:    string(s.Currency),
	}
	if s.PaymentIntent != nil {
		out.TransactionID = s.PaymentIntent.ID
	}
	return out, nil
}

// sessionEmail prefers the email we attached at creation.
func sessionEmail(s *stripego.CheckoutSession) string {
	if s.Metadata != nil && s.Metadata["email"] != "" {
		return s.Metadata["email"]
	}
	if s.CustomerEmail != "" {
		return s.CustomerEmail
	}
	if s.CustomerDetails != nil {
		return s.CustomerDetails.Email
	}
	return ""
}

func classify(err error) error {
	var se *stripego.Error
	if errors.As(err, &se) {
		if se.HTTPStatusCode == http.StatusNotFound || se.Code == stripego.ErrorCodeResourceMissing {
			return fmt.Errorf("%w: %s", checkout.ErrSessionNotFound, se.Msg)
		}
		return fmt.Errorf("%w: stripe %d %s: %s", checkout.ErrPaymentGateway, se.HTTPStatusCode, se.Type, se.Msg)
	}
	return fmt.Errorf("%w: %v", checkout.ErrPaymentGateway, err)
}
