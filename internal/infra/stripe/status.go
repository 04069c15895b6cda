package stripe

import (
	stripego "github.com/stripe/stripe-go/v75"

	"lessons-api/internal/checkout"
)

// NormalizeSessionStatus collapses Stripe's two checkout session status
// fields into paid|pending|expired. Only a captured payment counts as paid.
func NormalizeSessionStatus(payment stripego.CheckoutSessionPaymentStatus, status stripego.CheckoutSessionStatus) string {
	if payment == stripego.CheckoutSessionPaymentStatusPaid {
		return checkout.SessionPaid
	}
	if status == stripego.CheckoutSessionStatusExpired {
		return checkout.SessionExpired
	}
	return checkout.SessionPending
}
