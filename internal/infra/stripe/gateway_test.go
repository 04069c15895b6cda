package stripe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	stripego "github.com/stripe/stripe-go/v75"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lessons-api/internal/checkout"
	"lessons-api/internal/domain/billing"
)

func newTestGateway(t *testing.T, h http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewGateway(Config{
		SecretKey: "sk_test_123",
		APIURL:    srv.URL,
		AppURL:    "https://lessons.example/",
	})
}

func TestGateway_CreateSession(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))
		assert.Equal(t, "a@x.com", r.PostForm.Get("customer_email"))
		assert.Equal(t, "a@x.com", r.PostForm.Get("metadata[email]"))
		assert.Equal(t, "50000", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "bdt", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, billing.ProductName, r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "https://lessons.example/payment-success?session_id={CHECKOUT_SESSION_ID}", r.PostForm.Get("success_url"))
		assert.Equal(t, "https://lessons.example/payment-cancelled", r.PostForm.Get("cancel_url"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	})

	got, err := g.CreateSession(context.Background(), "a@x.com", 50000, "bdt")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", got.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", got.RedirectURL)
}

func TestGateway_RetrieveSession(t *testing.T) {
	tests := []struct {
		name string
		body string
		want checkout.Session
	}{
		{
			name: "paid",
			body: `{"id":"cs_1","object":"checkout.session","status":"complete","payment_status":"paid",
				"payment_intent":"pi_123","customer_email":"a@x.com","metadata":{"email":"a@x.com"},
				"amount_total":50000,"currency":"bdt"}`,
			want: checkout.Session{ID: "cs_1", Status: checkout.SessionPaid, TransactionID: "pi_123", Email: "a@x.com", AmountMinor: 50000, Currency: "bdt"},
		},
		{
			name: "open",
			body: `{"id":"cs_1","object":"checkout.session","status":"open","payment_status":"unpaid",
				"customer_details":{"email":"a@x.com"},"amount_total":50000,"currency":"bdt"}`,
			want: checkout.Session{ID: "cs_1", Status: checkout.SessionPending, Email: "a@x.com", AmountMinor: 50000, Currency: "bdt"},
		},
		{
			name: "expired",
			body: `{"id":"cs_1","object":"checkout.session","status":"expired","payment_status":"unpaid",
				"customer_email":"a@x.com","amount_total":1999,"currency":"usd"}`,
			want: checkout.Session{ID: "cs_1", Status: checkout.SessionExpired, Email: "a@x.com", AmountMinor: 1999, Currency: "usd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := g.RetrieveSession(context.Background(), "cs_1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGateway_RetrieveSession_EmailPrecedence(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_9","object":"checkout.session","status":"complete","payment_status":"paid",
			"payment_intent":"pi_9","metadata":{"email":"owner@x.com"},"customer_email":"typed@x.com",
			"customer_details":{"email":"card@x.com"},"amount_total":100,"currency":"usd"}`))
	})

	sess, err := g.RetrieveSession(context.Background(), "cs_9")
	require.NoError(t, err)
	assert.Equal(t, "owner@x.com", sess.Email)
}

func TestGateway_RetrieveSession_NotFound(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","param":"session","message":"No such checkout.session: cs_missing"}}`))
	})

	_, err := g.RetrieveSession(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, checkout.ErrSessionNotFound))
}

func TestGateway_ServerError(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"something broke"}}`))
	})

	_, err := g.RetrieveSession(context.Background(), "cs_1")
	assert.True(t, errors.Is(err, checkout.ErrPaymentGateway))

	_, err = g.CreateSession(context.Background(), "a@x.com", 100, "usd")
	assert.True(t, errors.Is(err, checkout.ErrPaymentGateway))
}

func TestGateway_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := NewGateway(Config{SecretKey: "sk_test_123", APIURL: url})
	_, err := g.RetrieveSession(context.Background(), "cs_1")
	assert.True(t, errors.Is(err, checkout.ErrPaymentGateway))
	assert.False(t, errors.Is(err, checkout.ErrSessionNotFound))
}

func TestNormalizeSessionStatus(t *testing.T) {
	tests := []struct {
		payment stripego.CheckoutSessionPaymentStatus
		status  stripego.CheckoutSessionStatus
		want    string
	}{
		{stripego.CheckoutSessionPaymentStatusPaid, stripego.CheckoutSessionStatusComplete, checkout.SessionPaid},
		{stripego.CheckoutSessionPaymentStatusUnpaid, stripego.CheckoutSessionStatusOpen, checkout.SessionPending},
		{stripego.CheckoutSessionPaymentStatusUnpaid, stripego.CheckoutSessionStatusComplete, checkout.SessionPending},
		{stripego.CheckoutSessionPaymentStatusNoPaymentRequired, stripego.CheckoutSessionStatusComplete, checkout.SessionPending},
		{stripego.CheckoutSessionPaymentStatusUnpaid, stripego.CheckoutSessionStatusExpired, checkout.SessionExpired},
		{"", "", checkout.SessionPending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSessionStatus(tt.payment, tt.status), "%s/%s", tt.payment, tt.status)
	}
}
