package checkout

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"lessons-api/internal/domain/billing"
	"lessons-api/internal/domain/users"
)

// Service creates checkout sessions and turns paid sessions into premium
// entitlements. The ledger's unique transaction id is the only serialization
// point between concurrent confirmations.
type Service struct {
	gateway  Gateway
	ledger   Ledger
	accounts Accounts
	tracking TrackingIDs
	now      func() time.Time
	log      *slog.Logger
}

type Option func(*Service)

func WithTrackingIDs(t TrackingIDs) Option {
	return func(s *Service) { s.tracking = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(gateway Gateway, ledger Ledger, accounts Accounts, opts ...Option) *Service {
	s := &Service{
		gateway:  gateway,
		ledger:   ledger,
		accounts: accounts,
		tracking: billing.NewTrackingIDGenerator(),
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ToMinorUnits converts a major-unit amount to minor units, rounding half away
// from zero.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateSession opens a gateway session for the fixed premium product. The
// session is always bound to the caller's email.
func (s *Service) CreateSession(ctx context.Context, id Identity, amount float64, currency string) (CreatedSession, error) {
	if strings.TrimSpace(id.Email) == "" {
		return CreatedSession{}, newError(KindUnauthorized, "caller is not authenticated", nil)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return CreatedSession{}, newError(KindInvalidArgument, "amount must be a positive number", nil)
	}
	cur, ok := normalizeCurrency(currency)
	if !ok {
		return CreatedSession{}, newError(KindInvalidArgument, "currency must be a 3-letter code", nil)
	}
	minor := ToMinorUnits(amount)
	if minor < 1 {
		return CreatedSession{}, newError(KindInvalidArgument, "amount is below the smallest currency unit", nil)
	}

	created, err := s.gateway.CreateSession(ctx, id.Email, minor, cur)
	if err != nil {
		s.log.ErrorContext(ctx, "create checkout session failed", "email", id.Email, "error", err)
		return CreatedSession{}, newError(KindPaymentGateway, "could not create checkout session", err)
	}

	sessionsCreated.Inc()
	s.log.InfoContext(ctx, "checkout session created",
		"email", id.Email,
		"session_id", created.SessionID,
		"amount_minor", minor,
		"currency", cur,
	)
	return created, nil
}

// ConfirmSession settles a session. Calling it repeatedly or concurrently for
// the same transaction yields one ledger record, one grant, and the same
// tracking id for every caller.
func (s *Service) ConfirmSession(ctx context.Context, id Identity, sessionID string) (Confirmation, error) {
	if strings.TrimSpace(id.Email) == "" {
		return Confirmation{}, newError(KindUnauthorized, "caller is not authenticated", nil)
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Confirmation{}, newError(KindInvalidArgument, "session id is required", nil)
	}

	sess, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		confirmations.WithLabelValues(outcomeError).Inc()
		if errors.Is(err, ErrSessionNotFound) {
			return Confirmation{}, newError(KindSessionNotFound, "checkout session not found", err)
		}
		s.log.ErrorContext(ctx, "retrieve checkout session failed", "session_id", sessionID, "error", err)
		return Confirmation{}, newError(KindPaymentGateway, "could not retrieve checkout session", err)
	}

	if sess.Email != id.Email && !id.IsAdmin() {
		confirmations.WithLabelValues(outcomeError).Inc()
		return Confirmation{}, newError(KindForbidden, "checkout session belongs to another account", nil)
	}

	if sess.TransactionID != "" {
		existing, err := s.ledger.FindByTransactionID(ctx, sess.TransactionID)
		switch {
		case err == nil:
			confirmations.WithLabelValues(outcomeReplayed).Inc()
			return replayed(existing), nil
		case !errors.Is(err, billing.ErrPaymentNotFound):
			confirmations.WithLabelValues(outcomeError).Inc()
			return Confirmation{}, newError(KindInternal, "could not read payment ledger", err)
		}
	}

	if sess.Status != SessionPaid {
		confirmations.WithLabelValues(outcomeNotPaid).Inc()
		return Confirmation{Paid: false, Status: sess.Status}, nil
	}

	if sess.TransactionID == "" || sess.Email == "" {
		confirmations.WithLabelValues(outcomeError).Inc()
		return Confirmation{}, newError(KindPaymentGateway, "paid session is missing transaction id or email", nil)
	}

	return s.settle(ctx, sess)
}

func (s *Service) settle(ctx context.Context, sess Session) (Confirmation, error) {
	trackingID, err := s.tracking.New()
	if err != nil {
		confirmations.WithLabelValues(outcomeError).Inc()
		return Confirmation{}, newError(KindInternal, "could not generate tracking id", err)
	}
	paidAt := s.now().UTC()

	held, err := s.accounts.GrantPremium(ctx, sess.Email, trackingID, paidAt)
	if err != nil {
		confirmations.WithLabelValues(outcomeError).Inc()
		if errors.Is(err, users.ErrUserNotFound) {
			return Confirmation{}, newError(KindAccountNotFound, "no account matches the session email", err)
		}
		return Confirmation{}, newError(KindInternal, "could not grant premium access", err)
	}

	payment := &billing.Payment{
		Email:         sess.Email,
		Amount:        float64(sess.AmountMinor) / 100,
		Currency:      sess.Currency,
		TransactionID: sess.TransactionID,
		SessionID:     sess.ID,
		TrackingID:    trackingID,
		Status:        billing.StatusPaid,
		PurchasedAt:   paidAt,
	}

	err = s.ledger.Insert(ctx, payment)
	if errors.Is(err, billing.ErrLedgerConflict) {
		return s.resolveConflict(ctx, sess, held)
	}
	if err != nil {
		confirmations.WithLabelValues(outcomeError).Inc()
		return Confirmation{}, newError(KindInternal, "could not record payment", err)
	}
	s.reconcileAccount(ctx, sess.Email, held, trackingID)

	confirmations.WithLabelValues(outcomeGranted).Inc()
	s.log.InfoContext(ctx, "premium granted",
		"email", sess.Email,
		"transaction_id", sess.TransactionID,
		"tracking_id", trackingID,
	)

	return Confirmation{
		Paid:          true,
		Status:        SessionPaid,
		TrackingID:    trackingID,
		TransactionID: sess.TransactionID,
	}, nil
}

// resolveConflict handles losing the insert race: the winner's record stands
// and the account is pointed at it when it holds an unrecorded id.
func (s *Service) resolveConflict(ctx context.Context, sess Session, held string) (Confirmation, error) {
	winner, err := s.ledger.FindByTransactionID(ctx, sess.TransactionID)
	if err != nil {
		confirmations.WithLabelValues(outcomeError).Inc()
		return Confirmation{}, newError(KindInternal, "could not read payment ledger after conflict", err)
	}
	s.reconcileAccount(ctx, sess.Email, held, winner.TrackingID)

	confirmations.WithLabelValues(outcomeConflict).Inc()
	s.log.InfoContext(ctx, "confirmation lost ledger race",
		"email", sess.Email,
		"transaction_id", sess.TransactionID,
		"tracking_id", winner.TrackingID,
	)
	return replayed(winner), nil
}

// reconcileAccount swaps the account's tracking id for recorded when the held
// one has no ledger record. That happens when this or an earlier attempt
// granted premium and then lost the insert race or failed to insert. A held
// id backed by a record belongs to an earlier purchase and stays.
func (s *Service) reconcileAccount(ctx context.Context, email, held, recorded string) {
	if held == "" || held == recorded {
		return
	}
	_, err := s.ledger.FindByTrackingID(ctx, held)
	if err == nil {
		return
	}
	if !errors.Is(err, billing.ErrPaymentNotFound) {
		s.log.WarnContext(ctx, "could not check account tracking id",
			"email", email,
			"tracking_id", held,
			"error", err,
		)
		return
	}
	if err := s.accounts.ReplaceTrackingID(ctx, email, held, recorded); err != nil {
		s.log.WarnContext(ctx, "could not reconcile account tracking id",
			"email", email,
			"tracking_id", recorded,
			"discarded_tracking_id", held,
			"error", err,
		)
	}
}

func replayed(p *billing.Payment) Confirmation {
	return Confirmation{
		Paid:          true,
		Status:        SessionPaid,
		TrackingID:    p.TrackingID,
		TransactionID: p.TransactionID,
		Replayed:      true,
	}
}

func normalizeCurrency(c string) (string, bool) {
	c = strings.ToLower(strings.TrimSpace(c))
	if len(c) != 3 {
		return "", false
	}
	for _, r := range c {
		if r < 'a' || r > 'z' {
			return "", false
		}
	}
	return c, true
}
