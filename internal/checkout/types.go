package checkout

import (
	"context"
	"time"

	"lessons-api/internal/domain/billing"
	"lessons-api/internal/domain/users"
)

// Gateway session statuses as seen by the orchestrator.
const (
	SessionPaid    = "paid"
	SessionPending = "pending"
	SessionExpired = "expired"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == users.RoleAdmin
}

type CreatedSession struct {
	SessionID   string
	RedirectURL string
}

// Session is the gateway view of a checkout session.
type Session struct {
	ID            string
	Status        string
	TransactionID string
	Email         string
	AmountMinor   int64
	Currency      string
}

type Confirmation struct {
	Paid          bool
	Status        string
	TrackingID    string
	TransactionID string
	// Replayed is set when an existing ledger record answered the call.
	Replayed bool
}

type Gateway interface {
	CreateSession(ctx context.Context, email string, amountMinor int64, currency string) (CreatedSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (Session, error)
}

// Ledger must return billing.ErrPaymentNotFound from the Find methods when
// nothing matches and billing.ErrLedgerConflict from Insert when a record with
// the same transaction id exists.
type Ledger interface {
	FindByTransactionID(ctx context.Context, transactionID string) (*billing.Payment, error)
	FindByTrackingID(ctx context.Context, trackingID string) (*billing.Payment, error)
	Insert(ctx context.Context, p *billing.Payment) error
}

// Accounts returns users.ErrUserNotFound for unknown emails. GrantPremium
// reports the tracking id the account holds after the grant.
type Accounts interface {
	GrantPremium(ctx context.Context, email, trackingID string, at time.Time) (string, error)
	ReplaceTrackingID(ctx context.Context, email, from, to string) error
}

type TrackingIDs interface {
	New() (string, error)
}
