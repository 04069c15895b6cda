package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"lessons-api/internal/domain/billing"
	"lessons-api/internal/domain/users"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateSession(ctx context.Context, email string, amountMinor int64, currency string) (CreatedSession, error) {
	args := m.Called(ctx, email, amountMinor, currency)
	return args.Get(0).(CreatedSession), args.Error(1)
}

func (m *mockGateway) RetrieveSession(ctx context.Context, sessionID string) (Session, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(Session), args.Error(1)
}

// memLedger enforces transaction id uniqueness the way the database index does.
type memLedger struct {
	mu      sync.Mutex
	records map[string]billing.Payment
	inserts int
	findErr error
	// insertErr fails the next Insert once.
	insertErr error
	// beforeInsert runs outside the lock, used to widen race windows.
	beforeInsert func()
}

func newMemLedger() *memLedger {
	return &memLedger{records: map[string]billing.Payment{}}
}

func (l *memLedger) FindByTransactionID(_ context.Context, txID string) (*billing.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.findErr != nil {
		return nil, l.findErr
	}
	p, ok := l.records[txID]
	if !ok {
		return nil, billing.ErrPaymentNotFound
	}
	return &p, nil
}

func (l *memLedger) FindByTrackingID(_ context.Context, trackingID string) (*billing.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.records {
		if p.TrackingID == trackingID {
			return &p, nil
		}
	}
	return nil, billing.ErrPaymentNotFound
}

func (l *memLedger) Insert(_ context.Context, p *billing.Payment) error {
	if l.beforeInsert != nil {
		l.beforeInsert()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.insertErr; err != nil {
		l.insertErr = nil
		return err
	}
	if _, exists := l.records[p.TransactionID]; exists {
		return billing.ErrLedgerConflict
	}
	l.inserts++
	l.records[p.TransactionID] = *p
	return nil
}

func (l *memLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

type memAccounts struct {
	mu       sync.Mutex
	users    map[string]*users.User
	grants   int
	grantErr error
}

func newMemAccounts(emails ...string) *memAccounts {
	a := &memAccounts{users: map[string]*users.User{}}
	for i, e := range emails {
		a.users[e] = &users.User{ID: uint(i + 1), Email: e, Role: users.RoleUser}
	}
	return a
}

// GrantPremium keeps the first purchase's tracking id, like the SQL COALESCE.
func (a *memAccounts) GrantPremium(_ context.Context, email, trackingID string, at time.Time) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.grantErr != nil {
		return "", a.grantErr
	}
	u, ok := a.users[email]
	if !ok {
		return "", users.ErrUserNotFound
	}
	if !u.IsPremium {
		a.grants++
	}
	u.IsPremium = true
	if u.TrackingID == nil {
		id := trackingID
		u.TrackingID = &id
		ts := at
		u.PurchasedAt = &ts
	}
	return *u.TrackingID, nil
}

func (a *memAccounts) ReplaceTrackingID(_ context.Context, email, from, to string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[email]
	if !ok {
		return users.ErrUserNotFound
	}
	if u.TrackingID != nil && *u.TrackingID == from {
		id := to
		u.TrackingID = &id
	}
	return nil
}

func (a *memAccounts) get(email string) users.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.users[email]
}

type failingTracking struct{}

func (failingTracking) New() (string, error) { return "", errors.New("no entropy") }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
