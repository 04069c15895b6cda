package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lessons-api/internal/domain/billing"
	"lessons-api/internal/domain/users"
)

// liteDB is an in-memory database with the production schema. One connection
// keeps every statement on the same memory database.
func liteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&users.User{}, &billing.Payment{}))
	return db
}

func payment(txID, trackingID string) *billing.Payment {
	return &billing.Payment{
		Email:         "alice@example.com",
		Amount:        500,
		Currency:      "usd",
		TransactionID: txID,
		SessionID:     "cs_" + txID,
		TrackingID:    trackingID,
		Status:        billing.StatusPaid,
		PurchasedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestLedger_InsertDuplicateTransactionIsConflict(t *testing.T) {
	db := liteDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	_, err := ledger.FindByTransactionID(ctx, "pi_1")
	assert.ErrorIs(t, err, billing.ErrPaymentNotFound)

	require.NoError(t, ledger.Insert(ctx, payment("pi_1", "PKG-M1ABCDEF-000001")))

	err = ledger.Insert(ctx, payment("pi_1", "PKG-M1ABCDEF-000002"))
	assert.ErrorIs(t, err, billing.ErrLedgerConflict)

	var rows int64
	require.NoError(t, db.Model(&billing.Payment{}).Where("transaction_id = ?", "pi_1").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	got, err := ledger.FindByTransactionID(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "PKG-M1ABCDEF-000001", got.TrackingID)

	byTracking, err := ledger.FindByTrackingID(ctx, "PKG-M1ABCDEF-000001")
	require.NoError(t, err)
	assert.Equal(t, "pi_1", byTracking.TransactionID)

	_, err = ledger.FindByTrackingID(ctx, "PKG-M1ABCDEF-000002")
	assert.ErrorIs(t, err, billing.ErrPaymentNotFound)
}

func TestLedger_ConcurrentInsertsRecordOnce(t *testing.T) {
	ledger := NewLedger(liteDB(t))
	ctx := context.Background()

	const writers = 8
	var mu sync.Mutex
	var won, conflicts int
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		tracking := "PKG-M1ABCDEF-00000" + string(rune('A'+i))
		g.Go(func() error {
			err := ledger.Insert(ctx, payment("pi_race", tracking))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, billing.ErrLedgerConflict):
				conflicts++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, won)
	assert.Equal(t, writers-1, conflicts)
}

func TestLedger_DuplicateTrackingIDIsNotAConflict(t *testing.T) {
	ledger := NewLedger(liteDB(t))
	ctx := context.Background()

	require.NoError(t, ledger.Insert(ctx, payment("pi_1", "PKG-M1ABCDEF-000001")))
	err := ledger.Insert(ctx, payment("pi_2", "PKG-M1ABCDEF-000001"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, billing.ErrLedgerConflict)
}

func TestLedger_RevenueByCurrency(t *testing.T) {
	ledger := NewLedger(liteDB(t))
	ctx := context.Background()

	eur := payment("pi_1", "PKG-M1ABCDEF-000001")
	eur.Currency, eur.Amount = "eur", 19.99
	require.NoError(t, ledger.Insert(ctx, eur))
	require.NoError(t, ledger.Insert(ctx, payment("pi_2", "PKG-M1ABCDEF-000002")))
	require.NoError(t, ledger.Insert(ctx, payment("pi_3", "PKG-M1ABCDEF-000003")))

	rows, err := ledger.RevenueByCurrency(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "eur", rows[0].Currency)
	assert.Equal(t, int64(1), rows[0].Count)
	assert.Equal(t, "usd", rows[1].Currency)
	assert.InDelta(t, 1000.0, rows[1].Total, 0.001)
	assert.Equal(t, int64(2), rows[1].Count)

	history, err := ledger.ListByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestAccounts_GrantAndReplaceTrackingID(t *testing.T) {
	accounts := NewAccounts(liteDB(t))
	ctx := context.Background()
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, accounts.Create(ctx, &users.User{Name: "Alice", Email: "alice@example.com", Role: users.RoleUser}))
	assert.ErrorIs(t, accounts.Create(ctx, &users.User{Name: "Alice", Email: "alice@example.com", Role: users.RoleUser}), users.ErrEmailTaken)

	held, err := accounts.GrantPremium(ctx, "alice@example.com", "PKG-M1ABCDEF-000001", first)
	require.NoError(t, err)
	assert.Equal(t, "PKG-M1ABCDEF-000001", held)

	held, err = accounts.GrantPremium(ctx, "alice@example.com", "PKG-M1ABCDEF-000002", first.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "PKG-M1ABCDEF-000001", held, "first purchase keeps its id")

	// Stale expectation: nothing changes.
	require.NoError(t, accounts.ReplaceTrackingID(ctx, "alice@example.com", "PKG-M1ABCDEF-000009", "PKG-M1ABCDEF-000003"))
	u, err := accounts.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, u.TrackingID)
	assert.Equal(t, "PKG-M1ABCDEF-000001", *u.TrackingID)

	require.NoError(t, accounts.ReplaceTrackingID(ctx, "alice@example.com", "PKG-M1ABCDEF-000001", "PKG-M1ABCDEF-000003"))
	u, err = accounts.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsPremium)
	assert.Equal(t, "PKG-M1ABCDEF-000003", *u.TrackingID)
	require.NotNil(t, u.PurchasedAt)
	assert.True(t, first.Equal(u.PurchasedAt.UTC()))

	_, err = accounts.GrantPremium(ctx, "ghost@example.com", "PKG-M1ABCDEF-000004", first)
	assert.ErrorIs(t, err, users.ErrUserNotFound)

	total, err := accounts.Count(ctx)
	require.NoError(t, err)
	premium, err := accounts.CountPremium(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), premium)
}
