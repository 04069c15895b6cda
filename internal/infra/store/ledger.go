package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lessons-api/internal/domain/billing"
)

// Ledger persists payment records. The unique index on transaction_id is the
// idempotency barrier for checkout confirmation.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

type CurrencyRevenue struct {
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

func (l *Ledger) FindByTransactionID(ctx context.Context, transactionID string) (*billing.Payment, error) {
	var p billing.Payment
	err := l.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, billing.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment by transaction id: %w", err)
	}
	return &p, nil
}

func (l *Ledger) FindByTrackingID(ctx context.Context, trackingID string) (*billing.Payment, error) {
	var p billing.Payment
	err := l.db.WithContext(ctx).
		Where("tracking_id = ?", trackingID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, billing.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment by tracking id: %w", err)
	}
	return &p, nil
}

// Insert writes p in one statement; a duplicate transaction id affects no
// rows and reports billing.ErrLedgerConflict.
func (l *Ledger) Insert(ctx context.Context, p *billing.Payment) error {
	tx := insertPayment(l.db.WithContext(ctx), p)
	if tx.Error != nil {
		return fmt.Errorf("insert payment %s: %w", p.TransactionID, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return billing.ErrLedgerConflict
	}
	return nil
}

func insertPayment(db *gorm.DB, p *billing.Payment) *gorm.DB {
	return db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoNothing: true,
		}).
		Create(p)
}

func (l *Ledger) ListByEmail(ctx context.Context, email string) ([]billing.Payment, error) {
	var payments []billing.Payment
	err := l.db.WithContext(ctx).
		Where("email = ?", email).
		Order("purchased_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("list payments for %s: %w", email, err)
	}
	return payments, nil
}

func (l *Ledger) List(ctx context.Context, limit int) ([]billing.Payment, error) {
	var payments []billing.Payment
	q := l.db.WithContext(ctx).Order("purchased_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (l *Ledger) RevenueByCurrency(ctx context.Context) ([]CurrencyRevenue, error) {
	var rows []CurrencyRevenue
	err := l.db.WithContext(ctx).
		Model(&billing.Payment{}).
		Select("currency, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("status = ?", billing.StatusPaid).
		Group("currency").
		Order("currency").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("revenue by currency: %w", err)
	}
	return rows, nil
}
