package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const StatusPaid = "paid"

// Payment is an immutable ledger entry, one per gateway transaction.
type Payment struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string    `gorm:"not null;index" json:"email"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Currency      string    `gorm:"type:varchar(3);not null" json:"currency"`
	TransactionID string    `gorm:"column:transaction_id;not null;uniqueIndex:idx_payments_transaction_id" json:"transactionId"`
	SessionID     string    `gorm:"column:session_id;index" json:"sessionId"`
	TrackingID    string    `gorm:"column:tracking_id;not null;uniqueIndex:idx_payments_tracking_id" json:"trackingId"`
	Status        string    `gorm:"type:varchar(20);not null" json:"status"`
	PurchasedAt   time.Time `gorm:"column:purchased_at;not null" json:"paidAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
