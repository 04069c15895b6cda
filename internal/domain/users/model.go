package users

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       uint `gorm:"primaryKey"`
	Name     string
	Email    string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password *string `json:"-"`
	Role     string  `gorm:"type:varchar(20);not null;default:'user'"`

	// Entitlement, written only by the checkout confirmation.
	IsPremium   bool       `gorm:"column:is_premium;not null;default:false"`
	TrackingID  *string    `gorm:"column:tracking_id;uniqueIndex:idx_users_tracking_id"`
	PurchasedAt *time.Time `gorm:"column:purchased_at"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
