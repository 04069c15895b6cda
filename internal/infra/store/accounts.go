package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"lessons-api/internal/domain/users"
)

type Accounts struct {
	db *gorm.DB
}

func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

func (a *Accounts) Create(ctx context.Context, u *users.User) error {
	err := a.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return users.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (a *Accounts) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	var u users.User
	err := a.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

// GrantPremium flips the premium flag and returns the tracking id the account
// holds afterwards. Tracking id and purchase time are only filled on the first
// purchase.
func (a *Accounts) GrantPremium(ctx context.Context, email, trackingID string, at time.Time) (string, error) {
	var held string
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := grantPremium(tx, email, trackingID, at)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return users.ErrUserNotFound
		}
		return tx.Model(&users.User{}).
			Select("tracking_id").
			Where("email = ?", email).
			Row().
			Scan(&held)
	})
	if errors.Is(err, users.ErrUserNotFound) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("grant premium to %s: %w", email, err)
	}
	return held, nil
}

// ReplaceTrackingID swaps from for to only while the account still holds from.
func (a *Accounts) ReplaceTrackingID(ctx context.Context, email, from, to string) error {
	err := replaceTrackingID(a.db.WithContext(ctx), email, from, to).Error
	if err != nil {
		return fmt.Errorf("replace tracking id for %s: %w", email, err)
	}
	return nil
}

func (a *Accounts) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := a.db.WithContext(ctx).Model(&users.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (a *Accounts) CountPremium(ctx context.Context) (int64, error) {
	var n int64
	err := a.db.WithContext(ctx).
		Model(&users.User{}).
		Where("is_premium = ?", true).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count premium users: %w", err)
	}
	return n, nil
}

func grantPremium(db *gorm.DB, email, trackingID string, at time.Time) *gorm.DB {
	return db.
		Model(&users.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"is_premium":   true,
			"tracking_id":  gorm.Expr("COALESCE(tracking_id, ?)", trackingID),
			"purchased_at": gorm.Expr("COALESCE(purchased_at, ?)", at),
		})
}

func replaceTrackingID(db *gorm.DB, email, from, to string) *gorm.DB {
	return db.
		Model(&users.User{}).
		Where("email = ? AND tracking_id = ?", email, from).
		Update("tracking_id", to)
}
