package users

import "time"

type MeResponse struct {
	User    UserDTO     `json:"user"`
	Premium *PremiumDTO `json:"premium"`
	Access  AccessDTO   `json:"access"`
}

type RoleResponse struct {
	Role      string `json:"role"`
	IsPremium bool   `json:"isPremium"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

/* ---------- PREMIUM ---------- */

type PremiumDTO struct {
	TrackingID  string     `json:"trackingId"`
	PurchasedAt *time.Time `json:"purchasedAt"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State        string   `json:"state"` // free|premium
	Capabilities []string `json:"capabilities"`
}
