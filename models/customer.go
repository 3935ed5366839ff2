package models

import "time"

// Identity carries the authenticated principal injected by the API gateway.
// Profile fields are optional; the customer resolver falls back to configured
// placeholders when they are empty.
type Identity struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
}

// Customer is the storefront-side profile linked 1:1 to a gateway principal.
// The unique index on UserID is what makes concurrent first-time resolution
// safe: the losing insert fails and re-reads the winner's row.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"user_id"`
	FirstName string    `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(50);not null" json:"last_name"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	Phone     string    `gorm:"type:varchar(20);not null" json:"phone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
