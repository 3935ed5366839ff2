package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is a completed checkout. Billing fields are snapshotted from the
// checkout form; item unit prices are snapshotted from the product at
// checkout time so later price changes do not rewrite history.
type Order struct {
	ID              uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID      uint        `gorm:"index;not null" json:"customer_id"`
	FirstName       string      `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName        string      `gorm:"type:varchar(50);not null" json:"last_name"`
	Email           string      `gorm:"type:varchar(255);not null" json:"email"`
	Address         string      `gorm:"type:varchar(255);not null" json:"address"`
	City            string      `gorm:"type:varchar(100);not null" json:"city"`
	Country         string      `gorm:"type:varchar(100);not null" json:"country"`
	ZipCode         string      `gorm:"type:varchar(20);not null" json:"zip_code"`
	Telephone       string      `gorm:"type:varchar(20);not null" json:"telephone"`
	ShippingAddress string      `gorm:"type:varchar(255)" json:"shipping_address,omitempty"`
	ShipToDifferent bool        `gorm:"not null;default:false" json:"ship_to_different"`
	OrderNotes      string      `gorm:"type:text" json:"order_notes,omitempty"`
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	TotalPrice      int         `gorm:"-" json:"total_price"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderItem is one purchased line. UnitPrice is the product price at
// checkout time, in minor currency units.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID uint      `gorm:"not null" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice int       `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// CheckoutRequest mirrors the storefront checkout form.
type CheckoutRequest struct {
	FirstName       string `json:"first_name" binding:"required,max=50"`
	LastName        string `json:"last_name" binding:"required,max=50"`
	Email           string `json:"email" binding:"required,email"`
	Address         string `json:"address" binding:"required,max=255"`
	City            string `json:"city" binding:"required,max=100"`
	Country         string `json:"country" binding:"required,max=100"`
	ZipCode         string `json:"zip_code" binding:"required,max=20"`
	Telephone       string `json:"telephone" binding:"required,max=20"`
	ShippingAddress string `json:"shipping_address" binding:"omitempty,max=255"`
	ShipToDifferent bool   `json:"ship_to_different"`
	OrderNotes      string `json:"order_notes"`
}

// OrderPlacedEvent is published to Kafka after a successful checkout for
// downstream payment and fulfillment consumers.
type OrderPlacedEvent struct {
	EventType  string            `json:"event_type"`
	OrderID    string            `json:"order_id"`
	UserID     string            `json:"user_id"`
	Email      string            `json:"email"`
	Items      []OrderPlacedItem `json:"items"`
	TotalPrice int               `json:"total_price"`
	Timestamp  time.Time         `json:"timestamp"`
}

// OrderPlacedItem is one line of an OrderPlacedEvent.
type OrderPlacedItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
	UnitPrice int  `json:"unit_price"`
}
