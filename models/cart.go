package models

import "time"

// Cart holds a customer's pending items. A customer has at most one active
// cart at a time (partial unique index on customer_id where is_active);
// checkout deactivates it and the next add starts a fresh one.
type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CustomerID uint       `gorm:"index;not null" json:"customer_id"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`
	Items      []CartItem `gorm:"foreignKey:CartID" json:"items"`
	TotalPrice int        `gorm:"-" json:"total_price"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// CartItem is one product line in a cart. The composite unique index backs
// the add-items upsert: repeat adds increment quantity instead of inserting
// a second row.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_items_cart_product;not null" json:"cart_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_items_cart_product;not null" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CartLine is a resolved (product, quantity) pair for a batch add.
type CartLine struct {
	ProductID uint
	Quantity  int
}

// AddItemsRequest carries parallel arrays of product ids and quantities, the
// wire contract for batch cart adds.
type AddItemsRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required"`
	Quantities []string `json:"quantities" binding:"required"`
}

// UpdateItemRequest sets a cart item's quantity. A value of zero or less
// removes the item.
type UpdateItemRequest struct {
	Quantity string `json:"quantity" binding:"required"`
}
