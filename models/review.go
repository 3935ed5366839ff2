package models

import "time"

// Review is a customer's comment and star rating on a product. New reviews
// are always unapproved and only appear publicly after moderation. The
// composite unique index enforces one review per customer per product at the
// storage layer; a violated insert is surfaced as a conflict, never a
// duplicate row.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProductID  uint      `gorm:"uniqueIndex:idx_reviews_customer_product;not null" json:"product_id"`
	CustomerID uint      `gorm:"uniqueIndex:idx_reviews_customer_product;not null" json:"customer_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Stars      int       `gorm:"not null" json:"stars"`
	IsApproved bool      `gorm:"not null;default:false" json:"is_approved"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SubmitReviewRequest is the payload for posting a review.
type SubmitReviewRequest struct {
	Text  string `json:"text" binding:"required,min=1"`
	Stars int    `json:"stars" binding:"required,min=1,max=5"`
}

// ProductReviews is the public read model: approved reviews plus their
// average rating, recomputed on every read.
type ProductReviews struct {
	Reviews      []Review `json:"reviews"`
	AverageStars float64  `json:"average_stars"`
}

// ReviewSubmittedEvent is published to SNS so moderators are notified of
// pending reviews.
type ReviewSubmittedEvent struct {
	EventType  string    `json:"event_type"`
	ReviewID   uint      `json:"review_id"`
	ProductID  uint      `json:"product_id"`
	CustomerID uint      `json:"customer_id"`
	Stars      int       `json:"stars"`
	Timestamp  time.Time `json:"timestamp"`
}
