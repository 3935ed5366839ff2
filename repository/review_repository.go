package repository

import (
	"context"

	"storefront-service/models"

	"gorm.io/gorm"
)

// ReviewRepository defines data access for product reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	FindApprovedByProduct(ctx context.Context, productID uint) ([]models.Review, error)
	AverageStars(ctx context.Context, productID uint) (float64, error)
	FindByID(ctx context.Context, id uint) (*models.Review, error)
	Approve(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

// GormReviewRepository implements ReviewRepository using GORM.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository.
func NewGormReviewRepository(db *gorm.DB) ReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create inserts a new review. The unique index on
// (customer_id, product_id) rejects a second review by the same customer;
// callers map that violation to a conflict.
func (r *GormReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// FindApprovedByProduct retrieves approved reviews for a product, newest
// first.
func (r *GormReviewRepository) FindApprovedByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_approved = ?", productID, true).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// AverageStars computes the average rating over approved reviews only,
// returning 0 when there are none.
func (r *GormReviewRepository) AverageStars(ctx context.Context, productID uint) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("product_id = ? AND is_approved = ?", productID, true).
		Select("COALESCE(AVG(stars), 0)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return avg, nil
}

// FindByID retrieves a review by id.
func (r *GormReviewRepository) FindByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Approve marks a review as moderated and visible.
func (r *GormReviewRepository) Approve(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", id).
		Update("is_approved", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a rejected review.
func (r *GormReviewRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
