package repository

import (
	"context"

	"storefront-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository defines data access for orders.
type OrderRepository interface {
	Place(ctx context.Context, order *models.Order, cartID uint) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByCustomer(ctx context.Context, customerID uint) ([]models.Order, error)
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// Place persists the order with its items and deactivates the source cart
// in one transaction, so a half-placed order can never leave the cart open.
func (r *GormOrderRepository) Place(ctx context.Context, order *models.Order, cartID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Cart{}).
			Where("id = ? AND is_active = ?", cartID, true).
			Update("is_active", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// FindByID retrieves an order with its items.
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByCustomer retrieves a customer's orders, newest first.
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
