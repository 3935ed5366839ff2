package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository defines data access for carts and their items.
type CartRepository interface {
	FindActiveByCustomer(ctx context.Context, customerID uint) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	AddItems(ctx context.Context, cartID uint, lines []models.CartLine) error
	FindItemByID(ctx context.Context, itemID uint) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error
	DeleteItem(ctx context.Context, itemID uint) error
}

// GormCartRepository implements CartRepository using GORM.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository.
func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

// FindActiveByCustomer retrieves the customer's most recent active cart with
// its items and products preloaded.
func (r *GormCartRepository) FindActiveByCustomer(ctx context.Context, customerID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("customer_id = ? AND is_active = ?", customerID, true).
		Order("created_at DESC").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new cart. The partial unique index on
// (customer_id) WHERE is_active rejects a second active cart per customer;
// callers treat the violation as "lost the race" and re-read.
func (r *GormCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

// AddItems applies a batch of (product, quantity) lines to a cart inside a
// single transaction. An unknown product aborts and rolls back the entire
// batch. Each line is an upsert against the (cart_id, product_id) unique
// index: a fresh line inserts with its quantity, a repeat add increments the
// existing row.
func (r *GormCartRepository) AddItems(ctx context.Context, cartID uint, lines []models.CartLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			var product models.Product
			err := tx.Select("id").Where("is_enable = ?", true).First(&product, line.ProductID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", line.ProductID, gorm.ErrRecordNotFound)
				}
				return err
			}

			item := models.CartItem{
				CartID:    cartID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			}
			err = tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
				}),
			}).Create(&item).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// FindItemByID retrieves a single cart item.
func (r *GormCartRepository) FindItemByID(ctx context.Context, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).Preload("Product").First(&item, itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemQuantity sets the quantity of a cart item.
func (r *GormCartRepository) UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteItem removes a cart item.
func (r *GormCartRepository) DeleteItem(ctx context.Context, itemID uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CartItem{}, itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
