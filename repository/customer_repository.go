package repository

import (
	"context"

	"storefront-service/models"

	"gorm.io/gorm"
)

// CustomerRepository defines data access for customer profiles.
type CustomerRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
}

// GormCustomerRepository implements CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository.
func NewGormCustomerRepository(db *gorm.DB) CustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByUserID retrieves the customer linked to a gateway principal.
func (r *GormCustomerRepository) FindByUserID(ctx context.Context, userID string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Create inserts a new customer. The unique index on user_id rejects a
// second row for the same principal; callers treat that as "lost the race"
// and re-read.
func (r *GormCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}
