package repository

import (
	"context"

	"storefront-service/models"

	"gorm.io/gorm"
)

// ProductRepository defines data access for the product catalog.
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindAll(ctx context.Context, filters *models.ProductFilters, page, limit int) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
}

// GormProductRepository implements ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository.
func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID retrieves an enabled product with its categories and files.
func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Files", "is_enable = ?", true).
		Where("is_enable = ?", true).
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindAll retrieves paginated enabled products matching the given filters.
func (r *GormProductRepository) FindAll(ctx context.Context, filters *models.ProductFilters, page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("products.is_enable = ?", true)

	if filters != nil {
		if filters.CategoryID != nil {
			query = query.
				Joins("JOIN product_categories ON product_categories.product_id = products.id").
				Where("product_categories.category_id = ?", *filters.CategoryID)
		}
		if filters.IsNew != nil {
			query = query.Where("products.is_new = ?", *filters.IsNew)
		}
		if filters.IsOff != nil {
			query = query.Where("products.is_off = ?", *filters.IsOff)
		}
		if filters.InStock != nil {
			query = query.Where("products.is_stock = ?", *filters.InStock)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Categories").
		Offset(offset).
		Limit(limit).
		Order("products.created_at DESC").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Create inserts a new product.
func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update persists changes to an existing product.
func (r *GormProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}
