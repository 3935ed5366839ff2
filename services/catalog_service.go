package services

import (
	"context"
	"errors"

	"storefront-service/models"
	"storefront-service/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService exposes the product catalog.
type CatalogService interface {
	ListProducts(ctx context.Context, filters *models.ProductFilters, page, limit int) ([]models.Product, int64, *ServiceError)
	GetProduct(ctx context.Context, id uint) (*models.Product, *ServiceError)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	UpdateProduct(ctx context.Context, id uint, req *models.UpdateProductRequest) (*models.Product, *ServiceError)
}

// catalogServiceImpl implements CatalogService.
type catalogServiceImpl struct {
	repo   repository.ProductRepository
	cache  *CatalogCache
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repository.ProductRepository, cache *CatalogCache, logger *zap.Logger) CatalogService {
	return &catalogServiceImpl{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// ListProducts returns a paginated catalog page, served from cache when
// possible.
func (s *catalogServiceImpl) ListProducts(ctx context.Context, filters *models.ProductFilters, page, limit int) ([]models.Product, int64, *ServiceError) {
	if products, total, ok := s.cache.GetProductList(ctx, filters, page, limit); ok {
		return products, total, nil
	}

	products, total, err := s.repo.FindAll(ctx, filters, page, limit)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: 500, Message: "Failed to list products"}
	}

	s.cache.SetProductList(filters, page, limit, products, total)
	return products, total, nil
}

// GetProduct returns one product, read-through cached.
func (s *catalogServiceImpl) GetProduct(ctx context.Context, id uint) (*models.Product, *ServiceError) {
	if product, ok := s.cache.GetProduct(ctx, id); ok {
		return product, nil
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to load product", zap.Uint("product_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load product"}
	}

	s.cache.SetProduct(product)
	return product, nil
}

// CreateProduct adds a product to the catalog (admin only).
func (s *catalogServiceImpl) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	inStock := true
	if req.IsStock != nil {
		inStock = *req.IsStock
	}

	product := &models.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		IsStock:     inStock,
		IsNew:       req.IsNew,
		IsOff:       req.IsOff,
		OffPrice:    req.OffPrice,
		IsEnable:    true,
	}
	for _, categoryID := range req.CategoryIDs {
		product.Categories = append(product.Categories, models.Category{ID: categoryID})
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.String("title", req.Title), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create product"}
	}

	s.cache.InvalidateProduct(ctx, product.ID)
	s.logger.Info("Product created", zap.Uint("product_id", product.ID), zap.String("title", product.Title))
	return product, nil
}

// UpdateProduct edits a product (admin only); only supplied fields change.
func (s *catalogServiceImpl) UpdateProduct(ctx context.Context, id uint, req *models.UpdateProductRequest) (*models.Product, *ServiceError) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to load product", zap.Uint("product_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update product"}
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.IsStock != nil {
		product.IsStock = *req.IsStock
	}
	if req.IsNew != nil {
		product.IsNew = *req.IsNew
	}
	if req.IsOff != nil {
		product.IsOff = *req.IsOff
	}
	if req.OffPrice != nil {
		product.OffPrice = *req.OffPrice
	}
	if req.IsEnable != nil {
		product.IsEnable = *req.IsEnable
	}

	if err := s.repo.Update(ctx, product); err != nil {
		s.logger.Error("Failed to update product", zap.Uint("product_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update product"}
	}

	s.cache.InvalidateProduct(ctx, product.ID)
	s.logger.Info("Product updated", zap.Uint("product_id", product.ID))
	return product, nil
}
