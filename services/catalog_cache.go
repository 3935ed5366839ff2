package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	productCachePrefix     = "product:detail:"
	productListCachePrefix = "products:v:"
	cacheVersionKey        = "products:version"

	defaultCacheTTL = 5 * time.Minute
)

// cachedProductList is the cached shape of a catalog page.
type cachedProductList struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

// CatalogCache handles Redis caching for the product catalog. List entries
// are versioned: invalidation bumps the version key, orphaning every cached
// page at once instead of scanning for keys. A nil CatalogCache disables
// caching.
type CatalogCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogCache creates a new CatalogCache.
func NewCatalogCache(redisClient *redis.Client, logger *zap.Logger) *CatalogCache {
	return &CatalogCache{
		redis:  redisClient,
		ttl:    defaultCacheTTL,
		logger: logger,
	}
}

// GetProductList retrieves a cached catalog page.
func (c *CatalogCache) GetProductList(ctx context.Context, filters *models.ProductFilters, page, limit int) ([]models.Product, int64, bool) {
	if c == nil || c.redis == nil {
		return nil, 0, false
	}

	version, err := c.redis.Get(ctx, cacheVersionKey).Int64()
	if err != nil || version == 0 {
		return nil, 0, false
	}

	cached, err := c.redis.Get(ctx, listCacheKey(version, filters, page, limit)).Result()
	if err != nil {
		return nil, 0, false
	}

	var entry cachedProductList
	if err := json.Unmarshal([]byte(cached), &entry); err != nil {
		c.logger.Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, 0, false
	}
	return entry.Products, entry.Total, true
}

// SetProductList caches a catalog page asynchronously.
func (c *CatalogCache) SetProductList(filters *models.ProductFilters, page, limit int, products []models.Product, total int64) {
	if c == nil || c.redis == nil {
		return
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := c.redis.Get(bgCtx, cacheVersionKey).Int64()
		if err != nil || version == 0 {
			// Seed the version on first use so list keys become addressable.
			if version, err = c.redis.Incr(bgCtx, cacheVersionKey).Result(); err != nil {
				return
			}
		}

		payload, err := json.Marshal(cachedProductList{Products: products, Total: total})
		if err != nil {
			c.logger.Warn("Failed to marshal product list for cache", zap.Error(err))
			return
		}

		if err := c.redis.Set(bgCtx, listCacheKey(version, filters, page, limit), payload, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// GetProduct retrieves a cached product detail.
func (c *CatalogCache) GetProduct(ctx context.Context, productID uint) (*models.Product, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}

	cached, err := c.redis.Get(ctx, fmt.Sprintf("%s%d", productCachePrefix, productID)).Result()
	if err != nil {
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal([]byte(cached), &product); err != nil {
		c.logger.Warn("Failed to unmarshal cached product", zap.Error(err), zap.Uint("product_id", productID))
		return nil, false
	}
	return &product, true
}

// SetProduct caches a product detail asynchronously.
func (c *CatalogCache) SetProduct(product *models.Product) {
	if c == nil || c.redis == nil {
		return
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, err := json.Marshal(product)
		if err != nil {
			c.logger.Warn("Failed to marshal product for cache", zap.Error(err), zap.Uint("product_id", product.ID))
			return
		}

		key := fmt.Sprintf("%s%d", productCachePrefix, product.ID)
		if err := c.redis.Set(bgCtx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to cache product", zap.Error(err), zap.Uint("product_id", product.ID))
		}
	}()
}

// InvalidateProduct drops the detail cache for one product and orphans all
// list pages by bumping the version.
func (c *CatalogCache) InvalidateProduct(ctx context.Context, productID uint) {
	if c == nil || c.redis == nil {
		return
	}

	if err := c.redis.Incr(ctx, cacheVersionKey).Err(); err != nil {
		c.logger.Error("Failed to invalidate product list cache", zap.Error(err))
	}
	if err := c.redis.Del(ctx, fmt.Sprintf("%s%d", productCachePrefix, productID)).Err(); err != nil {
		c.logger.Warn("Failed to drop product detail cache", zap.Error(err), zap.Uint("product_id", productID))
	}
}

// listCacheKey builds a versioned cache key for one catalog page.
func listCacheKey(version int64, filters *models.ProductFilters, page, limit int) string {
	category, isNew, isOff, inStock := "any", "any", "any", "any"
	if filters != nil {
		if filters.CategoryID != nil {
			category = fmt.Sprintf("%d", *filters.CategoryID)
		}
		if filters.IsNew != nil {
			isNew = fmt.Sprintf("%t", *filters.IsNew)
		}
		if filters.IsOff != nil {
			isOff = fmt.Sprintf("%t", *filters.IsOff)
		}
		if filters.InStock != nil {
			inStock = fmt.Sprintf("%t", *filters.InStock)
		}
	}
	return fmt.Sprintf("%s%d:cat=%s:new=%s:off=%s:stock=%s:page=%d:limit=%d",
		productListCachePrefix, version, category, isNew, isOff, inStock, page, limit)
}
