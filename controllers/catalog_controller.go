package controllers

import (
	"net/http"
	"strconv"

	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

// CatalogController handles HTTP requests for the product catalog.
type CatalogController struct {
	catalogService services.CatalogService
}

// NewCatalogController creates a new CatalogController.
func NewCatalogController(catalogService services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// ListProducts handles GET /products.
func (cc *CatalogController) ListProducts(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	filters := parseProductFilters(ctx)

	products, total, svcErr := cc.catalogService.ListProducts(ctx.Request.Context(), filters, page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"products": products,
		"meta": gin.H{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
			"has_more":    total > int64(page*limit),
		},
	})
}

// GetProduct handles GET /products/:id.
func (cc *CatalogController) GetProduct(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	product, svcErr := cc.catalogService.GetProduct(ctx.Request.Context(), id)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct handles POST /admin/products (admin only).
func (cc *CatalogController) CreateProduct(ctx *gin.Context) {
	var req models.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := cc.catalogService.CreateProduct(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct handles PUT /admin/products/:id (admin only).
func (cc *CatalogController) UpdateProduct(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := cc.catalogService.UpdateProduct(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

// parseProductFilters extracts optional catalog filters from the query
// string. Absent parameters leave the corresponding filter unset.
func parseProductFilters(ctx *gin.Context) *models.ProductFilters {
	filters := &models.ProductFilters{}

	if raw := ctx.Query("category_id"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 32); err == nil {
			id := uint(v)
			filters.CategoryID = &id
		}
	}
	if raw := ctx.Query("is_new"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filters.IsNew = &v
		}
	}
	if raw := ctx.Query("is_off"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filters.IsOff = &v
		}
	}
	if raw := ctx.Query("in_stock"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filters.InStock = &v
		}
	}

	return filters
}

// parsePaginationParams extracts and validates pagination parameters.
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const MaxLimit = 100
	const DefaultPage = 1
	const DefaultLimit = 12

	pageInt := DefaultPage
	limitInt := DefaultLimit

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		pageInt = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("limit", "12")); err == nil && l > 0 {
		limitInt = l
		if limitInt > MaxLimit {
			limitInt = MaxLimit
		}
	}

	return pageInt, limitInt
}

// parseIDParam parses a numeric path parameter, writing a 400 response and
// returning ok=false when it is malformed.
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(v), true
}
