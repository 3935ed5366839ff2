package services

import (
	"context"
	"errors"
	"strconv"

	"storefront-service/models"
	"storefront-service/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ItemUpdateResult reports what SetItemQuantity did with the item.
type ItemUpdateResult struct {
	Removed bool             `json:"removed"`
	Item    *models.CartItem `json:"item,omitempty"`
}

// CartService manages the customer's active cart.
//
// Cart policy: every operation targets the single most recent active cart,
// creating one when none is active. Checkout deactivates the cart, so the
// next add starts a fresh one; deactivated carts are never reused.
type CartService interface {
	GetCart(ctx context.Context, identity models.Identity) (*models.Cart, *ServiceError)
	AddItems(ctx context.Context, identity models.Identity, req *models.AddItemsRequest) (*models.Cart, *ServiceError)
	SetItemQuantity(ctx context.Context, identity models.Identity, itemID uint, quantity string) (*ItemUpdateResult, *ServiceError)
}

// cartServiceImpl implements CartService.
type cartServiceImpl struct {
	cartRepo  repository.CartRepository
	customers CustomerService
	logger    *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repository.CartRepository, customers CustomerService, logger *zap.Logger) CartService {
	return &cartServiceImpl{
		cartRepo:  cartRepo,
		customers: customers,
		logger:    logger,
	}
}

// GetCart returns the customer's active cart with its derived total. When no
// active cart exists it returns an empty, unsaved cart rather than writing
// one on a read.
func (s *cartServiceImpl) GetCart(ctx context.Context, identity models.Identity) (*models.Cart, *ServiceError) {
	customer, svcErr := s.customers.ResolveCustomer(ctx, identity)
	if svcErr != nil {
		return nil, svcErr
	}

	cart, err := s.cartRepo.FindActiveByCustomer(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Cart{CustomerID: customer.ID, IsActive: true, Items: []models.CartItem{}}, nil
		}
		s.logger.Error("Failed to load cart", zap.Uint("customer_id", customer.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load cart"}
	}

	cart.TotalPrice = computeCartTotal(cart)
	return cart, nil
}

// AddItems merges a batch of (product id, quantity) pairs into the active
// cart as one all-or-nothing write. Quantities are parsed as integers and
// floored at 1; an unknown product aborts the whole batch.
func (s *cartServiceImpl) AddItems(ctx context.Context, identity models.Identity, req *models.AddItemsRequest) (*models.Cart, *ServiceError) {
	lines, svcErr := parseCartLines(req)
	if svcErr != nil {
		return nil, svcErr
	}

	customer, svcErr := s.customers.ResolveCustomer(ctx, identity)
	if svcErr != nil {
		return nil, svcErr
	}

	cart, svcErr := s.ensureActiveCart(ctx, customer.ID)
	if svcErr != nil {
		return nil, svcErr
	}

	if err := s.cartRepo.AddItems(ctx, cart.ID, lines); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to add items to cart",
			zap.Uint("cart_id", cart.ID), zap.Int("lines", len(lines)), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to add items to cart: " + err.Error()}
	}

	updated, err := s.cartRepo.FindActiveByCustomer(ctx, customer.ID)
	if err != nil {
		s.logger.Error("Failed to reload cart after add", zap.Uint("cart_id", cart.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load cart"}
	}

	updated.TotalPrice = computeCartTotal(updated)
	return updated, nil
}

// SetItemQuantity updates one line of the customer's active cart. A quantity
// of zero or less removes the line. Items outside the caller's own cart are
// reported as not found, never touched.
func (s *cartServiceImpl) SetItemQuantity(ctx context.Context, identity models.Identity, itemID uint, quantity string) (*ItemUpdateResult, *ServiceError) {
	qty, err := strconv.Atoi(quantity)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Quantity must be an integer"}
	}

	customer, svcErr := s.customers.ResolveCustomer(ctx, identity)
	if svcErr != nil {
		return nil, svcErr
	}

	cart, err := s.cartRepo.FindActiveByCustomer(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Cart item not found"}
		}
		s.logger.Error("Failed to load cart", zap.Uint("customer_id", customer.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load cart"}
	}

	item, err := s.cartRepo.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Cart item not found"}
		}
		s.logger.Error("Failed to load cart item", zap.Uint("item_id", itemID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load cart item"}
	}
	if item.CartID != cart.ID {
		return nil, &ServiceError{StatusCode: 404, Message: "Cart item not found"}
	}

	if qty <= 0 {
		if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
			s.logger.Error("Failed to delete cart item", zap.Uint("item_id", item.ID), zap.Error(err))
			return nil, &ServiceError{StatusCode: 500, Message: "Failed to remove cart item"}
		}
		return &ItemUpdateResult{Removed: true}, nil
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, qty); err != nil {
		s.logger.Error("Failed to update cart item", zap.Uint("item_id", item.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update cart item"}
	}

	item.Quantity = qty
	return &ItemUpdateResult{Removed: false, Item: item}, nil
}

// ensureActiveCart finds or creates the customer's active cart. A duplicate
// insert means a concurrent request created it first, so re-read.
func (s *cartServiceImpl) ensureActiveCart(ctx context.Context, customerID uint) (*models.Cart, *ServiceError) {
	cart, err := s.cartRepo.FindActiveByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to load cart", zap.Uint("customer_id", customerID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load cart"}
	}

	cart = &models.Cart{CustomerID: customerID, IsActive: true}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		if isDuplicateKey(err) {
			existing, readErr := s.cartRepo.FindActiveByCustomer(ctx, customerID)
			if readErr != nil {
				s.logger.Error("Failed to re-read cart after duplicate insert",
					zap.Uint("customer_id", customerID), zap.Error(readErr))
				return nil, &ServiceError{StatusCode: 500, Message: "Failed to load cart"}
			}
			return existing, nil
		}
		s.logger.Error("Failed to create cart", zap.Uint("customer_id", customerID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create cart"}
	}
	return cart, nil
}

// parseCartLines validates the parallel-array contract and coerces
// quantities: non-positive values are treated as 1.
func parseCartLines(req *models.AddItemsRequest) ([]models.CartLine, *ServiceError) {
	if req == nil || len(req.ProductIDs) == 0 || len(req.Quantities) == 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "Product ids and quantities are required"}
	}
	if len(req.ProductIDs) != len(req.Quantities) {
		return nil, &ServiceError{StatusCode: 400, Message: "Product ids and quantities must have the same length"}
	}

	lines := make([]models.CartLine, 0, len(req.ProductIDs))
	for i, rawID := range req.ProductIDs {
		id, err := strconv.ParseUint(rawID, 10, 32)
		if err != nil {
			// A malformed id can never reference an existing product.
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}

		qty, err := strconv.Atoi(req.Quantities[i])
		if err != nil {
			return nil, &ServiceError{StatusCode: 400, Message: "Quantity must be an integer"}
		}
		if qty <= 0 {
			qty = 1
		}

		lines = append(lines, models.CartLine{ProductID: uint(id), Quantity: qty})
	}
	return lines, nil
}

// computeCartTotal derives the cart total from its lines. Totals are never
// stored; they are recomputed on every read.
func computeCartTotal(cart *models.Cart) int {
	total := 0
	for _, item := range cart.Items {
		total += item.Quantity * item.Product.Price
	}
	return total
}
