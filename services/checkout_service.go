package services

import (
	"context"
	"errors"
	"time"

	"storefront-service/models"
	"storefront-service/repository"

	aws_pkg "storefront-service/pkg/aws"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderPublisher publishes order-placed events for downstream payment and
// fulfillment consumers.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, event models.OrderPlacedEvent) error
}

// CheckoutService converts the active cart into an order.
type CheckoutService interface {
	Checkout(ctx context.Context, identity models.Identity, req *models.CheckoutRequest) (*models.Order, *ServiceError)
	ListOrders(ctx context.Context, identity models.Identity) ([]models.Order, *ServiceError)
}

// checkoutServiceImpl implements CheckoutService.
type checkoutServiceImpl struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	customers CustomerService
	publisher OrderPublisher
	metrics   *aws_pkg.MetricsClient
	logger    *zap.Logger
}

// NewCheckoutService creates a new CheckoutService. metrics may be nil.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	customers CustomerService,
	publisher OrderPublisher,
	metrics *aws_pkg.MetricsClient,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		customers: customers,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Checkout snapshots the active cart into an order and deactivates the cart,
// both in one transaction. Unit prices are copied from the products at this
// moment so later catalog edits do not change the order. The order-placed
// event is best-effort: a publish failure is logged and the order stands.
func (s *checkoutServiceImpl) Checkout(ctx context.Context, identity models.Identity, req *models.CheckoutRequest) (*models.Order, *ServiceError) {
	customer, svcErr := s.customers.ResolveCustomer(ctx, identity)
	if svcErr != nil {
		return nil, svcErr
	}

	cart, err := s.cartRepo.FindActiveByCustomer(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 400, Message: "Your cart is empty"}
		}
		s.logger.Error("Failed to load cart for checkout", zap.Uint("customer_id", customer.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Checkout failed"}
	}
	if len(cart.Items) == 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "Your cart is empty"}
	}

	order := &models.Order{
		CustomerID:      customer.ID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Address:         req.Address,
		City:            req.City,
		Country:         req.Country,
		ZipCode:         req.ZipCode,
		Telephone:       req.Telephone,
		ShippingAddress: req.ShippingAddress,
		ShipToDifferent: req.ShipToDifferent,
		OrderNotes:      req.OrderNotes,
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
		})
	}

	if err := s.orderRepo.Place(ctx, order, cart.ID); err != nil {
		s.logger.Error("Failed to place order",
			zap.Uint("customer_id", customer.ID), zap.Uint("cart_id", cart.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Checkout failed: " + err.Error()}
	}

	order.TotalPrice = computeOrderTotal(order)

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.Uint("customer_id", customer.ID),
		zap.Int("items", len(order.Items)),
		zap.Int("total_price", order.TotalPrice),
	)
	s.publishOrderPlacedEvent(ctx, identity, order)

	if s.metrics.IsEnabled() {
		go func() {
			mctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.metrics.RecordCount(mctx, aws_pkg.MetricOrdersPlaced,
				map[string]string{"Service": "storefront-service"})
		}()
	}

	return order, nil
}

// ListOrders returns the customer's order history with derived totals.
func (s *checkoutServiceImpl) ListOrders(ctx context.Context, identity models.Identity) ([]models.Order, *ServiceError) {
	customer, svcErr := s.customers.ResolveCustomer(ctx, identity)
	if svcErr != nil {
		return nil, svcErr
	}

	orders, err := s.orderRepo.FindByCustomer(ctx, customer.ID)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Uint("customer_id", customer.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to list orders"}
	}

	for i := range orders {
		orders[i].TotalPrice = computeOrderTotal(&orders[i])
	}
	return orders, nil
}

func (s *checkoutServiceImpl) publishOrderPlacedEvent(ctx context.Context, identity models.Identity, order *models.Order) {
	if s.publisher == nil {
		s.logger.Warn("Order publisher not configured, skipping order_placed event")
		return
	}

	event := models.OrderPlacedEvent{
		EventType:  "order_placed",
		OrderID:    order.ID.String(),
		UserID:     identity.UserID,
		Email:      order.Email,
		TotalPrice: order.TotalPrice,
		Timestamp:  time.Now(),
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, models.OrderPlacedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish order_placed event",
			zap.String("order_id", order.ID.String()), zap.Error(err))
		return
	}

	s.logger.Info("Published order_placed event", zap.String("order_id", order.ID.String()))
}

// computeOrderTotal derives an order's total from its snapshotted lines.
func computeOrderTotal(order *models.Order) int {
	total := 0
	for _, item := range order.Items {
		total += item.Quantity * item.UnitPrice
	}
	return total
}
