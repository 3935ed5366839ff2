package services_test

import (
	"context"
	"errors"
	"testing"

	"storefront-service/models"
	"storefront-service/repository"
	"storefront-service/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- Mock OrderRepository ---

// mockOrderRepo mirrors the transactional Place contract: the order is
// persisted and the cart deactivated together, via the shared cart repo.
type mockOrderRepo struct {
	cartRepo *mockCartRepo
	orders   []*models.Order
	failAll  bool
}

func (m *mockOrderRepo) Place(_ context.Context, order *models.Order, cartID uint) error {
	if m.failAll {
		return errors.New("connection reset")
	}
	cart, ok := m.cartRepo.carts[cartID]
	if !ok || !cart.IsActive {
		return gorm.ErrRecordNotFound
	}
	order.ID = uuid.New()
	cart.IsActive = false
	stored := *order
	m.orders = append(m.orders, &stored)
	return nil
}

func (m *mockOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			copied := *o
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) FindByCustomer(_ context.Context, customerID uint) ([]models.Order, error) {
	var result []models.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			result = append(result, *o)
		}
	}
	return result, nil
}

var _ repository.OrderRepository = (*mockOrderRepo)(nil)

// --- Mock OrderPublisher ---

type mockOrderPublisher struct {
	events   []models.OrderPlacedEvent
	failNext bool
}

func (m *mockOrderPublisher) PublishOrderPlaced(_ context.Context, event models.OrderPlacedEvent) error {
	if m.failNext {
		m.failNext = false
		return errors.New("kafka unavailable")
	}
	m.events = append(m.events, event)
	return nil
}

// --- Helpers ---

func newTestCheckoutService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, publisher services.OrderPublisher) services.CheckoutService {
	logger, _ := zap.NewDevelopment()
	customers := &stubCustomers{customer: models.Customer{ID: 10, UserID: "user-1"}}
	return services.NewCheckoutService(orderRepo, cartRepo, customers, publisher, nil, logger)
}

func checkoutReq() *models.CheckoutRequest {
	return &models.CheckoutRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Address:   "1 Main St",
		City:      "Springfield",
		Country:   "US",
		ZipCode:   "12345",
		Telephone: "5551234567",
	}
}

func seedCart(t *testing.T, cartRepo *mockCartRepo, customerID uint) {
	t.Helper()
	cartSvc := newTestCartService(cartRepo, customerID)
	_, svcErr := cartSvc.AddItems(context.Background(), identity(), addReq([]string{"1", "2"}, []string{"2", "1"}))
	assert.Nil(t, svcErr)
}

// --- Tests ---

func TestCheckout_PlacesOrderAndDeactivatesCart(t *testing.T) {
	cartRepo := newMockCartRepo(
		models.Product{ID: 1, Price: 500},
		models.Product{ID: 2, Price: 2000},
	)
	seedCart(t, cartRepo, 10)

	orderRepo := &mockOrderRepo{cartRepo: cartRepo}
	publisher := &mockOrderPublisher{}
	svc := newTestCheckoutService(orderRepo, cartRepo, publisher)

	order, svcErr := svc.Checkout(context.Background(), identity(), checkoutReq())
	assert.Nil(t, svcErr)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 2*500+1*2000, order.TotalPrice)

	// The cart is gone; the next read sees an empty fresh one.
	cartSvc := newTestCartService(cartRepo, 10)
	cart, getErr := cartSvc.GetCart(context.Background(), identity())
	assert.Nil(t, getErr)
	assert.Empty(t, cart.Items)
}

func TestCheckout_SnapshotsUnitPrices(t *testing.T) {
	cartRepo := newMockCartRepo(models.Product{ID: 1, Price: 500})
	seedCartOne := newTestCartService(cartRepo, 10)
	_, svcErr := seedCartOne.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"3"}))
	assert.Nil(t, svcErr)

	orderRepo := &mockOrderRepo{cartRepo: cartRepo}
	svc := newTestCheckoutService(orderRepo, cartRepo, &mockOrderPublisher{})

	order, svcErr := svc.Checkout(context.Background(), identity(), checkoutReq())
	assert.Nil(t, svcErr)
	assert.Equal(t, 500, order.Items[0].UnitPrice, "unit price is fixed at checkout time")
	assert.Equal(t, 3, order.Items[0].Quantity)
}

func TestCheckout_EmptyCart(t *testing.T) {
	cartRepo := newMockCartRepo()
	orderRepo := &mockOrderRepo{cartRepo: cartRepo}
	svc := newTestCheckoutService(orderRepo, cartRepo, &mockOrderPublisher{})

	_, svcErr := svc.Checkout(context.Background(), identity(), checkoutReq())
	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
	assert.Empty(t, orderRepo.orders)
}

func TestCheckout_PublishesOrderPlacedEvent(t *testing.T) {
	cartRepo := newMockCartRepo(models.Product{ID: 1, Price: 500})
	seedSvc := newTestCartService(cartRepo, 10)
	_, _ = seedSvc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"2"}))

	orderRepo := &mockOrderRepo{cartRepo: cartRepo}
	publisher := &mockOrderPublisher{}
	svc := newTestCheckoutService(orderRepo, cartRepo, publisher)

	order, svcErr := svc.Checkout(context.Background(), identity(), checkoutReq())
	assert.Nil(t, svcErr)

	assert.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, "order_placed", event.EventType)
	assert.Equal(t, order.ID.String(), event.OrderID)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, order.TotalPrice, event.TotalPrice)
	assert.Len(t, event.Items, 1)
}

func TestCheckout_PublishFailureDoesNotFail(t *testing.T) {
	cartRepo := newMockCartRepo(models.Product{ID: 1, Price: 500})
	seedSvc := newTestCartService(cartRepo, 10)
	_, _ = seedSvc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"1"}))

	orderRepo := &mockOrderRepo{cartRepo: cartRepo}
	publisher := &mockOrderPublisher{failNext: true}
	svc := newTestCheckoutService(orderRepo, cartRepo, publisher)

	order, svcErr := svc.Checkout(context.Background(), identity(), checkoutReq())
	assert.Nil(t, svcErr, "a publish failure must not undo a placed order")
	assert.NotNil(t, order)
	assert.Len(t, orderRepo.orders, 1)
}

func TestCheckout_PersistenceFailure(t *testing.T) {
	cartRepo := newMockCartRepo(models.Product{ID: 1, Price: 500})
	seedSvc := newTestCartService(cartRepo, 10)
	_, _ = seedSvc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"1"}))

	orderRepo := &mockOrderRepo{cartRepo: cartRepo, failAll: true}
	svc := newTestCheckoutService(orderRepo, cartRepo, &mockOrderPublisher{})

	_, svcErr := svc.Checkout(context.Background(), identity(), checkoutReq())
	assert.NotNil(t, svcErr)
	assert.Equal(t, 500, svcErr.StatusCode)

	// The cart survives a failed checkout.
	cart, getErr := newTestCartService(cartRepo, 10).GetCart(context.Background(), identity())
	assert.Nil(t, getErr)
	assert.Len(t, cart.Items, 1)
}

func TestListOrders_DerivesTotals(t *testing.T) {
	cartRepo := newMockCartRepo(models.Product{ID: 1, Price: 500})
	seedSvc := newTestCartService(cartRepo, 10)
	_, _ = seedSvc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"4"}))

	orderRepo := &mockOrderRepo{cartRepo: cartRepo}
	svc := newTestCheckoutService(orderRepo, cartRepo, &mockOrderPublisher{})

	_, svcErr := svc.Checkout(context.Background(), identity(), checkoutReq())
	assert.Nil(t, svcErr)

	orders, svcErr := svc.ListOrders(context.Background(), identity())
	assert.Nil(t, svcErr)
	assert.Len(t, orders, 1)
	assert.Equal(t, 4*500, orders[0].TotalPrice)
}
