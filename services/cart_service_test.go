package services_test

import (
	"context"
	"errors"
	"testing"

	"storefront-service/models"
	"storefront-service/repository"
	"storefront-service/services"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- Stub CustomerService ---

type stubCustomers struct {
	customer models.Customer
}

func (s *stubCustomers) ResolveCustomer(_ context.Context, _ models.Identity) (*models.Customer, *services.ServiceError) {
	c := s.customer
	return &c, nil
}

var _ services.CustomerService = (*stubCustomers)(nil)

// --- Mock CartRepository ---

// mockCartRepo mimics the Gorm repository's transactional contract: AddItems
// validates every product before applying anything, so an unknown product
// leaves the cart untouched.
type mockCartRepo struct {
	products   map[uint]models.Product
	carts      map[uint]*models.Cart
	nextCartID uint
	nextItemID uint
	creates    int

	// failNextCreateWithDuplicate simulates losing a concurrent cart
	// insert race: the create fails against the partial unique index but
	// the winner's cart exists on re-read.
	failNextCreateWithDuplicate bool
}

func newMockCartRepo(products ...models.Product) *mockCartRepo {
	repo := &mockCartRepo{
		products: make(map[uint]models.Product),
		carts:    make(map[uint]*models.Cart),
	}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (m *mockCartRepo) FindActiveByCustomer(_ context.Context, customerID uint) (*models.Cart, error) {
	for _, cart := range m.carts {
		if cart.CustomerID == customerID && cart.IsActive {
			copied := *cart
			copied.Items = append([]models.CartItem(nil), cart.Items...)
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCartRepo) Create(_ context.Context, cart *models.Cart) error {
	if m.failNextCreateWithDuplicate {
		m.failNextCreateWithDuplicate = false
		m.nextCartID++
		m.carts[m.nextCartID] = &models.Cart{
			ID:         m.nextCartID,
			CustomerID: cart.CustomerID,
			IsActive:   true,
		}
		return errors.New(`duplicate key value violates unique constraint "idx_carts_customer_active"`)
	}
	m.creates++
	m.nextCartID++
	cart.ID = m.nextCartID
	stored := *cart
	m.carts[cart.ID] = &stored
	return nil
}

func (m *mockCartRepo) AddItems(_ context.Context, cartID uint, lines []models.CartLine) error {
	cart, ok := m.carts[cartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	// All-or-nothing: resolve every product before the first write.
	for _, line := range lines {
		if _, ok := m.products[line.ProductID]; !ok {
			return gorm.ErrRecordNotFound
		}
	}

	for _, line := range lines {
		merged := false
		for i := range cart.Items {
			if cart.Items[i].ProductID == line.ProductID {
				cart.Items[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			m.nextItemID++
			cart.Items = append(cart.Items, models.CartItem{
				ID:        m.nextItemID,
				CartID:    cartID,
				ProductID: line.ProductID,
				Product:   m.products[line.ProductID],
				Quantity:  line.Quantity,
			})
		}
	}
	return nil
}

func (m *mockCartRepo) FindItemByID(_ context.Context, itemID uint) (*models.CartItem, error) {
	for _, cart := range m.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				copied := cart.Items[i]
				return &copied, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCartRepo) UpdateItemQuantity(_ context.Context, itemID uint, quantity int) error {
	for _, cart := range m.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items[i].Quantity = quantity
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockCartRepo) DeleteItem(_ context.Context, itemID uint) error {
	for _, cart := range m.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

var _ repository.CartRepository = (*mockCartRepo)(nil)

// --- Helpers ---

func newTestCartService(repo repository.CartRepository, customerID uint) services.CartService {
	logger, _ := zap.NewDevelopment()
	customers := &stubCustomers{customer: models.Customer{ID: customerID, UserID: "user-1"}}
	return services.NewCartService(repo, customers, logger)
}

func identity() models.Identity {
	return models.Identity{UserID: "user-1"}
}

func addReq(ids, quantities []string) *models.AddItemsRequest {
	return &models.AddItemsRequest{ProductIDs: ids, Quantities: quantities}
}

// --- Tests ---

func TestAddItems_NewItems(t *testing.T) {
	repo := newMockCartRepo(
		models.Product{ID: 1, Title: "E-book", Price: 500},
		models.Product{ID: 2, Title: "Course", Price: 2000},
	)
	svc := newTestCartService(repo, 10)

	cart, svcErr := svc.AddItems(context.Background(), identity(), addReq([]string{"1", "2"}, []string{"1", "2"}))
	assert.Nil(t, svcErr)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 500*1+2000*2, cart.TotalPrice)
}

func TestAddItems_QuantityMerge(t *testing.T) {
	repo := newMockCartRepo(models.Product{ID: 1, Price: 500})
	svc := newTestCartService(repo, 10)

	_, svcErr := svc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"2"}))
	assert.Nil(t, svcErr)

	cart, svcErr := svc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"3"}))
	assert.Nil(t, svcErr)

	assert.Len(t, cart.Items, 1, "repeat add must merge into one line")
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItems_AtomicOnUnknownProduct(t *testing.T) {
	repo := newMockCartRepo(
		models.Product{ID: 1, Price: 500},
		models.Product{ID: 2, Price: 2000},
	)
	svc := newTestCartService(repo, 10)

	_, svcErr := svc.AddItems(context.Background(), identity(), addReq([]string{"1", "2", "999"}, []string{"1", "2", "1"}))
	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)

	cart, getErr := svc.GetCart(context.Background(), identity())
	assert.Nil(t, getErr)
	assert.Empty(t, cart.Items, "a failed batch must not leave partial items")
}

func TestAddItems_LostCartInsertRaceReReads(t *testing.T) {
	repo := newMockCartRepo(models.Product{ID: 1, Price: 500})
	repo.failNextCreateWithDuplicate = true
	svc := newTestCartService(repo, 10)

	cart, svcErr := svc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"2"}))
	assert.Nil(t, svcErr, "losing the cart insert race must fall back to the winner's cart")
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 0, repo.creates, "the losing request must not create a second cart")
	assert.Len(t, repo.carts, 1, "exactly one active cart after the race")
}

func TestAddItems_NonPositiveQuantityFlooredToOne(t *testing.T) {
	repo := newMockCartRepo(models.Product{ID: 1, Price: 500})
	svc := newTestCartService(repo, 10)

	cart, svcErr := svc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"-3"}))
	assert.Nil(t, svcErr)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestAddItems_MismatchedArrays(t *testing.T) {
	svc := newTestCartService(newMockCartRepo(), 10)

	_, svcErr := svc.AddItems(context.Background(), identity(), addReq([]string{"1", "2"}, []string{"1"}))
	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestAddItems_EmptyRequest(t *testing.T) {
	svc := newTestCartService(newMockCartRepo(), 10)

	_, svcErr := svc.AddItems(context.Background(), identity(), addReq(nil, nil))
	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestAddItems_NonIntegerQuantity(t *testing.T) {
	svc := newTestCartService(newMockCartRepo(models.Product{ID: 1}), 10)

	_, svcErr := svc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"lots"}))
	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestGetCart_EmptyWithoutWriting(t *testing.T) {
	repo := newMockCartRepo()
	svc := newTestCartService(repo, 10)

	cart, svcErr := svc.GetCart(context.Background(), identity())
	assert.Nil(t, svcErr)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalPrice)
	assert.Empty(t, repo.carts, "a read must not create a cart")
}

func TestSetItemQuantity_Update(t *testing.T) {
	repo := newMockCartRepo(models.Product{ID: 1, Price: 500})
	svc := newTestCartService(repo, 10)

	cart, _ := svc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"2"}))
	itemID := cart.Items[0].ID

	result, svcErr := svc.SetItemQuantity(context.Background(), identity(), itemID, "7")
	assert.Nil(t, svcErr)
	assert.False(t, result.Removed)
	assert.Equal(t, 7, result.Item.Quantity)
}

func TestSetItemQuantity_ZeroRemoves(t *testing.T) {
	repo := newMockCartRepo(models.Product{ID: 1, Price: 500})
	svc := newTestCartService(repo, 10)

	cart, _ := svc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"2"}))
	itemID := cart.Items[0].ID

	result, svcErr := svc.SetItemQuantity(context.Background(), identity(), itemID, "0")
	assert.Nil(t, svcErr)
	assert.True(t, result.Removed)

	reloaded, _ := svc.GetCart(context.Background(), identity())
	assert.Empty(t, reloaded.Items)
}

func TestSetItemQuantity_NegativeRemoves(t *testing.T) {
	repo := newMockCartRepo(models.Product{ID: 1, Price: 500})
	svc := newTestCartService(repo, 10)

	cart, _ := svc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"2"}))
	itemID := cart.Items[0].ID

	result, svcErr := svc.SetItemQuantity(context.Background(), identity(), itemID, "-5")
	assert.Nil(t, svcErr)
	assert.True(t, result.Removed, "non-positive quantities are treated uniformly as removal")
}

func TestSetItemQuantity_NonIntegerQuantity(t *testing.T) {
	svc := newTestCartService(newMockCartRepo(), 10)

	_, svcErr := svc.SetItemQuantity(context.Background(), identity(), 1, "many")
	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestSetItemQuantity_UnknownItem(t *testing.T) {
	repo := newMockCartRepo(models.Product{ID: 1, Price: 500})
	svc := newTestCartService(repo, 10)

	_, _ = svc.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"1"}))

	_, svcErr := svc.SetItemQuantity(context.Background(), identity(), 999, "3")
	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestSetItemQuantity_OwnershipIsolation(t *testing.T) {
	repo := newMockCartRepo(models.Product{ID: 1, Price: 500})

	// Customer 10 owns the only item.
	owner := newTestCartService(repo, 10)
	cart, _ := owner.AddItems(context.Background(), identity(), addReq([]string{"1"}, []string{"2"}))
	itemID := cart.Items[0].ID

	// Customer 20 tries to mutate it.
	intruder := newTestCartService(repo, 20)
	_, svcErr := intruder.SetItemQuantity(context.Background(), identity(), itemID, "99")
	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)

	reloaded, _ := owner.GetCart(context.Background(), identity())
	assert.Equal(t, 2, reloaded.Items[0].Quantity, "the item must not be mutated")
}
