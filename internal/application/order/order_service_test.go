package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	domainidentity "github.com/storefront/backend/internal/domain/identity"
	domainorder "github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainidentity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainidentity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domainidentity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainidentity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domainidentity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActive(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Product], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[catalog.Product]), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product, expectedVersion int) error {
	args := m.Called(ctx, product, expectedVersion)
	return args.Error(0)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainorder.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainorder.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (shared.Paginated[domainorder.Order], error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(shared.Paginated[domainorder.Order]), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[domainorder.Order], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[domainorder.Order]), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *domainorder.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// MockCacheInvalidator is a mock implementation of ProductCacheInvalidator
type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) Invalidate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// stubScope runs the checkout function against the mocks without a
// real transaction
type stubScope struct {
	users    *MockUserRepository
	products *MockProductRepository
	orders   *MockOrderRepository
}

func (s *stubScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *stubScope) Users() domainidentity.UserRepository { return s.users }
func (s *stubScope) Products() catalog.ProductRepository  { return s.products }
func (s *stubScope) Orders() domainorder.Repository       { return s.orders }

type testFixture struct {
	users    *MockUserRepository
	products *MockProductRepository
	orders   *MockOrderRepository
	cache    *MockCacheInvalidator
	service  *Service
}

func newFixture() *testFixture {
	users := new(MockUserRepository)
	products := new(MockProductRepository)
	orders := new(MockOrderRepository)
	cache := new(MockCacheInvalidator)
	cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Maybe()
	scope := &stubScope{users: users, products: products, orders: orders}
	return &testFixture{
		users:    users,
		products: products,
		orders:   orders,
		cache:    cache,
		service:  NewService(scope, orders, cache, zap.NewNop()),
	}
}

func testUser(t *testing.T) *domainidentity.User {
	user, err := domainidentity.NewUser("alice@example.com", "password123", "Alice")
	require.NoError(t, err)
	return user
}

func testProduct(t *testing.T, price string, stock int) *catalog.Product {
	p, err := catalog.NewProduct("Keyboard", "", decimal.RequireFromString(price), stock, uuid.New())
	require.NoError(t, err)
	return p
}

func TestService_PlaceOrder(t *testing.T) {
	f := newFixture()
	user := testUser(t)
	product := testProduct(t, "19.99", 10)

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product, 1).Return(nil)
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	view, err := f.service.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		Items: []ItemInput{{ProductID: product.ID, Quantity: 3}},
	})

	require.NoError(t, err)
	assert.True(t, view.TotalPrice.Equal(decimal.RequireFromString("59.97")),
		"expected 59.97, got %s", view.TotalPrice)
	assert.Equal(t, "NEW", view.Status)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Keyboard", view.Items[0].ProductName)
	assert.True(t, view.Items[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))

	// Stock decremented from 10 to 7, version bumped for the lock check
	assert.Equal(t, 7, product.Stock)
	assert.Equal(t, 2, product.Version)
	f.products.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestService_PlaceOrder_EmptyItems(t *testing.T) {
	f := newFixture()

	_, err := f.service.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{})

	require.Error(t, err)
	f.users.AssertNotCalled(t, "FindByID")
}

func TestService_PlaceOrder_ZeroQuantity(t *testing.T) {
	f := newFixture()

	_, err := f.service.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{
		Items: []ItemInput{{ProductID: uuid.New(), Quantity: 0}},
	})

	require.Error(t, err)
	f.users.AssertNotCalled(t, "FindByID")
}

func TestService_PlaceOrder_UserNotFound(t *testing.T) {
	f := newFixture()
	callerID := uuid.New()

	f.users.On("FindByID", mock.Anything, callerID).Return(nil, shared.ErrNotFound)

	_, err := f.service.PlaceOrder(context.Background(), callerID, PlaceOrderInput{
		Items: []ItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})

	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.orders.AssertNotCalled(t, "Save")
}

func TestService_PlaceOrder_ProductNotFound(t *testing.T) {
	f := newFixture()
	user := testUser(t)
	productID := uuid.New()

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.products.On("FindByID", mock.Anything, productID).Return(nil, shared.ErrNotFound)

	_, err := f.service.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		Items: []ItemInput{{ProductID: productID, Quantity: 1}},
	})

	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.orders.AssertNotCalled(t, "Save")
}

func TestService_PlaceOrder_InsufficientStock_FailsWholeOrder(t *testing.T) {
	f := newFixture()
	user := testUser(t)
	productA := testProduct(t, "10.00", 5)
	productB := testProduct(t, "20.00", 1)

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.products.On("FindByID", mock.Anything, productA.ID).Return(productA, nil)
	f.products.On("FindByID", mock.Anything, productB.ID).Return(productB, nil)
	f.products.On("SaveWithLock", mock.Anything, productA, 1).Return(nil)

	// A has enough stock (request 3 of 5), B does not (request 2 of 1)
	_, err := f.service.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		Items: []ItemInput{
			{ProductID: productA.ID, Quantity: 3},
			{ProductID: productB.ID, Quantity: 2},
		},
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	assert.Contains(t, domainErr.Message, "Requested=2")
	assert.Contains(t, domainErr.Message, "available=1")

	// The failing transaction rolls everything back; no order is written
	// and product B was never touched
	f.orders.AssertNotCalled(t, "Save")
	assert.Equal(t, 1, productB.Stock)
}

func TestService_PlaceOrder_RaceLoserSeesInsufficientStock(t *testing.T) {
	f := newFixture()
	user := testUser(t)
	product := testProduct(t, "19.99", 1)

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	// Another transaction took the last unit first: the version check
	// on the stock update matches no row
	f.products.On("SaveWithLock", mock.Anything, product, 1).
		Return(shared.ErrConcurrencyConflict).Once()

	_, err := f.service.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		Items: []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})

	// The retry re-reads the decremented stock; the caller sees a
	// stock shortfall, never the version conflict
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	f.orders.AssertNotCalled(t, "Save")
}

func TestService_PlaceOrder_RetriesAfterConflict(t *testing.T) {
	f := newFixture()
	user := testUser(t)
	product := testProduct(t, "19.99", 5)

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product, 1).
		Return(shared.ErrConcurrencyConflict).Once()
	f.products.On("SaveWithLock", mock.Anything, product, 2).Return(nil).Once()
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	view, err := f.service.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		Items: []ItemInput{{ProductID: product.ID, Quantity: 2}},
	})

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, view.TotalPrice.Equal(decimal.RequireFromString("39.98")),
		"expected 39.98, got %s", view.TotalPrice)
	f.products.AssertExpectations(t)
}

func TestService_PlaceOrder_GivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newFixture()
	user := testUser(t)
	product := testProduct(t, "19.99", 10)

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product, mock.AnythingOfType("int")).
		Return(shared.ErrConcurrencyConflict)

	_, err := f.service.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		Items: []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	f.products.AssertNumberOfCalls(t, "SaveWithLock", 3)
	f.orders.AssertNotCalled(t, "Save")
}

func TestService_PlaceOrder_SameProductTwice(t *testing.T) {
	f := newFixture()
	user := testUser(t)
	product := testProduct(t, "19.99", 5)

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product, 1).Return(nil).Once()
	f.products.On("SaveWithLock", mock.Anything, product, 2).Return(nil).Once()
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	view, err := f.service.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		Items: []ItemInput{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 1},
		},
	})

	// One line per requested pair, stock decremented for both
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.True(t, view.TotalPrice.Equal(decimal.RequireFromString("59.97")),
		"expected 59.97, got %s", view.TotalPrice)
	assert.Equal(t, 2, product.Stock)
	f.products.AssertExpectations(t)
}

func TestService_PlaceOrder_InvalidatesProductCache(t *testing.T) {
	f := newFixture()
	user := testUser(t)
	product := testProduct(t, "19.99", 10)

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product, 1).Return(nil)
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	_, err := f.service.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		Items: []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})

	require.NoError(t, err)
	f.cache.AssertCalled(t, "Invalidate", mock.Anything, product.ID)
	f.cache.AssertNumberOfCalls(t, "Invalidate", 1)
}

func TestService_PlaceOrder_NoInvalidationOnFailure(t *testing.T) {
	f := newFixture()
	user := testUser(t)
	product := testProduct(t, "19.99", 1)

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	_, err := f.service.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		Items: []ItemInput{{ProductID: product.ID, Quantity: 2}},
	})

	require.Error(t, err)
	f.cache.AssertNotCalled(t, "Invalidate")
}

func TestService_PlaceOrder_CacheFailureDoesNotFailCheckout(t *testing.T) {
	users := new(MockUserRepository)
	products := new(MockProductRepository)
	orders := new(MockOrderRepository)
	cache := new(MockCacheInvalidator)
	cache.On("Invalidate", mock.Anything, mock.Anything).Return(assert.AnError)
	scope := &stubScope{users: users, products: products, orders: orders}
	service := NewService(scope, orders, cache, zap.NewNop())

	user := testUser(t)
	product := testProduct(t, "19.99", 10)
	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	products.On("SaveWithLock", mock.Anything, product, 1).Return(nil)
	orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	_, err := service.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		Items: []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})

	assert.NoError(t, err)
}

func TestService_PlaceOrder_MultipleItemsTotal(t *testing.T) {
	f := newFixture()
	user := testUser(t)
	productA := testProduct(t, "19.99", 10)
	productB := testProduct(t, "0.10", 100)

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.products.On("FindByID", mock.Anything, productA.ID).Return(productA, nil)
	f.products.On("FindByID", mock.Anything, productB.ID).Return(productB, nil)
	f.products.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*catalog.Product"), 1).Return(nil)
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	view, err := f.service.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		Items: []ItemInput{
			{ProductID: productA.ID, Quantity: 3},
			{ProductID: productB.ID, Quantity: 10},
		},
	})

	require.NoError(t, err)
	// 59.97 + 1.00, exact in fixed-point
	assert.True(t, view.TotalPrice.Equal(decimal.RequireFromString("60.97")),
		"expected 60.97, got %s", view.TotalPrice)
}

func TestService_GetOrder_OwnerAccess(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	o, err := domainorder.NewOrder(userID)
	require.NoError(t, err)

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	view, err := f.service.GetOrder(context.Background(), o.ID, userID, false)
	require.NoError(t, err)
	assert.Equal(t, o.ID, view.ID)
}

func TestService_GetOrder_OtherUserForbidden(t *testing.T) {
	f := newFixture()
	o, err := domainorder.NewOrder(uuid.New())
	require.NoError(t, err)

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err = f.service.GetOrder(context.Background(), o.ID, uuid.New(), false)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestService_GetOrder_AdminAccess(t *testing.T) {
	f := newFixture()
	o, err := domainorder.NewOrder(uuid.New())
	require.NoError(t, err)

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err = f.service.GetOrder(context.Background(), o.ID, uuid.New(), true)
	assert.NoError(t, err)
}

func TestService_GetOrder_NotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	f.orders.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := f.service.GetOrder(context.Background(), id, uuid.New(), true)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture()
	o, err := domainorder.NewOrder(uuid.New())
	require.NoError(t, err)

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)

	view, err := f.service.UpdateStatus(context.Background(), o.ID, domainorder.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, "PAID", view.Status)
}

func TestService_UpdateStatus_IllegalTransition(t *testing.T) {
	f := newFixture()
	o, err := domainorder.NewOrder(uuid.New())
	require.NoError(t, err)

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err = f.service.UpdateStatus(context.Background(), o.ID, domainorder.StatusDelivered)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	f.orders.AssertNotCalled(t, "Save")
}

func TestService_ListOrdersForUser(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	o, err := domainorder.NewOrder(userID)
	require.NoError(t, err)

	filter := shared.DefaultFilter()
	page := shared.NewPaginated([]domainorder.Order{*o}, 1, filter.Page, filter.PageSize)
	f.orders.On("FindByUser", mock.Anything, userID, filter).Return(page, nil)

	result, err := f.service.ListOrdersForUser(context.Background(), userID, filter)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, int64(1), result.Total)
}

func TestService_ListAllOrders(t *testing.T) {
	f := newFixture()
	filter := shared.DefaultFilter()
	page := shared.NewPaginated([]domainorder.Order{}, 0, filter.Page, filter.PageSize)
	f.orders.On("FindAll", mock.Anything, filter).Return(page, nil)

	result, err := f.service.ListAllOrders(context.Background(), filter)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}
