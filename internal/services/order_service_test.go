package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/events"
	"github.com/javajoker/toolhatch-backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	publisher *fakePublisher
	orders    *OrderService
	cart      *CartService
	user      *models.User
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db = openTestDB(suite.T())
	suite.publisher = &fakePublisher{}
	suite.orders = NewOrderService(suite.db, suite.publisher, "orders")
	suite.cart = NewCartService(suite.db)
	suite.user = createTestUser(suite.T(), suite.db, "ada")
}

func (suite *OrderServiceTestSuite) addToCart(productID uint, quantity int) {
	_, err := suite.cart.AddItem(&AddToCartRequest{UserID: suite.user.ID, ProductID: productID, Quantity: quantity})
	require.NoError(suite.T(), err)
}

func (suite *OrderServiceTestSuite) countOrders() int64 {
	var n int64
	suite.db.Model(&models.Order{}).Count(&n)
	return n
}

func (suite *OrderServiceTestSuite) TestSourceResolution() {
	t := suite.T()
	pid := uint(3)

	assert.Equal(t, SingleProduct{ProductID: 3}, (&CreateOrderRequest{ProductID: &pid, CartItems: []OrderLineRequest{{ProductID: 1, Quantity: 1}}}).Source())
	assert.Equal(t, ExplicitItems{Items: []OrderLineRequest{{ProductID: 1, Quantity: 2}}}, (&CreateOrderRequest{CartItems: []OrderLineRequest{{ProductID: 1, Quantity: 2}}}).Source())
	assert.Equal(t, PersistedCart{}, (&CreateOrderRequest{}).Source())
	assert.Equal(t, PersistedCart{}, (&CreateOrderRequest{ProductID: uintPtr(0)}).Source())
}

func (suite *OrderServiceTestSuite) TestCreateFromCartSumsTotalAndClearsCart() {
	t := suite.T()
	suite.addToCart(flutterKitID, 2)
	suite.addToCart(gridBotID, 1)

	order, err := suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{UserID: suite.user.ID})
	require.NoError(t, err)

	expected := decimal.RequireFromString("49.99").Mul(decimal.NewFromInt(2)).Add(decimal.RequireFromString("99.00"))
	assert.True(t, expected.Equal(decimal.RequireFromString(order.TotalAmount)), "total %s", order.TotalAmount)
	assert.Equal(t, "198.98", order.TotalAmount)
	assert.Equal(t, models.OrderStatusNotPaid, order.Status)
	require.NotNil(t, order.PaymentMethod)
	assert.Equal(t, models.PaymentMethodCrypto, *order.PaymentMethod)
	assert.Len(t, order.Items, 2)

	cart, err := suite.cart.GetCart(suite.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	created := suite.publisher.ofType(events.TypeOrderCreated)
	require.Len(t, created, 1)
	assert.Equal(t, order.ID, created[0].OrderID)
	assert.Equal(t, "198.98", created[0].TotalAmount)
}

func (suite *OrderServiceTestSuite) TestCreateFromExplicitItemsClearsCart() {
	t := suite.T()
	suite.addToCart(flutterKitID, 1)

	order, err := suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:    suite.user.ID,
		CartItems: []OrderLineRequest{{ProductID: gridBotID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "297.00", order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "99.00", order.Items[0].UnitPrice)

	cart, _ := suite.cart.GetCart(suite.user.ID)
	assert.Empty(t, cart)
}

func (suite *OrderServiceTestSuite) TestCreateSingleProductKeepsCart() {
	t := suite.T()
	suite.addToCart(flutterKitID, 1)

	order, err := suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{UserID: suite.user.ID, ProductID: uintPtr(gridBotID)})
	require.NoError(t, err)
	assert.Equal(t, "99.00", order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1, order.Items[0].Quantity)

	cart, _ := suite.cart.GetCart(suite.user.ID)
	assert.Len(t, cart, 1)
}

func (suite *OrderServiceTestSuite) TestCreateRejectsMissingProduct() {
	t := suite.T()
	suite.addToCart(flutterKitID, 1)

	_, err := suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:    suite.user.ID,
		CartItems: []OrderLineRequest{{ProductID: flutterKitID, Quantity: 1}, {ProductID: 999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, suite.countOrders())

	cart, _ := suite.cart.GetCart(suite.user.ID)
	assert.Len(t, cart, 1, "cart must survive a failed order")

	_, err = suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{UserID: suite.user.ID, ProductID: uintPtr(999)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func (suite *OrderServiceTestSuite) TestCreateRejectsRemovedProductInCart() {
	t := suite.T()
	suite.addToCart(gridBotID, 1)
	require.NoError(t, suite.db.Delete(&models.Product{}, gridBotID).Error)

	_, err := suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{UserID: suite.user.ID})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, suite.countOrders())
}

func (suite *OrderServiceTestSuite) TestCreateValidation() {
	t := suite.T()

	_, err := suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{UserID: 404})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{UserID: suite.user.ID})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "cart is empty")

	_, err = suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:    suite.user.ID,
		CartItems: []OrderLineRequest{{ProductID: gridBotID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, suite.db.Model(&models.Product{}).Where("id = ?", gridBotID).Update("price", "n/a").Error)
	_, err = suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{UserID: suite.user.ID, ProductID: uintPtr(gridBotID)})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, suite.countOrders())
	assert.Empty(t, suite.publisher.ofType(events.TypeOrderCreated))
}

func (suite *OrderServiceTestSuite) TestConcurrentCartOrdersCreateOneOrder() {
	t := suite.T()
	suite.addToCart(flutterKitID, 1)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{UserID: suite.user.ID})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrValidation)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), suite.countOrders())
	assert.Zero(t, suite.orders.userLocks.size())
}

func (suite *OrderServiceTestSuite) TestUpdateStatusTransitions() {
	t := suite.T()
	ctx := context.Background()
	order, err := suite.orders.CreateOrder(ctx, &CreateOrderRequest{UserID: suite.user.ID, ProductID: uintPtr(gridBotID)})
	require.NoError(t, err)

	_, err = suite.orders.UpdateStatus(ctx, order.ID, models.OrderStatusFailed, nil)
	assert.ErrorIs(t, err, ErrConflict)

	change, err := suite.orders.UpdateStatus(ctx, order.ID, models.OrderStatusPendingPayment, map[string]interface{}{"payment_id": "p1"})
	require.NoError(t, err)
	assert.True(t, change.Changed)
	assert.Equal(t, models.OrderStatusNotPaid, change.Previous)
	require.NotNil(t, change.Order.PaymentID)
	assert.Equal(t, "p1", *change.Order.PaymentID)

	change, err = suite.orders.UpdateStatus(ctx, order.ID, models.OrderStatusPendingPayment, map[string]interface{}{"payment_id": "p2"})
	require.NoError(t, err)
	assert.False(t, change.Changed)
	assert.Equal(t, "p2", *change.Order.PaymentID)

	change, err = suite.orders.UpdateStatus(ctx, order.ID, models.OrderStatusExpired, nil)
	require.NoError(t, err)
	assert.True(t, change.Changed)

	change, err = suite.orders.UpdateStatus(ctx, order.ID, models.OrderStatusExpired, nil)
	require.NoError(t, err)
	assert.False(t, change.Changed)

	_, err = suite.orders.UpdateStatus(ctx, order.ID, models.OrderStatusPaid, nil)
	assert.ErrorIs(t, err, ErrConflict)

	status, err := suite.orders.GetOrderStatus(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusExpired, status)

	assert.Len(t, suite.publisher.ofType(events.TypeOrderStatusChanged), 2)

	_, err = suite.orders.UpdateStatus(ctx, 9999, models.OrderStatusPaid, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func (suite *OrderServiceTestSuite) TestPublishFailureDoesNotFailOrder() {
	suite.publisher.err = assert.AnError

	order, err := suite.orders.CreateOrder(context.Background(), &CreateOrderRequest{UserID: suite.user.ID, ProductID: uintPtr(gridBotID)})
	require.NoError(suite.T(), err)
	assert.NotZero(suite.T(), order.ID)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := newKeyedMutex()

	var mu sync.Mutex
	active, maxActive := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(7)
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
	assert.Zero(t, km.size())

	unlockA := km.Lock(1)
	unlockB := km.Lock(2)
	assert.Equal(t, 2, km.size())
	unlockA()
	unlockB()
}
