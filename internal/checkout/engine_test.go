package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	store "example.com/storefront/pkg/mongo"
	"example.com/storefront/pkg/models"
)

// memBackend implements every engine collaborator in memory. WithinTx takes
// a snapshot before running the callback and restores it on error, so
// rollback behaves like the real transaction: a failed checkout leaves stock
// and cart exactly as they were.
type memBackend struct {
	mu       sync.Mutex
	products map[bson.ObjectID]models.Product
	cart     map[bson.ObjectID][]models.CartLine
	orders   map[bson.ObjectID]models.Order
	users    map[bson.ObjectID]models.User
}

func newMemBackend() *memBackend {
	return &memBackend{
		products: make(map[bson.ObjectID]models.Product),
		cart:     make(map[bson.ObjectID][]models.CartLine),
		orders:   make(map[bson.ObjectID]models.Order),
		users:    make(map[bson.ObjectID]models.User),
	}
}

type memSnapshot struct {
	products map[bson.ObjectID]models.Product
	cart     map[bson.ObjectID][]models.CartLine
	orders   map[bson.ObjectID]models.Order
}

func (m *memBackend) snapshot() memSnapshot {
	snap := memSnapshot{
		products: make(map[bson.ObjectID]models.Product, len(m.products)),
		cart:     make(map[bson.ObjectID][]models.CartLine, len(m.cart)),
		orders:   make(map[bson.ObjectID]models.Order, len(m.orders)),
	}
	for id, p := range m.products {
		snap.products[id] = p
	}
	for userID, lines := range m.cart {
		snap.cart[userID] = append([]models.CartLine(nil), lines...)
	}
	for id, o := range m.orders {
		snap.orders[id] = o
	}
	return snap
}

func (m *memBackend) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(ctx); err != nil {
		m.products = snap.products
		m.cart = snap.cart
		m.orders = snap.orders
		return err
	}
	return nil
}

func (m *memBackend) LinesByUser(ctx context.Context, userID bson.ObjectID) ([]models.CartLine, error) {
	return append([]models.CartLine(nil), m.cart[userID]...), nil
}

func (m *memBackend) DeleteAllForUser(ctx context.Context, userID bson.ObjectID) error {
	delete(m.cart, userID)
	return nil
}

func (m *memBackend) FindProductByID(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &product, nil
}

func (m *memBackend) DecrementStock(ctx context.Context, id bson.ObjectID, qty int) (bool, error) {
	product, ok := m.products[id]
	if !ok || product.Stock < qty {
		return false, nil
	}
	product.Stock -= qty
	m.products[id] = product
	return true, nil
}

func (m *memBackend) IncrementStock(ctx context.Context, id bson.ObjectID, qty int) error {
	product, ok := m.products[id]
	if !ok {
		return store.ErrNotFound
	}
	product.Stock += qty
	m.products[id] = product
	return nil
}

func (m *memBackend) CreateOrder(ctx context.Context, order *models.Order) error {
	order.ID = bson.NewObjectID()
	m.orders[order.ID] = *order
	return nil
}

func (m *memBackend) FindOrderByIDForUser(ctx context.Context, orderID, userID bson.ObjectID) (*models.Order, error) {
	order, ok := m.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &order, nil
}

func (m *memBackend) UpdateOrderStatus(ctx context.Context, orderID bson.ObjectID, status models.OrderStatus) (*models.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	m.orders[orderID] = order
	return &order, nil
}

func (m *memBackend) ListOrdersByUser(ctx context.Context, userID bson.ObjectID) ([]models.Order, error) {
	var orders []models.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (m *memBackend) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	for _, order := range m.orders {
		orders = append(orders, order)
	}
	return orders, nil
}

func (m *memBackend) FindUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

// recordingNotifier captures notification calls so tests can assert on the
// fire-and-forget path. Setting confirmationErr makes every confirmation
// delivery fail.
type recordingNotifier struct {
	mu              sync.Mutex
	confirmations   []string
	statusUpdates   []string
	confirmationErr error
}

func (n *recordingNotifier) OrderConfirmation(email string, order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, email)
	return n.confirmationErr
}

func (n *recordingNotifier) StatusUpdate(user *models.User, order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusUpdates = append(n.statusUpdates, user.Email)
	return nil
}

func (n *recordingNotifier) confirmationCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.confirmations)
}

func (n *recordingNotifier) statusUpdateCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.statusUpdates)
}

func newTestEngine() (*Engine, *memBackend, *recordingNotifier) {
	backend := newMemBackend()
	notifier := &recordingNotifier{}
	engine := New(backend, backend, backend, backend, backend, notifier)
	return engine, backend, notifier
}

func seedProduct(backend *memBackend, name string, price float64, stock int) bson.ObjectID {
	id := bson.NewObjectID()
	backend.products[id] = models.Product{
		ID:         id,
		Name:       name,
		Price:      price,
		CategoryID: bson.NewObjectID(),
		Stock:      stock,
	}
	return id
}

func seedCartLine(backend *memBackend, userID, productID bson.ObjectID, qty int) {
	backend.cart[userID] = append(backend.cart[userID], models.CartLine{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	})
}

func TestPlaceOrderComputesTotalAndDecrementsStock(t *testing.T) {
	engine, backend, notifier := newTestEngine()
	userID := bson.NewObjectID()

	productA := seedProduct(backend, "Product A", 10, 5)
	productB := seedProduct(backend, "Product B", 5, 5)
	seedCartLine(backend, userID, productA, 2)
	seedCartLine(backend, userID, productB, 1)

	order, err := engine.PlaceOrder(context.Background(), userID, "buyer@example.com", PlaceOrderInput{
		ShippingAddress: "123 Main St",
		PaymentMethod:   "credit_card",
	})

	assert.NoError(t, err)
	assert.Equal(t, 25.0, order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.False(t, order.IsPaid)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 3, backend.products[productA].Stock)
	assert.Equal(t, 4, backend.products[productB].Stock)
	assert.Empty(t, backend.cart[userID])

	assert.Eventually(t, func() bool {
		return notifier.confirmationCount() == 1
	}, time.Second, 10*time.Millisecond, "confirmation mail should be sent after commit")
}

func TestPlaceOrderSucceedsWhenNotificationFails(t *testing.T) {
	engine, backend, notifier := newTestEngine()
	notifier.confirmationErr = assert.AnError

	userID := bson.NewObjectID()
	productID := seedProduct(backend, "Widget", 10, 5)
	seedCartLine(backend, userID, productID, 2)

	order, err := engine.PlaceOrder(context.Background(), userID, "buyer@example.com", PlaceOrderInput{ShippingAddress: "addr"})

	assert.NoError(t, err, "a dead mail relay must not fail a committed order")
	assert.NotNil(t, order)
	assert.Contains(t, backend.orders, order.ID)
	assert.Equal(t, 3, backend.products[productID].Stock)

	assert.Eventually(t, func() bool {
		return notifier.confirmationCount() == 1
	}, time.Second, 10*time.Millisecond, "delivery is still attempted")
}

func TestPlaceOrderSnapshotsItemsAtPurchaseTime(t *testing.T) {
	engine, backend, _ := newTestEngine()
	userID := bson.NewObjectID()

	productID := seedProduct(backend, "Widget", 20, 10)
	seedCartLine(backend, userID, productID, 1)

	order, err := engine.PlaceOrder(context.Background(), userID, "buyer@example.com", PlaceOrderInput{ShippingAddress: "addr"})
	assert.NoError(t, err)

	// A later price change must not touch the historical order.
	product := backend.products[productID]
	product.Price = 99
	backend.products[productID] = product

	stored := backend.orders[order.ID]
	assert.Equal(t, 20.0, stored.Items[0].Price)
	assert.Equal(t, 20.0, stored.TotalAmount)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	engine, backend, _ := newTestEngine()
	userID := bson.NewObjectID()
	productID := seedProduct(backend, "Widget", 10, 5)

	order, err := engine.PlaceOrder(context.Background(), userID, "buyer@example.com", PlaceOrderInput{ShippingAddress: "addr"})

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, order)
	assert.Empty(t, backend.orders)
	assert.Equal(t, 5, backend.products[productID].Stock)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	engine, backend, _ := newTestEngine()
	userID := bson.NewObjectID()

	productID := seedProduct(backend, "Rare Item", 10, 1)
	seedCartLine(backend, userID, productID, 100)

	order, err := engine.PlaceOrder(context.Background(), userID, "buyer@example.com", PlaceOrderInput{ShippingAddress: "addr"})

	var stockErr *InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Rare Item", stockErr.Product)
	assert.Nil(t, order)
	assert.Equal(t, 1, backend.products[productID].Stock)
	assert.Len(t, backend.cart[userID], 1, "cart must remain intact")
	assert.Empty(t, backend.orders)
}

func TestPlaceOrderRollsBackEarlierLines(t *testing.T) {
	engine, backend, _ := newTestEngine()
	userID := bson.NewObjectID()

	// First line has plenty of stock, second does not. The first line's
	// decrement must not survive the failure.
	productA := seedProduct(backend, "Plentiful", 10, 50)
	productB := seedProduct(backend, "Scarce", 5, 1)
	seedCartLine(backend, userID, productA, 2)
	seedCartLine(backend, userID, productB, 3)

	_, err := engine.PlaceOrder(context.Background(), userID, "buyer@example.com", PlaceOrderInput{ShippingAddress: "addr"})

	var stockErr *InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Scarce", stockErr.Product)
	assert.Equal(t, 50, backend.products[productA].Stock, "earlier decrement must roll back")
	assert.Equal(t, 1, backend.products[productB].Stock)
	assert.Len(t, backend.cart[userID], 2)
	assert.Empty(t, backend.orders)
}

func TestConcurrentCheckoutsForLastUnit(t *testing.T) {
	engine, backend, _ := newTestEngine()

	productID := seedProduct(backend, "Last Unit", 10, 1)

	userA := bson.NewObjectID()
	userB := bson.NewObjectID()
	seedCartLine(backend, userA, productID, 1)
	seedCartLine(backend, userB, productID, 1)

	results := make(chan error, 2)
	for _, userID := range []bson.ObjectID{userA, userB} {
		go func(id bson.ObjectID) {
			_, err := engine.PlaceOrder(context.Background(), id, "buyer@example.com", PlaceOrderInput{ShippingAddress: "addr"})
			results <- err
		}(userID)
	}

	var successes, stockFailures int
	for i := 0; i < 2; i++ {
		err := <-results
		if err == nil {
			successes++
			continue
		}
		var stockErr *InsufficientStockError
		if assert.ErrorAs(t, err, &stockErr) {
			stockFailures++
		}
	}

	assert.Equal(t, 1, successes, "exactly one checkout wins the last unit")
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, 0, backend.products[productID].Stock)
	assert.Len(t, backend.orders, 1)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	engine, backend, _ := newTestEngine()
	userID := bson.NewObjectID()

	productID := seedProduct(backend, "Widget", 10, 5)
	seedCartLine(backend, userID, productID, 2)

	order, err := engine.PlaceOrder(context.Background(), userID, "buyer@example.com", PlaceOrderInput{ShippingAddress: "addr"})
	assert.NoError(t, err)
	assert.Equal(t, 3, backend.products[productID].Stock)

	cancelled, err := engine.CancelOrder(context.Background(), order.ID, userID)

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 5, backend.products[productID].Stock)
}

func TestCancelOrderRejectsNonPending(t *testing.T) {
	engine, backend, _ := newTestEngine()
	userID := bson.NewObjectID()

	productID := seedProduct(backend, "Widget", 10, 5)
	seedCartLine(backend, userID, productID, 2)

	order, err := engine.PlaceOrder(context.Background(), userID, "buyer@example.com", PlaceOrderInput{ShippingAddress: "addr"})
	assert.NoError(t, err)

	_, err = backend.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusShipped)
	assert.NoError(t, err)

	cancelled, err := engine.CancelOrder(context.Background(), order.ID, userID)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Nil(t, cancelled)
	assert.Equal(t, 3, backend.products[productID].Stock, "stock must not change")
	assert.Equal(t, models.OrderStatusShipped, backend.orders[order.ID].Status)
}

func TestCancelOrderOwnershipEnforced(t *testing.T) {
	engine, backend, _ := newTestEngine()
	owner := bson.NewObjectID()
	stranger := bson.NewObjectID()

	productID := seedProduct(backend, "Widget", 10, 5)
	seedCartLine(backend, owner, productID, 1)

	order, err := engine.PlaceOrder(context.Background(), owner, "owner@example.com", PlaceOrderInput{ShippingAddress: "addr"})
	assert.NoError(t, err)

	cancelled, err := engine.CancelOrder(context.Background(), order.ID, stranger)

	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, cancelled)
	assert.Equal(t, models.OrderStatusPending, backend.orders[order.ID].Status)
}

func TestUpdateOrderStatus(t *testing.T) {
	engine, backend, notifier := newTestEngine()
	userID := bson.NewObjectID()
	backend.users[userID] = models.User{ID: userID, FirstName: "Jo", Email: "jo@example.com"}

	productID := seedProduct(backend, "Widget", 10, 5)
	seedCartLine(backend, userID, productID, 1)

	order, err := engine.PlaceOrder(context.Background(), userID, "jo@example.com", PlaceOrderInput{ShippingAddress: "addr"})
	assert.NoError(t, err)

	updated, err := engine.UpdateOrderStatus(context.Background(), order.ID, "shipped")

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	assert.Equal(t, 4, backend.products[productID].Stock, "administrative updates never touch stock")

	assert.Eventually(t, func() bool {
		return notifier.statusUpdateCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	engine, _, _ := newTestEngine()

	updated, err := engine.UpdateOrderStatus(context.Background(), bson.NewObjectID(), "teleported")

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Nil(t, updated)
}

func TestUpdateOrderStatusMissingOrder(t *testing.T) {
	engine, _, _ := newTestEngine()

	updated, err := engine.UpdateOrderStatus(context.Background(), bson.NewObjectID(), "confirmed")

	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, updated)
}
