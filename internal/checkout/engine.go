package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	store "example.com/storefront/pkg/mongo"
	"example.com/storefront/pkg/models"
)

// Storage collaborators, defined here so the engine can be exercised against
// fakes. *mongo.Store satisfies all of them; inside WithinTx its methods join
// the surrounding transaction through the callback's context.

type CartStore interface {
	LinesByUser(ctx context.Context, userID bson.ObjectID) ([]models.CartLine, error)
	DeleteAllForUser(ctx context.Context, userID bson.ObjectID) error
}

type ProductStore interface {
	FindProductByID(ctx context.Context, id bson.ObjectID) (*models.Product, error)
	DecrementStock(ctx context.Context, id bson.ObjectID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id bson.ObjectID, qty int) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrderByIDForUser(ctx context.Context, orderID, userID bson.ObjectID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID bson.ObjectID, status models.OrderStatus) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID bson.ObjectID) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
}

type UserStore interface {
	FindUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
}

// TxRunner wraps fn in an atomic unit: everything commits or nothing does.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier delivers best-effort mail. Failures are logged by the engine and
// never surface to the caller of a committed operation.
type Notifier interface {
	OrderConfirmation(email string, order *models.Order) error
	StatusUpdate(user *models.User, order *models.Order) error
}

// Engine converts carts into orders. It is the only component that mutates
// product stock, and it only ever does so inside a transaction.
type Engine struct {
	tx       TxRunner
	carts    CartStore
	products ProductStore
	orders   OrderStore
	users    UserStore
	notifier Notifier
}

func New(tx TxRunner, carts CartStore, products ProductStore, orders OrderStore, users UserStore, notifier Notifier) *Engine {
	return &Engine{
		tx:       tx,
		carts:    carts,
		products: products,
		orders:   orders,
		users:    users,
		notifier: notifier,
	}
}

type PlaceOrderInput struct {
	ShippingAddress string
	PaymentMethod   string
}

// PlaceOrder turns the user's cart into a pending order: validate stock,
// decrement it, snapshot the items at current prices, persist the order, and
// clear the cart, all in one atomic unit. Totals are always recomputed from
// stored product prices; nothing client-supplied is trusted. Only after
// commit is the confirmation mail sent.
func (e *Engine) PlaceOrder(ctx context.Context, userID bson.ObjectID, email string, in PlaceOrderInput) (*models.Order, error) {
	var order *models.Order

	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		lines, err := e.carts.LinesByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		items := make([]models.OrderItem, 0, len(lines))
		var totalAmount float64

		for _, line := range lines {
			product, err := e.products.FindProductByID(ctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("load product %s: %w", line.ProductID.Hex(), err)
			}

			if product.Stock < line.Quantity {
				return &InsufficientStockError{Product: product.Name}
			}

			// The decrement re-validates stock in its filter, so a
			// concurrent checkout that got there first turns into a
			// clean failure instead of negative stock.
			ok, err := e.products.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock for %s: %w", product.Name, err)
			}
			if !ok {
				return &InsufficientStockError{Product: product.Name}
			}

			totalAmount += product.Price * float64(line.Quantity)
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  line.Quantity,
			})
		}

		paymentMethod := in.PaymentMethod
		if paymentMethod == "" {
			paymentMethod = "cash"
		}

		order = &models.Order{
			UserID:          userID,
			Items:           items,
			TotalAmount:     totalAmount,
			Status:          models.OrderStatusPending,
			ShippingAddress: in.ShippingAddress,
			PaymentMethod:   paymentMethod,
			IsPaid:          false,
		}
		order.SetTimestamps()

		if err := e.orders.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if err := e.carts.DeleteAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	confirmed := order
	e.notifyAsync("order confirmation", func() error {
		return e.notifier.OrderConfirmation(email, confirmed)
	})

	return order, nil
}

// CancelOrder lets the owning user cancel their own pending order. Stock
// restoration and the status write commit together or not at all.
func (e *Engine) CancelOrder(ctx context.Context, orderID, userID bson.ObjectID) (*models.Order, error) {
	var cancelled *models.Order

	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := e.orders.FindOrderByIDForUser(ctx, orderID, userID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}

		if !order.CanBeCancelled() {
			return ErrInvalidTransition
		}

		for _, item := range order.Items {
			if err := e.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restore stock for %s: %w", item.Name, err)
			}
		}

		cancelled, err = e.orders.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

// UpdateOrderStatus is the administrative status write. Any member of the
// status enum is accepted; no transition graph is enforced, and stock is not
// restored here. Only the customer self-cancel path restores stock.
func (e *Engine) UpdateOrderStatus(ctx context.Context, orderID bson.ObjectID, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	var (
		updated *models.Order
		owner   *models.User
	)

	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := e.orders.UpdateOrderStatus(ctx, orderID, models.OrderStatus(status))
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		updated = order

		owner, err = e.users.FindUserByID(ctx, order.UserID)
		if err != nil {
			// The status change is committed regardless; the mail
			// just has nowhere to go.
			log.Printf("Warning: failed to load user %s for status notification: %v", order.UserID.Hex(), err)
			owner = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if owner != nil {
		user, order := owner, updated
		e.notifyAsync("status update", func() error {
			return e.notifier.StatusUpdate(user, order)
		})
	}

	return updated, nil
}

func (e *Engine) ListUserOrders(ctx context.Context, userID bson.ObjectID) ([]models.Order, error) {
	return e.orders.ListOrdersByUser(ctx, userID)
}

func (e *Engine) GetUserOrder(ctx context.Context, orderID, userID bson.ObjectID) (*models.Order, error) {
	order, err := e.orders.FindOrderByIDForUser(ctx, orderID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (e *Engine) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return e.orders.ListAllOrders(ctx)
}

// notifyAsync fires a notification without blocking the request and without
// letting a delivery failure reach the caller.
func (e *Engine) notifyAsync(kind string, send func() error) {
	go func() {
		done := make(chan error, 1)
		go func() { done <- send() }()

		select {
		case err := <-done:
			if err != nil {
				log.Printf("Warning: failed to send %s notification: %v", kind, err)
			}
		case <-time.After(10 * time.Second):
			log.Printf("Warning: %s notification timed out", kind)
		}
	}()
}
