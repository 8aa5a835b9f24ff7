package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status. Delivered and cancelled are
// terminal by convention; the administrative update does not enforce a
// transition graph beyond membership in this set.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func ValidOrderStatus(s string) bool {
	for _, status := range OrderStatuses {
		if OrderStatus(s) == status {
			return true
		}
	}
	return false
}

// OrderItem is a frozen copy of the product at the time of purchase. Later
// product edits never change historical orders.
type OrderItem struct {
	ProductID bson.ObjectID `json:"product_id" bson:"product_id" validate:"required"`
	Name      string        `json:"name" bson:"name" validate:"required"`
	Price     float64       `json:"price" bson:"price" validate:"gte=0"`
	Quantity  int           `json:"quantity" bson:"quantity" validate:"gte=1"`
}

func (oi *OrderItem) Subtotal() float64 {
	return oi.Price * float64(oi.Quantity)
}

// Order is a checkout transaction snapshot. TotalAmount equals the sum of
// item subtotals, fixed at creation and never recomputed.
type Order struct {
	ID              bson.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          bson.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Items           []OrderItem   `json:"items" bson:"items" validate:"required,min=1,dive"`
	TotalAmount     float64       `json:"total_amount" bson:"total_amount" validate:"gte=0"`
	Status          OrderStatus   `json:"status" bson:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
	ShippingAddress string        `json:"shipping_address" bson:"shipping_address"`
	PaymentMethod   string        `json:"payment_method" bson:"payment_method"`
	IsPaid          bool          `json:"is_paid" bson:"is_paid"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// CanBeCancelled reports whether the customer self-cancel path is open. Only
// pending orders can be cancelled.
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending
}

func (o *Order) SetTimestamps() {
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
}

type PlaceOrderRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"required"`
	PaymentMethod   string `json:"payment_method"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
