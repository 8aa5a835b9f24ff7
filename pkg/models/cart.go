package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CartLine is one (user, product, quantity) record pending checkout. A user
// holds at most one line per product; repeat adds increment the quantity.
type CartLine struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    bson.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	ProductID bson.ObjectID `json:"product_id" bson:"product_id" validate:"required"`
	Quantity  int           `json:"quantity" bson:"quantity" validate:"gte=1"`
	AddedAt   time.Time     `json:"added_at" bson:"added_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type UpdateCartLineRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CartLineView is a cart line joined with current product data for display.
// Prices here are informational only; checkout recomputes them server-side.
type CartLineView struct {
	LineID    bson.ObjectID `json:"line_id"`
	ProductID bson.ObjectID `json:"product_id"`
	Name      string        `json:"name"`
	Price     float64       `json:"price"`
	Quantity  int           `json:"quantity"`
	Subtotal  float64       `json:"subtotal"`
}

type CartView struct {
	Items []CartLineView `json:"items"`
	Total float64        `json:"total"`
}
