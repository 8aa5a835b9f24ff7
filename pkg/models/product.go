package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product is a catalog entry. Stock is the count of purchasable units and is
// only ever mutated inside a storage transaction; it never goes below zero.
type Product struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string        `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Price       float64       `json:"price" bson:"price" validate:"gte=0"`
	Description string        `json:"description" bson:"description,omitempty" validate:"max=2000"`
	CategoryID  bson.ObjectID `json:"category_id" bson:"category_id" validate:"required"`
	Stock       int           `json:"stock" bson:"stock" validate:"gte=0"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=200"`
	Price       float64 `json:"price" binding:"gte=0"`
	Description string  `json:"description" binding:"max=2000"`
	CategoryID  string  `json:"category_id" binding:"required"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

func (req *CreateProductRequest) ToProduct(categoryID bson.ObjectID) *Product {
	product := &Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		CategoryID:  categoryID,
		Stock:       req.Stock,
	}
	product.SetTimestamps()
	return product
}

// UpdateProductRequest carries partial updates; nil fields are left untouched.
type UpdateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=2,max=200"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	CategoryID  *string  `json:"category_id"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
}
