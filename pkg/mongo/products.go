package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"example.com/storefront/pkg/models"
)

func (s *Store) ListProducts(ctx context.Context, categoryID *bson.ObjectID) ([]models.Product, error) {
	filter := bson.M{}
	if categoryID != nil {
		filter["category_id"] = *categoryID
	}

	cursor, err := s.collection(productsCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (s *Store) FindProductByID(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.collection(productsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	product.SetTimestamps()

	result, err := s.collection(productsCollection).InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	product.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, id bson.ObjectID, req *models.UpdateProductRequest) (*models.Product, error) {
	updates := bson.M{"updated_at": time.Now()}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CategoryID != nil {
		categoryID, err := bson.ObjectIDFromHex(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category id: %w", err)
		}
		updates["category_id"] = categoryID
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := s.collection(productsCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id bson.ObjectID) error {
	result, err := s.collection(productsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock atomically takes qty units off a product's stock, but only
// when enough units remain. The filter carries the stock guard, so two
// concurrent checkouts contending for the last units can never both match;
// the loser sees ok=false. Must run inside WithinTx alongside the order write.
func (s *Store) DecrementStock(ctx context.Context, id bson.ObjectID, qty int) (bool, error) {
	filter := bson.M{"_id": id, "stock": bson.M{"$gte": qty}}
	update := bson.M{
		"$inc": bson.M{"stock": -qty},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := s.collection(productsCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	return result.MatchedCount == 1, nil
}

// IncrementStock returns qty units to a product's stock, used when a pending
// order is cancelled. Must run inside WithinTx alongside the status write.
func (s *Store) IncrementStock(ctx context.Context, id bson.ObjectID, qty int) error {
	update := bson.M{
		"$inc": bson.M{"stock": qty},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := s.collection(productsCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
