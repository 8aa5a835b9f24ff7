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

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	order.SetTimestamps()

	result, err := s.collection(ordersCollection).InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	order.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (s *Store) FindOrderByID(ctx context.Context, orderID bson.ObjectID) (*models.Order, error) {
	return s.findOrder(ctx, bson.M{"_id": orderID})
}

// FindOrderByIDForUser scopes the lookup to the owning user, so another
// user's order is indistinguishable from a missing one.
func (s *Store) FindOrderByIDForUser(ctx context.Context, orderID, userID bson.ObjectID) (*models.Order, error) {
	return s.findOrder(ctx, bson.M{"_id": orderID, "user_id": userID})
}

func (s *Store) findOrder(ctx context.Context, filter bson.M) (*models.Order, error) {
	var order models.Order
	err := s.collection(ordersCollection).FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID bson.ObjectID, status models.OrderStatus) (*models.Order, error) {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := s.collection(ordersCollection).FindOneAndUpdate(ctx, bson.M{"_id": orderID}, update, opts).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return &order, nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID bson.ObjectID) ([]models.Order, error) {
	return s.listOrders(ctx, bson.M{"user_id": userID})
}

func (s *Store) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(ctx, bson.M{})
}

func (s *Store) listOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.collection(ordersCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}
