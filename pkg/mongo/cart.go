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

func (s *Store) LinesByUser(ctx context.Context, userID bson.ObjectID) ([]models.CartLine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: 1}})

	cursor, err := s.collection(cartCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	defer cursor.Close(ctx)

	var lines []models.CartLine
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart lines: %w", err)
	}
	return lines, nil
}

// AddLine upserts a cart line for (user, product). A first add creates the
// line; repeat adds increment the quantity. The unique compound index on
// (user_id, product_id) backs the upsert.
func (s *Store) AddLine(ctx context.Context, userID, productID bson.ObjectID, qty int) error {
	now := time.Now()
	filter := bson.M{"user_id": userID, "product_id": productID}
	update := bson.M{
		"$inc":         bson.M{"quantity": qty},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"added_at": now},
	}
	opts := options.UpdateOne().SetUpsert(true)

	if _, err := s.collection(cartCollection).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to add cart line: %w", err)
	}
	return nil
}

func (s *Store) UpdateLineQuantity(ctx context.Context, lineID, userID bson.ObjectID, qty int) (*models.CartLine, error) {
	filter := bson.M{"_id": lineID, "user_id": userID}
	update := bson.M{"$set": bson.M{"quantity": qty, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var line models.CartLine
	err := s.collection(cartCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&line)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update cart line: %w", err)
	}
	return &line, nil
}

func (s *Store) DeleteLine(ctx context.Context, lineID, userID bson.ObjectID) error {
	result, err := s.collection(cartCollection).DeleteOne(ctx, bson.M{"_id": lineID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAllForUser(ctx context.Context, userID bson.ObjectID) error {
	if _, err := s.collection(cartCollection).DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
