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

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	cursor, err := s.collection(categoriesCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (s *Store) FindCategoryByID(ctx context.Context, id bson.ObjectID) (*models.Category, error) {
	var category models.Category
	err := s.collection(categoriesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	category.SetTimestamps()

	result, err := s.collection(categoriesCollection).InsertOne(ctx, category)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	category.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, id bson.ObjectID, req *models.CreateCategoryRequest) (*models.Category, error) {
	update := bson.M{"$set": bson.M{
		"name":        req.Name,
		"description": req.Description,
		"updated_at":  time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var category models.Category
	err := s.collection(categoriesCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return &category, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id bson.ObjectID) error {
	result, err := s.collection(categoriesCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
