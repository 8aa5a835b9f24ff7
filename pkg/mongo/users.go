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

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.SetTimestamps()

	result, err := s.collection(usersCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *Store) FindUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	var user models.User
	err := s.collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, id bson.ObjectID, req *models.UpdateProfileRequest) (*models.User, error) {
	updates := bson.M{"updated_at": time.Now()}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}

	return s.findUserAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
}

// SetResetToken stores a password reset token with its expiry on the user
// matching the given email.
func (s *Store) SetResetToken(ctx context.Context, email, token string, expires time.Time) (*models.User, error) {
	update := bson.M{"$set": bson.M{
		"reset_password_token":   token,
		"reset_password_expires": expires,
		"updated_at":             time.Now(),
	}}
	return s.findUserAndUpdate(ctx, bson.M{"email": email}, update)
}

// ResetPassword swaps in the new password hash for the user holding an
// unexpired reset token, clearing the token so it cannot be replayed.
func (s *Store) ResetPassword(ctx context.Context, token, hashedPassword string) (*models.User, error) {
	filter := bson.M{
		"reset_password_token":   token,
		"reset_password_expires": bson.M{"$gt": time.Now()},
	}
	update := bson.M{
		"$set":   bson.M{"password": hashedPassword, "updated_at": time.Now()},
		"$unset": bson.M{"reset_password_token": "", "reset_password_expires": ""},
	}
	return s.findUserAndUpdate(ctx, filter, update)
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.collection(usersCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *Store) DeactivateUser(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}}
	return s.findUserAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (s *Store) findUserAndUpdate(ctx context.Context, filter, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := s.collection(usersCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}
