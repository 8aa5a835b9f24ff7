package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"example.com/storefront/pkg/global"
)

// Sentinel errors shared by every repository method. Callers branch on these
// instead of matching driver error strings.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

const (
	usersCollection      = "users"
	categoriesCollection = "categories"
	productsCollection   = "products"
	cartCollection       = "cart_items"
	ordersCollection     = "orders"
)

// Store owns the MongoDB connection and exposes one repository per
// collection. Everything that needs persistence receives a *Store (or an
// interface it satisfies); there is no package-level client.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB using the environment configuration and verifies the
// connection with a ping.
func Connect() (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	clientOptions := options.Client().ApplyURI(global.GetMongoURI()).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(global.GetDatabaseName()),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}
