package mongo

import (
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"example.com/storefront/pkg/global"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Users Collection Indexes
	{
		CollectionName: usersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_user_email_unique"),
		},
	},
	{
		CollectionName: usersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "reset_password_token", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_reset_token"),
		},
	},

	// Products Collection Indexes
	{
		CollectionName: productsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "category_id", Value: 1}},
			Options: options.Index().SetName("idx_product_category"),
		},
	},

	// Cart Collection Indexes
	// One line per (user, product); repeat adds increment the quantity.
	{
		CollectionName: cartCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "product_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_cart_user_product_unique"),
		},
	},

	// Orders Collection Indexes
	{
		CollectionName: ordersCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_user_orders"),
		},
	},
	{
		CollectionName: ordersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_order_status"),
		},
	},
}

func (s *Store) EnsureIndexes() error {
	for _, idxConfig := range requiredIndexes {
		ctx, cancel := global.GetDefaultTimer()

		indexName, err := s.collection(idxConfig.CollectionName).Indexes().CreateOne(ctx, idxConfig.IndexModel)
		cancel()
		if err != nil {
			log.Printf("Error creating index on collection %s: %v", idxConfig.CollectionName, err)
			return err
		}

		log.Printf("Created index '%s' on collection '%s'", indexName, idxConfig.CollectionName)
	}

	return nil
}
