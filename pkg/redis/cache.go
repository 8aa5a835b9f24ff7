package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"example.com/storefront/pkg/models"
)

const productCacheTTL = 24 * time.Hour

// ProductCache is a read-through cache for single-product lookups. It is
// strictly best-effort: a cache failure never fails the request.
type ProductCache struct {
	client *redisclient.Client
}

func NewProductCache(client *redisclient.Client) *ProductCache {
	return &ProductCache{client: client}
}

func (c *ProductCache) productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (c *ProductCache) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	productJSON, err := c.client.Get(ctx, c.productKey(id)).Result()
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal([]byte(productJSON), &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

func (c *ProductCache) CacheProduct(ctx context.Context, product *models.Product) error {
	productJSON, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.ID.Hex(), err)
	}

	if err := c.client.Set(ctx, c.productKey(product.ID.Hex()), productJSON, productCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache product %s: %w", product.ID.Hex(), err)
	}
	return nil
}

func (c *ProductCache) InvalidateProduct(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.productKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate product %s: %w", id, err)
	}
	return nil
}
