package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/entity"
)

const productTTL = 1 * time.Hour

// ProductCache caches product documents in Redis, keyed by id. A miss is
// reported as (nil, nil).
type ProductCache struct {
	client *redis.Client
}

func NewProductCache(client *redis.Client) *ProductCache {
	return &ProductCache{client: client}
}

func (c *ProductCache) Get(ctx context.Context, id string) (*entity.Product, error) {
	data, err := c.client.Get(ctx, "product:"+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var product entity.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *ProductCache) Set(ctx context.Context, product *entity.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "product:"+product.ID.Hex(), data, productTTL).Err()
}

func (c *ProductCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, "product:"+id).Err()
}
