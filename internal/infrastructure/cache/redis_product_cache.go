package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
)

const productKeyPrefix = "catalog:product:"

// RedisProductCache caches product lookups by id.
// A product stays cached even when retired, because historical
// orders still resolve it; writes invalidate the entry.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProductCache creates a cache backed by a new Redis client
func NewRedisProductCache(cfg config.RedisConfig, ttl time.Duration) (*RedisProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisProductCache{client: client, ttl: ttl}, nil
}

// NewRedisProductCacheWithClient creates a cache with an existing client
func NewRedisProductCacheWithClient(client *redis.Client, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl}
}

// productEntry is the wire form of a cached product
type productEntry struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	CategoryID  uuid.UUID `json:"category_id"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Get returns the cached product, or (nil, nil) on a miss
func (c *RedisProductCache) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	data, err := c.client.Get(ctx, productKeyPrefix+id.String()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product cache: %w", err)
	}

	var entry productEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode cached product: %w", err)
	}

	price, err := decimal.NewFromString(entry.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cached price: %w", err)
	}

	return &catalog.Product{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        entry.ID,
				CreatedAt: entry.CreatedAt,
				UpdatedAt: entry.UpdatedAt,
			},
			Version: entry.Version,
		},
		Name:        entry.Name,
		Description: entry.Description,
		Price:       price,
		Stock:       entry.Stock,
		Status:      catalog.ProductStatus(entry.Status),
		CategoryID:  entry.CategoryID,
	}, nil
}

// Set stores the product with the configured TTL
func (c *RedisProductCache) Set(ctx context.Context, product *catalog.Product) error {
	entry := productEntry{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.String(),
		Stock:       product.Stock,
		Status:      string(product.Status),
		CategoryID:  product.CategoryID,
		Version:     product.Version,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode product for cache: %w", err)
	}

	return c.client.Set(ctx, productKeyPrefix+product.ID.String(), data, c.ttl).Err()
}

// Invalidate drops the cached entry for a product
func (c *RedisProductCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, productKeyPrefix+id.String()).Err()
}

// Ping checks Redis reachability for health reporting
func (c *RedisProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisProductCache) Close() error {
	return c.client.Close()
}
