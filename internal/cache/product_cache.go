package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"store-service/internal/models"
	"store-service/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	productKeyPrefix = "product:"
	allProductsKey   = "products:all"
	notFoundMarker   = "notfound"
)

// CachedProductRepository is a cache-aside decorator over the catalog read
// side. Redis failures degrade to the database; stock-affecting writes
// invalidate the touched keys. Checkout never reads through this cache:
// the engine reads stock inside its own transaction.
type CachedProductRepository struct {
	realRepo repository.ProductRepository
	redis    *redis.Client
	ttl      time.Duration
	logger   *zap.Logger
}

func NewCachedProductRepository(realRepo repository.ProductRepository, redis *redis.Client, logger *zap.Logger) *CachedProductRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    redis,
		ttl:      5 * time.Minute,
		logger:   logger,
	}
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	key := fmt.Sprintf("%s%d", productKeyPrefix, id)

	data, err := c.redis.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repository.ErrNotFound
		}

		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			c.logger.Warn("failed to unmarshal cached product, falling back to database", zap.Error(err))
			break
		}

		return &product, nil

	case errors.Is(err, redis.Nil):

	default:
		c.logger.Warn("redis error, falling back to database", zap.Error(err))
	}

	product, err := c.realRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, 1*time.Minute).Err(); setErr != nil {
				c.logger.Warn("failed to cache notfound marker", zap.Error(setErr))
			}
		}
		return nil, err
	}

	c.store(ctx, key, product, c.ttl)

	return product, nil
}

func (c *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	data, err := c.redis.Get(ctx, allProductsKey).Bytes()
	if err == nil {
		var products []models.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		c.logger.Warn("failed to unmarshal cached product list, falling back to database")
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("redis error, falling back to database", zap.Error(err))
	}

	products, err := c.realRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	c.store(ctx, allProductsKey, products, c.ttl)

	return products, nil
}

// GetLowStock is not cached: it is an admin view of a fast-moving counter.
func (c *CachedProductRepository) GetLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return c.realRepo.GetLowStock(ctx, threshold)
}

func (c *CachedProductRepository) AdjustStock(ctx context.Context, id int, newStock int, reason string, actorID *string) (*models.Product, error) {
	product, err := c.realRepo.AdjustStock(ctx, id, newStock, reason, actorID)
	if err != nil {
		c.InvalidateProduct(ctx, id)
		return nil, err
	}

	c.InvalidateProduct(ctx, id)

	return product, nil
}

// InvalidateProduct drops the cached entries touched by a stock change.
// The engine calls this after order transactions commit.
func (c *CachedProductRepository) InvalidateProduct(ctx context.Context, productID int) {
	productKey := fmt.Sprintf("%s%d", productKeyPrefix, productID)

	if err := c.redis.Del(ctx, productKey).Err(); err != nil {
		c.logger.Warn("failed to delete product cache", zap.String("key", productKey), zap.Error(err))
	}

	if err := c.redis.Del(ctx, allProductsKey).Err(); err != nil {
		c.logger.Warn("failed to delete product list cache", zap.Error(err))
	}
}

func (c *CachedProductRepository) store(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("failed to marshal for cache", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.redis.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		c.logger.Warn("failed to cache value", zap.String("key", key), zap.Error(err))
	}
}
