package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/fashion-checkout/internal/cart/domain"
)

// DefaultTTL is how long an untouched cart survives.
const DefaultTTL = 7 * 24 * time.Hour

// RedisRepository stores each cart as a hash of variant id to quantity.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisRepository{client: client, ttl: ttl}
}

func key(customerID uint) string {
	return fmt.Sprintf("cart:%d", customerID)
}

func (r *RedisRepository) AddItem(ctx context.Context, customerID, variantID uint, quantity int) error {
	k := key(customerID)
	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, k, strconv.FormatUint(uint64(variantID), 10), int64(quantity))
	pipe.Expire(ctx, k, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *RedisRepository) RemoveItem(ctx context.Context, customerID, variantID uint) error {
	if err := r.client.HDel(ctx, key(customerID), strconv.FormatUint(uint64(variantID), 10)).Err(); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (r *RedisRepository) List(ctx context.Context, customerID uint) ([]domain.Item, error) {
	fields, err := r.client.HGetAll(ctx, key(customerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	return parseItems(fields)
}

func (r *RedisRepository) Clear(ctx context.Context, customerID uint) error {
	if err := r.client.Del(ctx, key(customerID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// parseItems converts a cart hash, dropping lines at or below zero.
func parseItems(fields map[string]string) ([]domain.Item, error) {
	items := make([]domain.Item, 0, len(fields))
	for field, value := range fields {
		variantID, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cart field %q: %w", field, err)
		}
		quantity, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid cart quantity %q: %w", value, err)
		}
		if quantity <= 0 {
			continue
		}
		items = append(items, domain.Item{VariantID: uint(variantID), Quantity: quantity})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].VariantID < items[j].VariantID })
	return items, nil
}
