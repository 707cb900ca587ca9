package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultStockCacheTTL applies when NewStockCache is given a non-positive TTL.
	DefaultStockCacheTTL = 5 * time.Minute

	stockCacheKeyPrefix = "stock"
)

// CachedStock is the item read model stored in Redis as a hash. It is a
// snapshot; the database row stays authoritative for every stock decision.
type CachedStock struct {
	ItemID          int64      `json:"item_id"`
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Unit            string     `json:"unit"`
	Quantity        int        `json:"quantity"`
	InitialQuantity int        `json:"initial_quantity"`
	MinStock        *int       `json:"min_stock,omitempty"`
	IsPPE           bool       `json:"is_ppe"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// StockCache provides read/write operations for stock cache entries.
// Key format: "stock:{itemID}"
type StockCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewStockCache creates a StockCache backed by the given RedisClient.
func NewStockCache(r *RedisClient, ttl time.Duration) *StockCache {
	if ttl <= 0 {
		ttl = DefaultStockCacheTTL
	}
	return &StockCache{client: r, ttl: ttl}
}

// Get retrieves a cached item. Returns redis.Nil when the key does not exist or has expired.
func (c *StockCache) Get(ctx context.Context, itemID int64) (*CachedStock, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}
	return decodeStock(vals)
}

// Set writes the entry and its TTL in one pipeline.
func (c *StockCache) Set(ctx context.Context, s *CachedStock) error {
	key := c.key(s.ItemID)
	pipe := c.client.Client().TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, encodeStock(s)...)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached item.
func (c *StockCache) Delete(ctx context.Context, itemID int64) error {
	if err := c.client.Client().Del(ctx, c.key(itemID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Generation returns the item's invalidation counter, 0 when it was never
// invalidated. Read it before loading the row that will be cached.
func (c *StockCache) Generation(ctx context.Context, itemID int64) (int64, error) {
	gen, err := c.client.Client().Get(ctx, c.genKey(itemID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

// SetIfGeneration writes s only while the item's generation still equals gen.
// It reports false, without error, when a commit invalidated the item after
// gen was read, so a snapshot older than that commit is never stored.
func (c *StockCache) SetIfGeneration(ctx context.Context, s *CachedStock, gen int64) (bool, error) {
	key, genKey := c.key(s.ItemID), c.genKey(s.ItemID)
	stored := false
	err := c.client.Client().Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, encodeStock(s)...)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return stored, nil
}

// Invalidate bumps the item's generation and drops its snapshot in one
// transaction. Pending SetIfGeneration calls for the item then fail.
func (c *StockCache) Invalidate(ctx context.Context, itemID int64) error {
	_, err := c.client.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(itemID))
		pipe.Del(ctx, c.key(itemID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (c *StockCache) key(itemID int64) string {
	return fmt.Sprintf("%s:%d", stockCacheKeyPrefix, itemID)
}

// genKey has no TTL; an expiring counter could come back to a value a
// pending writer already observed.
func (c *StockCache) genKey(itemID int64) string {
	return fmt.Sprintf("%s:%d:gen", stockCacheKeyPrefix, itemID)
}

// encodeStock flattens s into HSET field/value pairs. Optional fields are
// omitted when nil.
func encodeStock(s *CachedStock) []any {
	fields := []any{
		"item_id", strconv.FormatInt(s.ItemID, 10),
		"code", s.Code,
		"name", s.Name,
		"category", s.Category,
		"unit", s.Unit,
		"quantity", strconv.Itoa(s.Quantity),
		"initial_quantity", strconv.Itoa(s.InitialQuantity),
		"is_ppe", strconv.FormatBool(s.IsPPE),
		"created_at", s.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if s.MinStock != nil {
		fields = append(fields, "min_stock", strconv.Itoa(*s.MinStock))
	}
	if s.ExpiryDate != nil {
		fields = append(fields, "expiry_date", s.ExpiryDate.UTC().Format(time.RFC3339Nano))
	}
	return fields
}

func decodeStock(vals map[string]string) (*CachedStock, error) {
	id, err := strconv.ParseInt(vals["item_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cache parse item_id: %w", err)
	}
	qty, err := strconv.Atoi(vals["quantity"])
	if err != nil {
		return nil, fmt.Errorf("cache parse quantity: %w", err)
	}
	initial, err := strconv.Atoi(vals["initial_quantity"])
	if err != nil {
		return nil, fmt.Errorf("cache parse initial_quantity: %w", err)
	}
	isPPE, err := strconv.ParseBool(vals["is_ppe"])
	if err != nil {
		return nil, fmt.Errorf("cache parse is_ppe: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}

	s := &CachedStock{
		ItemID:          id,
		Code:            vals["code"],
		Name:            vals["name"],
		Category:        vals["category"],
		Unit:            vals["unit"],
		Quantity:        qty,
		InitialQuantity: initial,
		IsPPE:           isPPE,
		CreatedAt:       createdAt,
	}
	if v, ok := vals["min_stock"]; ok {
		m, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("cache parse min_stock: %w", err)
		}
		s.MinStock = &m
	}
	if v, ok := vals["expiry_date"]; ok {
		e, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("cache parse expiry_date: %w", err)
		}
		s.ExpiryDate = &e
	}
	return s, nil
}
