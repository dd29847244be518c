package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/basecase/basecase-backend/internal/logger"
	"github.com/basecase/basecase-backend/internal/types"
	"github.com/basecase/basecase-backend/internal/utils"
)

// SheetCache is a read-side cache for fully reconstructed sheet trees,
// keyed by sheet slug. Callers treat it as best effort: a miss or a cache
// error always falls through to storage.
type SheetCache interface {
	GetTree(ctx context.Context, slug string) (*types.Sheet, bool)
	SetTree(ctx context.Context, slug string, sheet *types.Sheet)
	Invalidate(ctx context.Context, slug string)
	Close() error
}

type sheetCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewSheetCache(log *logger.Logger) (SheetCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSeconds := utils.GetEnvAsInt("SHEET_CACHE_TTL", 300, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &sheetCache{
		log: log.With("service", "RedisSheetCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func cacheKey(slug string) string {
	return "sheet_tree:" + slug
}

func (c *sheetCache) GetTree(ctx context.Context, slug string) (*types.Sheet, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(slug)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("Sheet cache read failed", "error", err, "slug", slug)
		}
		return nil, false
	}
	var sheet types.Sheet
	if err := json.Unmarshal(raw, &sheet); err != nil {
		c.log.Warn("Sheet cache entry corrupt, dropping", "error", err, "slug", slug)
		_ = c.rdb.Del(ctx, cacheKey(slug)).Err()
		return nil, false
	}
	return &sheet, true
}

func (c *sheetCache) SetTree(ctx context.Context, slug string, sheet *types.Sheet) {
	if c == nil || c.rdb == nil || sheet == nil {
		return
	}
	raw, err := json.Marshal(sheet)
	if err != nil {
		c.log.Warn("Sheet cache marshal failed", "error", err, "slug", slug)
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(slug), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Sheet cache write failed", "error", err, "slug", slug)
	}
}

func (c *sheetCache) Invalidate(ctx context.Context, slug string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(slug)).Err(); err != nil {
		c.log.Warn("Sheet cache invalidate failed", "error", err, "slug", slug)
	}
}

func (c *sheetCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
