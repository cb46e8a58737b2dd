package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix = "midc:kb:"
	cacheListKey   = cacheKeyPrefix + "list"
	cacheDocPrefix = cacheKeyPrefix + "doc:"
)

// CachedRepository is a cache-aside decorator over another Repository. Any
// cache failure falls through to the inner repository.
type CachedRepository struct {
	inner  Repository
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedRepository(inner Repository, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedRepository {
	return &CachedRepository{
		inner:  inner,
		rdb:    rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"repository": "redis-cache"}),
	}
}

func (c *CachedRepository) ListDocuments(ctx context.Context) ([]models.DocumentRecord, error) {
	var docs []models.DocumentRecord
	if c.load(ctx, cacheListKey, &docs) {
		return docs, nil
	}

	docs, err := c.inner.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, cacheListKey, docs)
	return docs, nil
}

func (c *CachedRepository) GetDocument(ctx context.Context, sectionID string) (*models.DocumentRecord, error) {
	key := cacheDocPrefix + sectionID

	var doc models.DocumentRecord
	if ValidSectionID(sectionID) && c.load(ctx, key, &doc) {
		return &doc, nil
	}

	found, err := c.inner.GetDocument(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, found)
	return found, nil
}

// Invalidate drops every cached listing and document.
func (c *CachedRepository) Invalidate(ctx context.Context) error {
	keys := []string{cacheListKey}
	iter := c.rdb.Scan(ctx, 0, cacheDocPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *CachedRepository) load(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("discarding corrupt cache entry", map[string]interface{}{"key": key, "error": err.Error()})
		return false
	}
	return true
}

func (c *CachedRepository) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
