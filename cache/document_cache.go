package cache

import (
	"context"
	"fmt"
	"time"

	"stemhub/logger"
	"stemhub/repository"

	"github.com/go-redis/redis/v8"
)

// DefaultInvalidateDelay is how long after a write the cached key is deleted
// a second time.
const DefaultInvalidateDelay = 500 * time.Millisecond

// DocumentCache is a read-through Redis cache in front of a DocumentStore.
// Only single-document reads are cached; writes invalidate the cached copy.
// Redis errors never fail a call, the underlying store is used instead.
//
// A read that loaded the old row before a write can still Set it after the
// write's Del. Every invalidation is therefore repeated after a short delay,
// which bounds such a stale entry to that delay instead of the full TTL.
type DocumentCache struct {
	next   repository.DocumentStore
	client *redis.Client
	ttl    time.Duration
	delay  time.Duration
}

// NewDocumentCache wraps next with a cache stored in client.
func NewDocumentCache(next repository.DocumentStore, client *redis.Client, ttl time.Duration) *DocumentCache {
	return &DocumentCache{next: next, client: client, ttl: ttl, delay: DefaultInvalidateDelay}
}

// WithInvalidateDelay sets the delay of the second Del; zero disables it.
func (c *DocumentCache) WithInvalidateDelay(d time.Duration) *DocumentCache {
	c.delay = d
	return c
}

// DocumentKey 生成文档缓存的Redis键
func DocumentKey(collection, id string) string {
	return fmt.Sprintf("doc:%s:%s", collection, id)
}

func (c *DocumentCache) Create(ctx context.Context, collection string, data interface{}) (string, error) {
	return c.next.Create(ctx, collection, data)
}

func (c *DocumentCache) GetAll(ctx context.Context, collection string) ([]repository.Document, error) {
	return c.next.GetAll(ctx, collection)
}

func (c *DocumentCache) GetByID(ctx context.Context, collection, id string) (*repository.Document, error) {
	key := DocumentKey(collection, id)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return &repository.Document{ID: id, Data: data}, nil
	}
	if err != redis.Nil {
		logger.Warn("[Cache] 读取缓存失败，回退到数据库",
			logger.String("key", key),
			logger.ErrorField(err))
	}

	doc, err := c.next.GetByID(ctx, collection, id)
	if err != nil || doc == nil {
		return doc, err
	}

	if err := c.client.Set(ctx, key, doc.Data, c.ttl).Err(); err != nil {
		logger.Warn("[Cache] 写入缓存失败",
			logger.String("key", key),
			logger.ErrorField(err))
	}
	return doc, nil
}

func (c *DocumentCache) Update(ctx context.Context, collection, id string, data interface{}) error {
	if err := c.next.Update(ctx, collection, id, data); err != nil {
		return err
	}
	c.invalidate(ctx, collection, id)
	return nil
}

func (c *DocumentCache) Delete(ctx context.Context, collection, id string) error {
	if err := c.next.Delete(ctx, collection, id); err != nil {
		return err
	}
	c.invalidate(ctx, collection, id)
	return nil
}

func (c *DocumentCache) invalidate(ctx context.Context, collection, id string) {
	key := DocumentKey(collection, id)
	c.del(ctx, key)
	if c.delay > 0 {
		// 延迟双删
		time.AfterFunc(c.delay, func() {
			c.del(context.Background(), key)
		})
	}
}

func (c *DocumentCache) del(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		logger.Warn("[Cache] 删除缓存失败",
			logger.String("key", key),
			logger.ErrorField(err))
	}
}
