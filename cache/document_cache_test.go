package cache_test

import (
	"context"
	"testing"
	"time"

	"stemhub/cache"
	"stemhub/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	repository.DocumentStore
	gets int
}

func (c *countingStore) GetByID(ctx context.Context, collection, id string) (*repository.Document, error) {
	c.gets++
	return c.DocumentStore.GetByID(ctx, collection, id)
}

type item struct {
	Name string `json:"name"`
}

func newCache(t *testing.T) (*cache.DocumentCache, *countingStore, *miniredis.Miniredis) {
	return newCacheWithDelay(t, 0)
}

func newCacheWithDelay(t *testing.T, delay time.Duration) (*cache.DocumentCache, *countingStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &countingStore{DocumentStore: repository.NewMemoryDocumentStore()}
	c := cache.NewDocumentCache(store, client, time.Minute).WithInvalidateDelay(delay)
	return c, store, mr
}

func TestDocumentCacheReadThrough(t *testing.T) {
	ctx := context.Background()
	c, store, mr := newCache(t)

	id, err := c.Create(ctx, "tracks", item{Name: "a"})
	require.NoError(t, err)

	doc, err := c.GetByID(ctx, "tracks", id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Equal(t, 1, store.gets)
	require.True(t, mr.Exists(cache.DocumentKey("tracks", id)))

	doc, err = c.GetByID(ctx, "tracks", id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Equal(t, id, doc.ID)
	require.Equal(t, 1, store.gets, "second read should be served from redis")

	var got item
	require.NoError(t, doc.Decode(&got))
	require.Equal(t, "a", got.Name)
}

func TestDocumentCacheTTL(t *testing.T) {
	ctx := context.Background()
	c, _, mr := newCache(t)

	id, err := c.Create(ctx, "tracks", item{Name: "a"})
	require.NoError(t, err)
	_, err = c.GetByID(ctx, "tracks", id)
	require.NoError(t, err)

	require.Equal(t, time.Minute, mr.TTL(cache.DocumentKey("tracks", id)))
	mr.FastForward(2 * time.Minute)
	require.False(t, mr.Exists(cache.DocumentKey("tracks", id)))
}

func TestDocumentCacheInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	c, store, mr := newCache(t)

	id, err := c.Create(ctx, "tracks", item{Name: "a"})
	require.NoError(t, err)
	_, err = c.GetByID(ctx, "tracks", id)
	require.NoError(t, err)

	require.NoError(t, c.Update(ctx, "tracks", id, item{Name: "b"}))
	require.False(t, mr.Exists(cache.DocumentKey("tracks", id)))

	doc, err := c.GetByID(ctx, "tracks", id)
	require.NoError(t, err)
	var got item
	require.NoError(t, doc.Decode(&got))
	require.Equal(t, "b", got.Name)
	require.Equal(t, 2, store.gets)

	require.NoError(t, c.Delete(ctx, "tracks", id))
	require.False(t, mr.Exists(cache.DocumentKey("tracks", id)))

	doc, err = c.GetByID(ctx, "tracks", id)
	require.NoError(t, err)
	require.Nil(t, doc)
}

func TestDocumentCacheDropsStaleReadAfterWrite(t *testing.T) {
	ctx := context.Background()
	c, _, mr := newCacheWithDelay(t, 100*time.Millisecond)

	id, err := c.Create(ctx, "tracks", item{Name: "a"})
	require.NoError(t, err)
	key := cache.DocumentKey("tracks", id)

	require.NoError(t, c.Update(ctx, "tracks", id, item{Name: "b"}))
	require.False(t, mr.Exists(key))

	// a reader that loaded the old row before the update writes it back late
	require.NoError(t, mr.Set(key, `{"name":"a"}`))

	require.Eventually(t, func() bool {
		return !mr.Exists(key)
	}, 2*time.Second, 5*time.Millisecond)

	doc, err := c.GetByID(ctx, "tracks", id)
	require.NoError(t, err)
	var got item
	require.NoError(t, doc.Decode(&got))
	require.Equal(t, "b", got.Name)
}

func TestDocumentCacheMissIsNotCached(t *testing.T) {
	ctx := context.Background()
	c, store, mr := newCache(t)

	doc, err := c.GetByID(ctx, "tracks", "ghost")
	require.NoError(t, err)
	require.Nil(t, doc)
	require.False(t, mr.Exists(cache.DocumentKey("tracks", "ghost")))

	_, err = c.GetByID(ctx, "tracks", "ghost")
	require.NoError(t, err)
	require.Equal(t, 2, store.gets)
}

func TestDocumentCacheFallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	c, store, mr := newCache(t)

	id, err := c.Create(ctx, "tracks", item{Name: "a"})
	require.NoError(t, err)

	mr.Close()

	doc, err := c.GetByID(ctx, "tracks", id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Equal(t, 1, store.gets)

	require.NoError(t, c.Update(ctx, "tracks", id, item{Name: "b"}))
	require.NoError(t, c.Delete(ctx, "tracks", id))
}
