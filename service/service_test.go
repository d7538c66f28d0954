package service_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"stemhub/repository"
	"stemhub/storage"
)

// countingStore records writes made through it.
type countingStore struct {
	repository.DocumentStore

	mu      sync.Mutex
	updates int
	deletes int
}

func newCountingStore() *countingStore {
	return &countingStore{DocumentStore: repository.NewMemoryDocumentStore()}
}

func (c *countingStore) Update(ctx context.Context, collection, id string, data interface{}) error {
	c.mu.Lock()
	c.updates++
	c.mu.Unlock()
	return c.DocumentStore.Update(ctx, collection, id, data)
}

func (c *countingStore) Delete(ctx context.Context, collection, id string) error {
	c.mu.Lock()
	c.deletes++
	c.mu.Unlock()
	return c.DocumentStore.Delete(ctx, collection, id)
}

func (c *countingStore) writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates + c.deletes
}

// failingStore fails every call with err.
type failingStore struct{ err error }

func (f failingStore) Create(context.Context, string, interface{}) (string, error) { return "", f.err }
func (f failingStore) GetAll(context.Context, string) ([]repository.Document, error) {
	return nil, f.err
}
func (f failingStore) GetByID(context.Context, string, string) (*repository.Document, error) {
	return nil, f.err
}
func (f failingStore) Update(context.Context, string, string, interface{}) error { return f.err }
func (f failingStore) Delete(context.Context, string, string) error { return f.err }

// fakeFiles records sweeps.
type fakeFiles struct {
	mu       sync.Mutex
	swept    []string
	sweepErr error
}

func (f *fakeFiles) Save(ctx context.Context, kind, ownerID string, file storage.Upload) (string, error) {
	return storage.AudioPath(kind, storage.StoredName(ownerID, file.Filename)), nil
}

func (f *fakeFiles) DeleteByPrefix(ctx context.Context, kind, ownerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swept = append(f.swept, kind+"/"+ownerID)
	return 1, f.sweepErr
}

func (f *fakeFiles) Open(ctx context.Context, kind, name string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound.New("%s/%s", kind, name)
}

var errBoom = errors.New("boom")

// stepClock returns t0, t0+1s, t0+2s, ...
func stepClock(t0 time.Time) func() time.Time {
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := t0.Add(time.Duration(n) * time.Second)
		n++
		return now
	}
}

func strPtr(s string) *string { return &s }
