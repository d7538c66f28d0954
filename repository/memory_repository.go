package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// memoryDocumentStore keeps documents in process memory. It is used when no
// database is configured and as a test double.
type memoryDocumentStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	order []string
	docs  map[string][]byte
}

// NewMemoryDocumentStore creates an empty in-memory DocumentStore.
func NewMemoryDocumentStore() DocumentStore {
	return &memoryDocumentStore{collections: make(map[string]*memoryCollection)}
}

func (s *memoryDocumentStore) collection(name string) *memoryCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string][]byte)}
		s.collections[name] = c
	}
	return c
}

func (s *memoryDocumentStore) Create(ctx context.Context, collection string, data interface{}) (string, error) {
	payload, err := marshalData(data)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	id := uuid.NewString()
	c.docs[id] = payload
	c.order = append(c.order, id)
	return id, nil
}

func (s *memoryDocumentStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return []Document{}, nil
	}
	docs := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, Document{ID: id, Data: copyBytes(c.docs[id])})
	}
	return docs, nil
}

func (s *memoryDocumentStore) GetByID(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}
	data, ok := c.docs[id]
	if !ok {
		return nil, nil
	}
	return &Document{ID: id, Data: copyBytes(data)}, nil
}

// Update is a no-op for unknown ids, matching the gorm implementation.
func (s *memoryDocumentStore) Update(ctx context.Context, collection, id string, data interface{}) error {
	payload, err := marshalData(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	if _, ok := c.docs[id]; ok {
		c.docs[id] = payload
	}
	return nil
}

func (s *memoryDocumentStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func copyBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}
