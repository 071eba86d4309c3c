// internal/store/memory.go
package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used by tests and the simulator.
// It reproduces the backend's semantics: whole-document Set, top-level
// field merge on Update, no cross-document atomicity.
type MemoryStore struct {
	mu          sync.RWMutex
	docs        map[string]map[string]interface{}
	subscribers map[int]*memorySubscription
	nextSubID   int
}

type memorySubscription struct {
	path     string
	onChange func(path string, doc map[string]interface{})
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:        make(map[string]map[string]interface{}),
		subscribers: make(map[int]*memorySubscription),
	}
}

func (s *MemoryStore) Get(ctx context.Context, path string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.docs[path]
	if !exists {
		return nil, nil
	}
	return deepCopy(doc), nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, doc map[string]interface{}) error {
	s.mu.Lock()
	s.docs[path] = deepCopy(doc)
	stored := deepCopy(doc)
	s.mu.Unlock()

	s.notify(path, stored)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	s.mu.Lock()
	doc, exists := s.docs[path]
	if !exists {
		doc = make(map[string]interface{})
		s.docs[path] = doc
	}
	for key, value := range deepCopy(fields) {
		doc[key] = value
	}
	stored := deepCopy(doc)
	s.mu.Unlock()

	s.notify(path, stored)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, collection string) (map[string]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := collection + "/"
	result := make(map[string]map[string]interface{})
	for path, doc := range s.docs {
		if strings.HasPrefix(path, prefix) {
			result[path[len(prefix):]] = deepCopy(doc)
		}
	}
	return result, nil
}

func (s *MemoryStore) Subscribe(path string, onChange func(path string, doc map[string]interface{})) (func(), error) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = &memorySubscription{path: path, onChange: onChange}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}, nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) notify(path string, doc map[string]interface{}) {
	s.mu.RLock()
	var matched []*memorySubscription
	for _, sub := range s.subscribers {
		if pathMatches(sub.path, path) {
			matched = append(matched, sub)
		}
	}
	s.mu.RUnlock()

	for _, sub := range matched {
		sub.onChange(path, deepCopy(doc))
	}
}

func deepCopy(doc map[string]interface{}) map[string]interface{} {
	copied := make(map[string]interface{}, len(doc))
	for key, value := range doc {
		copied[key] = copyValue(value)
	}
	return copied
}

func copyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return deepCopy(v)
	case []interface{}:
		items := make([]interface{}, len(v))
		for i, item := range v {
			items[i] = copyValue(item)
		}
		return items
	default:
		return v
	}
}
