package blob

import (
	"context"
	"sync"
)

// MemoryStore 进程内存储
type MemoryStore struct {
	mu        sync.RWMutex
	objects   map[string]Object
	publicURL string
}

// Object 内存中的一个文件
type Object struct {
	Data        []byte
	ContentType string
}

func NewMemoryStore(publicURL string) *MemoryStore {
	if publicURL == "" {
		publicURL = "memory://blob"
	}
	return &MemoryStore{objects: make(map[string]Object), publicURL: publicURL}
}

func (s *MemoryStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return joinURL(s.publicURL, name), nil
}

// Get 读取文件，不存在时 ok 为 false
func (s *MemoryStore) Get(name string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	return obj, ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
