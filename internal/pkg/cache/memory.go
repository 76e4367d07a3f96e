package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero = sem expiração
}

// MemoryClient implementa Client em memória, para STORE_BACKEND=memory e testes.
type MemoryClient struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryClient cria um cache vazio.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// lookup devolve a entrada viva; chaves expiradas são removidas. Chamar com mu travado.
func (c *MemoryClient) lookup(key string) (memoryEntry, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (c *MemoryClient) Ping(ctx context.Context) error { return nil }

func (c *MemoryClient) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lookup(key)
	if !ok {
		return "", ErrCacheMiss
	}
	return entry.value, nil
}

func (c *MemoryClient) GetInt(ctx context.Context, key string) (int, error) {
	val, err := c.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("cache: value of %q is not an integer: %w", key, err)
	}
	return n, nil
}

func (c *MemoryClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := memoryEntry{value: fmt.Sprint(value)}
	if expiration > 0 {
		entry.expiresAt = c.now().Add(expiration)
	}
	c.entries[key] = entry
	return nil
}

// Incr segue a semântica do Redis: chave ausente começa em 0 e o TTL é preservado.
func (c *MemoryClient) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, _ := c.lookup(key)
	current := int64(0)
	if entry.value != "" {
		n, err := strconv.ParseInt(entry.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cache: value of %q is not an integer: %w", key, err)
		}
		current = n
	}
	current++
	entry.value = strconv.FormatInt(current, 10)
	c.entries[key] = entry
	return current, nil
}

func (c *MemoryClient) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
