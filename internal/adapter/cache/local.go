package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/ports"
)

type localEntry struct {
	value     string
	expiresAt time.Time
}

// LocalCache is the in-process fallback used when Redis is down at boot.
// Entries live only as long as the server process, which is fine for
// persona lookups and auth state that Postgres can always rebuild.
type LocalCache struct {
	mu     sync.RWMutex
	data   map[string]localEntry
	log    *zap.Logger
	stopCh chan struct{}
}

func NewLocalCache(sweepInterval time.Duration, log *zap.Logger) ports.Cache {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	c := &LocalCache{
		data:   make(map[string]localEntry),
		log:    log,
		stopCh: make(chan struct{}),
	}
	go c.sweepLoop(sweepInterval)

	log.Warn("falling back to in-process cache",
		zap.Duration("sweep_interval", sweepInterval))
	return c
}

func (c *LocalCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()

	if !ok || (!entry.expiresAt.IsZero() && entry.expiresAt.Before(time.Now())) {
		return "", fmt.Errorf("cache miss: %s", key)
	}
	return entry.value, nil
}

func (c *LocalCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("cache: marshal value for %s: %w", key, err)
		}
		str = string(data)
	}

	entry := localEntry{value: str}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}

	c.mu.Lock()
	c.data[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Ping() error {
	return nil
}

func (c *LocalCache) Close() error {
	close(c.stopCh)
	return nil
}

func (c *LocalCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopCh:
			return
		}
	}
}

func (c *LocalCache) sweep() {
	now := time.Now()
	swept := 0

	c.mu.Lock()
	for key, entry := range c.data {
		if !entry.expiresAt.IsZero() && entry.expiresAt.Before(now) {
			delete(c.data, key)
			swept++
		}
	}
	c.mu.Unlock()

	if swept > 0 {
		c.log.Debug("swept expired cache entries", zap.Int("count", swept))
	}
}
