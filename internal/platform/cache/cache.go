// Package cache holds the visit completion projection so list-heavy reads do
// not recount exam records on every request. The cache is advisory: a miss or
// an unreachable backend just means the projection is recomputed.
package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is a thread-safe in-process completion cache.
type Memory struct {
	mu   sync.RWMutex
	data map[uuid.UUID]bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[uuid.UUID]bool)}
}

func (c *Memory) Get(_ context.Context, visitID uuid.UUID) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[visitID]
	return v, ok
}

func (c *Memory) Set(_ context.Context, visitID uuid.UUID, complete bool) {
	c.mu.Lock()
	c.data[visitID] = complete
	c.mu.Unlock()
}

func (c *Memory) Invalidate(_ context.Context, visitID uuid.UUID) {
	c.mu.Lock()
	delete(c.data, visitID)
	c.mu.Unlock()
}
