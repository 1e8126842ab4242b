package pool

import (
	"sync"
	"sync/atomic"

	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// StaticCapacity is an in-memory capacity source.
type StaticCapacity struct {
	n atomic.Int64

	mu        sync.Mutex
	listeners []func()
}

var (
	_ ports.CapacitySource   = (*StaticCapacity)(nil)
	_ ports.CapacityNotifier = (*StaticCapacity)(nil)
)

// NewStaticCapacity returns a capacity source holding n.
func NewStaticCapacity(n int) *StaticCapacity {
	c := &StaticCapacity{}
	c.n.Store(int64(n))
	return c
}

func (c *StaticCapacity) MaxCapacity() int {
	return int(c.n.Load())
}

func (c *StaticCapacity) SetMaxCapacity(n int) {
	c.n.Store(int64(n))

	c.mu.Lock()
	listeners := c.listeners
	c.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (c *StaticCapacity) OnCapacityChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners[:len(c.listeners):len(c.listeners)], fn)
}
