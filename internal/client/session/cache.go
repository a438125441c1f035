// Package session holds the process-wide snapshot of the authenticated user.
//
// Consumers read it through Get or Subscribe and never mutate it; the auth
// service is the only writer. Every write replaces the snapshot wholesale.
package session

import (
	"sync"

	"github.com/dmitrijs2005/crmconsole/internal/client/models"
)

// Listener is notified with the new snapshot (nil after Clear).
type Listener func(user *models.User)

type Cache struct {
	// notifyMu orders writes together with their notifications, so
	// listeners observe snapshots in the order they were stored.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	user      *models.User
	listeners map[uint64]Listener
	nextID    uint64
}

func NewCache() *Cache {
	return &Cache{listeners: make(map[uint64]Listener)}
}

// Get returns a copy of the cached user, or nil.
func (c *Cache) Get() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user.Clone()
}

// Set supersedes the cached user. A nil user is the same as Clear.
func (c *Cache) Set(user *models.User) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	c.user = user.Clone()
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	c.notify(listeners, user)
}

func (c *Cache) Clear() {
	c.Set(nil)
}

// Subscribe registers fn and returns a function that removes it. Listeners
// run synchronously on the writer's goroutine, outside the cache lock. They
// may call Get or unsubscribe but must not write to the cache.
func (c *Cache) Subscribe(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Cache) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		out = append(out, l)
	}
	return out
}

func (c *Cache) notify(listeners []Listener, user *models.User) {
	for _, l := range listeners {
		l(user.Clone())
	}
}
