package transactionlist

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/jababank/backend/src/dashboard"
	"github.com/username/jababank/backend/src/logger"
)

// Widget is one live page view: a controller and the document it renders into.
type Widget struct {
	ID         string
	Controller *Controller
	Document   *dashboard.Document
	CreatedAt  time.Time
}

// Registry keeps widgets alive for ttl after their last use.
type Registry struct {
	cache    *cache.Cache
	removeMu sync.Mutex
}

func NewRegistry(ttl, cleanupInterval time.Duration) *Registry {
	c := cache.New(ttl, cleanupInterval)
	c.OnEvicted(func(id string, _ interface{}) {
		logger.L.Debug("Transaction list widget evicted", "widgetID", id)
	})
	return &Registry{cache: c}
}

// NewID returns a fresh widget id.
func (r *Registry) NewID() string {
	return uuid.NewString()
}

func (r *Registry) Add(w *Widget) {
	r.cache.Set(w.ID, w, cache.DefaultExpiration)
}

// Get returns the widget and extends its lifetime.
func (r *Registry) Get(id string) (*Widget, bool) {
	v, found := r.cache.Get(id)
	if !found {
		return nil, false
	}
	w, ok := v.(*Widget)
	if !ok {
		return nil, false
	}
	// Replace fails once the widget is gone, so a concurrent Remove wins.
	if err := r.cache.Replace(id, w, cache.DefaultExpiration); err != nil {
		return nil, false
	}
	return w, true
}

// Remove drops the widget. It reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.removeMu.Lock()
	defer r.removeMu.Unlock()
	if _, found := r.cache.Get(id); !found {
		return false
	}
	r.cache.Delete(id)
	return true
}

func (r *Registry) Count() int {
	return r.cache.ItemCount()
}

// Flush drops every widget.
func (r *Registry) Flush() {
	r.cache.Flush()
}
