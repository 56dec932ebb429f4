package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// FeedHealth is a point-in-time view of a registered feed.
type FeedHealth struct {
	Name          string
	CircuitState  gobreaker.State
	Counts        gobreaker.Counts
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// Healthy reports whether the breaker is closed.
func (h FeedHealth) Healthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// Degraded reports whether the breaker is probing (half-open).
func (h FeedHealth) Degraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// Registry tracks feed clients and their most recent outcomes.
type Registry struct {
	mu    sync.RWMutex
	feeds map[string]*feedEntry
}

type feedEntry struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// GlobalRegistry is the process-wide registry used when none is injected.
var GlobalRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{feeds: make(map[string]*feedEntry)}
}

// Register adds or replaces a feed client.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeds[name] = &feedEntry{client: client}
}

// RecordSuccess notes a successful load. Unknown names are ignored.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.feeds[name]; ok {
		now := time.Now()
		e.lastSuccessAt = &now
	}
}

// RecordFailure notes a failed load. Unknown names are ignored.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.feeds[name]; ok {
		now := time.Now()
		e.lastFailureAt = &now
		if err != nil {
			e.lastError = err.Error()
		}
	}
}

// Health returns the health of one feed.
func (r *Registry) Health(name string) (FeedHealth, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.feeds[name]
	if !ok {
		return FeedHealth{}, false
	}
	return e.health(name), true
}

// All returns the health of every feed, sorted by name.
func (r *Registry) All() []FeedHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FeedHealth, 0, len(r.feeds))
	for name, e := range r.feeds {
		out = append(out, e.health(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (e *feedEntry) health(name string) FeedHealth {
	return FeedHealth{
		Name:          name,
		CircuitState:  e.client.State(),
		Counts:        e.client.Counts(),
		LastSuccessAt: e.lastSuccessAt,
		LastFailureAt: e.lastFailureAt,
		LastError:     e.lastError,
	}
}
