// Registry manages adapter registration and lookup.
//
// DESIGN: Thread-safe map of family → Adapter.
// Built-in families (chat completion, generate content) are registered at startup.
package adapters

import (
	"net/http"
	"sync"

	"github.com/compresr/edu-ai-gateway/internal/providers"
)

// Registry manages adapter registration.
type Registry struct {
	adapters map[providers.Family]providers.Adapter
	mu       sync.RWMutex
}

// NewRegistry creates a new adapter registry with all built-in adapters
// sharing one HTTP client. A nil client uses a default one.
func NewRegistry(client *http.Client) *Registry {
	r := &Registry{
		adapters: make(map[providers.Family]providers.Adapter),
	}

	r.Register(NewChatCompletionAdapter(client))
	r.Register(NewGenerateContentAdapter(client))

	return r
}

// Register adds an adapter to the registry, replacing any for the same family.
func (r *Registry) Register(adapter providers.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Family()] = adapter
}

// Get returns the adapter for a family.
func (r *Registry) Get(family providers.Family) (providers.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[family]
	return a, ok
}
