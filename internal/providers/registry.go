package providers

import (
	"fmt"
	"sync/atomic"
)

// ProviderState is the mutable rotation cursor of one provider.
// The cursor only grows; the key index is cursor mod key count, so it is
// always in range. Concurrent callers may observe keys slightly out of strict
// round-robin order, which is accepted.
type ProviderState struct {
	cursor atomic.Uint64
}

// next returns the index to use and advances the cursor.
func (s *ProviderState) next(n int) int {
	return int((s.cursor.Add(1) - 1) % uint64(n))
}

// advance moves the cursor forward without using a key.
func (s *ProviderState) advance() {
	s.cursor.Add(1)
}

// position returns the index the next call will use.
func (s *ProviderState) position(n int) int {
	if n == 0 {
		return 0
	}
	return int(s.cursor.Load() % uint64(n))
}

type entry struct {
	config  ProviderConfig
	adapter Adapter
	state   *ProviderState
}

// Registry holds the configured providers in fallback order.
type Registry struct {
	entries []*entry
	byName  map[string]*entry
}

// NewRegistry builds a registry from configs in the given order, binding each
// provider to the adapter for its family.
func NewRegistry(configs []ProviderConfig, lookup AdapterLookup) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*entry, len(configs)),
	}

	for _, cfg := range configs {
		if cfg.Name == "" {
			return nil, fmt.Errorf("provider name is required")
		}
		if _, dup := r.byName[cfg.Name]; dup {
			return nil, fmt.Errorf("duplicate provider %q", cfg.Name)
		}
		if cfg.Family == "" {
			cfg.Family = DefaultFamily(cfg.Name)
		}

		adapter, ok := lookup.Get(cfg.Family)
		if !ok {
			return nil, fmt.Errorf("provider %q: no adapter for family %q", cfg.Name, cfg.Family)
		}

		cfg.Keys = append([]string(nil), cfg.Keys...)
		e := &entry{config: cfg, adapter: adapter, state: &ProviderState{}}
		r.entries = append(r.entries, e)
		r.byName[cfg.Name] = e
	}

	return r, nil
}

// ActiveProviders returns enabled providers in configured order.
func (r *Registry) ActiveProviders() []ProviderConfig {
	var active []ProviderConfig
	for _, e := range r.entries {
		if e.config.Enabled() {
			active = append(active, e.config)
		}
	}
	return active
}

// AllProviders returns every configured provider, enabled or not.
func (r *Registry) AllProviders() []ProviderConfig {
	all := make([]ProviderConfig, 0, len(r.entries))
	for _, e := range r.entries {
		all = append(all, e.config)
	}
	return all
}

// Get returns the config for a provider.
func (r *Registry) Get(name string) (ProviderConfig, bool) {
	e, ok := r.byName[name]
	if !ok {
		return ProviderConfig{}, false
	}
	return e.config, true
}

// Adapter returns the adapter bound to a provider.
func (r *Registry) Adapter(name string) (Adapter, error) {
	e, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return e.adapter, nil
}

// State returns the rotation state of a provider.
func (r *Registry) State(name string) (*ProviderState, error) {
	e, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return e.state, nil
}
