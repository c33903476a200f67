package providers

import "fmt"

// KeyRotator hands out API keys round-robin, independently per provider.
type KeyRotator struct {
	registry *Registry
}

// NewKeyRotator creates a rotator over the registry's provider states.
func NewKeyRotator(r *Registry) *KeyRotator {
	return &KeyRotator{registry: r}
}

// NextKey returns the key at the provider's cursor and advances the cursor.
// Returns ErrConfiguration if the provider has no keys.
func (k *KeyRotator) NextKey(name string) (key string, index int, err error) {
	e, err := k.lookup(name)
	if err != nil {
		return "", 0, err
	}
	index = e.state.next(len(e.config.Keys))
	return e.config.Keys[index], index, nil
}

// ForceRotate advances the provider's cursor without returning a key, so the
// next call skips the current one.
func (k *KeyRotator) ForceRotate(name string) error {
	e, err := k.lookup(name)
	if err != nil {
		return err
	}
	e.state.advance()
	return nil
}

// Cursor returns the key index the next NextKey call will use.
func (k *KeyRotator) Cursor(name string) (int, error) {
	e, ok := k.registry.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return e.state.position(len(e.config.Keys)), nil
}

func (k *KeyRotator) lookup(name string) (*entry, error) {
	e, ok := k.registry.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if len(e.config.Keys) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrConfiguration, name)
	}
	return e, nil
}
