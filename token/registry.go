package token

import (
	"fmt"
	"sort"
	"sync"
)

// Registry resolves token references by name.
type Registry struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

// NewRegistry creates a registry holding the given tokens.
func NewRegistry(tokens ...Token) (*Registry, error) {
	r := &Registry{tokens: make(map[string]Token)}
	for _, t := range tokens {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t under t.Name().
func (r *Registry) Register(t Token) error {
	name := t.Name()
	if name == "" {
		return ErrInvalidName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateToken, name)
	}
	r.tokens[name] = t
	return nil
}

// Resolve returns the token registered under name.
func (r *Registry) Resolve(name string) (Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownToken, name)
	}
	return t, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tokens))
	for n := range r.tokens {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
