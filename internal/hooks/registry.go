package hooks

import (
	"errors"
	"fmt"
	"sync"

	"github.com/raphi011/rbee/internal/plug"
)

var (
	// ErrRegistrySealed is returned when registering after the configuration stage began.
	ErrRegistrySealed = errors.New("plugin registry is sealed")

	// ErrEmptyName is returned when registering a plugin without a name.
	ErrEmptyName = errors.New("plugin name must not be empty")
)

// DuplicateNameError reports a second plugin registered under an existing name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate plugin name %q", e.Name)
}

type entry struct {
	plugin plug.Plugin
	caps   plug.Capability
}

// Registry holds the active plugins in registration order.
// It is append-only and becomes read-only once sealed.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	index   map[string]int
	sealed  bool

	configured bool
}

// NewRegistry creates a registry from an explicit plugin list.
// Fails on the first duplicate or unnamed plugin.
func NewRegistry(plugins ...plug.Plugin) (*Registry, error) {
	r := &Registry{index: make(map[string]int)}
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a plugin. On error the registry is unchanged.
func (r *Registry) Register(p plug.Plugin) error {
	if p == nil || p.Name() == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}
	if _, exists := r.index[p.Name()]; exists {
		return &DuplicateNameError{Name: p.Name()}
	}

	r.index[p.Name()] = len(r.entries)
	r.entries = append(r.entries, entry{plugin: p, caps: plug.CapabilitiesOf(p)})
	return nil
}

// markConfigured seals the registry and reports whether this is the first
// configuration stage run against it.
func (r *Registry) markConfigured() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.configured {
		return false
	}
	r.configured = true
	r.sealed = true
	return true
}

// CapableOf returns the plugins implementing every bit of c, in registration order.
func (r *Registry) CapableOf(c plug.Capability) []plug.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []plug.Plugin
	for _, e := range r.entries {
		if e.caps.Has(c) {
			out = append(out, e.plugin)
		}
	}
	return out
}

// Plugins returns all plugins in registration order.
func (r *Registry) Plugins() []plug.Plugin {
	return r.CapableOf(plug.CapNone)
}

// Capabilities returns the capability set detected for name at registration.
func (r *Registry) Capabilities(name string) plug.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i, ok := r.index[name]; ok {
		return r.entries[i].caps
	}
	return plug.CapNone
}
