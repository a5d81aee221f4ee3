package shape

import (
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog/log"
)

// Registry maps frame message types to payload shapes. It is safe for
// concurrent use.
type Registry struct {
	shapes *xsync.MapOf[string, Shape]
}

func NewRegistry() *Registry {
	return &Registry{shapes: xsync.NewMapOf[string, Shape]()}
}

// RegistryFrom parses every expression in payloads, keyed by message type.
func RegistryFrom(payloads map[string]string) (*Registry, error) {
	reg := NewRegistry()
	for name, expr := range payloads {
		if err := reg.Register(name, expr); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register parses expr and binds it to msgType, replacing any earlier binding.
func (r *Registry) Register(msgType, expr string) error {
	if msgType == "" {
		return fmt.Errorf("shape: empty message type")
	}
	s, err := Parse(expr)
	if err != nil {
		return fmt.Errorf("shape: payload for %q: %w", msgType, err)
	}
	if prev, loaded := r.shapes.LoadAndStore(msgType, s); loaded {
		log.Debug().
			Str("type", msgType).
			Str("old", prev.String()).
			Str("new", s.String()).
			Msg("shape.Registry replaced payload")
	}
	return nil
}

func (r *Registry) Lookup(msgType string) (Shape, bool) {
	return r.shapes.Load(msgType)
}

// Names returns the registered message types in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.shapes.Size())
	r.shapes.Range(func(name string, _ Shape) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}
