package scene

import (
	"fmt"

	"github.com/edwinsyarief/shirushi"
	"gopkg.in/yaml.v3"
)

type decodeFunc func(node *yaml.Node) (shirushi.Bundle, error)

// Registry maps component names used in scene files to component types.
type Registry struct {
	decoders map[string]decodeFunc
}

func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]decodeFunc)}
}

// Register binds name to T. Registering a name twice panics.
func Register[T any](r *Registry, name string) {
	if _, ok := r.decoders[name]; ok {
		panic(fmt.Sprintf("scene: component %q already registered", name))
	}
	r.decoders[name] = func(node *yaml.Node) (shirushi.Bundle, error) {
		var v T
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return shirushi.Of(v), nil
	}
}

// Has reports whether name has been registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.decoders[name]
	return ok
}

func (r *Registry) decode(name string, node *yaml.Node) (shirushi.Bundle, error) {
	dec, ok := r.decoders[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownComponent, name)
	}
	b, err := dec(node)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return b, nil
}
