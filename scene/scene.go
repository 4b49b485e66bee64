// Package scene reconciles entities described in YAML files into a world.
//
// Each entity in a scene names its id explicitly, so applying the same scene
// twice updates the same entities instead of spawning copies. Every applied
// entity carries the marker of the Marking passed to Apply, which lets
// systems tell scene-owned entities apart from runtime ones.
package scene

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/edwinsyarief/shirushi"
	"gopkg.in/yaml.v3"
)

var ErrUnknownComponent = errors.New("unknown component")

// Scene is a decoded scene document.
type Scene struct {
	Entities []EntityDef `yaml:"entities"`
}

// EntityDef describes one entity. Version defaults to 1.
type EntityDef struct {
	ID         uint32               `yaml:"id"`
	Version    uint32               `yaml:"version"`
	Components map[string]yaml.Node `yaml:"components"`
}

// Entity returns the handle the definition refers to.
func (d EntityDef) Entity() shirushi.Entity {
	v := d.Version
	if v == 0 {
		v = 1
	}
	return shirushi.Entity{ID: d.ID, Version: v}
}

func Decode(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scene: unmarshal: %w", err)
	}
	return &s, nil
}

func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: load %s: %w", path, err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", path, err)
	}
	return s, nil
}

// Apply records commands that bring the world in line with s. Every entity is
// obtained through k.GetOrMarked and receives all of its components in a
// single insert. Components are decoded up front; on error nothing is
// appended to b.
func Apply[M any](s *Scene, r *Registry, b shirushi.Buffer, k shirushi.Marking[M]) error {
	payloads := make([]shirushi.Joined, len(s.Entities))
	for i, def := range s.Entities {
		names := slices.Sorted(maps.Keys(def.Components))
		joined := make(shirushi.Joined, 0, len(names))
		for _, name := range names {
			node := def.Components[name]
			c, err := r.decode(name, &node)
			if err != nil {
				return fmt.Errorf("scene: entity %d: %w", def.ID, err)
			}
			joined = append(joined, c)
		}
		payloads[i] = joined
	}
	for i, def := range s.Entities {
		ec := k.GetOrMarked(b, def.Entity())
		if len(payloads[i]) > 0 {
			ec.Insert(payloads[i])
		}
	}
	return nil
}
