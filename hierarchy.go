package shirushi

import (
	"fmt"
	"slices"
)

// Parent points a child entity at its parent.
type Parent struct {
	Entity Entity
}

// Children lists the children of an entity in spawn order.
type Children struct {
	Entities []Entity
}

// ChildBuilder spawns entities as children of one parent. Every child is
// spawned with its Parent component in the same command as its other
// components.
type ChildBuilder struct {
	commands *Commands
	parent   Entity
}

// Parent returns the entity the children are attached to.
func (cb *ChildBuilder) Parent() Entity {
	return cb.parent
}

// Spawn queues an empty child.
func (cb *ChildBuilder) Spawn() *EntityCommands {
	return cb.SpawnBundle(nil)
}

// SpawnBundle queues a child carrying b.
func (cb *ChildBuilder) SpawnBundle(b Bundle) *EntityCommands {
	ec := cb.commands.SpawnBundle(Join(b, Of(Parent{Entity: cb.parent})))
	cb.commands.push(addChildCommand{parent: cb.parent, child: ec.entity})
	return ec
}

// WithChildren runs fn with a builder whose spawns become children of the
// handle's entity.
func (ec *EntityCommands) WithChildren(fn func(cb *ChildBuilder)) *EntityCommands {
	fn(&ChildBuilder{commands: ec.commands, parent: ec.entity})
	return ec
}

type addChildCommand struct {
	parent Entity
	child  Entity
}

func (cmd addChildCommand) apply(w *World, fail failFunc) {
	if !w.IsValid(cmd.parent) {
		fail(OpAddChild, cmd.parent, fmt.Errorf("%w: parent %d/%d", ErrInvalidEntity, cmd.parent.ID, cmd.parent.Version))
		return
	}
	if !w.IsValid(cmd.child) {
		fail(OpAddChild, cmd.child, fmt.Errorf("%w: child %d/%d", ErrInvalidEntity, cmd.child.ID, cmd.child.Version))
		return
	}
	if children := GetComponent[Children](w, cmd.parent); children != nil {
		children.Entities = append(children.Entities, cmd.child)
		return
	}
	SetComponent(w, cmd.parent, Children{Entities: []Entity{cmd.child}})
}

// detachFromParent drops e from its parent's Children list.
func detachFromParent(w *World, e Entity) {
	p := GetComponent[Parent](w, e)
	if p == nil {
		return
	}
	if children := GetComponent[Children](w, p.Entity); children != nil {
		children.Entities = slices.DeleteFunc(children.Entities, func(c Entity) bool {
			return c == e
		})
	}
}
