package shirushi

import (
	"fmt"
	"iter"
)

// Spawner creates entities through a deferred command buffer. Commands and
// ChildBuilder both satisfy it.
type Spawner interface {
	// Spawn queues an entity with no components.
	Spawn() *EntityCommands
	// SpawnBundle queues an entity carrying every component of b.
	SpawnBundle(b Bundle) *EntityCommands
}

// Buffer is the full deferred command surface the marking operations build
// on. Commands satisfies it.
type Buffer interface {
	Spawner
	// GetOrSpawn returns a handle for e, queueing its creation when the
	// world does not know it yet.
	GetOrSpawn(e Entity) *EntityCommands
	// SpawnAndForget queues an entity carrying b without returning a handle.
	SpawnAndForget(b Bundle)
	// SpawnBatch queues one entity per element of seq, in order.
	SpawnBatch(seq iter.Seq[Bundle])
}

var (
	_ Buffer  = (*Commands)(nil)
	_ Spawner = (*ChildBuilder)(nil)
)

type failFunc func(op CommandOp, e Entity, err error)

type command interface {
	apply(w *World, fail failFunc)
}

// Commands is an append-only log of world mutations. Nothing touches the
// store until Apply, which runs the commands in append order.
//
// A Commands value has a single writer. Entity ids handed out by Spawn are
// reserved on the World immediately, which is safe across buffers that are
// filled concurrently as long as none of them is being applied.
type Commands struct {
	world    *World
	queue    []command
	reserved []Entity
}

// NewCommands creates an empty buffer bound to w.
func NewCommands(w *World) *Commands {
	return &Commands{world: w, queue: make([]command, 0, 64)}
}

// World returns the world the buffer applies to.
func (c *Commands) World() *World {
	return c.world
}

// Len returns the number of pending commands.
func (c *Commands) Len() int {
	return len(c.queue)
}

func (c *Commands) push(cmd command) {
	c.queue = append(c.queue, cmd)
}

// Spawn queues an empty entity and returns its handle.
func (c *Commands) Spawn() *EntityCommands {
	return c.SpawnBundle(nil)
}

// SpawnBundle queues an entity carrying b. The entity id is reserved now so
// the handle can be used before Apply.
func (c *Commands) SpawnBundle(b Bundle) *EntityCommands {
	e := c.world.reserveEntity()
	c.reserved = append(c.reserved, e)
	c.push(spawnCommand{entity: e, bundle: b})
	return &EntityCommands{commands: c, entity: e}
}

// SpawnAndForget queues an entity carrying b. No id is reserved; it is
// allocated when the buffer is applied.
func (c *Commands) SpawnAndForget(b Bundle) {
	c.push(spawnCommand{bundle: b, forget: true})
}

// GetOrSpawn returns a handle bound to e and queues a command that creates
// an empty entity at e if the world does not hold it yet. If e is an id
// reserved by another buffer, whichever buffer applies first creates it and
// the other one inserts into it.
func (c *Commands) GetOrSpawn(e Entity) *EntityCommands {
	c.push(getOrSpawnCommand{entity: e})
	return &EntityCommands{commands: c, entity: e}
}

// Entity returns a handle for an entity that is expected to exist at Apply.
func (c *Commands) Entity(e Entity) *EntityCommands {
	return &EntityCommands{commands: c, entity: e}
}

// SpawnBatch queues one spawn per element of seq. The sequence is consumed
// once, during Apply, possibly on another goroutine than the caller's; it
// must not depend on state the caller keeps mutating.
func (c *Commands) SpawnBatch(seq iter.Seq[Bundle]) {
	c.push(batchCommand{seq: seq})
}

// InsertResource queues res to be stored in the world's resources,
// replacing a resource of the same type.
func (c *Commands) InsertResource(res any) {
	c.push(resourceCommand{res: res})
}

// Apply runs every pending command against the world in append order and
// empties the buffer. A command that cannot be applied is skipped and
// reported as a CommandFailed event; the remaining commands still run.
func (c *Commands) Apply() {
	w := c.world
	fail := func(op CommandOp, e Entity, err error) {
		Publish(w.events, CommandFailed{Op: op, Entity: e, Err: err})
	}
	for i := 0; i < len(c.queue); i++ {
		c.queue[i].apply(w, fail)
	}
	c.reset()
}

// Clear discards pending commands and releases the entity ids reserved by
// spawns that were never applied.
func (c *Commands) Clear() {
	for _, e := range c.reserved {
		c.world.releaseReservation(e)
	}
	c.reset()
}

func (c *Commands) reset() {
	clear(c.queue)
	c.queue = c.queue[:0]
	c.reserved = c.reserved[:0]
}

// EntityCommands is a chainable handle on one entity of a command buffer.
type EntityCommands struct {
	commands *Commands
	entity   Entity
}

// ID returns the entity the handle is bound to.
func (ec *EntityCommands) ID() Entity {
	return ec.entity
}

// Commands returns the buffer the handle appends to.
func (ec *EntityCommands) Commands() *Commands {
	return ec.commands
}

// Insert queues the insertion of every component of b. Existing components
// of the same types are overwritten.
func (ec *EntityCommands) Insert(b Bundle) *EntityCommands {
	ec.commands.push(insertCommand{entity: ec.entity, bundle: b})
	return ec
}

// Despawn queues the removal of the entity. It is detached from its parent
// when it has one.
func (ec *EntityCommands) Despawn() {
	ec.commands.push(despawnCommand{entity: ec.entity})
}

type spawnCommand struct {
	bundle Bundle
	entity Entity
	forget bool
}

func (cmd spawnCommand) apply(w *World, fail failFunc) {
	if cmd.forget {
		if _, err := w.CreateEntityWith(cmd.bundle); err != nil {
			fail(OpSpawn, Entity{}, err)
		}
		return
	}
	if err := w.spawnReserved(cmd.entity, cmd.bundle); err != nil {
		fail(OpSpawn, cmd.entity, err)
	}
}

type insertCommand struct {
	bundle Bundle
	entity Entity
}

func (cmd insertCommand) apply(w *World, fail failFunc) {
	if err := Insert(w, cmd.entity, cmd.bundle); err != nil {
		fail(OpInsert, cmd.entity, err)
	}
}

type getOrSpawnCommand struct {
	entity Entity
}

func (cmd getOrSpawnCommand) apply(w *World, fail failFunc) {
	if err := w.spawnAt(cmd.entity); err != nil {
		fail(OpGetOrSpawn, cmd.entity, err)
	}
}

type batchCommand struct {
	seq iter.Seq[Bundle]
}

func (cmd batchCommand) apply(w *World, fail failFunc) {
	if cmd.seq == nil {
		return
	}
	w.spawnBatch(cmd.seq, func(err error) {
		fail(OpSpawnBatch, Entity{}, err)
	})
}

type despawnCommand struct {
	entity Entity
}

func (cmd despawnCommand) apply(w *World, fail failFunc) {
	if !w.IsValid(cmd.entity) {
		fail(OpDespawn, cmd.entity, fmt.Errorf("%w: %d/%d", ErrInvalidEntity, cmd.entity.ID, cmd.entity.Version))
		return
	}
	detachFromParent(w, cmd.entity)
	w.RemoveEntity(cmd.entity)
}

type resourceCommand struct {
	res any
}

func (cmd resourceCommand) apply(w *World, _ failFunc) {
	if cmd.res != nil {
		w.resources.Insert(cmd.res)
	}
}
