package shirushi

import "reflect"

// MaxEventTypes defines the maximum number of unique event types that can be
// registered in the EventBus.
const MaxEventTypes = 256

// EventBus delivers typed events to subscribed handlers. The World uses it
// to report commands that could not be applied.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [MaxEventTypes][]any
	nextEventTypeID uint16
}

// Subscribe registers a handler for events of type `T`. Handlers run in
// subscription order.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	id := bus.getEventTypeID(reflect.TypeFor[T]())
	if cap(bus.handlers[id]) == 0 {
		bus.handlers[id] = make([]any, 0, 4)
	}
	bus.handlers[id] = append(bus.handlers[id], handler)
}

// Publish synchronously delivers event to every handler of type `T`.
func Publish[T any](bus *EventBus, event T) {
	if id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]; ok {
		for _, h := range bus.handlers[id] {
			h.(func(T))(event)
		}
	}
}

func (bus *EventBus) getEventTypeID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if bus.nextEventTypeID >= MaxEventTypes {
		panic("ecs: too many event types")
	}
	id := uint8(bus.nextEventTypeID)
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = id
	return id
}

// CommandOp names the kind of deferred command.
type CommandOp uint8

const (
	OpSpawn CommandOp = iota
	OpInsert
	OpGetOrSpawn
	OpSpawnBatch
	OpDespawn
	OpAddChild
)

func (op CommandOp) String() string {
	switch op {
	case OpSpawn:
		return "spawn"
	case OpInsert:
		return "insert"
	case OpGetOrSpawn:
		return "get_or_spawn"
	case OpSpawnBatch:
		return "spawn_batch"
	case OpDespawn:
		return "despawn"
	case OpAddChild:
		return "add_child"
	}
	return "unknown"
}

// CommandFailed is published on World.Events when a deferred command is
// skipped during Apply. Entity is the zero Entity when the command had no
// target yet.
type CommandFailed struct {
	Err    error
	Entity Entity
	Op     CommandOp
}
