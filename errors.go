package shirushi

import "errors"

var (
	// ErrInvalidEntity is reported for entities that are stale or carry
	// version 0.
	ErrInvalidEntity = errors.New("ecs: invalid entity")
	// ErrEntityConflict is reported when a get-or-spawn targets an id that is
	// alive or reserved under another version.
	ErrEntityConflict = errors.New("ecs: entity id conflict")
	// ErrDuplicateComponent is reported when one bundle carries the same
	// component type twice.
	ErrDuplicateComponent = errors.New("ecs: duplicate component in bundle")
)
