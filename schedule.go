package shirushi

// System reads the world and queues mutations on its own command buffer.
type System func(w *World, cmds *Commands)

// Schedule runs systems in order over one world. Every system gets its own
// buffer; the buffers are applied in system order once all systems ran, so
// no system observes another's mutations within the same pass.
type Schedule struct {
	world   *World
	systems []System
	buffers []*Commands
}

// NewSchedule creates an empty schedule for w.
func NewSchedule(w *World) *Schedule {
	return &Schedule{world: w}
}

// AddSystem appends a system to the run order. Nil systems are ignored.
func (s *Schedule) AddSystem(sys System) *Schedule {
	if sys == nil {
		return s
	}
	s.systems = append(s.systems, sys)
	s.buffers = append(s.buffers, NewCommands(s.world))
	return s
}

// Run executes one pass: all systems, then all buffers.
func (s *Schedule) Run() {
	for i, sys := range s.systems {
		sys(s.world, s.buffers[i])
	}
	for _, cmds := range s.buffers {
		cmds.Apply()
	}
}
