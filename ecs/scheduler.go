package ecs

type System interface {
	Update(w *World)
}

// Scheduler runs systems in registration order and then flushes the bus.
type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	for _, sys := range systems {
		s.Add(sys)
	}
	return s
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

// Tick advances the world clock by dt and runs one full update.
func (s *Scheduler) Tick(w *World, dt float64) {
	w.Advance(dt)
	s.Update(w)
}

func (s *Scheduler) Update(w *World) {
	for _, system := range s.systems {
		system.Update(w)
	}
	w.Bus().Flush()
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
