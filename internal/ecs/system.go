package ecs

import (
	"time"

	"chunkgen/internal/profiling"

	"github.com/sirupsen/logrus"
)

// RequirementKind selects how a requirement's components are matched.
type RequirementKind int

const (
	// RequireAll runs the system when every listed component has at least one entity.
	RequireAll RequirementKind = iota
	// RequireAny runs the system when at least one listed component has an entity.
	RequireAny
	// RequireNone runs the system only while none of the listed components exist.
	RequireNone
)

// Requirement gates a system on live component counts.
type Requirement struct {
	Kind       RequirementKind
	Components []ComponentID
}

// All is shorthand for a RequireAll requirement.
func All(ids ...ComponentID) Requirement { return Requirement{Kind: RequireAll, Components: ids} }

// Any is shorthand for a RequireAny requirement.
func Any(ids ...ComponentID) Requirement { return Requirement{Kind: RequireAny, Components: ids} }

// None is shorthand for a RequireNone requirement.
func None(ids ...ComponentID) Requirement { return Requirement{Kind: RequireNone, Components: ids} }

// Satisfied evaluates the requirement against r. An empty requirement always holds.
func (q Requirement) Satisfied(r *Registry) bool {
	if len(q.Components) == 0 {
		return true
	}
	switch q.Kind {
	case RequireAny:
		for _, id := range q.Components {
			if r.Count(id) > 0 {
				return true
			}
		}
		return false
	case RequireNone:
		for _, id := range q.Components {
			if r.Count(id) > 0 {
				return false
			}
		}
		return true
	default:
		for _, id := range q.Components {
			if r.Count(id) == 0 {
				return false
			}
		}
		return true
	}
}

// System is ticked by the Scheduler while its requirement holds.
type System interface {
	Name() string
	Requirement() Requirement
	Update(dt time.Duration)
}

// Scheduler runs systems in registration order once per tick.
type Scheduler struct {
	registry *Registry
	systems  []System
	diag     *profiling.Diagnostics
	log      logrus.FieldLogger
	slow     time.Duration

	ticks uint64
}

// NewScheduler returns a scheduler. A tick slower than slow is logged with the
// heaviest timing categories; slow <= 0 disables the report.
func NewScheduler(r *Registry, diag *profiling.Diagnostics, log logrus.FieldLogger, slow time.Duration) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{registry: r, diag: diag, log: log, slow: slow}
}

// Add appends a system.
func (s *Scheduler) Add(sys System) {
	s.systems = append(s.systems, sys)
}

// Systems returns the registered systems in run order.
func (s *Scheduler) Systems() []System {
	out := make([]System, len(s.systems))
	copy(out, s.systems)
	return out
}

// Ticks returns the number of completed Update calls.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks
}

// Update runs every system whose requirement holds and returns how many ran.
func (s *Scheduler) Update(dt time.Duration) int {
	if s.diag != nil {
		s.diag.ResetFrame()
	}
	start := time.Now()
	ran := 0
	for _, sys := range s.systems {
		if !sys.Requirement().Satisfied(s.registry) {
			continue
		}
		stop := s.diag.Track(sys.Name())
		sys.Update(dt)
		stop()
		ran++
	}
	s.ticks++

	if elapsed := time.Since(start); s.slow > 0 && elapsed > s.slow {
		top := ""
		if s.diag != nil {
			top = s.diag.TopN(5)
		}
		s.log.WithField("tick", s.ticks).Warnf("Slow update: %v. Top tasks: %s", elapsed, top)
	}
	return ran
}
