package ecs

import (
	"errors"
	"testing"
	"time"

	"chunkgen/internal/profiling"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const (
	position ComponentID = "position"
	velocity ComponentID = "velocity"
)

func TestStoreLifecycle(t *testing.T) {
	r := NewRegistry()
	pos, err := Register[int](r, position)
	if err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}
	if _, err := Register[string](r, position); !errors.Is(err, ErrDuplicateComponent) {
		t.Fatalf("duplicate Register() = %v", err)
	}

	a, b, c := r.Create(), r.Create(), r.Create()
	for i, e := range []Entity{a, b, c} {
		if err := pos.Set(e, i); err != nil {
			t.Fatalf("Set() returned error: %v", err)
		}
	}
	if err := pos.Set(a, 10); err != nil {
		t.Fatal(err)
	}
	if v, ok := pos.Get(a); !ok || v != 10 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}

	if !r.Destroy(a) || r.Destroy(a) {
		t.Fatalf("Destroy should succeed exactly once")
	}
	if r.Alive(a) || r.Has(a, position) || pos.Len() != 2 || r.Count(position) != 2 {
		t.Fatalf("destroyed entity still visible")
	}
	if err := pos.Set(a, 1); !errors.Is(err, ErrDeadEntity) {
		t.Fatalf("Set on destroyed entity = %v", err)
	}

	var got []int
	pos.Each(func(_ Entity, v int) bool {
		got = append(got, v)
		return true
	})
	if diff := cmp.Diff([]int{2, 1}, got); diff != "" {
		t.Fatalf("swap-removal order mismatch (-want +got):\n%s", diff)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
}

func TestEachToleratesRemoval(t *testing.T) {
	r := NewRegistry()
	pos, _ := Register[int](r, position)
	for i := 0; i < 5; i++ {
		pos.Set(r.Create(), i)
	}
	visited := 0
	pos.Each(func(e Entity, _ int) bool {
		r.Destroy(e)
		visited++
		return true
	})
	if visited != 5 || pos.Len() != 0 {
		t.Fatalf("visited %d, left %d", visited, pos.Len())
	}
}

func TestRequirementSatisfied(t *testing.T) {
	r := NewRegistry()
	pos, _ := Register[int](r, position)
	Register[int](r, velocity)
	pos.Set(r.Create(), 1)

	tests := []struct {
		name string
		req  Requirement
		want bool
	}{
		{"all met", All(position), true},
		{"all unmet", All(position, velocity), false},
		{"any", Any(position, velocity), true},
		{"any unknown", Any("unknown"), false},
		{"none", None(velocity), true},
		{"none violated", None(position), false},
		{"empty", Requirement{}, true},
	}
	for _, tt := range tests {
		if got := tt.req.Satisfied(r); got != tt.want {
			t.Errorf("%s: Satisfied() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

type countingSystem struct {
	name  string
	req   Requirement
	calls int
	sleep time.Duration
}

func (s *countingSystem) Name() string             { return s.name }
func (s *countingSystem) Requirement() Requirement { return s.req }
func (s *countingSystem) Update(time.Duration) {
	s.calls++
	time.Sleep(s.sleep)
}

func TestSchedulerGatesSystems(t *testing.T) {
	r := NewRegistry()
	pos, _ := Register[int](r, position)
	diag := profiling.New(8)
	s := NewScheduler(r, diag, nil, 0)

	mover := &countingSystem{name: "mover", req: All(position)}
	idle := &countingSystem{name: "idle", req: None(position)}
	s.Add(mover)
	s.Add(idle)

	if ran := s.Update(time.Millisecond); ran != 1 || idle.calls != 1 || mover.calls != 0 {
		t.Fatalf("empty world: ran=%d idle=%d mover=%d", ran, idle.calls, mover.calls)
	}
	pos.Set(r.Create(), 3)
	if ran := s.Update(time.Millisecond); ran != 1 || mover.calls != 1 || idle.calls != 1 {
		t.Fatalf("populated world: ran=%d idle=%d mover=%d", ran, idle.calls, mover.calls)
	}
	if len(diag.Samples("mover")) != 1 || s.Ticks() != 2 {
		t.Fatalf("system timing not recorded")
	}
}

func TestSchedulerLogsSlowUpdates(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := NewRegistry()
	s := NewScheduler(r, profiling.New(8), log, time.Millisecond)
	s.Add(&countingSystem{name: "sleepy", sleep: 5 * time.Millisecond})
	s.Update(time.Millisecond)

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("slow update not logged: %+v", hook.AllEntries())
	}
}
