package generation

import (
	"sync"
	"time"

	"chunkgen/internal/ecs"
	"chunkgen/internal/meshing"
	"chunkgen/internal/storage"
	"chunkgen/internal/world"
)

type stage int

const (
	stageTerrain stage = iota
	stageStructures
	stageMesh
)

func (s stage) String() string {
	switch s {
	case stageTerrain:
		return "terrain"
	case stageStructures:
		return "structures"
	case stageMesh:
		return "mesh"
	default:
		return "unknown"
	}
}

// result is what a worker hands back to the orchestrator.
type result struct {
	stage   stage
	entity  ecs.Entity
	chunk   *world.Chunk
	storage storage.Storage
	mesh    meshing.Mesh
	placed  int
	elapsed time.Duration
}

// resultQueue is an unbounded FIFO. Workers Push; only the orchestrator takes.
type resultQueue struct {
	mu    sync.Mutex
	items []result
	head  int
}

func (q *resultQueue) Push(r result) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()
}

// TryTake pops the oldest result without blocking.
func (q *resultQueue) TryTake() (result, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head == len(q.items) {
		return result{}, false
	}
	r := q.items[q.head]
	q.items[q.head] = result{}
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return r, true
}

func (q *resultQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
