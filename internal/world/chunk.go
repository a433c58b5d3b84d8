package world

import (
	"sync"

	"chunkgen/internal/block"
	"chunkgen/internal/storage"

	"go.uber.org/atomic"
)

// ChunkModification is a block write aimed at a chunk by a structure that
// crossed into it. Index is the flat storage index inside the target chunk.
type ChunkModification struct {
	Index int
	Block block.ID
}

// Chunk is a 32^3 region moving through the generation pipeline. The
// orchestrator owns the state; workers only read storage and neighbours.
type Chunk struct {
	Coord ChunkCoord

	state   atomic.Int32
	storage atomic.Pointer[storage.Concurrent]

	nmu       sync.RWMutex
	neighbors [block.FaceCount]*Chunk

	mu   sync.Mutex
	mods []ChunkModification

	timesMeshed    atomic.Uint32
	structuresDone atomic.Bool
	settled        atomic.Bool
	terrainPending atomic.Bool
}

// NewChunk returns a chunk in AwaitingTerrain with no storage.
func NewChunk(coord ChunkCoord) *Chunk {
	return &Chunk{Coord: coord}
}

// State returns the current generation state.
func (c *Chunk) State() GenerationState {
	return GenerationState(c.state.Load())
}

// Advance moves the chunk exactly one state forward and returns the new state.
// Meshed is terminal.
func (c *Chunk) Advance() GenerationState {
	for {
		cur := c.state.Load()
		if GenerationState(cur) == Meshed {
			return Meshed
		}
		if c.state.CompareAndSwap(cur, cur+1) {
			return GenerationState(cur + 1)
		}
	}
}

// Remesh sends a chunk that already passed meshing back to AwaitingMesh so
// late modifications get a fresh mesh. It is the only backward transition and
// reports false if the chunk had not reached the mesh stage yet.
func (c *Chunk) Remesh() bool {
	for {
		cur := GenerationState(c.state.Load())
		if cur < GeneratingStructures {
			return false
		}
		if c.state.CompareAndSwap(int32(cur), int32(AwaitingMesh)) {
			return true
		}
	}
}

// Storage returns the chunk's block storage, or nil before terrain is installed.
func (c *Chunk) Storage() storage.Storage {
	s := c.storage.Load()
	if s == nil {
		return nil
	}
	return s
}

// HasStorage reports whether terrain has been installed.
func (c *Chunk) HasStorage() bool {
	return c.storage.Load() != nil
}

// SetStorage installs s behind a lock so later writes can race with mesh reads.
func (c *Chunk) SetStorage(s storage.Storage) {
	c.storage.Store(storage.NewConcurrent(s))
	c.terrainPending.Store(false)
}

// SetBlock writes one block at local coordinates. It is a no-op without storage.
func (c *Chunk) SetBlock(x, y, z int, id block.ID) {
	if s := c.storage.Load(); s != nil {
		s.Set(x, y, z, id)
	}
}

// Block returns the block at local coordinates, or NullID without storage.
func (c *Chunk) Block(x, y, z int) block.ID {
	s := c.storage.Load()
	if s == nil {
		return block.NullID
	}
	return s.Get(x, y, z)
}

// Neighbor returns the loaded chunk across face f, or nil.
func (c *Chunk) Neighbor(f block.Face) *Chunk {
	c.nmu.RLock()
	defer c.nmu.RUnlock()
	return c.neighbors[f]
}

// Neighbors returns a snapshot of all six face neighbours.
func (c *Chunk) Neighbors() [block.FaceCount]*Chunk {
	c.nmu.RLock()
	defer c.nmu.RUnlock()
	return c.neighbors
}

func (c *Chunk) setNeighbor(f block.Face, n *Chunk) {
	c.nmu.Lock()
	c.neighbors[f] = n
	c.nmu.Unlock()
}

// QueueModification appends m to the chunk's pending modifications.
func (c *Chunk) QueueModification(mods ...ChunkModification) {
	if len(mods) == 0 {
		return
	}
	c.mu.Lock()
	c.mods = append(c.mods, mods...)
	c.mu.Unlock()
}

// PendingModifications returns the number of queued modifications.
func (c *Chunk) PendingModifications() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mods)
}

// DrainModifications empties the queue and returns its contents in arrival order.
func (c *Chunk) DrainModifications() []ChunkModification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.mods
	c.mods = nil
	return out
}

// ApplyModifications drains the queue into storage. Modifications only fill
// air; they never replace terrain or earlier structure blocks. Returns the
// number of blocks written. Without storage the queue is left untouched.
func (c *Chunk) ApplyModifications() int {
	s := c.storage.Load()
	if s == nil {
		return 0
	}
	written := 0
	for _, m := range c.DrainModifications() {
		if m.Index < 0 || m.Index >= storage.Volume {
			continue
		}
		if s.FillIndex(m.Index, m.Block) {
			written++
		}
	}
	return written
}

// TimesMeshed counts applied mesh results.
func (c *Chunk) TimesMeshed() int {
	return int(c.timesMeshed.Load())
}

// MarkMeshed records an applied mesh result.
func (c *Chunk) MarkMeshed() {
	c.timesMeshed.Inc()
}

// StructuresDone reports whether the structure step finished for this chunk.
func (c *Chunk) StructuresDone() bool {
	return c.structuresDone.Load()
}

func (c *Chunk) SetStructuresDone() {
	c.structuresDone.Store(true)
}

// Settled reports whether the chunk's blocks are final enough to mesh: its
// own structures ran and every loaded neighbour that could spill into it did too.
func (c *Chunk) Settled() bool {
	return c.settled.Load()
}

func (c *Chunk) SetSettled() {
	c.settled.Store(true)
}

// TerrainPending reports whether a terrain job was dispatched and has not landed.
func (c *Chunk) TerrainPending() bool {
	return c.terrainPending.Load()
}

func (c *Chunk) SetTerrainPending() {
	c.terrainPending.Store(true)
}
