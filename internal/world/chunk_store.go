package world

import (
	"sort"
	"sync"

	"chunkgen/internal/block"
	"chunkgen/internal/storage"
)

// ChunkStore indexes loaded chunks by coordinate, keeps their face-neighbour
// links current and parks modifications aimed at chunks that are not loaded yet.
type ChunkStore struct {
	mu       sync.RWMutex
	chunks   map[ChunkCoord]*Chunk
	pending  map[ChunkCoord][]ChunkModification
	modCount uint64 // Increases on any chunk add/remove
}

// NewChunkStore creates an empty store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks:  make(map[ChunkCoord]*Chunk),
		pending: make(map[ChunkCoord][]ChunkModification),
	}
}

// Add inserts c, links it with its loaded neighbours and hands it any
// modifications parked for its coordinate. Returns false if the coordinate is taken.
func (cs *ChunkStore) Add(c *Chunk) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[c.Coord]; ok {
		return false
	}
	cs.chunks[c.Coord] = c
	cs.modCount++

	for _, f := range block.Faces {
		n, ok := cs.chunks[c.Coord.Neighbor(f)]
		if !ok {
			continue
		}
		c.setNeighbor(f, n)
		n.setNeighbor(f.Opposite(), c)
	}

	if mods, ok := cs.pending[c.Coord]; ok {
		c.QueueModification(mods...)
		delete(cs.pending, c.Coord)
	}
	return true
}

// Remove unloads the chunk at coord and unlinks it from its neighbours.
func (cs *ChunkStore) Remove(coord ChunkCoord) *Chunk {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.chunks[coord]
	if !ok {
		return nil
	}
	delete(cs.chunks, coord)
	cs.modCount++
	for _, f := range block.Faces {
		if n := c.Neighbor(f); n != nil {
			n.setNeighbor(f.Opposite(), nil)
		}
		c.setNeighbor(f, nil)
	}
	return c
}

// Get returns the chunk at coord or nil.
func (cs *ChunkStore) Get(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[coord]
}

// Len returns the number of loaded chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// GetModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// NeighborStorages returns the storages of the six face neighbours of coord in
// face order. Missing chunks and chunks without terrain yield nil.
func (cs *ChunkStore) NeighborStorages(coord ChunkCoord) [block.FaceCount]storage.Storage {
	var out [block.FaceCount]storage.Storage
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	for _, f := range block.Faces {
		if n, ok := cs.chunks[coord.Neighbor(f)]; ok {
			out[f] = n.Storage()
		}
	}
	return out
}

// ForwardModification routes a modification to its target chunk, or parks it
// until that chunk is added.
func (cs *ChunkStore) ForwardModification(target ChunkCoord, m ChunkModification) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if c, ok := cs.chunks[target]; ok {
		c.QueueModification(m)
		return
	}
	cs.pending[target] = append(cs.pending[target], m)
}

// ParkedModifications returns how many modifications wait for an unloaded chunk.
func (cs *ChunkStore) ParkedModifications(coord ChunkCoord) int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.pending[coord])
}

// GetBlock returns the block at a world position, or NullID if the containing
// chunk is missing or has no terrain.
func (cs *ChunkStore) GetBlock(x, y, z int) block.ID {
	coord, lx, ly, lz := CoordFromBlock(x, y, z)
	c := cs.Get(coord)
	if c == nil {
		return block.NullID
	}
	return c.Block(lx, ly, lz)
}

// GetAllChunks returns every loaded chunk ordered by Y, then Z, then X.
func (cs *ChunkStore) GetAllChunks() []*Chunk {
	cs.mu.RLock()
	out := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		out = append(out, c)
	}
	cs.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Coord, out[j].Coord
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})
	return out
}
