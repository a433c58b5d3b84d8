package generation

import (
	"chunkgen/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// HeightSource reports the terrain surface height of a world column.
type HeightSource interface {
	HeightAt(worldX, worldZ int) int
}

// Streamer spawns chunk columns around a focus point, nearest rings first,
// and unloads columns that fall outside the view radius.
type Streamer struct {
	orch    *Orchestrator
	heights HeightSource

	// MaxSpawnsPerCall caps how many chunks one StreamAround call spawns.
	MaxSpawnsPerCall int

	// cached top chunk layer per column
	heightCache map[[2]int]int
}

func NewStreamer(orch *Orchestrator, heights HeightSource) *Streamer {
	return &Streamer{
		orch:             orch,
		heights:          heights,
		MaxSpawnsPerCall: 2048,
		heightCache:      make(map[[2]int]int),
	}
}

// StreamAround spawns the missing chunks of every column within radius of
// focus, walking square rings outwards from the focus column. Returns the
// number of chunks spawned.
func (s *Streamer) StreamAround(focus mgl32.Vec3, radius int) (int, error) {
	center := world.CoordFromPosition(focus)
	spawned := 0
	for r := 0; r <= radius; r++ {
		for _, col := range ring(center.X, center.Z, r) {
			if s.full(spawned) {
				return spawned, nil
			}
			n, err := s.spawnColumn(col[0], col[1], spawned)
			spawned += n
			if err != nil {
				return spawned, err
			}
		}
	}
	return spawned, nil
}

func (s *Streamer) full(spawned int) bool {
	return s.MaxSpawnsPerCall > 0 && spawned >= s.MaxSpawnsPerCall
}

// spawnColumn loads layers 0 through one above the surface layer so
// structures growing off the surface have a chunk to land in.
func (s *Streamer) spawnColumn(cx, cz, spawned int) (int, error) {
	top := s.topLayer(cx, cz)
	n := 0
	for cy := 0; cy <= top+1; cy++ {
		if s.full(spawned + n) {
			break
		}
		coord := world.ChunkCoord{X: cx, Y: cy, Z: cz}
		if _, ok := s.orch.Entity(coord); ok {
			continue
		}
		if _, err := s.orch.Spawn(coord); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Streamer) topLayer(cx, cz int) int {
	key := [2]int{cx, cz}
	if top, ok := s.heightCache[key]; ok {
		return top
	}
	h := s.heights.HeightAt(cx*world.ChunkSize+world.ChunkSize/2, cz*world.ChunkSize+world.ChunkSize/2)
	c, _, _, _ := world.CoordFromBlock(0, h, 0)
	top := c.Y
	if top < 0 {
		top = 0
	}
	s.heightCache[key] = top
	return top
}

// EvictFar unloads every chunk whose column lies farther than radius
// columns from focus. Returns the number unloaded.
func (s *Streamer) EvictFar(focus mgl32.Vec3, radius int) int {
	center := world.CoordFromPosition(focus)
	far := func(x, z int) bool {
		dx, dz := x-center.X, z-center.Z
		return dx*dx+dz*dz > radius*radius
	}

	var evict []world.ChunkCoord
	for coord := range s.orch.entities {
		if far(coord.X, coord.Z) {
			evict = append(evict, coord)
		}
	}
	for _, coord := range evict {
		s.orch.Unload(coord)
	}

	for key := range s.heightCache {
		if far(key[0], key[1]) {
			delete(s.heightCache, key)
		}
	}
	return len(evict)
}

// ring returns the columns on the square ring at distance r around (cx, cz).
func ring(cx, cz, r int) [][2]int {
	if r == 0 {
		return [][2]int{{cx, cz}}
	}
	x0, x1, z0, z1 := cx-r, cx+r, cz-r, cz+r
	out := make([][2]int, 0, 8*r)
	for x := x0; x <= x1; x++ {
		out = append(out, [2]int{x, z0})
	}
	for z := z0 + 1; z <= z1-1; z++ {
		out = append(out, [2]int{x1, z})
	}
	for x := x1; x >= x0; x-- {
		out = append(out, [2]int{x, z1})
	}
	for z := z1 - 1; z >= z0+1; z-- {
		out = append(out, [2]int{x0, z})
	}
	return out
}
