package world

import (
	"fmt"
	"math"

	"chunkgen/internal/block"
	"chunkgen/internal/storage"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkSize is the edge length of a chunk in blocks.
const ChunkSize = storage.Size

// ChunkCoord addresses a chunk on the chunk grid.
type ChunkCoord struct {
	X, Y, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Add offsets the coordinate by whole chunks.
func (c ChunkCoord) Add(dx, dy, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Neighbor returns the coordinate of the chunk across the given face.
func (c ChunkCoord) Neighbor(f block.Face) ChunkCoord {
	dx, dy, dz := f.Offset()
	return c.Add(dx, dy, dz)
}

// Origin returns the world block position of the chunk's local (0,0,0).
func (c ChunkCoord) Origin() [3]int {
	return [3]int{c.X * ChunkSize, c.Y * ChunkSize, c.Z * ChunkSize}
}

// OriginVec returns Origin as a vector, the form the transform component uses.
func (c ChunkCoord) OriginVec() mgl32.Vec3 {
	o := c.Origin()
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}

// CoordFromPosition returns the chunk containing a world position.
func CoordFromPosition(p mgl32.Vec3) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(int(math.Floor(float64(p.X()))), ChunkSize),
		Y: floorDiv(int(math.Floor(float64(p.Y()))), ChunkSize),
		Z: floorDiv(int(math.Floor(float64(p.Z()))), ChunkSize),
	}
}

// CoordFromBlock returns the chunk containing a world block and the block's
// local coordinates inside it.
func CoordFromBlock(x, y, z int) (ChunkCoord, int, int, int) {
	c := ChunkCoord{X: floorDiv(x, ChunkSize), Y: floorDiv(y, ChunkSize), Z: floorDiv(z, ChunkSize)}
	return c, mod(x, ChunkSize), mod(y, ChunkSize), mod(z, ChunkSize)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
