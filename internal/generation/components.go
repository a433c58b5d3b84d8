package generation

import (
	"chunkgen/internal/ecs"
	"chunkgen/internal/meshing"
	"chunkgen/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Component ids registered by the orchestrator.
const (
	ChunkComponentID     ecs.ComponentID = "chunk"
	TransformComponentID ecs.ComponentID = "transform"
	MeshComponentID      ecs.ComponentID = "mesh"
)

// ChunkComponent ties an entity to its chunk.
type ChunkComponent struct {
	Chunk *world.Chunk
}

// TransformComponent places an entity in the world. For chunks it is the
// world position of the chunk's first block.
type TransformComponent struct {
	Position mgl32.Vec3
}

// MeshComponent holds the latest mesh applied to a chunk entity. Version
// counts applied meshes starting at one.
type MeshComponent struct {
	Mesh    meshing.Mesh
	Version int
}

// MeshSink receives finished meshes, typically to upload them to the GPU.
// Upload is called on the orchestrator's goroutine.
type MeshSink interface {
	Upload(e ecs.Entity, coord world.ChunkCoord, mesh meshing.Mesh)
}

// MeshReleaser is implemented by sinks that want to hear about unloaded chunks.
type MeshReleaser interface {
	Release(e ecs.Entity, coord world.ChunkCoord)
}
