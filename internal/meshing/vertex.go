package meshing

import "chunkgen/internal/block"

// VertexStride is the number of int32 words per vertex (position word + UV word).
const VertexStride = 2

const (
	posBits    = 6
	posMask    = 1<<posBits - 1
	faceShift  = 18
	faceMask   = 0x7
	cornerShft = 21
	cornerMask = 0x3

	depthMask = 0xFFFF
	uShift    = 16
	vShift    = 22
	uvMask    = 0x3F
)

// Mesh is the packed output of the mesher: VertexStride words per vertex and
// six indices per quad.
type Mesh struct {
	Vertices []int32
	Indices  []uint32
}

// VertexCount returns the number of vertices in the mesh.
func (m Mesh) VertexCount() int { return len(m.Vertices) / VertexStride }

// QuadCount returns the number of quads in the mesh.
func (m Mesh) QuadCount() int { return len(m.Indices) / 6 }

// Empty reports whether the mesh has no geometry.
func (m Mesh) Empty() bool { return len(m.Indices) == 0 }

// Vertex is an unpacked mesh vertex. X, Y, Z are chunk-local corner positions
// in 0..32; U and V are texture coordinates in blocks.
type Vertex struct {
	X, Y, Z    int
	Face       block.Face
	Corner     int
	AtlasDepth int
	U, V       int
}

// PackVertex encodes v into its position and UV words.
func PackVertex(v Vertex) (pos, uv int32) {
	pos = int32(v.X&posMask |
		(v.Y&posMask)<<posBits |
		(v.Z&posMask)<<(2*posBits) |
		(int(v.Face)&faceMask)<<faceShift |
		(v.Corner&cornerMask)<<cornerShft)
	uv = int32(v.AtlasDepth&depthMask | (v.U&uvMask)<<uShift | (v.V&uvMask)<<vShift)
	return pos, uv
}

// UnpackVertex decodes the words written by PackVertex.
func UnpackVertex(pos, uv int32) Vertex {
	p, t := int(pos), int(uv)
	return Vertex{
		X:          p & posMask,
		Y:          (p >> posBits) & posMask,
		Z:          (p >> (2 * posBits)) & posMask,
		Face:       block.Face((p >> faceShift) & faceMask),
		Corner:     (p >> cornerShft) & cornerMask,
		AtlasDepth: t & depthMask,
		U:          (t >> uShift) & uvMask,
		V:          (t >> vShift) & uvMask,
	}
}

// VertexAt decodes vertex i of m.
func (m Mesh) VertexAt(i int) Vertex {
	return UnpackVertex(m.Vertices[i*VertexStride], m.Vertices[i*VertexStride+1])
}
