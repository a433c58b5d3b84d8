package meshing

import (
	"chunkgen/internal/block"
	"chunkgen/internal/storage"
)

const size = storage.Size

// BlockProperties answers the per-block questions the mesher needs.
type BlockProperties interface {
	IsTransparent(id block.ID) bool
	AtlasDepth(id block.ID) int
}

// Options tune face emission.
type Options struct {
	// SealWorldEdges culls faces that border a missing neighbour chunk.
	// When false those faces are emitted.
	SealWorldEdges bool
}

// Per face: the axis along which corner u grows and the one for v. Chosen so
// that u x v points along the face normal.
var faceAxes = [block.FaceCount][2]int{
	block.FaceEast:   {1, 2},
	block.FaceWest:   {2, 1},
	block.FaceTop:    {2, 0},
	block.FaceBottom: {0, 2},
	block.FaceNorth:  {0, 1},
	block.FaceSouth:  {1, 0},
}

var cornerUV = [4][2]int{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

var quadIndices = [6]uint32{0, 1, 3, 1, 2, 3}

type mesher struct {
	blocks    []block.ID
	neighbors [block.FaceCount]storage.Storage
	props     BlockProperties
	opts      Options
	done      []uint8

	vertices []int32
	indices  []uint32
}

// BuildGreedyMesh meshes one chunk. blocks holds storage.Volume ids in
// storage.Index order; neighbors holds the six adjacent chunks in face order
// (nil when not loaded). Runs of identical visible faces are merged along one
// axis and never cross the chunk border.
func BuildGreedyMesh(blocks []block.ID, neighbors [block.FaceCount]storage.Storage, props BlockProperties, opts Options) Mesh {
	m := &mesher{
		blocks:    blocks,
		neighbors: neighbors,
		props:     props,
		opts:      opts,
		done:      make([]uint8, storage.Volume),
		vertices:  make([]int32, 0, 1024),
		indices:   make([]uint32, 0, 1536),
	}

	i := 0
	for y := 0; y < size; y++ {
		for z := 0; z < size; z++ {
			for x := 0; x < size; x++ {
				if id := blocks[i]; id != block.AirID {
					for _, f := range block.Faces {
						m.face(x, y, z, i, id, f)
					}
				}
				i++
			}
		}
	}
	return Mesh{Vertices: m.vertices, Indices: m.indices}
}

func (m *mesher) face(x, y, z, i int, id block.ID, f block.Face) {
	bit := uint8(1) << f
	if m.done[i]&bit != 0 {
		return
	}
	m.done[i] |= bit
	if !m.visible(x, y, z, id, f) {
		return
	}

	pos := [3]int{x, y, z}
	axes := faceAxes[f]
	runAxis, n := axes[0], m.extend(pos, axes[0], id, f)
	if n == 1 {
		runAxis, n = axes[1], m.extend(pos, axes[1], id, f)
	}
	m.emit(pos, f, runAxis, n, id)
}

// extend grows a run from pos along axis and marks the covered faces done.
// Returns the run length including pos.
func (m *mesher) extend(pos [3]int, axis int, id block.ID, f block.Face) int {
	bit := uint8(1) << f
	n := 1
	p := pos
	for {
		p[axis]++
		if p[axis] >= size {
			return n
		}
		j := storage.Index(p[0], p[1], p[2])
		if m.blocks[j] != id || m.done[j]&bit != 0 {
			return n
		}
		if !m.visible(p[0], p[1], p[2], id, f) {
			return n
		}
		m.done[j] |= bit
		n++
	}
}

// visible decides whether face f of the voxel at x,y,z is drawn. An opaque
// voxel hidden by an opaque in-chunk neighbour also hides that neighbour's
// opposite face.
func (m *mesher) visible(x, y, z int, id block.ID, f block.Face) bool {
	dx, dy, dz := f.Offset()
	nx, ny, nz := x+dx, y+dy, z+dz

	var nid block.ID
	if storage.InBounds(nx, ny, nz) {
		j := storage.Index(nx, ny, nz)
		nid = m.blocks[j]
		if !m.props.IsTransparent(id) && !m.props.IsTransparent(nid) {
			m.done[j] |= uint8(1) << f.Opposite()
			return false
		}
	} else {
		nid = block.NullID
		if s := m.neighbors[f]; s != nil {
			nid = s.Get(wrap(nx), wrap(ny), wrap(nz))
		}
	}

	if nid == block.NullID {
		return !m.opts.SealWorldEdges
	}
	if !m.props.IsTransparent(id) {
		return m.props.IsTransparent(nid)
	}
	return nid != id
}

func (m *mesher) emit(pos [3]int, f block.Face, runAxis, n int, id block.ID) {
	axis := f.Axis()
	base := pos
	if f.Sign() > 0 {
		base[axis]++
	}

	axes := faceAxes[f]
	du, dv := 1, 1
	if runAxis == axes[0] {
		du = n
	} else {
		dv = n
	}
	depth := m.props.AtlasDepth(id)

	first := uint32(len(m.vertices) / VertexStride)
	for c, uv := range cornerUV {
		p := base
		p[axes[0]] += uv[0] * du
		p[axes[1]] += uv[1] * dv
		pw, tw := PackVertex(Vertex{
			X: p[0], Y: p[1], Z: p[2],
			Face:       f,
			Corner:     c,
			AtlasDepth: depth,
			U:          uv[0] * du,
			V:          uv[1] * dv,
		})
		m.vertices = append(m.vertices, pw, tw)
	}
	for _, k := range quadIndices {
		m.indices = append(m.indices, first+k)
	}
}

func wrap(v int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}
