package storage

import (
	"chunkgen/internal/block"
)

// octNode is either a leaf holding one value (children == 0) or an inner node
// whose eight children live at nodes[children:children+8]. The root is node 0,
// so no child block can start at index 0.
type octNode struct {
	value    block.ID
	children int32
}

// Octree stores a chunk as a recursive 8-way subdivision kept in a flat slice.
// The octant index of a child is +1 for the upper x half, +4 for the upper y
// half and +2 for the upper z half.
type Octree struct {
	nodes []octNode
	free  []int32
}

// NewOctree returns an octree where every block is fill.
func NewOctree(fill block.ID) *Octree {
	return &Octree{nodes: []octNode{{value: fill}}}
}

// OctreeFromBuffer builds an octree from a flat buffer in Index order.
func OctreeFromBuffer(buf []block.ID) *Octree {
	o := &Octree{nodes: make([]octNode, 1, 64)}
	o.build(0, Size, 0, 0, 0, buf)
	return o
}

// NodeCount returns the number of live nodes.
func (o *Octree) NodeCount() int {
	return len(o.nodes) - len(o.free)*8
}

func (o *Octree) Kind() Kind {
	return KindOctree
}

func (o *Octree) IsUniform() bool {
	return o.nodes[0].children == 0
}

func (o *Octree) UniformValue() block.ID {
	if o.nodes[0].children != 0 {
		return block.NullID
	}
	return o.nodes[0].value
}

func (o *Octree) Get(x, y, z int) block.ID {
	n := int32(0)
	ext := Size
	ox, oy, oz := 0, 0, 0
	for {
		node := o.nodes[n]
		if node.children == 0 {
			return node.value
		}
		ext /= 2
		oct := int32(0)
		if x >= ox+ext {
			oct |= 1
			ox += ext
		}
		if y >= oy+ext {
			oct |= 4
			oy += ext
		}
		if z >= oz+ext {
			oct |= 2
			oz += ext
		}
		n = node.children + oct
	}
}

func (o *Octree) Set(x, y, z int, id block.ID) {
	o.set(0, Size, 0, 0, 0, x, y, z, id)
}

func (o *Octree) set(n int32, ext, ox, oy, oz, x, y, z int, id block.ID) {
	if o.nodes[n].children == 0 {
		if o.nodes[n].value == id {
			return
		}
		if ext == 1 {
			o.nodes[n].value = id
			return
		}
		c := o.alloc(o.nodes[n].value)
		o.nodes[n].children = c
	}

	half := ext / 2
	oct := int32(0)
	if x >= ox+half {
		oct |= 1
		ox += half
	}
	if y >= oy+half {
		oct |= 4
		oy += half
	}
	if z >= oz+half {
		oct |= 2
		oz += half
	}
	c := o.nodes[n].children
	o.set(c+oct, half, ox, oy, oz, x, y, z, id)
	o.collapse(n)
}

// collapse turns n back into a leaf when its eight children are equal leaves.
func (o *Octree) collapse(n int32) {
	c := o.nodes[n].children
	first := o.nodes[c]
	if first.children != 0 {
		return
	}
	for i := int32(1); i < 8; i++ {
		child := o.nodes[c+i]
		if child.children != 0 || child.value != first.value {
			return
		}
	}
	o.nodes[n] = octNode{value: first.value}
	o.free = append(o.free, c)
}

// alloc reserves eight consecutive leaf nodes holding v.
func (o *Octree) alloc(v block.ID) int32 {
	var c int32
	if k := len(o.free); k > 0 {
		c = o.free[k-1]
		o.free = o.free[:k-1]
	} else {
		c = int32(len(o.nodes))
		o.nodes = append(o.nodes, make([]octNode, 8)...)
	}
	for i := int32(0); i < 8; i++ {
		o.nodes[c+i] = octNode{value: v}
	}
	return c
}

func (o *Octree) CopyTo(dst []block.ID) {
	o.fill(0, Size, 0, 0, 0, dst)
}

func (o *Octree) fill(n int32, ext, ox, oy, oz int, dst []block.ID) {
	node := o.nodes[n]
	if node.children == 0 {
		for y := oy; y < oy+ext; y++ {
			for z := oz; z < oz+ext; z++ {
				row := Index(ox, y, z)
				for x := 0; x < ext; x++ {
					dst[row+x] = node.value
				}
			}
		}
		return
	}
	half := ext / 2
	for oct := int32(0); oct < 8; oct++ {
		cx, cy, cz := ox, oy, oz
		if oct&1 != 0 {
			cx += half
		}
		if oct&4 != 0 {
			cy += half
		}
		if oct&2 != 0 {
			cz += half
		}
		o.fill(node.children+oct, half, cx, cy, cz, dst)
	}
}

func (o *Octree) build(n int32, ext, ox, oy, oz int, buf []block.ID) {
	v := buf[Index(ox, oy, oz)]
	if ext == 1 || regionUniform(buf, ext, ox, oy, oz, v) {
		o.nodes[n] = octNode{value: v}
		return
	}
	c := o.alloc(v)
	o.nodes[n].children = c
	half := ext / 2
	for oct := int32(0); oct < 8; oct++ {
		cx, cy, cz := ox, oy, oz
		if oct&1 != 0 {
			cx += half
		}
		if oct&4 != 0 {
			cy += half
		}
		if oct&2 != 0 {
			cz += half
		}
		o.build(c+oct, half, cx, cy, cz, buf)
	}
}

func regionUniform(buf []block.ID, ext, ox, oy, oz int, v block.ID) bool {
	for y := oy; y < oy+ext; y++ {
		for z := oz; z < oz+ext; z++ {
			row := Index(ox, y, z)
			for x := 0; x < ext; x++ {
				if buf[row+x] != v {
					return false
				}
			}
		}
	}
	return true
}
