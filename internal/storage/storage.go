package storage

import (
	"errors"
	"fmt"
	"strings"

	"chunkgen/internal/block"
)

const (
	// Size is the edge length of a chunk in blocks.
	Size = 32
	// Volume is the number of blocks in a chunk.
	Volume = Size * Size * Size
)

// ErrUnknownKind is returned when a storage kind name is not recognised.
var ErrUnknownKind = errors.New("unknown storage kind")

// Storage is a sparse container for the blocks of one chunk.
// Coordinates are local, in [0, Size).
type Storage interface {
	Get(x, y, z int) block.ID
	Set(x, y, z int, id block.ID)
	// IsUniform reports whether every block holds the same value.
	IsUniform() bool
	// UniformValue returns the shared value of a uniform storage, or block.NullID.
	UniformValue() block.ID
	// CopyTo writes all blocks into dst in Index order. dst must hold Volume entries.
	CopyTo(dst []block.ID)
	Kind() Kind
}

// Kind selects a Storage implementation.
type Kind int

const (
	KindPalette Kind = iota
	KindOctree
)

func (k Kind) String() string {
	switch k {
	case KindPalette:
		return "palette"
	case KindOctree:
		return "octree"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a configuration name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "palette":
		return KindPalette, nil
	case "octree":
		return KindOctree, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// Index converts local coordinates into a flat buffer index: x fastest, then z, then y.
func Index(x, y, z int) int {
	return x + Size*(z+Size*y)
}

// Coords is the inverse of Index.
func Coords(i int) (x, y, z int) {
	x = i % Size
	z = (i / Size) % Size
	y = i / (Size * Size)
	return x, y, z
}

// InBounds reports whether local coordinates lie inside a chunk.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size && z >= 0 && z < Size
}

// New returns a storage of the given kind filled with one value.
func New(kind Kind, fill block.ID) Storage {
	if kind == KindOctree {
		return NewOctree(fill)
	}
	return NewPalette(fill)
}

// FromBuffer builds a storage of the given kind from a flat buffer in Index order.
func FromBuffer(kind Kind, buf []block.ID) Storage {
	if kind == KindOctree {
		return OctreeFromBuffer(buf)
	}
	return PaletteFromBuffer(buf)
}
