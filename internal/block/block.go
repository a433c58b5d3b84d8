package block

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ID is a registry index for a block type.
type ID uint16

const (
	// AirID is the empty block.
	AirID ID = 0
	// NullID stands in for blocks of chunks that are not loaded.
	NullID ID = 0xFFFF
)

// Face identifies one of the six axis-aligned faces of a block.
type Face int

const (
	FaceEast   Face = iota // +X
	FaceWest               // -X
	FaceTop                // +Y
	FaceBottom             // -Y
	FaceNorth              // +Z
	FaceSouth              // -Z
)

// FaceCount is the number of block faces.
const FaceCount = 6

// Faces lists every face in meshing order.
var Faces = [FaceCount]Face{FaceEast, FaceWest, FaceTop, FaceBottom, FaceNorth, FaceSouth}

var faceNormals = [FaceCount][3]int{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
}

// Axis returns 0, 1 or 2 for the x, y or z axis the face is perpendicular to.
func (f Face) Axis() int {
	return int(f) / 2
}

// Sign returns +1 for faces pointing along a positive axis and -1 otherwise.
func (f Face) Sign() int {
	if f%2 == 0 {
		return 1
	}
	return -1
}

// Opposite returns the face pointing the other way along the same axis.
func (f Face) Opposite() Face {
	return f ^ 1
}

// Offset returns the integer normal of the face.
func (f Face) Offset() (dx, dy, dz int) {
	n := faceNormals[f]
	return n[0], n[1], n[2]
}

// Normal returns the face normal as a vector.
func (f Face) Normal() mgl32.Vec3 {
	n := faceNormals[f]
	return mgl32.Vec3{float32(n[0]), float32(n[1]), float32(n[2])}
}

func (f Face) String() string {
	switch f {
	case FaceEast:
		return "east"
	case FaceWest:
		return "west"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	default:
		return "unknown"
	}
}
