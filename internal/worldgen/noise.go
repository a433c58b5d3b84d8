package worldgen

import (
	"math"
	"math/rand"
)

// Noise is seeded simplex noise in two and three dimensions. Output is in [-1,1].
// A Noise is read-only after construction and safe for concurrent use.
type Noise struct {
	perm   [512]uint8
	perm12 [512]uint8
}

var grad3 = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

const (
	f2 = 0.36602540378443864676 // (sqrt(3)-1)/2
	g2 = 0.21132486540518711775 // (3-sqrt(3))/6
	f3 = 1.0 / 3.0
	g3 = 1.0 / 6.0
)

// NewNoise builds the permutation table for seed.
func NewNoise(seed int64) *Noise {
	n := &Noise{}
	p := rand.New(rand.NewSource(seed)).Perm(256)
	for i := 0; i < 512; i++ {
		n.perm[i] = uint8(p[i&255])
		n.perm12[i] = n.perm[i] % 12
	}
	return n
}

func fastFloor(v float64) int {
	return int(math.Floor(v))
}

func dot2(g [3]float64, x, y float64) float64 {
	return g[0]*x + g[1]*y
}

func dot3(g [3]float64, x, y, z float64) float64 {
	return g[0]*x + g[1]*y + g[2]*z
}

// Eval2 samples 2-D simplex noise.
func (n *Noise) Eval2(x, y float64) float64 {
	s := (x + y) * f2
	i := fastFloor(x + s)
	j := fastFloor(y + s)
	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	i1, j1 := 0, 1
	if x0 > y0 {
		i1, j1 = 1, 0
	}
	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1 + 2*g2
	y2 := y0 - 1 + 2*g2

	ii := i & 255
	jj := j & 255
	gi0 := n.perm12[ii+int(n.perm[jj])]
	gi1 := n.perm12[ii+i1+int(n.perm[jj+j1])]
	gi2 := n.perm12[ii+1+int(n.perm[jj+1])]

	var n0, n1, n2 float64
	if t0 := 0.5 - x0*x0 - y0*y0; t0 > 0 {
		t0 *= t0
		n0 = t0 * t0 * dot2(grad3[gi0], x0, y0)
	}
	if t1 := 0.5 - x1*x1 - y1*y1; t1 > 0 {
		t1 *= t1
		n1 = t1 * t1 * dot2(grad3[gi1], x1, y1)
	}
	if t2 := 0.5 - x2*x2 - y2*y2; t2 > 0 {
		t2 *= t2
		n2 = t2 * t2 * dot2(grad3[gi2], x2, y2)
	}
	return clamp(70*(n0+n1+n2), -1, 1)
}

// Eval3 samples 3-D simplex noise.
func (n *Noise) Eval3(x, y, z float64) float64 {
	s := (x + y + z) * f3
	i := fastFloor(x + s)
	j := fastFloor(y + s)
	k := fastFloor(z + s)
	t := float64(i+j+k) * g3
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)
	z0 := z - (float64(k) - t)

	var i1, j1, k1, i2, j2, k2 int
	switch {
	case x0 >= y0 && y0 >= z0:
		i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 1, 0
	case x0 >= y0 && x0 >= z0:
		i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 0, 1
	case x0 >= y0:
		i1, j1, k1, i2, j2, k2 = 0, 0, 1, 1, 0, 1
	case y0 < z0:
		i1, j1, k1, i2, j2, k2 = 0, 0, 1, 0, 1, 1
	case x0 < z0:
		i1, j1, k1, i2, j2, k2 = 0, 1, 0, 0, 1, 1
	default:
		i1, j1, k1, i2, j2, k2 = 0, 1, 0, 1, 1, 0
	}

	x1 := x0 - float64(i1) + g3
	y1 := y0 - float64(j1) + g3
	z1 := z0 - float64(k1) + g3
	x2 := x0 - float64(i2) + 2*g3
	y2 := y0 - float64(j2) + 2*g3
	z2 := z0 - float64(k2) + 2*g3
	x3 := x0 - 1 + 3*g3
	y3 := y0 - 1 + 3*g3
	z3 := z0 - 1 + 3*g3

	ii := i & 255
	jj := j & 255
	kk := k & 255
	gi0 := n.perm12[ii+int(n.perm[jj+int(n.perm[kk])])]
	gi1 := n.perm12[ii+i1+int(n.perm[jj+j1+int(n.perm[kk+k1])])]
	gi2 := n.perm12[ii+i2+int(n.perm[jj+j2+int(n.perm[kk+k2])])]
	gi3 := n.perm12[ii+1+int(n.perm[jj+1+int(n.perm[kk+1])])]

	var n0, n1, n2, n3 float64
	if t0 := 0.6 - x0*x0 - y0*y0 - z0*z0; t0 > 0 {
		t0 *= t0
		n0 = t0 * t0 * dot3(grad3[gi0], x0, y0, z0)
	}
	if t1 := 0.6 - x1*x1 - y1*y1 - z1*z1; t1 > 0 {
		t1 *= t1
		n1 = t1 * t1 * dot3(grad3[gi1], x1, y1, z1)
	}
	if t2 := 0.6 - x2*x2 - y2*y2 - z2*z2; t2 > 0 {
		t2 *= t2
		n2 = t2 * t2 * dot3(grad3[gi2], x2, y2, z2)
	}
	if t3 := 0.6 - x3*x3 - y3*y3 - z3*z3; t3 > 0 {
		t3 *= t3
		n3 = t3 * t3 * dot3(grad3[gi3], x3, y3, z3)
	}
	return clamp(32*(n0+n1+n2+n3), -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
