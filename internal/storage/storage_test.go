package storage

import (
	"errors"
	"math/rand"
	"testing"

	"chunkgen/internal/block"

	"github.com/google/go-cmp/cmp"
)

func kinds() []Kind {
	return []Kind{KindPalette, KindOctree}
}

func TestIndexCoordsRoundTrip(t *testing.T) {
	for i := 0; i < Volume; i += 37 {
		x, y, z := Coords(i)
		if got := Index(x, y, z); got != i {
			t.Fatalf("Index(Coords(%d)) = %d", i, got)
		}
	}
	// x is the fastest axis, y the slowest
	if Index(1, 0, 0) != 1 || Index(0, 0, 1) != Size || Index(0, 1, 0) != Size*Size {
		t.Fatalf("unexpected index layout")
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{"": KindPalette, "palette": KindPalette, "Octree": KindOctree}
	for name, want := range cases {
		got, err := ParseKind(name)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := ParseKind("btree"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	for _, kind := range kinds() {
		s := New(kind, block.AirID)
		rng := rand.New(rand.NewSource(7))
		want := make([]block.ID, Volume)
		for i := 0; i < 4000; i++ {
			x, y, z := rng.Intn(Size), rng.Intn(Size), rng.Intn(Size)
			id := block.ID(rng.Intn(40))
			s.Set(x, y, z, id)
			want[Index(x, y, z)] = id
			if got := s.Get(x, y, z); got != id {
				t.Fatalf("%v: Get(%d,%d,%d) = %d after Set %d", kind, x, y, z, got, id)
			}
		}
		got := make([]block.ID, Volume)
		s.CopyTo(got)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%v: CopyTo mismatch (-want +got):\n%s", kind, diff)
		}
	}
}

func TestUniformTracksContents(t *testing.T) {
	for _, kind := range kinds() {
		s := New(kind, 5)
		if !s.IsUniform() || s.UniformValue() != 5 {
			t.Fatalf("%v: fresh storage not uniform 5", kind)
		}
		s.Set(3, 4, 5, 9)
		if s.IsUniform() {
			t.Fatalf("%v: uniform after differing set", kind)
		}
		if s.UniformValue() != block.NullID {
			t.Fatalf("%v: UniformValue = %d, want NullID", kind, s.UniformValue())
		}
		s.Set(3, 4, 5, 5)
		if !s.IsUniform() || s.UniformValue() != 5 {
			t.Fatalf("%v: not uniform after restoring value", kind)
		}
	}
}

func TestFromBufferMatchesSource(t *testing.T) {
	buf := make([]block.ID, Volume)
	for i := range buf {
		_, y, _ := Coords(i)
		switch {
		case y < 10:
			buf[i] = 1
		case y == 10:
			buf[i] = block.ID(2 + i%3)
		}
	}
	for _, kind := range kinds() {
		s := FromBuffer(kind, buf)
		got := make([]block.ID, Volume)
		s.CopyTo(got)
		if diff := cmp.Diff(buf, got); diff != "" {
			t.Fatalf("%v: FromBuffer/CopyTo mismatch (-want +got):\n%s", kind, diff)
		}
		if s.Kind() != kind {
			t.Fatalf("Kind() = %v, want %v", s.Kind(), kind)
		}
	}
}

func TestPaletteGrowthPreservesEntries(t *testing.T) {
	p := NewPalette(block.AirID)
	if p.Bits() != 0 {
		t.Fatalf("uniform palette has %d bits", p.Bits())
	}

	want := make([]block.ID, Volume)
	widths := map[uint]bool{}
	for i := 0; i < Volume; i += 3 {
		id := block.ID((i/3)%300 + 1)
		x, y, z := Coords(i)
		p.Set(x, y, z, id)
		want[i] = id
		widths[p.Bits()] = true
	}
	for _, b := range []uint{1, 2, 4, 8, 16} {
		if !widths[b] {
			t.Fatalf("palette never used width %d (saw %v)", b, widths)
		}
	}
	for i := 0; i < Volume; i++ {
		x, y, z := Coords(i)
		if got := p.Get(x, y, z); got != want[i] {
			t.Fatalf("entry %d lost after growth: got %d want %d", i, got, want[i])
		}
	}
}

func TestPaletteReusesFreedSlots(t *testing.T) {
	p := NewPalette(block.AirID)
	p.Set(0, 0, 0, 1)
	p.Set(0, 0, 0, 2)
	p.Set(0, 0, 0, 3)
	if p.Bits() != 1 {
		t.Fatalf("bits = %d, want 1 when only two values are live", p.Bits())
	}
	if p.Distinct() != 2 {
		t.Fatalf("distinct = %d, want 2", p.Distinct())
	}
	if p.Get(0, 0, 0) != 3 {
		t.Fatalf("got %d, want 3", p.Get(0, 0, 0))
	}
}

func TestOctreeSplitAndCollapse(t *testing.T) {
	o := NewOctree(1)
	o.Set(31, 31, 31, 2)
	// one inner node per level down to extent 1
	if n := o.NodeCount(); n != 1+8*5 {
		t.Fatalf("node count after one set = %d, want %d", n, 1+8*5)
	}
	if o.Get(31, 31, 31) != 2 || o.Get(0, 0, 0) != 1 || o.Get(30, 31, 31) != 1 {
		t.Fatalf("unexpected values after split")
	}
	o.Set(31, 31, 31, 1)
	if !o.IsUniform() || o.NodeCount() != 1 {
		t.Fatalf("octree did not collapse: uniform=%v nodes=%d", o.IsUniform(), o.NodeCount())
	}
	o.Set(0, 0, 0, 3)
	if o.NodeCount() != 1+8*5 {
		t.Fatalf("freed nodes not reused: %d", o.NodeCount())
	}
}

func TestOctreeOctantLayout(t *testing.T) {
	o := NewOctree(0)
	o.Set(Size-1, 0, 0, 7)
	root := o.nodes[0]
	if root.children == 0 {
		t.Fatalf("root still a leaf")
	}
	// upper x half is octant 1
	if o.nodes[root.children+1].children == 0 {
		t.Fatalf("+x point did not descend into octant 1")
	}
	o2 := NewOctree(0)
	o2.Set(0, Size-1, 0, 7)
	if o2.nodes[o2.nodes[0].children+4].children == 0 {
		t.Fatalf("+y point did not descend into octant 4")
	}
	o3 := NewOctree(0)
	o3.Set(0, 0, Size-1, 7)
	if o3.nodes[o3.nodes[0].children+2].children == 0 {
		t.Fatalf("+z point did not descend into octant 2")
	}
}

func TestConcurrentWrapsInner(t *testing.T) {
	c := NewConcurrent(NewOctree(0))
	if NewConcurrent(c) != c {
		t.Fatalf("double wrapping allocated a new wrapper")
	}
	c.SetIndex(Index(1, 2, 3), 4)
	if c.Get(1, 2, 3) != 4 || c.Kind() != KindOctree {
		t.Fatalf("concurrent wrapper did not forward")
	}

	p := NewConcurrentPalette(2)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			p.Set(i%Size, 0, 0, block.ID(i%5))
		}
		close(done)
	}()
	for i := 0; i < 1000; i++ {
		_ = p.Get(i%Size, 0, 0)
	}
	<-done
}

func TestConcurrentFillIndexOnlyWritesAir(t *testing.T) {
	c := NewConcurrentPalette(block.AirID)
	c.Set(0, 0, 0, 3)
	if c.FillIndex(Index(0, 0, 0), 9) {
		t.Fatalf("FillIndex overwrote a solid block")
	}
	if !c.FillIndex(Index(1, 0, 0), 9) {
		t.Fatalf("FillIndex refused an air cell")
	}
	if c.Get(0, 0, 0) != 3 || c.Get(1, 0, 0) != 9 {
		t.Fatalf("unexpected contents after FillIndex")
	}
}

func BenchmarkPaletteSet(b *testing.B) {
	p := NewPalette(block.AirID)
	for i := 0; i < b.N; i++ {
		x, y, z := Coords(i % Volume)
		p.Set(x, y, z, block.ID(i%16))
	}
}

func BenchmarkOctreeGet(b *testing.B) {
	buf := make([]block.ID, Volume)
	for i := range buf {
		_, y, _ := Coords(i)
		if y < 16 {
			buf[i] = 1
		}
	}
	o := OctreeFromBuffer(buf)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, y, z := Coords(i % Volume)
		_ = o.Get(x, y, z)
	}
}
