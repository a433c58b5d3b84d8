package world

import (
	"testing"

	"chunkgen/internal/block"
	"chunkgen/internal/storage"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
)

func TestCoordFromBlockHandlesNegatives(t *testing.T) {
	tests := []struct {
		x, y, z    int
		want       ChunkCoord
		lx, ly, lz int
	}{
		{0, 0, 0, ChunkCoord{0, 0, 0}, 0, 0, 0},
		{31, 32, 33, ChunkCoord{0, 1, 1}, 31, 0, 1},
		{-1, -32, -33, ChunkCoord{-1, -1, -2}, 31, 0, 31},
	}
	for _, tt := range tests {
		c, lx, ly, lz := CoordFromBlock(tt.x, tt.y, tt.z)
		if c != tt.want || lx != tt.lx || ly != tt.ly || lz != tt.lz {
			t.Errorf("CoordFromBlock(%d,%d,%d) = %v %d,%d,%d", tt.x, tt.y, tt.z, c, lx, ly, lz)
		}
	}
	if got := CoordFromPosition(mgl32.Vec3{-0.5, 40, 64}); got != (ChunkCoord{-1, 1, 2}) {
		t.Errorf("CoordFromPosition = %v", got)
	}
}

func TestAdvanceIsStrictlyMonotonic(t *testing.T) {
	c := NewChunk(ChunkCoord{})
	want := []GenerationState{AwaitingStructures, AwaitingMesh, GeneratingMesh, GeneratingStructures, Meshed, Meshed}
	for i, w := range want {
		if got := c.Advance(); got != w {
			t.Fatalf("step %d: Advance() = %v, want %v", i, got, w)
		}
	}
}

func TestRemeshOnlyAfterMeshStage(t *testing.T) {
	c := NewChunk(ChunkCoord{})
	c.Advance()
	c.Advance()
	if c.Remesh() {
		t.Fatalf("Remesh succeeded from %v", c.State())
	}
	c.Advance()
	c.Advance()
	if !c.Remesh() || c.State() != AwaitingMesh {
		t.Fatalf("Remesh from GeneratingStructures left state %v", c.State())
	}
}

func TestChunkStorageIsWrapped(t *testing.T) {
	c := NewChunk(ChunkCoord{})
	if c.Storage() != nil || c.Block(0, 0, 0) != block.NullID {
		t.Fatalf("fresh chunk has storage")
	}
	c.SetTerrainPending()
	c.SetStorage(storage.NewPalette(block.AirID))
	if _, ok := c.Storage().(*storage.Concurrent); !ok {
		t.Fatalf("installed storage is %T, want *storage.Concurrent", c.Storage())
	}
	if c.TerrainPending() {
		t.Fatalf("installing storage did not clear terrain pending")
	}
}

func TestApplyModificationsFillsAirOnly(t *testing.T) {
	c := NewChunk(ChunkCoord{})
	c.QueueModification(ChunkModification{Index: storage.Index(1, 1, 1), Block: 5})
	if n := c.ApplyModifications(); n != 0 || c.PendingModifications() != 1 {
		t.Fatalf("modifications applied without storage")
	}

	c.SetStorage(storage.NewPalette(block.AirID))
	c.SetBlock(2, 2, 2, 7)
	c.QueueModification(
		ChunkModification{Index: storage.Index(2, 2, 2), Block: 5},
		ChunkModification{Index: storage.Volume, Block: 5},
	)
	if n := c.ApplyModifications(); n != 1 {
		t.Fatalf("ApplyModifications() = %d, want 1", n)
	}
	if c.Block(1, 1, 1) != 5 || c.Block(2, 2, 2) != 7 {
		t.Fatalf("unexpected blocks after apply")
	}
	if c.PendingModifications() != 0 {
		t.Fatalf("queue not drained")
	}
}

func TestStoreLinksNeighbors(t *testing.T) {
	cs := NewChunkStore()
	a := NewChunk(ChunkCoord{0, 0, 0})
	b := NewChunk(ChunkCoord{1, 0, 0})
	up := NewChunk(ChunkCoord{0, 1, 0})
	for _, c := range []*Chunk{a, b, up} {
		if !cs.Add(c) {
			t.Fatalf("Add(%v) failed", c.Coord)
		}
	}
	if cs.Add(NewChunk(ChunkCoord{})) {
		t.Fatalf("duplicate Add succeeded")
	}
	if a.Neighbor(block.FaceEast) != b || b.Neighbor(block.FaceWest) != a {
		t.Fatalf("east/west link missing")
	}
	if a.Neighbor(block.FaceTop) != up || up.Neighbor(block.FaceBottom) != a {
		t.Fatalf("top/bottom link missing")
	}

	cs.Remove(b.Coord)
	if a.Neighbor(block.FaceEast) != nil || b.Neighbor(block.FaceWest) != nil {
		t.Fatalf("Remove did not unlink")
	}
	if cs.Len() != 2 || cs.GetModCount() != 4 {
		t.Fatalf("Len=%d modCount=%d", cs.Len(), cs.GetModCount())
	}
}

func TestForwardModificationParksUntilAdd(t *testing.T) {
	cs := NewChunkStore()
	target := ChunkCoord{0, 0, 1}
	m := ChunkModification{Index: 3, Block: 9}
	cs.ForwardModification(target, m)
	if cs.ParkedModifications(target) != 1 {
		t.Fatalf("modification not parked")
	}

	c := NewChunk(target)
	cs.Add(c)
	if cs.ParkedModifications(target) != 0 {
		t.Fatalf("parked modification not delivered")
	}
	cs.ForwardModification(target, m)
	if diff := cmp.Diff([]ChunkModification{m, m}, c.DrainModifications()); diff != "" {
		t.Fatalf("queued modifications mismatch (-want +got):\n%s", diff)
	}
}

func TestNeighborStoragesInFaceOrder(t *testing.T) {
	cs := NewChunkStore()
	center := NewChunk(ChunkCoord{})
	south := NewChunk(ChunkCoord{0, 0, -1})
	south.SetStorage(storage.NewPalette(3))
	north := NewChunk(ChunkCoord{0, 0, 1})
	cs.Add(center)
	cs.Add(south)
	cs.Add(north)

	got := cs.NeighborStorages(center.Coord)
	for _, f := range block.Faces {
		switch f {
		case block.FaceSouth:
			if got[f] == nil || got[f].Get(0, 0, 0) != 3 {
				t.Fatalf("south storage missing")
			}
		default:
			if got[f] != nil {
				t.Fatalf("face %v has storage", f)
			}
		}
	}
	if cs.GetBlock(0, 0, -1) != 3 || cs.GetBlock(0, 0, 40) != block.NullID {
		t.Fatalf("GetBlock did not resolve world coordinates")
	}
}

func TestGetAllChunksIsOrdered(t *testing.T) {
	cs := NewChunkStore()
	for _, c := range []ChunkCoord{{1, 1, 0}, {0, 0, 1}, {1, 0, 0}, {0, 0, 0}} {
		cs.Add(NewChunk(c))
	}
	var got []ChunkCoord
	for _, c := range cs.GetAllChunks() {
		got = append(got, c.Coord)
	}
	want := []ChunkCoord{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}, {1, 1, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}
