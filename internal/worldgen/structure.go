package worldgen

import (
	"math/rand"

	"chunkgen/internal/block"
	"chunkgen/internal/storage"
	"chunkgen/internal/world"
)

// StructureBlock is one block of a structure, relative to its anchor.
// Force lets the block replace anything; otherwise it only fills air.
type StructureBlock struct {
	DX, DY, DZ int
	Block      block.ID
	Force      bool
}

// PlacementContext describes a candidate anchor.
type PlacementContext struct {
	X, Y, Z int // local coordinates of the anchor
	Block   block.ID
	Above   block.ID // NullID at the top of the chunk
	RNG     *rand.Rand
}

// Structure is a multi-block feature planted after terrain.
type Structure interface {
	Name() string
	ShouldPlace(ctx PlacementContext) bool
	Blocks() []StructureBlock
}

// Forwarder receives blocks that fall outside the chunk being decorated.
type Forwarder interface {
	ForwardModification(target world.ChunkCoord, m world.ChunkModification)
}

const structureSalt = 0x5DEECE66D

// StructureRNG returns the per-chunk RNG for the structure step. It is
// seeded apart from ChunkRNG so placement does not mirror terrain noise.
func StructureRNG(seed int64, coord world.ChunkCoord) *rand.Rand {
	return ChunkRNG(seed^structureSalt, coord)
}

// GenerateStructures scans st for anchors and plants each structure that
// accepts one. Blocks inside the chunk are written directly; blocks outside it
// go to fwd. Returns the number of structures placed.
func GenerateStructures(st storage.Storage, coord world.ChunkCoord, rng *rand.Rand, structures []Structure, fwd Forwarder) int {
	if len(structures) == 0 || st.IsUniform() {
		return 0
	}

	placed := 0
	for ly := 0; ly < storage.Size; ly++ {
		for lz := 0; lz < storage.Size; lz++ {
			for lx := 0; lx < storage.Size; lx++ {
				ctx := PlacementContext{X: lx, Y: ly, Z: lz, Block: st.Get(lx, ly, lz), Above: block.NullID, RNG: rng}
				if ctx.Block == block.AirID {
					continue
				}
				if ly+1 < storage.Size {
					ctx.Above = st.Get(lx, ly+1, lz)
				}
				for _, s := range structures {
					if !s.ShouldPlace(ctx) {
						continue
					}
					plant(st, coord, lx, ly, lz, s.Blocks(), fwd)
					placed++
					break
				}
			}
		}
	}
	return placed
}

func plant(st storage.Storage, coord world.ChunkCoord, ax, ay, az int, blocks []StructureBlock, fwd Forwarder) {
	origin := coord.Origin()
	for _, b := range blocks {
		x, y, z := ax+b.DX, ay+b.DY, az+b.DZ
		if storage.InBounds(x, y, z) {
			if b.Force || st.Get(x, y, z) == block.AirID {
				st.Set(x, y, z, b.Block)
			}
			continue
		}
		if fwd == nil {
			continue
		}
		target, lx, ly, lz := world.CoordFromBlock(origin[0]+x, origin[1]+y, origin[2]+z)
		fwd.ForwardModification(target, world.ChunkModification{Index: storage.Index(lx, ly, lz), Block: b.Block})
	}
}
