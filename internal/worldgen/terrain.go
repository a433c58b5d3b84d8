package worldgen

import (
	"fmt"
	"math"
	"math/rand"

	"chunkgen/internal/block"
	"chunkgen/internal/config"
	"chunkgen/internal/registry"
	"chunkgen/internal/storage"
	"chunkgen/internal/world"
)

const (
	bedrockLayers = 4
	dirtDepth     = 3
	coarseChance  = 0.1
	oreChance     = 0.02
	caveDampDepth = 8.0
)

// Parameters drive the terrain step.
type Parameters struct {
	Seed        int64
	Frequency   float64
	Persistence float64
	BaseHeight  int
	HeightRange int

	Caves         bool
	CaveFrequency float64
	CaveThreshold float64
}

// ParametersFromConfig copies the terrain settings out of a world config.
func ParametersFromConfig(w config.WorldGen) Parameters {
	return Parameters{
		Seed:          w.Seed,
		Frequency:     w.Frequency,
		Persistence:   w.Persistence,
		BaseHeight:    w.BaseHeight,
		HeightRange:   w.HeightRange,
		Caves:         w.Caves,
		CaveFrequency: w.CaveFrequency,
		CaveThreshold: w.CaveThreshold,
	}
}

// TerrainBlocks are the block ids the terrain step writes.
type TerrainBlocks struct {
	Air        block.ID
	Bedrock    block.ID
	Grass      block.ID
	Dirt       block.ID
	CoarseDirt block.ID
	Stone      block.ID
	Ore        block.ID
}

// ResolveTerrainBlocks looks up the terrain block set by name.
func ResolveTerrainBlocks(r *registry.Registry) (TerrainBlocks, error) {
	var tb TerrainBlocks
	for _, f := range []struct {
		name string
		dst  *block.ID
	}{
		{"air", &tb.Air},
		{"bedrock", &tb.Bedrock},
		{"grass", &tb.Grass},
		{"dirt", &tb.Dirt},
		{"coarse_dirt", &tb.CoarseDirt},
		{"stone", &tb.Stone},
		{"coal_ore", &tb.Ore},
	} {
		id, err := r.ID(f.name)
		if err != nil {
			return TerrainBlocks{}, fmt.Errorf("resolve terrain blocks: %w", err)
		}
		*f.dst = id
	}
	return tb, nil
}

// Terrain fills chunk buffers from a heightmap and 3-D cave noise. The noise
// tables are built once; Generate has no other state and is safe to call from
// several workers at once as long as each passes its own RNG.
type Terrain struct {
	params Parameters
	blocks TerrainBlocks

	height *Noise
	caveA  *Noise
	caveB  *Noise
}

// NewTerrain prepares the noise for p.Seed. The two cave fields use seed^2 and seed^3.
func NewTerrain(p Parameters, blocks TerrainBlocks) *Terrain {
	return &Terrain{
		params: p,
		blocks: blocks,
		height: NewNoise(p.Seed),
		caveA:  NewNoise(p.Seed ^ 2),
		caveB:  NewNoise(p.Seed ^ 3),
	}
}

// ChunkRNG returns the deterministic RNG for one chunk.
func ChunkRNG(seed int64, coord world.ChunkCoord) *rand.Rand {
	h := hash3(int64(coord.X), int64(coord.Y), int64(coord.Z), seed)
	return rand.New(rand.NewSource(int64(h)))
}

// HeightAt returns the surface height of the column at world x,z.
func (t *Terrain) HeightAt(worldX, worldZ int) int {
	f := t.params.Frequency
	n := t.height.Eval2(float64(worldX)*f, float64(worldZ)*f)
	h := float64(t.params.BaseHeight) + (n+1)/2*float64(t.params.HeightRange)
	return int(math.Floor(h * t.params.Persistence))
}

// CaveDensity combines the two cave fields and fades them out within a few
// blocks of the surface.
func (t *Terrain) CaveDensity(worldX, worldY, worldZ, height int) float64 {
	f := t.params.CaveFrequency
	x, y, z := float64(worldX)*f, float64(worldY)*f, float64(worldZ)*f
	d := (t.caveA.Eval3(x, y, z) + t.caveB.Eval3(x, y, z)) / 2
	damp := clamp(float64(height-worldY)/caveDampDepth, 0, 1)
	return d * damp
}

// Generate writes one chunk into dst (storage.Volume entries, Index order).
// origin is the world position of the chunk's (0,0,0) block.
func (t *Terrain) Generate(dst []block.ID, origin [3]int, rng *rand.Rand) {
	var heights [storage.Size * storage.Size]int
	for lz := 0; lz < storage.Size; lz++ {
		for lx := 0; lx < storage.Size; lx++ {
			heights[lx+lz*storage.Size] = t.HeightAt(origin[0]+lx, origin[2]+lz)
		}
	}

	b := t.blocks
	i := 0
	for ly := 0; ly < storage.Size; ly++ {
		wy := origin[1] + ly
		for lz := 0; lz < storage.Size; lz++ {
			wz := origin[2] + lz
			for lx := 0; lx < storage.Size; lx++ {
				wx := origin[0] + lx
				h := heights[lx+lz*storage.Size]

				switch {
				case wy >= 0 && wy < bedrockLayers && (wy == 0 || rng.Intn(bedrockLayers) >= wy):
					dst[i] = b.Bedrock
				case wy > h:
					dst[i] = b.Air
				case t.params.Caves && t.CaveDensity(wx, wy, wz, h) < t.params.CaveThreshold:
					dst[i] = b.Air
				case wy == h:
					dst[i] = b.Grass
				case wy >= h-dirtDepth:
					if rng.Float64() < coarseChance {
						dst[i] = b.CoarseDirt
					} else {
						dst[i] = b.Dirt
					}
				case wy >= 0:
					if rng.Float64() < oreChance {
						dst[i] = b.Ore
					} else {
						dst[i] = b.Stone
					}
				default:
					dst[i] = b.Air
				}
				i++
			}
		}
	}
}

// hash3 is a SplitMix64 style integer hash for 3D coordinates.
func hash3(x, y, z int64, seed int64) uint64 {
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(z)*0x6C62272E07BB0142 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}
