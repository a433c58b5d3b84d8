package worldgen

import (
	"fmt"

	"chunkgen/internal/block"
	"chunkgen/internal/registry"
)

const (
	trunkHeight = 5
	canopyLow   = 3
	canopyHigh  = 6
)

// Tree plants an oak on grass with air above it.
type Tree struct {
	chance float64
	grass  block.ID
	blocks []StructureBlock
}

// NewTree builds the oak template from the registry.
func NewTree(r *registry.Registry, chance float64) (*Tree, error) {
	ids := make(map[string]block.ID, 3)
	for _, name := range []string{"grass", "oak_log", "oak_leaves"} {
		id, err := r.ID(name)
		if err != nil {
			return nil, fmt.Errorf("tree: %w", err)
		}
		ids[name] = id
	}
	return &Tree{
		chance: chance,
		grass:  ids["grass"],
		blocks: oakTemplate(ids["oak_log"], ids["oak_leaves"]),
	}, nil
}

func (t *Tree) Name() string { return "oak" }

func (t *Tree) ShouldPlace(ctx PlacementContext) bool {
	if ctx.Block != t.grass || ctx.Above != block.AirID {
		return false
	}
	return ctx.RNG.Float64() < t.chance
}

func (t *Tree) Blocks() []StructureBlock { return t.blocks }

// oakTemplate: a five log trunk over the anchor, leaves from three to six
// blocks up. The lower two canopy layers have radius two with the corners
// cut, the upper two radius one.
func oakTemplate(log, leaves block.ID) []StructureBlock {
	var out []StructureBlock
	for dy := 1; dy <= trunkHeight; dy++ {
		out = append(out, StructureBlock{DY: dy, Block: log, Force: true})
	}
	for dy := canopyLow; dy <= canopyHigh; dy++ {
		r := 2
		if dy > canopyLow+1 {
			r = 1
		}
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				if dx == 0 && dz == 0 && dy <= trunkHeight {
					continue
				}
				if r == 2 && abs(dx) == 2 && abs(dz) == 2 {
					continue
				}
				out = append(out, StructureBlock{DX: dx, DY: dy, DZ: dz, Block: leaves})
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
