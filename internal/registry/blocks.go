package registry

import (
	"errors"
	"fmt"

	"chunkgen/internal/block"
)

var (
	// ErrUnknownBlock is returned for names that were never registered.
	ErrUnknownBlock = errors.New("unknown block")
	// ErrDuplicateBlock is returned when a name is registered twice.
	ErrDuplicateBlock = errors.New("duplicate block")
)

// Definition describes one block type.
type Definition struct {
	Name        string `yaml:"name"`
	Texture     string `yaml:"texture"`
	Transparent bool   `yaml:"transparent"`
}

// Registry maps block names to ids and answers property queries for the
// generation steps and the mesher. Ids are assigned in registration order and
// air always takes AirID.
type Registry struct {
	defs  []Definition
	names map[string]block.ID

	textureNames []string
	textureMap   map[string]int
}

// New returns a registry holding only air.
func New() *Registry {
	r := &Registry{
		names:      make(map[string]block.ID),
		textureMap: make(map[string]int),
	}
	r.defs = append(r.defs, Definition{Name: "air", Transparent: true})
	r.names["air"] = block.AirID
	return r
}

// FromDefinitions builds a registry from a list of definitions. An "air" entry in
// defs is ignored because air is always present.
func FromDefinitions(defs []Definition) (*Registry, error) {
	r := New()
	for _, def := range defs {
		if def.Name == "air" {
			continue
		}
		if _, err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultDefinitions is the block set used when no configuration provides one.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: "stone", Texture: "stone.png"},
		{Name: "dirt", Texture: "dirt.png"},
		{Name: "coarse_dirt", Texture: "coarse_dirt.png"},
		{Name: "grass", Texture: "grass_top.png"},
		{Name: "bedrock", Texture: "bedrock.png"},
		{Name: "coal_ore", Texture: "coal_ore.png"},
		{Name: "oak_log", Texture: "log_oak.png"},
		{Name: "oak_leaves", Texture: "leaves_oak.png", Transparent: true},
		{Name: "glass", Texture: "glass.png", Transparent: true},
		{Name: "water", Texture: "water_still.png", Transparent: true},
	}
}

// Default returns a registry populated with DefaultDefinitions.
func Default() *Registry {
	r, err := FromDefinitions(DefaultDefinitions())
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds a block and returns its id.
func (r *Registry) Register(def Definition) (block.ID, error) {
	if def.Name == "" {
		return 0, fmt.Errorf("register block: empty name")
	}
	if _, exists := r.names[def.Name]; exists {
		return 0, fmt.Errorf("register block %q: %w", def.Name, ErrDuplicateBlock)
	}
	if len(r.defs) >= int(block.NullID) {
		return 0, fmt.Errorf("register block %q: registry full", def.Name)
	}
	id := block.ID(len(r.defs))
	r.defs = append(r.defs, def)
	r.names[def.Name] = id
	r.registerTexture(def.Texture)
	return id, nil
}

func (r *Registry) registerTexture(name string) {
	if name == "" {
		return
	}
	if _, exists := r.textureMap[name]; !exists {
		r.textureMap[name] = len(r.textureNames)
		r.textureNames = append(r.textureNames, name)
	}
}

// ID resolves a block name.
func (r *Registry) ID(name string) (block.ID, error) {
	id, ok := r.names[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBlock, name)
	}
	return id, nil
}

// Name returns the registered name of id, or "" for unknown ids.
func (r *Registry) Name(id block.ID) string {
	if int(id) >= len(r.defs) {
		return ""
	}
	return r.defs[id].Name
}

// Len returns the number of registered blocks including air.
func (r *Registry) Len() int {
	return len(r.defs)
}

// IsTransparent reports whether light and sight pass through id. Unknown ids,
// NullID included, are treated as opaque.
func (r *Registry) IsTransparent(id block.ID) bool {
	if int(id) >= len(r.defs) {
		return false
	}
	return r.defs[id].Transparent
}

// TileName returns the atlas tile of id, or "" when it has none.
func (r *Registry) TileName(id block.ID) string {
	if int(id) >= len(r.defs) {
		return ""
	}
	return r.defs[id].Texture
}

// AtlasDepth returns the texture array layer of id. Blocks without a tile use layer 0.
func (r *Registry) AtlasDepth(id block.ID) int {
	if idx, ok := r.textureMap[r.TileName(id)]; ok {
		return idx
	}
	return 0
}

// TextureNames returns atlas tiles in layer order.
func (r *Registry) TextureNames() []string {
	out := make([]string, len(r.textureNames))
	copy(out, r.textureNames)
	return out
}
