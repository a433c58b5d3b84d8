package config

import (
	"fmt"

	"chunkgen/internal/storage"
)

// WorldGen holds world generation settings.
type WorldGen struct {
	Seed        int64   `yaml:"seed"`
	Frequency   float64 `yaml:"frequency"`
	Persistence float64 `yaml:"persistence"`
	BaseHeight  int     `yaml:"base_height"`
	HeightRange int     `yaml:"height_range"`

	Caves         bool    `yaml:"caves"`
	CaveFrequency float64 `yaml:"cave_frequency"`
	// CaveThreshold is the density below which a voxel is carved out.
	CaveThreshold float64 `yaml:"cave_threshold"`

	TreeChance float64 `yaml:"tree_chance"`
	// Storage is "palette" or "octree".
	Storage string `yaml:"storage"`
}

// DefaultWorldGen returns the default generation settings.
func DefaultWorldGen() WorldGen {
	return WorldGen{
		Seed:          1,
		Frequency:     0.0075,
		Persistence:   1.0,
		BaseHeight:    8,
		HeightRange:   48,
		Caves:         true,
		CaveFrequency: 0.05,
		CaveThreshold: -0.55,
		TreeChance:    0.01,
		Storage:       "palette",
	}
}

// Validate checks generation settings.
func (w *WorldGen) Validate() error {
	if w.Frequency <= 0 {
		return fmt.Errorf("%w: world.frequency must be positive", ErrInvalid)
	}
	if w.Persistence <= 0 {
		return fmt.Errorf("%w: world.persistence must be positive", ErrInvalid)
	}
	if w.HeightRange < 0 {
		return fmt.Errorf("%w: world.height_range cannot be negative", ErrInvalid)
	}
	if w.CaveThreshold < -1 || w.CaveThreshold > 1 {
		return fmt.Errorf("%w: world.cave_threshold must be in [-1,1]", ErrInvalid)
	}
	if w.TreeChance < 0 || w.TreeChance > 1 {
		return fmt.Errorf("%w: world.tree_chance must be in [0,1]", ErrInvalid)
	}
	if _, err := storage.ParseKind(w.Storage); err != nil {
		return fmt.Errorf("%w: world.storage: %v", ErrInvalid, err)
	}
	return nil
}
