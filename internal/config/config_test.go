package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chunkgen/internal/storage"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.StorageKind() != storage.KindPalette {
		t.Fatalf("default storage = %v", cfg.StorageKind())
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
world:
  seed: 42
  storage: octree
mesher:
  seal_world_edges: true
tick: 20ms
`))
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}
	if cfg.World.Seed != 42 {
		t.Fatalf("Seed = %d, want 42", cfg.World.Seed)
	}
	if cfg.World.Frequency != 0.0075 {
		t.Fatalf("Frequency = %v, default not kept", cfg.World.Frequency)
	}
	if cfg.StorageKind() != storage.KindOctree {
		t.Fatalf("storage = %v, want octree", cfg.StorageKind())
	}
	if !cfg.Mesher.SealWorldEdges {
		t.Fatalf("seal_world_edges not decoded")
	}
	if cfg.Tick != 20*time.Millisecond {
		t.Fatalf("Tick = %v, want 20ms", cfg.Tick)
	}
	if len(cfg.Blocks) == 0 {
		t.Fatalf("default blocks dropped")
	}
}

func TestValidateRejectsInvalidConfigurations(t *testing.T) {
	tests := map[string]string{
		"zero workers":    "workers:\n  count: -1\n",
		"bad storage":     "world:\n  storage: btree\n",
		"bad frequency":   "world:\n  frequency: -1\n",
		"bad threshold":   "world:\n  cave_threshold: 3\n",
		"unnamed block":   "blocks:\n  - texture: x.png\n",
		"negative tick":   "tick: -5ms\n",
		"bad tree chance": "world:\n  tree_chance: 2\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunkgen.yaml")
	if err := os.WriteFile(path, []byte("workers:\n  count: 3\n  queue_size: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Workers.Count != 3 || cfg.Workers.QueueSize != 9 {
		t.Fatalf("workers = %+v", cfg.Workers)
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "chunkgen.example.yaml"))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Workers.Count != 4 || cfg.Tick != 50*time.Millisecond || len(cfg.Blocks) == 0 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
