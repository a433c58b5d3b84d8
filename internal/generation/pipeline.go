package generation

import (
	"context"
	"fmt"
	"time"

	"chunkgen/internal/config"
	"chunkgen/internal/ecs"
	"chunkgen/internal/jobs"
	"chunkgen/internal/meshing"
	"chunkgen/internal/profiling"
	"chunkgen/internal/registry"
	"chunkgen/internal/world"
	"chunkgen/internal/worldgen"

	"github.com/sirupsen/logrus"
)

// Pipeline bundles everything needed to generate and mesh chunks from a config.
type Pipeline struct {
	Config       *config.Config
	Registry     *ecs.Registry
	Blocks       *registry.Registry
	Store        *world.ChunkStore
	Pool         *jobs.Pool
	Diagnostics  *profiling.Diagnostics
	Scheduler    *ecs.Scheduler
	Orchestrator *Orchestrator
	Streamer     *Streamer

	// OnTick, when set, is called by Run after every tick.
	OnTick func(tick int, s Stats)
}

// NewPipeline builds the block registry, generation steps, worker pool and
// scheduler described by cfg. sink may be nil.
func NewPipeline(cfg *config.Config, sink MeshSink, log logrus.FieldLogger) (*Pipeline, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	blocks, err := registry.FromDefinitions(cfg.Blocks)
	if err != nil {
		return nil, fmt.Errorf("build block registry: %w", err)
	}
	terrainBlocks, err := worldgen.ResolveTerrainBlocks(blocks)
	if err != nil {
		return nil, err
	}
	terrain := worldgen.NewTerrain(worldgen.ParametersFromConfig(cfg.World), terrainBlocks)

	var structures []worldgen.Structure
	if cfg.World.TreeChance > 0 {
		tree, err := worldgen.NewTree(blocks, cfg.World.TreeChance)
		if err != nil {
			return nil, err
		}
		structures = append(structures, tree)
	}

	diag := profiling.New(cfg.Diagnostics.Capacity)
	reg := ecs.NewRegistry()
	store := world.NewChunkStore()
	pool := jobs.NewPool(cfg.Workers.Count, cfg.Workers.QueueSize, log)

	orch, err := New(Options{
		Registry:    reg,
		Store:       store,
		Blocks:      blocks,
		Terrain:     terrain,
		Structures:  structures,
		Seed:        cfg.World.Seed,
		StorageKind: cfg.StorageKind(),
		Dispatcher:  pool,
		Sink:        sink,
		Diagnostics: diag,
		Logger:      log,
		Mesher:      meshing.Options{SealWorldEdges: cfg.Mesher.SealWorldEdges},
	})
	if err != nil {
		pool.Shutdown()
		return nil, err
	}

	sched := ecs.NewScheduler(reg, diag, log, cfg.Diagnostics.SlowUpdate)
	sched.Add(orch)

	return &Pipeline{
		Config:       cfg,
		Registry:     reg,
		Blocks:       blocks,
		Store:        store,
		Pool:         pool,
		Diagnostics:  diag,
		Scheduler:    sched,
		Orchestrator: orch,
		Streamer:     NewStreamer(orch, terrain),
	}, nil
}

// LoadColumns spawns every chunk with |x-cx| <= radius and |z-cz| <= radius
// between chunk layers minY and maxY inclusive. Chunks already loaded are
// skipped. Returns the number spawned.
func (p *Pipeline) LoadColumns(cx, cz, radius, minY, maxY int) (int, error) {
	n := 0
	for y := minY; y <= maxY; y++ {
		for z := cz - radius; z <= cz+radius; z++ {
			for x := cx - radius; x <= cx+radius; x++ {
				coord := world.ChunkCoord{X: x, Y: y, Z: z}
				if _, ok := p.Orchestrator.Entity(coord); ok {
					continue
				}
				if _, err := p.Orchestrator.Spawn(coord); err != nil {
					return n, err
				}
				n++
			}
		}
	}
	return n, nil
}

// Tick runs one scheduler update.
func (p *Pipeline) Tick(dt time.Duration) {
	p.Scheduler.Update(dt)
}

// Run ticks at the configured rate until every loaded chunk is meshed, ctx
// ends, or maxTicks ticks have run (maxTicks <= 0 means no limit). Returns
// the number of ticks run.
func (p *Pipeline) Run(ctx context.Context, maxTicks int) (int, error) {
	limiter := NewTickLimiter(p.Config.Tick)
	ticks := 0
	for maxTicks <= 0 || ticks < maxTicks {
		if err := ctx.Err(); err != nil {
			return ticks, err
		}
		p.Tick(p.Config.Tick)
		ticks++
		stats := p.Orchestrator.Stats()
		if p.OnTick != nil {
			p.OnTick(ticks, stats)
		}
		if stats.Complete() {
			return ticks, nil
		}
		limiter.Wait()
	}
	return ticks, fmt.Errorf("pipeline incomplete after %d ticks", ticks)
}

// Close stops the worker pool.
func (p *Pipeline) Close() {
	p.Pool.Shutdown()
}
