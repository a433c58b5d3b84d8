package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chunkgen/internal/block"
	"chunkgen/internal/ecs"
	"chunkgen/internal/jobs"
	"chunkgen/internal/meshing"
	"chunkgen/internal/profiling"
	"chunkgen/internal/storage"
	"chunkgen/internal/world"
	"chunkgen/internal/worldgen"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// ErrChunkLoaded is returned by Spawn for a coordinate that already has a chunk.
var ErrChunkLoaded = errors.New("chunk already loaded")

// Dispatcher runs jobs off the orchestrator goroutine. Submit must not block;
// false means the job was not accepted and will be offered again next tick.
type Dispatcher interface {
	Submit(job jobs.Job) bool
}

// Options wires an Orchestrator. Registry, Store, Blocks, Terrain and
// Dispatcher are required.
type Options struct {
	Registry    *ecs.Registry
	Store       *world.ChunkStore
	Blocks      meshing.BlockProperties
	Terrain     *worldgen.Terrain
	Structures  []worldgen.Structure
	Seed        int64
	StorageKind storage.Kind
	Dispatcher  Dispatcher
	Sink        MeshSink
	Diagnostics *profiling.Diagnostics
	Logger      logrus.FieldLogger
	Mesher      meshing.Options
}

// Orchestrator is the ECS system that walks every chunk entity through
// terrain, structures and meshing. All state transitions happen inside
// Update on the caller's goroutine; workers only produce results.
type Orchestrator struct {
	registry   *ecs.Registry
	chunks     *ecs.Store[ChunkComponent]
	transforms *ecs.Store[TransformComponent]
	meshes     *ecs.Store[MeshComponent]

	store      *world.ChunkStore
	blocks     meshing.BlockProperties
	terrain    *worldgen.Terrain
	structures []worldgen.Structure
	seed       int64
	kind       storage.Kind
	dispatcher Dispatcher
	sink       MeshSink
	diag       *profiling.Diagnostics
	log        logrus.FieldLogger
	mesher     meshing.Options

	results  resultQueue
	pending  atomic.Int32
	entities map[world.ChunkCoord]ecs.Entity
}

// New registers the chunk, transform and mesh components and returns the system.
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Registry == nil:
		return nil, fmt.Errorf("new orchestrator: registry is required")
	case opts.Store == nil:
		return nil, fmt.Errorf("new orchestrator: chunk store is required")
	case opts.Blocks == nil:
		return nil, fmt.Errorf("new orchestrator: block properties are required")
	case opts.Terrain == nil:
		return nil, fmt.Errorf("new orchestrator: terrain is required")
	case opts.Dispatcher == nil:
		return nil, fmt.Errorf("new orchestrator: dispatcher is required")
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	chunks, err := ecs.Register[ChunkComponent](opts.Registry, ChunkComponentID)
	if err != nil {
		return nil, fmt.Errorf("new orchestrator: %w", err)
	}
	transforms, err := ecs.Register[TransformComponent](opts.Registry, TransformComponentID)
	if err != nil {
		return nil, fmt.Errorf("new orchestrator: %w", err)
	}
	meshes, err := ecs.Register[MeshComponent](opts.Registry, MeshComponentID)
	if err != nil {
		return nil, fmt.Errorf("new orchestrator: %w", err)
	}

	return &Orchestrator{
		registry:   opts.Registry,
		chunks:     chunks,
		transforms: transforms,
		meshes:     meshes,
		store:      opts.Store,
		blocks:     opts.Blocks,
		terrain:    opts.Terrain,
		structures: opts.Structures,
		seed:       opts.Seed,
		kind:       opts.StorageKind,
		dispatcher: opts.Dispatcher,
		sink:       opts.Sink,
		diag:       opts.Diagnostics,
		log:        log.WithField("system", "generation"),
		mesher:     opts.Mesher,
		entities:   make(map[world.ChunkCoord]ecs.Entity),
	}, nil
}

func (o *Orchestrator) Name() string { return "generation" }

func (o *Orchestrator) Requirement() ecs.Requirement {
	return ecs.All(ChunkComponentID, TransformComponentID)
}

// Spawn creates a chunk entity at coord in AwaitingTerrain.
func (o *Orchestrator) Spawn(coord world.ChunkCoord) (ecs.Entity, error) {
	if _, ok := o.entities[coord]; ok {
		return ecs.Entity{}, fmt.Errorf("spawn %v: %w", coord, ErrChunkLoaded)
	}
	c := world.NewChunk(coord)
	if !o.store.Add(c) {
		return ecs.Entity{}, fmt.Errorf("spawn %v: %w", coord, ErrChunkLoaded)
	}
	e := o.registry.Create()
	if err := o.chunks.Set(e, ChunkComponent{Chunk: c}); err != nil {
		return ecs.Entity{}, err
	}
	if err := o.transforms.Set(e, TransformComponent{Position: coord.OriginVec()}); err != nil {
		return ecs.Entity{}, err
	}
	o.entities[coord] = e
	return e, nil
}

// Unload destroys the entity at coord and drops the chunk from the store.
// Jobs already running for it finish and their results are discarded.
func (o *Orchestrator) Unload(coord world.ChunkCoord) bool {
	e, ok := o.entities[coord]
	if !ok {
		return false
	}
	delete(o.entities, coord)
	o.registry.Destroy(e)
	o.store.Remove(coord)
	if r, ok := o.sink.(MeshReleaser); ok {
		r.Release(e, coord)
	}
	return true
}

// Entity returns the entity of the chunk at coord.
func (o *Orchestrator) Entity(coord world.ChunkCoord) (ecs.Entity, bool) {
	e, ok := o.entities[coord]
	return e, ok
}

// Mesh returns the last applied mesh of e.
func (o *Orchestrator) Mesh(e ecs.Entity) (MeshComponent, bool) {
	return o.meshes.Get(e)
}

// Pending returns the number of dispatched jobs whose results have not been drained.
func (o *Orchestrator) Pending() int {
	return int(o.pending.Load())
}

// Update drains finished work and then offers every chunk one transition.
func (o *Orchestrator) Update(time.Duration) {
	o.drain()
	o.chunks.Each(func(e ecs.Entity, cc ChunkComponent) bool {
		if !o.registry.Has(e, TransformComponentID) {
			return true
		}
		o.step(e, cc.Chunk)
		return true
	})
}

func (o *Orchestrator) drain() {
	for {
		r, ok := o.results.TryTake()
		if !ok {
			return
		}
		o.pending.Dec()
		o.apply(r)
	}
}

func (o *Orchestrator) apply(r result) {
	c := r.chunk
	switch r.stage {
	case stageTerrain:
		o.diag.Record(profiling.Building, r.elapsed)
		stop := o.diag.Track(profiling.Insertion)
		c.SetStorage(r.storage)
		stop()

	case stageStructures:
		o.diag.Record(profiling.Structures, r.elapsed)
		c.SetStructuresDone()
		if r.placed > 0 {
			o.chunkLog(c).WithField("placed", r.placed).Debug("structures placed")
		}

	case stageMesh:
		o.diag.Record(profiling.Meshing, r.elapsed)
		if o.registry.Alive(r.entity) && c.State() == world.GeneratingMesh {
			stop := o.diag.Track(profiling.ApplyMesh)
			version := c.TimesMeshed() + 1
			if err := o.meshes.Set(r.entity, MeshComponent{Mesh: r.mesh, Version: version}); err != nil {
				o.chunkLog(c).WithError(err).Error("store mesh")
			}
			if o.sink != nil {
				o.sink.Upload(r.entity, c.Coord, r.mesh)
			}
			c.MarkMeshed()
			stop()
		} else {
			o.chunkLog(c).Debug("discarding mesh for disposed chunk")
		}
		if c.State() == world.GeneratingMesh {
			c.Advance()
		}
	}
}

func (o *Orchestrator) step(e ecs.Entity, c *world.Chunk) {
	switch c.State() {
	case world.AwaitingTerrain:
		if o.submitTerrain(e, c) {
			c.SetTerrainPending()
			c.Advance()
		}

	case world.AwaitingStructures:
		if !c.HasStorage() {
			if !c.TerrainPending() {
				o.chunkLog(c).Error("protocol violation: structures requested before terrain was dispatched")
			}
			return
		}
		if o.submitStructures(e, c) {
			c.Advance()
		}

	case world.AwaitingMesh:
		if !c.Settled() {
			if !c.StructuresDone() || !o.neighborhoodStructured(c.Coord) {
				return
			}
			c.ApplyModifications()
			c.SetSettled()
		}
		if !faceNeighborsSettled(c) {
			return
		}
		if o.submitMesh(e, c) {
			c.Advance()
		}

	case world.GeneratingMesh:
		// waiting for the mesh result

	case world.GeneratingStructures:
		if c.PendingModifications() > 0 && c.ApplyModifications() > 0 {
			c.Remesh()
			return
		}
		c.Advance()

	case world.Meshed:
		if c.PendingModifications() > 0 && c.ApplyModifications() > 0 {
			o.chunkLog(c).Debug("late modifications, remeshing")
			c.Remesh()
		}
	}
}

// neighborhoodStructured reports whether every loaded chunk around coord,
// diagonals included, has finished its structure step.
func (o *Orchestrator) neighborhoodStructured(coord world.ChunkCoord) bool {
	for dy := -1; dy <= 1; dy++ {
		for dz := -1; dz <= 1; dz++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				n := o.store.Get(coord.Add(dx, dy, dz))
				if n != nil && !n.StructuresDone() {
					return false
				}
			}
		}
	}
	return true
}

func faceNeighborsSettled(c *world.Chunk) bool {
	for _, n := range c.Neighbors() {
		if n != nil && !n.Settled() {
			return false
		}
	}
	return true
}

func (o *Orchestrator) submit(job jobs.Job) bool {
	if !o.dispatcher.Submit(job) {
		return false
	}
	o.pending.Inc()
	return true
}

func (o *Orchestrator) submitTerrain(e ecs.Entity, c *world.Chunk) bool {
	coord := c.Coord
	return o.submit(func(context.Context) {
		start := time.Now()
		buf := make([]block.ID, storage.Volume)
		o.terrain.Generate(buf, coord.Origin(), worldgen.ChunkRNG(o.seed, coord))
		st := storage.FromBuffer(o.kind, buf)
		o.results.Push(result{stage: stageTerrain, entity: e, chunk: c, storage: st, elapsed: time.Since(start)})
	})
}

func (o *Orchestrator) submitStructures(e ecs.Entity, c *world.Chunk) bool {
	coord := c.Coord
	st := c.Storage()
	return o.submit(func(context.Context) {
		start := time.Now()
		placed := worldgen.GenerateStructures(st, coord, worldgen.StructureRNG(o.seed, coord), o.structures, o.store)
		o.results.Push(result{stage: stageStructures, entity: e, chunk: c, placed: placed, elapsed: time.Since(start)})
	})
}

func (o *Orchestrator) submitMesh(e ecs.Entity, c *world.Chunk) bool {
	st := c.Storage()
	neighbors := o.store.NeighborStorages(c.Coord)
	return o.submit(func(context.Context) {
		start := time.Now()
		var mesh meshing.Mesh
		if !st.IsUniform() || st.UniformValue() != block.AirID {
			buf := make([]block.ID, storage.Volume)
			st.CopyTo(buf)
			mesh = meshing.BuildGreedyMesh(buf, neighbors, o.blocks, o.mesher)
		}
		o.results.Push(result{stage: stageMesh, entity: e, chunk: c, mesh: mesh, elapsed: time.Since(start)})
	})
}

func (o *Orchestrator) chunkLog(c *world.Chunk) logrus.FieldLogger {
	return o.log.WithFields(logrus.Fields{
		"chunk": c.Coord.String(),
		"state": c.State().String(),
	})
}

// Stats is a snapshot of the pipeline for introspection.
type Stats struct {
	Loaded  int
	States  [world.StateCount]int
	Pending int
	Queued  int
	Meshes  int
}

// Complete reports whether every loaded chunk is meshed and no work is outstanding.
func (s Stats) Complete() bool {
	return s.Loaded > 0 && s.States[world.Meshed] == s.Loaded && s.Pending == 0 && s.Queued == 0
}

// Stats counts chunk entities per state.
func (o *Orchestrator) Stats() Stats {
	s := Stats{
		Pending: o.Pending(),
		Queued:  o.results.Len(),
		Meshes:  o.meshes.Len(),
	}
	o.chunks.Each(func(_ ecs.Entity, cc ChunkComponent) bool {
		s.Loaded++
		s.States[cc.Chunk.State()]++
		return true
	})
	return s
}
