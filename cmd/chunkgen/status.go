package main

import (
	"fmt"
	"io"
	"sync"

	"chunkgen/internal/ecs"
	"chunkgen/internal/generation"
	"chunkgen/internal/meshing"
	"chunkgen/internal/profiling"
	"chunkgen/internal/world"

	"github.com/fatih/color"
)

var (
	waitingColor  = color.New(color.FgBlue)
	workingColor  = color.New(color.FgYellow)
	finishedColor = color.New(color.FgGreen, color.Bold)
	headerColor   = color.New(color.FgCyan, color.Bold)
)

func stateColor(s world.GenerationState) *color.Color {
	switch {
	case s == world.Meshed:
		return finishedColor
	case s.InFlight():
		return workingColor
	default:
		return waitingColor
	}
}

func printStatus(w io.Writer, tick int, s generation.Stats) {
	headerColor.Fprintf(w, "tick %d: %d chunks, %d jobs pending, %d results queued\n", tick, s.Loaded, s.Pending, s.Queued)
	for i := 0; i < world.StateCount; i++ {
		state := world.GenerationState(i)
		stateColor(state).Fprintf(w, "  %-22s %5d\n", state, s.States[i])
	}
}

func printTimings(w io.Writer, d *profiling.Diagnostics) {
	headerColor.Fprintln(w, "average stage time")
	for _, cat := range []string{profiling.Building, profiling.Insertion, profiling.Structures, profiling.Meshing, profiling.ApplyMesh} {
		fmt.Fprintf(w, "  %-12s %10v (%d samples)\n", cat, d.Average(cat), len(d.Samples(cat)))
	}
}

// summarySink stands in for a GPU uploader and tallies what it receives.
type summarySink struct {
	mu       sync.Mutex
	uploads  int
	quads    int
	vertices int
}

func (s *summarySink) Upload(_ ecs.Entity, _ world.ChunkCoord, mesh meshing.Mesh) {
	s.mu.Lock()
	s.uploads++
	s.quads += mesh.QuadCount()
	s.vertices += mesh.VertexCount()
	s.mu.Unlock()
}

func (s *summarySink) print(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	headerColor.Fprintln(w, "uploads")
	fmt.Fprintf(w, "  %d meshes, %d quads, %d vertices\n", s.uploads, s.quads, s.vertices)
}
