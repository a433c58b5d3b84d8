package main

import (
	"context"
	"flag"
	"os"
	"time"

	"chunkgen/internal/config"
	"chunkgen/internal/generation"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/xlab/closer"
)

var (
	argConfig  = flag.String("config", "", "YAML config file (defaults are used when empty)")
	argRadius  = flag.Int("radius", 2, "chunk radius around the origin column")
	argLayers  = flag.Int("layers", 0, "number of vertical chunk layers starting at y=0 (0 follows the terrain height)")
	argTicks   = flag.Int("ticks", 0, "stop after this many ticks (0 runs until every chunk is meshed)")
	argStatus  = flag.Bool("status", false, "print the chunk state table after every tick")
	argVerbose = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true, FullTimestamp: true}
	log.Level = logrus.InfoLevel
	if *argVerbose {
		log.Level = logrus.DebugLevel
	}

	cfg := config.Default()
	if *argConfig != "" {
		var err error
		if cfg, err = config.Load(*argConfig); err != nil {
			log.Fatalln(err)
		}
	}

	sink := &summarySink{}
	pipeline, err := generation.NewPipeline(cfg, sink, log)
	if err != nil {
		log.Fatalln(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(func() {
		cancel()
		pipeline.Close()
	})

	go func() {
		code := run(ctx, pipeline, sink, log)
		closer.Exit(code)
	}()
	closer.Hold()
}

func run(ctx context.Context, p *generation.Pipeline, sink *summarySink, log *logrus.Logger) int {
	var n int
	var err error
	if *argLayers > 0 {
		n, err = p.LoadColumns(0, 0, *argRadius, 0, *argLayers-1)
	} else {
		n, err = p.Streamer.StreamAround(mgl32.Vec3{}, *argRadius)
	}
	if err != nil {
		log.WithError(err).Error("load chunks")
		return 1
	}
	log.WithFields(logrus.Fields{
		"chunks":  n,
		"workers": p.Pool.Workers(),
		"seed":    p.Config.World.Seed,
		"storage": p.Config.StorageKind().String(),
	}).Info("generating")

	if *argStatus {
		p.OnTick = func(tick int, s generation.Stats) { printStatus(os.Stdout, tick, s) }
	}
	start := time.Now()
	ticks, err := p.Run(ctx, *argTicks)

	stats := p.Orchestrator.Stats()
	printStatus(os.Stdout, ticks, stats)
	printTimings(os.Stdout, p.Diagnostics)
	sink.print(os.Stdout)
	log.WithFields(logrus.Fields{
		"ticks":   ticks,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("done")

	if err != nil {
		log.WithError(err).Warn("stopped before every chunk was meshed")
		return 1
	}
	return 0
}
