// Command fieldsim drives an engine.Engine with host-provided ticks,
// printing a frame hash per step, as a manual exerciser for the
// determinism check and perturbation kernels.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldsim/engine/engine"
	"github.com/fieldsim/engine/internal/params"
)

var (
	seed             = flag.Uint64("seed", 42, "PRNG seed")
	gridSize         = flag.Int("grid", 64, "grid size N (NxN)")
	steps            = flag.Int("steps", 100, "number of steps to run")
	mode             = flag.String("mode", string(params.ModeStandard), "operator bank mode")
	tickInterval     = flag.Duration("tick", 0, "delay between steps (0 runs as fast as possible)")
	determinismCheck = flag.Bool("determinism-check", false, "run a determinism check instead of a normal session")
)

func main() {
	flag.Parse()

	p := params.NewBuilder().
		WithGridSize(*gridSize).
		WithMode(params.Mode(*mode)).
		Build()

	e := engine.New(uint32(*seed), p)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *determinismCheck {
		report := e.RunDeterminismCheck(*steps)
		log.Printf("determinism check: isDeterministic=%v pixelDifference=%d meanAbsoluteDeviation=%g",
			report.IsDeterministic, report.PixelDifference, report.MeanAbsoluteDeviation)
		return
	}

	e.Start()
	for i := 0; i < *steps; i++ {
		select {
		case <-ctx.Done():
			log.Print("fieldsim: interrupted")
			return
		default:
		}
		if !e.Running() {
			break
		}

		res := e.StepOnce()
		log.Printf("step=%d hash=%s basins=%d coherence=%.3f unstable=%v",
			res.Step, res.Hash, res.Signature.BasinCount, res.Signature.Coherence, res.Unstable)

		if *tickInterval > 0 {
			select {
			case <-time.After(*tickInterval):
			case <-ctx.Done():
				return
			}
		}
	}
	e.Stop()
}
