package engine

import (
	"math"
)

// DeterminismReport is the structured result of runDeterminismCheck
// (spec.md §7: "a failed check is a result value, not an error").
type DeterminismReport struct {
	IsDeterministic       bool
	Steps                 int
	PixelDifference       int
	MeanAbsoluteDeviation float64
	Hashes                []string
}

// RunDeterminismCheck runs two fresh engines from the current (seed,
// params), steps each `steps` times with no perturbation schedule, and
// compares their resulting fields and frame hashes (spec.md §4.8, §8
// property 1, scenario S5). It does not mutate the receiver.
func (e *Engine) RunDeterminismCheck(steps int) DeterminismReport {
	e.mu.Lock()
	seed := e.seed
	p := e.params
	e.mu.Unlock()

	a := New(seed, p)
	b := New(seed, p)

	hashes := make([]string, 0, steps)
	pixelDiff := 0
	var sumAbsDev float64
	var sumCells int

	for i := 0; i < steps; i++ {
		ra := a.StepOnce()
		rb := b.StepOnce()
		hashes = append(hashes, ra.Hash)

		if ra.Hash != rb.Hash {
			fa := a.Field()
			fb := b.Field()
			for j := range fa.Values() {
				va, vb := fa.Values()[j], fb.Values()[j]
				if va != vb {
					pixelDiff++
				}
				sumAbsDev += math.Abs(float64(va - vb))
				sumCells++
			}
		}
	}

	mad := 0.0
	if sumCells > 0 {
		mad = sumAbsDev / float64(sumCells)
	}

	return DeterminismReport{
		IsDeterministic:       pixelDiff == 0,
		Steps:                 steps,
		PixelDifference:       pixelDiff,
		MeanAbsoluteDeviation: mad,
		Hashes:                hashes,
	}
}
