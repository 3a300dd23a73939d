// Package signature computes the per-step Signature and the rolling-window
// TrendMetrics (spec.md §4.4).
package signature

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/fieldsim/engine/internal/basin"
	"github.com/fieldsim/engine/internal/field"
)

// StabilityEpsilon is the implementation-fixed threshold for the stability
// metric's |L|*|gradient| < epsilon test (spec.md §4.4).
const StabilityEpsilon = 0.01

// Signature is the compact per-step vector of global field statistics
// (spec.md §3).
type Signature struct {
	BasinCount      int
	AvgBasinDepth   float64
	GlobalCurvature float64
	TensionVariance float64
	StabilityMetric float64
	Coherence       float64
}

// clamp01 clamps v into [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Compute derives the Signature of f, using bm as its precomputed basin
// labelling (avoids recomputing basins twice per step).
func Compute(f *field.Field, bm *basin.Map) Signature {
	n := f.N()
	laplacians := make([]float64, n*n)
	gradients := make([]float64, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			l := laplacianAt(f, x, y)
			g := gradientMagnitudeAt(f, x, y)
			laplacians[y*n+x] = l
			gradients[y*n+x] = g
		}
	}

	var curvatureSum float64
	for _, l := range laplacians {
		curvatureSum += math.Abs(l)
	}
	globalCurvature := curvatureSum / float64(len(laplacians))

	tensionVariance := stat.Variance(gradients, nil)

	var stableCells int
	for i := range laplacians {
		if math.Abs(laplacians[i])*gradients[i] < StabilityEpsilon {
			stableCells++
		}
	}
	stabilityMetric := float64(stableCells) / float64(len(laplacians))

	avgDepth := bm.MeanDepth(f)

	depthTerm := clamp01(avgDepth)
	curvatureTerm := clamp01(globalCurvature)
	tensionTerm := clamp01(1 - tensionVariance)
	coherence := clamp01((depthTerm + curvatureTerm + tensionTerm) / 3)

	return Signature{
		BasinCount:      bm.Count,
		AvgBasinDepth:   avgDepth,
		GlobalCurvature: globalCurvature,
		TensionVariance: tensionVariance,
		StabilityMetric: clamp01(stabilityMetric),
		Coherence:       coherence,
	}
}

func laplacianAt(f *field.Field, x, y int) float64 {
	v := float64(f.At(x, y))
	return float64(f.At(x-1, y)+f.At(x+1, y)+f.At(x, y-1)+f.At(x, y+1)) - 4*v
}

func gradientMagnitudeAt(f *field.Field, x, y int) float64 {
	gx := (float64(f.At(x+1, y)) - float64(f.At(x-1, y))) / 2
	gy := (float64(f.At(x, y+1)) - float64(f.At(x, y-1))) / 2
	return math.Hypot(gx, gy)
}

// Energy returns the mean squared field value, used as the TrendMetrics
// energy signal.
func Energy(f *field.Field) float64 {
	var sum float64
	for _, v := range f.Values() {
		sum += float64(v) * float64(v)
	}
	return sum / float64(f.Len())
}

// Variance returns the unbiased sample variance (n-1 denominator) of the
// field's cell values.
func Variance(f *field.Field) float64 {
	vals := make([]float64, f.Len())
	for i, v := range f.Values() {
		vals[i] = float64(v)
	}
	return stat.Variance(vals, nil)
}

// PeakGradient returns the maximum per-cell gradient magnitude over f.
func PeakGradient(f *field.Field) float64 {
	n := f.N()
	var peak float64
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if g := gradientMagnitudeAt(f, x, y); g > peak {
				peak = g
			}
		}
	}
	return peak
}

// StabilityClass classifies a single frame's stability metric per
// spec.md §4.4.
type StabilityClass int

const (
	Stable StabilityClass = iota
	Borderline
	Unstable
)

func ClassifyStability(stabilityMetric float64) StabilityClass {
	switch {
	case stabilityMetric > 0.8:
		return Stable
	case stabilityMetric < 0.55:
		return Unstable
	default:
		return Borderline
	}
}
