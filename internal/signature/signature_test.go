package signature

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldsim/engine/internal/basin"
	"github.com/fieldsim/engine/internal/field"
)

func TestConstantFieldZeroCurvatureFullStability(t *testing.T) {
	f := field.NewConstant(16, 0.4)
	bm := basin.Label(f)
	sig := Compute(f, bm)

	require.Equal(t, 0, sig.BasinCount)
	require.InDelta(t, 0, sig.GlobalCurvature, 1e-9)
	require.InDelta(t, 0, sig.TensionVariance, 1e-9)
	require.Equal(t, 1.0, sig.StabilityMetric)
}

func TestCoherenceIsClamped(t *testing.T) {
	n := 10
	f := field.New(n)
	for i := 0; i < n*n; i++ {
		x, y := i%n, i/n
		if (x+y)%2 == 0 {
			f.Set(x, y, 0.9)
		} else {
			f.Set(x, y, -0.9)
		}
	}
	bm := basin.Label(f)
	sig := Compute(f, bm)

	require.GreaterOrEqual(t, sig.Coherence, 0.0)
	require.LessOrEqual(t, sig.Coherence, 1.0)
}

func TestClassifyStability(t *testing.T) {
	require.Equal(t, Stable, ClassifyStability(0.95))
	require.Equal(t, Borderline, ClassifyStability(0.7))
	require.Equal(t, Unstable, ClassifyStability(0.2))
}

func TestTrackerRollingWindow(t *testing.T) {
	tr := NewTracker(3)
	m := tr.Push(FrameSample{Energy: 1, Variance: 0.1, Curvature: 0.2, BasinCount: 2, StabilityMetric: 0.9})
	require.Equal(t, 1.0, m.AvgEnergy)

	tr.Push(FrameSample{Energy: 2, Variance: 0.2, Curvature: 0.3, BasinCount: 2, StabilityMetric: 0.9})
	tr.Push(FrameSample{Energy: 3, Variance: 0.3, Curvature: 0.4, BasinCount: 2, StabilityMetric: 0.9})
	m = tr.Push(FrameSample{Energy: 4, Variance: 0.4, Curvature: 0.5, BasinCount: 2, StabilityMetric: 0.9})

	require.InDelta(t, 3.0, m.AvgEnergy, 1e-9) // window now holds {2,3,4}
	require.Greater(t, m.SlopeEnergy, 0.0)
}

func TestTrackerDetectsBasinMerge(t *testing.T) {
	tr := NewTracker(10)
	tr.Push(FrameSample{BasinCount: 5, StabilityMetric: 0.9})
	m := tr.Push(FrameSample{BasinCount: 3, StabilityMetric: 0.9})

	require.Greater(t, m.BasinMergeRate, 0.0)
}

func TestTrackerStabilityClassCounts(t *testing.T) {
	tr := NewTracker(10)
	tr.Push(FrameSample{StabilityMetric: 0.95})
	tr.Push(FrameSample{StabilityMetric: 0.2})
	m := tr.Push(FrameSample{StabilityMetric: 0.7})

	require.Equal(t, 1, m.StableFrames)
	require.Equal(t, 1, m.UnstableFrames)
	require.Equal(t, 1, m.BorderlineFrames)
}

func TestComplexityBounded(t *testing.T) {
	tr := NewTracker(5)
	var m TrendMetrics
	for i := 0; i < 5; i++ {
		m = tr.Push(FrameSample{BasinCount: 200, Gradient: 5, StabilityMetric: 0})
	}
	require.GreaterOrEqual(t, m.Complexity, 0.0)
	require.LessOrEqual(t, m.Complexity, 1.0)
}
