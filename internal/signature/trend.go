package signature

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the default rolling-window length for TrendMetrics
// (spec.md §4.4: "default last 60 frames").
const DefaultWindow = 60

// FrameSample is the per-step input the Tracker accumulates into
// TrendMetrics.
type FrameSample struct {
	Energy          float64
	Variance        float64
	Curvature       float64
	Gradient        float64
	BasinCount      int
	StabilityMetric float64
}

// TrendMetrics is the rolling-window aggregate over the last W frames
// (spec.md §4.4).
type TrendMetrics struct {
	AvgEnergy, AvgVariance, AvgCurvature, AvgBasinCount float64
	SlopeEnergy, SlopeVariance, SlopeCurvature          float64
	StableFrames, BorderlineFrames, UnstableFrames      int
	BasinMergeRate                                      float64
	PeakGradient, PeakEnergy, PeakVariance float64
	Complexity                             float64
}

// Tracker maintains the rolling window of FrameSamples and derives
// TrendMetrics on each push.
type Tracker struct {
	capacity       int
	window         []FrameSample
	havePrevBasins bool
	prevBasinCount int
	mergeEvents    int
	last           TrendMetrics
}

// NewTracker returns a Tracker with the given rolling-window capacity. A
// capacity <= 0 uses DefaultWindow.
func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultWindow
	}
	return &Tracker{capacity: capacity}
}

// Push appends a new frame sample, evicting the oldest if the window is
// full, and returns the updated TrendMetrics.
func (t *Tracker) Push(s FrameSample) TrendMetrics {
	if t.havePrevBasins && s.BasinCount < t.prevBasinCount {
		t.mergeEvents++
	}
	t.prevBasinCount = s.BasinCount
	t.havePrevBasins = true

	t.window = append(t.window, s)
	if len(t.window) > t.capacity {
		// mergeEvents counts drops between consecutive frames; the pair
		// formed by the evicted frame and its successor leaves the window,
		// so a merge counted for that pair is removed to keep the reported
		// rate a window-local figure.
		if t.window[1].BasinCount < t.window[0].BasinCount {
			t.mergeEvents--
		}
		t.window = t.window[1:]
	}

	t.last = t.metrics()
	return t.last
}

// Latest returns the most recently computed TrendMetrics without
// mutating the window.
func (t *Tracker) Latest() TrendMetrics {
	return t.last
}

func (t *Tracker) metrics() TrendMetrics {
	n := len(t.window)
	if n == 0 {
		return TrendMetrics{}
	}

	energies := make([]float64, n)
	variances := make([]float64, n)
	curvatures := make([]float64, n)
	gradients := make([]float64, n)
	idx := make([]float64, n)

	var sumEnergy, sumVariance, sumCurvature, sumBasins, sumStability float64
	var stable, borderline, unstable int

	for i, s := range t.window {
		energies[i] = s.Energy
		variances[i] = s.Variance
		curvatures[i] = s.Curvature
		gradients[i] = s.Gradient
		idx[i] = float64(i)

		sumEnergy += s.Energy
		sumVariance += s.Variance
		sumCurvature += s.Curvature
		sumBasins += float64(s.BasinCount)
		sumStability += s.StabilityMetric

		switch ClassifyStability(s.StabilityMetric) {
		case Stable:
			stable++
		case Unstable:
			unstable++
		default:
			borderline++
		}
	}

	peakGradient := floats.Max(gradients)
	peakEnergy := floats.Max(energies)
	peakVariance := floats.Max(variances)

	var slopeEnergy, slopeVariance, slopeCurvature float64
	if n >= 2 {
		_, slopeEnergy = stat.LinearRegression(idx, energies, nil, false)
		_, slopeVariance = stat.LinearRegression(idx, variances, nil, false)
		_, slopeCurvature = stat.LinearRegression(idx, curvatures, nil, false)
	}

	basinNorm := clamp01(sumBasins / float64(n) / 50)
	gradientNorm := clamp01(peakGradient)
	inverseStability := clamp01(1 - sumStability/float64(n))
	complexity := clamp01(0.4*basinNorm + 0.3*gradientNorm + 0.3*inverseStability)

	mergeRate := float64(t.mergeEvents) / float64(n)

	return TrendMetrics{
		AvgEnergy:        sumEnergy / float64(n),
		AvgVariance:      sumVariance / float64(n),
		AvgCurvature:     sumCurvature / float64(n),
		AvgBasinCount:    sumBasins / float64(n),
		SlopeEnergy:      slopeEnergy,
		SlopeVariance:    slopeVariance,
		SlopeCurvature:   slopeCurvature,
		StableFrames:     stable,
		BorderlineFrames: borderline,
		UnstableFrames:   unstable,
		BasinMergeRate:   clamp01(mergeRate),
		PeakGradient:     peakGradient,
		PeakEnergy:       peakEnergy,
		PeakVariance:     peakVariance,
		Complexity:       complexity,
	}
}
