package basin

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldsim/engine/internal/field"
)

func TestConstantFieldHasZeroBasins(t *testing.T) {
	f := field.NewConstant(8, 0.1)
	m := Label(f)
	require.Equal(t, 0, m.Count)
	for _, l := range m.Labels {
		require.Equal(t, int32(-1), l)
	}
}

func TestSingleGaussianBumpIsOneBasin(t *testing.T) {
	n := 32
	f := field.New(n)
	cx, cy := n/2, n/2
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			d2 := float64((x-cx)*(x-cx) + (y-cy)*(y-cy))
			f.Set(x, y, float32(0.9*math.Exp(-d2/(2*4*4))))
		}
	}
	m := Label(f)
	require.Equal(t, 1, m.Count)
}

func TestLabelsSoundness(t *testing.T) {
	n := 16
	f := field.New(n)
	for i := 0; i < n*n; i++ {
		x, y := i%n, i/n
		f.Set(x, y, float32(0.5*math.Sin(float64(x)*0.7)+0.5*math.Cos(float64(y)*0.5)))
	}
	m := Label(f)

	for i, lbl := range m.Labels {
		if lbl < 0 {
			continue
		}
		require.True(t, lbl >= 0 && int(lbl) < m.Count)
	}
}

func TestDeterministicTieBreak(t *testing.T) {
	n := 8
	f := field.NewConstant(n, 0.5)
	m1 := Label(f)
	m2 := Label(f)
	require.Equal(t, m1.Labels, m2.Labels)
}

// A constant field at or above DepthThreshold has no neighbour strictly
// greater than any cell, so every cell is a tied, flat ascent
// termination rather than a genuine local maximum: it must still yield
// zero basins, not one singleton basin per cell.
func TestConstantFieldAboveThresholdHasZeroBasins(t *testing.T) {
	f := field.NewConstant(8, 0.5)
	m := Label(f)
	require.Equal(t, 0, m.Count)
	for _, l := range m.Labels {
		require.Equal(t, int32(-1), l)
	}
}
