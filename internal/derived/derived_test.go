package derived

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldsim/engine/internal/field"
	"github.com/fieldsim/engine/internal/params"
)

func TestConstantFieldYieldsZeroMaps(t *testing.T) {
	f := field.NewConstant(16, 0.2)
	p := params.Default()
	c := NewComputer()

	for _, typ := range []Type{Curvature, Tension, Coupling, Variance, GradientFlow, ConstraintSkeleton, GradientFlowLines} {
		m := c.Compute(typ, f, p)
		for _, v := range m.Grid {
			require.False(t, math.IsNaN(float64(v)))
			require.InDelta(t, 0, v, 1e-6, "type=%v", typ)
		}
	}
}

func TestBasinsTypeMatchesBasinPackage(t *testing.T) {
	f := field.NewConstant(8, 0.1)
	c := NewComputer()
	m := c.Compute(Basins, f, params.Default())
	for _, v := range m.Grid {
		require.Equal(t, float32(-1), v)
	}
}

func TestCacheInvalidation(t *testing.T) {
	f := field.NewConstant(8, 0.1)
	p := params.Default()
	c := NewComputer()

	m1 := c.Compute(Curvature, f, p)
	f.Set(0, 0, 0.9)
	c.Invalidate()
	m2 := c.Compute(Curvature, f, p)
	require.NotEqual(t, m1.Grid, m2.Grid)
}

func TestHysteresisBlendsTowardField(t *testing.T) {
	n := 4
	f := field.NewConstant(n, 0.0)
	c := NewComputer()
	p := params.Default()

	first := c.Compute(Hysteresis, f, p)
	require.Equal(t, float32(0), first.Grid[0])

	f.SetIndex(0, 1)
	c.Invalidate()
	second := c.Compute(Hysteresis, f, p)
	require.InDelta(t, 0.1, second.Grid[0], 1e-6)
}

func TestStabilityFieldBounded(t *testing.T) {
	n := 12
	f := field.New(n)
	for i := 0; i < n*n; i++ {
		x, y := i%n, i/n
		f.Set(x, y, float32(0.3*math.Sin(float64(x+y))))
	}
	c := NewComputer()
	m := c.Compute(StabilityField, f, params.Default())
	for _, v := range m.Grid {
		require.True(t, v > 0 && v <= 1)
	}
}
