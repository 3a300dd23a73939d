package perturb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldsim/engine/internal/field"
	"github.com/fieldsim/engine/internal/rng"
)

func TestImpulseCentreAndFarField(t *testing.T) {
	// S4: impulse at (N/2, N/2) with intensity=0.9, radius=N/8 on a zero
	// field -> centre within [0.85, 0.95]; cells farther than 3*radius unchanged.
	n := 64
	f := field.New(n)
	cx, cy := n/2, n/2
	radius := float64(n) / 8

	Apply(Impulse, f, cx, cy, Params{Intensity: 0.9, Radius: radius, Decay: 1.0}, rng.New(1))

	centre := f.At(cx, cy)
	require.True(t, centre >= 0.85 && centre <= 0.95, "centre=%v", centre)

	far := f.At(cx+int(3*radius)+5, cy)
	require.Equal(t, float32(0), far)
}

func TestUnknownKindIsNoop(t *testing.T) {
	n := 8
	f := field.New(n)
	before := f.Clone()
	Apply(Kind("bogus"), f, 4, 4, Params{}, rng.New(1))
	require.Equal(t, before.Values(), f.Values())
}

func TestShearEnqueuesResidualForDuration(t *testing.T) {
	n := 16
	f := field.New(n)
	r := Apply(Shear, f, 8, 8, Params{Magnitude: 0.2, AngleDeg: 45, Duration: 5}, rng.New(1))
	require.NotNil(t, r)
	require.Equal(t, 5, r.StepsRemaining)
}

func TestWaveIsImmediateNoResidual(t *testing.T) {
	n := 32
	f := field.New(n)
	r := Apply(Wave, f, 16, 16, Params{Amplitude: 0.3, Frequency: 1, Wavelength: 8, Damping: 0.1}, rng.New(1))
	require.Nil(t, r)

	touched := false
	for _, v := range f.Values() {
		if v != 0 {
			touched = true
			break
		}
	}
	require.True(t, touched)
}

func TestVortexPreservesValueSet(t *testing.T) {
	n := 16
	f := field.New(n)
	for i := 0; i < n*n; i++ {
		x, y := i%n, i/n
		f.Set(x, y, float32((x+y)%3)*0.1)
	}
	original := make(map[float32]bool)
	for _, v := range f.Values() {
		original[v] = true
	}
	Apply(Vortex, f, 8, 8, Params{AngularVelocity: 0.4, Radius: 5, Direction: 1}, rng.New(1))
	for _, v := range f.Values() {
		require.True(t, v >= -1 && v <= 1)
		require.True(t, original[v], "value %v not in the original value set", v)
	}
}

func TestFractureDeterministic(t *testing.T) {
	n := 32
	f1 := field.New(n)
	f2 := field.New(n)
	p := Params{Strength: 0.4, Noise: 0.5, PropagationRate: 0.2}
	r1 := Apply(Fracture, f1, 16, 16, p, rng.New(99))
	r2 := Apply(Fracture, f2, 16, 16, p, rng.New(99))
	require.Equal(t, f1.Values(), f2.Values())
	require.NotNil(t, r1)
	require.NotNil(t, r2)
}

func TestDriftTranslatesValues(t *testing.T) {
	n := 16
	f := field.New(n)
	f.Set(4, 4, 0.5)
	Apply(Drift, f, 0, 0, Params{Magnitude: 1, VectorX: 1, VectorY: 0, Duration: 3}, rng.New(1))
	require.NotEqual(t, float32(0), f.At(5, 4))
}
