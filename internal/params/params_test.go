package params

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsWithinRange(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestClampOutOfRange(t *testing.T) {
	p := Default()
	p.GridSize = 10000
	p.Dt = -1
	p.WK = 99

	clamped, changed := p.Clamp()
	require.True(t, changed)
	require.Equal(t, 500, clamped.GridSize)
	require.Equal(t, 0.01, clamped.Dt)
	require.Equal(t, 5.0, clamped.WK)
}

func TestUnknownModeFallsBackToStandard(t *testing.T) {
	p := Default()
	p.Mode = "nonsense"
	clamped, changed := p.Clamp()
	require.True(t, changed)
	require.Equal(t, ModeStandard, clamped.Mode)
}

func TestApplyOverridesLeavesUntouchedFieldsAlone(t *testing.T) {
	p := Default()
	newDt := 0.1
	updated := p.Apply(Overrides{Dt: &newDt})
	require.Equal(t, 0.1, updated.Dt)
	require.Equal(t, p.GridSize, updated.GridSize)
	require.Equal(t, p.CurvatureGain, updated.CurvatureGain)
}

func TestBuilder(t *testing.T) {
	p := NewBuilder().WithGridSize(64).WithDt(0.1).WithMode(ModeSoliton).Build()
	require.Equal(t, 64, p.GridSize)
	require.Equal(t, 0.1, p.Dt)
	require.Equal(t, ModeSoliton, p.Mode)
}

func TestPresetsApplyCleanly(t *testing.T) {
	base := Default()
	for name, override := range Presets {
		applied := base.Apply(override)
		require.NoError(t, applied.Validate(), "preset %s produced out-of-range params", name)
	}
}
