package stepper

import (
	"math"

	"github.com/fieldsim/engine/internal/params"
)

// flavour rescales the five raw operator contributions according to the
// active mode, per spec.md §4.1 ("the operator bank is scaled/biased to
// produce the named pattern family"). Exact flavourings are
// implementation-defined and pinned only by regression against golden
// frame hashes, as spec.md's Design Notes anticipate.
func flavour(mode params.Mode, x, y, n int, k, tns, c, a, r float64) (float64, float64, float64, float64, float64) {
	switch mode {
	case params.ModeQuasicrystal:
		// Enhance angular (4-fold) symmetry by biasing curvature with a
		// cosine of the cell's angular position about the grid centre.
		cx, cy := float64(n)/2, float64(n)/2
		theta := math.Atan2(float64(y)-cy, float64(x)-cx)
		k *= 1 + 0.25*math.Cos(4*theta)
		c *= 1 + 0.15*math.Sin(4*theta)
	case params.ModeCriticality:
		// Raise sensitivity near the attractor threshold.
		a *= 1.4
		tns *= 1.2
	case params.ModeFractal:
		// Recursive self-similarity: amplify curvature superlinearly.
		sign := 1.0
		if k < 0 {
			sign = -1.0
		}
		k = sign * math.Pow(math.Abs(k), 1.15)
	case params.ModeSoliton:
		// Less dissipative tension, favouring travelling localised bumps.
		tns *= 0.6
		c *= 1.2
	case params.ModeCosmicWeb:
		// Strengthen redistribution to encourage filament formation.
		r *= 1.3
		c *= 1.1
	}
	return k, tns, c, a, r
}
