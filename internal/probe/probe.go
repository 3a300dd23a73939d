// Package probe reads the value and local statistics (curvature, gradient,
// coupling deviation, neighbourhood variance, basin id) at a single cell
// (spec.md §3, ProbeData).
package probe

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/fieldsim/engine/internal/basin"
	"github.com/fieldsim/engine/internal/field"
	"github.com/fieldsim/engine/internal/params"
	"github.com/fieldsim/engine/internal/stepper"
)

// Data is the per-cell diagnostic readout (spec.md §3).
type Data struct {
	X, Y              int
	Value             float64
	Curvature         float64
	Tension           float64
	Coupling          float64
	GradientMagnitude float64
	NeighborhoodVariance float64
	BasinID           *int32
}

// Compute reads cell (x, y) of f and returns its full Data, using bm (if
// non-nil) to populate BasinID.
func Compute(f *field.Field, bm *basin.Map, p params.Parameters, x, y int) Data {
	v := float64(f.At(x, y))

	laplacian := float64(f.At(x-1, y)+f.At(x+1, y)+f.At(x, y-1)+f.At(x, y+1)) - 4*v

	gx := (float64(f.At(x+1, y)) - float64(f.At(x-1, y))) / 2
	gy := (float64(f.At(x, y+1)) - float64(f.At(x, y-1))) / 2
	gradMag := math.Hypot(gx, gy)

	blurred := stepper.GaussianBlur(f, p.CouplingRadius)
	n := f.N()
	coupling := blurred[y*n+x] - v

	vals := make([]float64, 0, 9)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			vals = append(vals, float64(f.At(x+dx, y+dy)))
		}
	}
	variance := stat.Variance(vals, nil)

	d := Data{
		X:                    x,
		Y:                    y,
		Value:                v,
		Curvature:            laplacian,
		Tension:              gradMag,
		Coupling:             coupling,
		GradientMagnitude:    gradMag,
		NeighborhoodVariance: variance,
	}

	if bm != nil {
		idx := y*bm.Width + x
		if idx >= 0 && idx < len(bm.Labels) && bm.Labels[idx] >= 0 {
			id := bm.Labels[idx]
			d.BasinID = &id
		}
	}

	return d
}
