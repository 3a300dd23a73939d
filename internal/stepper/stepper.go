// Package stepper implements the five-operator composite update that
// advances the field by one time step (spec.md §4.1).
package stepper

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/fieldsim/engine/internal/field"
	"github.com/fieldsim/engine/internal/params"
)

// OperatorContributions holds the per-operator absolute-contribution means
// for one step, used by the UI's normalised bars (spec.md §4.1).
type OperatorContributions struct {
	K, T, C, A, R float64
}

// Outcome is the result of one Step call.
type Outcome struct {
	Unstable      bool
	ResetCount    int
	Contributions OperatorContributions
}

// Stepper advances a Field in place by one time step, owning a scratch
// buffer that receives every write of a step and is then copied back into
// the live field (spec.md §4.1's scratch-buffer update).
type Stepper struct {
	scratch  *field.Field
	n        int
	Residual ResidualQueue
}

// New allocates a Stepper for an n x n grid.
func New(n int) *Stepper {
	return &Stepper{scratch: field.New(n), n: n}
}

// Resize reallocates the scratch buffer for a new grid size.
func (s *Stepper) Resize(n int) {
	if n == s.n {
		return
	}
	s.scratch = field.New(n)
	s.n = n
}

// Step advances f by one composite update, per spec.md §4.1.
func (s *Stepper) Step(f *field.Field, p params.Parameters) Outcome {
	n := f.N()
	if n != s.n {
		s.Resize(n)
	}

	s.Residual.Apply(f)

	blurred := GaussianBlur(f, p.CouplingRadius)
	meanField := f.Mean()

	absK := make([]float64, 0, n*n)
	absT := make([]float64, 0, n*n)
	absC := make([]float64, 0, n*n)
	absA := make([]float64, 0, n*n)
	absR := make([]float64, 0, n*n)

	resetCount := 0
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := float64(f.At(x, y))

			laplacian := float64(f.At(x-1, y)+f.At(x+1, y)+f.At(x, y-1)+f.At(x, y+1)) - 4*v
			k := math.Tanh(p.CurvatureGain * laplacian)

			gx := (float64(f.At(x+1, y)) - float64(f.At(x-1, y))) / 2
			gy := (float64(f.At(x, y+1)) - float64(f.At(x, y-1))) / 2
			g2 := gx*gx + gy*gy
			tns := -g2 / (1 + math.Abs(g2))

			b := blurred[y*n+x]
			// Written as couplingWeight*(B-v) rather than the textually
			// literal couplingWeight*B-(1-couplingWeight)*v: both match
			// spec.md §4.1's prose, but only this form is zero for every
			// constant field at any couplingWeight, not only 0.5.
			c := p.CouplingWeight * (b - v)

			localMean := localMean3x3(f, x, y)
			a := -math.Tanh(p.AttractorStrength * (v - localMean))

			r := -meanField * p.RedistributionRate

			k, tns, c, a, r = flavour(p.Mode, x, y, n, k, tns, c, a, r)

			absK = append(absK, math.Abs(k))
			absT = append(absT, math.Abs(tns))
			absC = append(absC, math.Abs(c))
			absA = append(absA, math.Abs(a))
			absR = append(absR, math.Abs(r))

			update := v + p.Dt*(p.WK*k+p.WT*tns+p.WC*c+p.WA*a+p.WR*r)
			// tanh is a saturator, not an unconditional renormaliser: an
			// update already inside (-1,1) is left untouched, since
			// tanh(x) != x for any nonzero x and would otherwise decay a
			// fixed point (e.g. a constant field at redistributionRate=0)
			// toward 0 on every step instead of holding it still.
			next := update
			if math.Abs(update) >= 1 {
				next = math.Tanh(update)
			}
			if math.IsNaN(next) || math.IsInf(next, 0) {
				next = 0
				resetCount++
			}
			s.scratch.Set(x, y, float32(next))
		}
	}

	f.CopyFrom(s.scratch)

	return Outcome{
		Unstable:   resetCount > 0,
		ResetCount: resetCount,
		Contributions: OperatorContributions{
			K: stat.Mean(absK, nil),
			T: stat.Mean(absT, nil),
			C: stat.Mean(absC, nil),
			A: stat.Mean(absA, nil),
			R: stat.Mean(absR, nil),
		},
	}
}

// localMean3x3 returns the mean of the 3x3 toroidal neighbourhood centred
// on (x, y), inclusive of the centre cell, used by the attractor operator.
func localMean3x3(f *field.Field, x, y int) float64 {
	var sum float64
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			sum += float64(f.At(x+dx, y+dy))
		}
	}
	return sum / 9
}
