// Package derived computes the eleven semantic scalar maps projected from
// the field (spec.md §4.2), as a closed tagged variant rather than a
// string switch (Design Notes: "Dynamic derived-field types. Use a tagged
// variant, not string switches").
package derived

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/fieldsim/engine/internal/basin"
	"github.com/fieldsim/engine/internal/field"
	"github.com/fieldsim/engine/internal/params"
	"github.com/fieldsim/engine/internal/stepper"
)

// Type is one of the eleven closed DerivedField variants.
type Type int

const (
	Curvature Type = iota
	Tension
	Coupling
	Variance
	GradientFlow
	Criticality
	Hysteresis
	ConstraintSkeleton
	StabilityField
	GradientFlowLines
	Basins
	typeCount
)

func (t Type) String() string {
	switch t {
	case Curvature:
		return "curvature"
	case Tension:
		return "tension"
	case Coupling:
		return "coupling"
	case Variance:
		return "variance"
	case GradientFlow:
		return "gradientFlow"
	case Criticality:
		return "criticality"
	case Hysteresis:
		return "hysteresis"
	case ConstraintSkeleton:
		return "constraintSkeleton"
	case StabilityField:
		return "stabilityField"
	case GradientFlowLines:
		return "gradientFlowLines"
	case Basins:
		return "basins"
	default:
		return "unknown"
	}
}

// Map is a computed DerivedField value (spec.md §3).
type Map struct {
	Type   Type
	Width  int
	Height int
	Grid   []float32
}

// Criticality threshold constants (implementation-defined, spec.md §4.2).
const (
	criticalityTheta = 0.5
	criticalitySigma = 0.2
	stabilityKappa   = 1.0
	stabilityEta     = 1.0
	hysteresisWeight = 0.9
)

// Computer caches derived maps per field generation and carries the
// hysteresis EMA state across steps, per spec.md §4.2 ("results are
// cached and invalidated when the underlying field changes or parameters
// change").
type Computer struct {
	mu           sync.Mutex
	generation   uint64
	cache        map[Type]*Map
	hysteresis   []float32
	hysteresisOK bool
}

// NewComputer returns an empty Computer.
func NewComputer() *Computer {
	return &Computer{cache: make(map[Type]*Map)}
}

// Invalidate clears the cache, called whenever the field or parameters
// change.
func (c *Computer) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.cache = make(map[Type]*Map)
}

// Compute returns the requested derived map, computing and caching it if
// this is the first request since the last Invalidate.
func (c *Computer) Compute(t Type, f *field.Field, p params.Parameters) *Map {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.cache[t]; ok {
		return m
	}

	m := c.compute(t, f, p)
	c.cache[t] = m
	return m
}

func (c *Computer) compute(t Type, f *field.Field, p params.Parameters) *Map {
	n := f.N()
	grid := make([]float32, n*n)

	switch t {
	case Curvature:
		forEach(f, func(x, y int) float32 { return float32(laplacian(f, x, y)) }, grid)
	case Tension, GradientFlow:
		forEach(f, func(x, y int) float32 { return float32(gradientMagnitude(f, x, y)) }, grid)
	case Coupling:
		grid = couplingDeviation(f, p)
	case Variance:
		forEach(f, func(x, y int) float32 { return float32(neighborhoodVariance(f, x, y)) }, grid)
	case Criticality:
		forEach(f, func(x, y int) float32 {
			v := float64(f.At(x, y))
			d := (v - criticalityTheta) / criticalitySigma
			return float32(math.Exp(-d * d))
		}, grid)
	case Hysteresis:
		grid = c.computeHysteresis(f)
	case ConstraintSkeleton:
		grid = c.computeSkeleton(f)
	case StabilityField:
		forEach(f, func(x, y int) float32 {
			l := laplacian(f, x, y)
			g := gradientMagnitude(f, x, y)
			return float32(1 / (1 + stabilityKappa*g*g + stabilityEta*math.Abs(l)))
		}, grid)
	case GradientFlowLines:
		grid = computeDivergence(f)
	case Basins:
		bm := basin.Label(f)
		for i, l := range bm.Labels {
			grid[i] = float32(l)
		}
	default:
		// closed variant set; unknown Type values produce a zero map.
	}

	return &Map{Type: t, Width: n, Height: n, Grid: grid}
}

func (c *Computer) computeHysteresis(f *field.Field) []float32 {
	n := f.Len()
	if !c.hysteresisOK || len(c.hysteresis) != n {
		c.hysteresis = make([]float32, n)
		copy(c.hysteresis, f.Values())
		c.hysteresisOK = true
		out := make([]float32, n)
		copy(out, c.hysteresis)
		return out
	}
	for i := 0; i < n; i++ {
		c.hysteresis[i] = float32(hysteresisWeight)*c.hysteresis[i] + float32(1-hysteresisWeight)*f.AtIndex(i)
	}
	out := make([]float32, n)
	copy(out, c.hysteresis)
	return out
}

func (c *Computer) computeSkeleton(f *field.Field) []float32 {
	n := f.N()
	lap := make([]float64, n*n)
	grad := make([]float64, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			lap[y*n+x] = math.Abs(laplacian(f, x, y))
			grad[y*n+x] = gradientMagnitude(f, x, y)
		}
	}
	lapMedian := median(lap)
	gradMedian := median(grad)

	out := make([]float32, n*n)
	for i := range out {
		if lap[i] > lapMedian && grad[i] > gradMedian {
			out[i] = 1
		}
	}
	return out
}

// couplingDeviation is B(x,y) - v, the coupling field's raw deviation
// (spec.md §4.2), computed as a dense matrix subtraction rather than a
// per-cell loop: the blurred field and the current field are both N×N
// row-major matrices, and gonum/mat.Sub does the elementwise work the
// coupling operator needs in stepper.go by hand.
func couplingDeviation(f *field.Field, p params.Parameters) []float32 {
	n := f.N()
	blurred := stepper.GaussianBlur(f, p.CouplingRadius)

	current := make([]float64, n*n)
	for i, v := range f.Values() {
		current[i] = float64(v)
	}

	b := mat.NewDense(n, n, blurred)
	cur := mat.NewDense(n, n, current)
	var diff mat.Dense
	diff.Sub(b, cur)

	out := make([]float32, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out[y*n+x] = float32(diff.At(y, x))
		}
	}
	return out
}

func forEach(f *field.Field, fn func(x, y int) float32, out []float32) {
	n := f.N()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out[y*n+x] = fn(x, y)
		}
	}
}

func laplacian(f *field.Field, x, y int) float64 {
	v := float64(f.At(x, y))
	return float64(f.At(x-1, y)+f.At(x+1, y)+f.At(x, y-1)+f.At(x, y+1)) - 4*v
}

func gradient(f *field.Field, x, y int) (gx, gy float64) {
	gx = (float64(f.At(x+1, y)) - float64(f.At(x-1, y))) / 2
	gy = (float64(f.At(x, y+1)) - float64(f.At(x, y-1))) / 2
	return
}

func gradientMagnitude(f *field.Field, x, y int) float64 {
	gx, gy := gradient(f, x, y)
	return math.Hypot(gx, gy)
}

func neighborhoodVariance(f *field.Field, x, y int) float64 {
	vals := make([]float64, 0, 9)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			vals = append(vals, float64(f.At(x+dx, y+dy)))
		}
	}
	return stat.Variance(vals, nil)
}

func computeDivergence(f *field.Field) []float32 {
	n := f.N()
	gx := make([]float64, n*n)
	gy := make([]float64, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			vx, vy := gradient(f, x, y)
			gx[y*n+x] = vx
			gy[y*n+x] = vy
		}
	}
	out := make([]float32, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dgxdx := (gx[y*n+wrap(x+1, n)] - gx[y*n+wrap(x-1, n)]) / 2
			dgydy := (gy[wrap(y+1, n)*n+x] - gy[wrap(y-1, n)*n+x]) / 2
			out[y*n+x] = float32(dgxdx + dgydy)
		}
	}
	return out
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
