// Package perturb implements the six parametric perturbation kernels of
// spec.md §4.7. Each kernel writes directly into the field, saturating
// touched cells to (-1, 1), and may enqueue a decaying Residual for the
// Stepper to keep applying across subsequent steps.
package perturb

import (
	"math"

	"github.com/fieldsim/engine/internal/diag"
	"github.com/fieldsim/engine/internal/field"
	"github.com/fieldsim/engine/internal/rng"
	"github.com/fieldsim/engine/internal/stepper"
)

// Kind identifies one of the six perturbation kernels.
type Kind string

const (
	Impulse  Kind = "impulse"
	Shear    Kind = "shear"
	Wave     Kind = "wave"
	Vortex   Kind = "vortex"
	Fracture Kind = "fracture"
	Drift    Kind = "drift"
)

// Params is the union bag of parameters accepted by the six kernels; each
// kernel reads only the subset relevant to it (spec.md §4.7 table).
type Params struct {
	// impulse
	Intensity float64
	Radius    float64
	Decay     float64

	// shear
	Magnitude float64
	AngleDeg  float64
	Duration  float64

	// wave
	Amplitude  float64
	Frequency  float64
	Wavelength float64
	Damping    float64

	// vortex
	AngularVelocity float64
	Direction       float64 // +1 or -1

	// fracture
	Strength        float64
	Noise           float64
	PropagationRate float64

	// drift
	VectorX float64
	VectorY float64
}

// saturationBound keeps clamped values strictly inside the open
// interval (-1, 1), matching the Field invariant without the further
// compression a tanh pass would apply to already in-range values.
const saturationBound = 0.999999

// saturateCell clamps a single cell into (-1, 1), without disturbing
// cells the kernel didn't touch.
func saturateCell(f *field.Field, x, y int) {
	v := f.At(x, y)
	switch {
	case v >= saturationBound:
		f.Set(x, y, saturationBound)
	case v <= -saturationBound:
		f.Set(x, y, -saturationBound)
	}
}

// Apply runs the named kernel centred at (cx, cy) against f, returning a
// Residual if the kernel's duration/propagation parameters imply one.
// Unknown kinds are a documented no-op per spec.md §7.
func Apply(kind Kind, f *field.Field, cx, cy int, p Params, r *rng.Mulberry32) *stepper.Residual {
	switch kind {
	case Impulse:
		return applyImpulse(f, cx, cy, p)
	case Shear:
		return applyShear(f, cx, cy, p)
	case Wave:
		return applyWave(f, cx, cy, p)
	case Vortex:
		return applyVortex(f, cx, cy, p)
	case Fracture:
		return applyFracture(f, cx, cy, p, r)
	case Drift:
		return applyDrift(f, cx, cy, p)
	default:
		diag.Logf("perturb: unknown kind %q, no-op", kind)
		return nil
	}
}

// applyImpulse adds a Gaussian bump, sigma = radius/decay (spec.md §4.7).
func applyImpulse(f *field.Field, cx, cy int, p Params) *stepper.Residual {
	sigma := p.Radius / math.Max(p.Decay, 1e-6)
	extent := int(math.Ceil(3 * sigma))
	if extent < 1 {
		extent = 1
	}
	for dy := -extent; dy <= extent; dy++ {
		for dx := -extent; dx <= extent; dx++ {
			d2 := float64(dx*dx + dy*dy)
			bump := p.Intensity * math.Exp(-d2/(2*sigma*sigma))
			if bump < 1e-9 {
				continue
			}
			x, y := cx+dx, cy+dy
			f.Set(x, y, f.At(x, y)+float32(bump))
			saturateCell(f, x, y)
		}
	}
	return nil
}

// applyShear adds a directional linear gradient over a disk, and if
// Duration > 0 enqueues a decaying residual so the shear keeps nudging the
// field for the remaining duration.
func applyShear(f *field.Field, cx, cy int, p Params) *stepper.Residual {
	radius := math.Max(p.Magnitude*4, 2)
	angle := p.AngleDeg * math.Pi / 180
	dirX, dirY := math.Cos(angle), math.Sin(angle)

	delta := field.New(f.N())
	extent := int(math.Ceil(radius))
	for dy := -extent; dy <= extent; dy++ {
		for dx := -extent; dx <= extent; dx++ {
			dist := math.Hypot(float64(dx), float64(dy))
			if dist > radius {
				continue
			}
			proj := float64(dx)*dirX + float64(dy)*dirY
			v := p.Magnitude * (proj / radius)
			x, y := wrap(cx+dx, f.N()), wrap(cy+dy, f.N())
			delta.Set(x, y, delta.At(x, y)+float32(v))
		}
	}
	for i := 0; i < delta.Len(); i++ {
		if delta.AtIndex(i) == 0 {
			continue
		}
		x, y := delta.XY(i)
		f.Set(x, y, f.At(x, y)+delta.AtIndex(i))
		saturateCell(f, x, y)
	}

	steps := int(math.Round(p.Duration))
	if steps <= 0 {
		return nil
	}
	decay := math.Pow(0.01, 1/float64(steps))
	return stepper.NewResidual(delta, decay, steps)
}

// applyWave adds a radial sinusoid with exponential damping.
func applyWave(f *field.Field, cx, cy int, p Params) *stepper.Residual {
	extent := int(math.Ceil(6 / math.Max(p.Damping, 1e-3)))
	if extent < 1 {
		extent = 1
	}
	maxExtent := f.N() / 2
	if extent > maxExtent {
		extent = maxExtent
	}
	for dy := -extent; dy <= extent; dy++ {
		for dx := -extent; dx <= extent; dx++ {
			dist := math.Hypot(float64(dx), float64(dy))
			phase := 2 * math.Pi * p.Frequency * dist / math.Max(p.Wavelength, 1e-6)
			v := p.Amplitude * math.Sin(phase) * math.Exp(-p.Damping*dist)
			if math.Abs(v) < 1e-9 {
				continue
			}
			x, y := cx+dx, cy+dy
			f.Set(x, y, f.At(x, y)+float32(v))
			saturateCell(f, x, y)
		}
	}
	return nil
}

// applyVortex rotates values along concentric rings around (cx, cy).
func applyVortex(f *field.Field, cx, cy int, p Params) *stepper.Residual {
	radius := int(math.Ceil(p.Radius))
	if radius < 1 {
		return nil
	}
	n := f.N()
	original := f.Clone()
	direction := p.Direction
	if direction == 0 {
		direction = 1
	}
	angleStep := p.AngularVelocity * direction

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			dist := math.Hypot(float64(dx), float64(dy))
			if dist > float64(radius) || dist < 0.5 {
				continue
			}
			theta := math.Atan2(float64(dy), float64(dx))
			srcTheta := theta - angleStep
			sx := cx + int(math.Round(dist*math.Cos(srcTheta)))
			sy := cy + int(math.Round(dist*math.Sin(srcTheta)))
			x, y := wrap(cx+dx, n), wrap(cy+dy, n)
			f.Set(x, y, original.At(sx, sy))
		}
	}
	return nil
}

// applyFracture adds high-frequency noise along a branching crack radiating
// from (cx, cy). A positive PropagationRate enqueues a 10-step residual of
// the crack whose per-step decay factor is 1-PropagationRate (capped at
// 0.99), so higher rates fade faster.
func applyFracture(f *field.Field, cx, cy int, p Params, r *rng.Mulberry32) *stepper.Residual {
	delta := field.New(f.N())
	n := f.N()

	const branches = 3
	const segLen = 40
	for b := 0; b < branches; b++ {
		angle := r.Range(0, 2*math.Pi)
		x, y := float64(cx), float64(cy)
		for s := 0; s < segLen; s++ {
			angle += r.Range(-0.3, 0.3)
			x += math.Cos(angle)
			y += math.Sin(angle)
			ix, iy := wrap(int(math.Round(x)), n), wrap(int(math.Round(y)), n)
			v := p.Strength * (1 + p.Noise*r.Gaussian())
			delta.Set(ix, iy, delta.At(ix, iy)+float32(v))
		}
	}

	for i := 0; i < delta.Len(); i++ {
		if delta.AtIndex(i) == 0 {
			continue
		}
		x, y := delta.XY(i)
		f.Set(x, y, f.At(x, y)+delta.AtIndex(i))
		saturateCell(f, x, y)
	}

	if p.PropagationRate <= 0 {
		return nil
	}
	decay := 1 - math.Min(p.PropagationRate, 0.99)
	return stepper.NewResidual(delta, decay, 10)
}

// applyDrift translates field values by a small vector, immediately for
// one step and via a decaying residual for the remainder of Duration.
func applyDrift(f *field.Field, cx, cy int, p Params) *stepper.Residual {
	_ = cx
	_ = cy
	n := f.N()
	dx := int(math.Round(p.VectorX * p.Magnitude))
	dy := int(math.Round(p.VectorY * p.Magnitude))
	if dx == 0 && dy == 0 {
		return nil
	}

	shifted := f.Translate(dx, dy)
	delta := field.New(n)
	for i := 0; i < n*n; i++ {
		delta.SetIndex(i, shifted.AtIndex(i)-f.AtIndex(i))
	}
	for i := 0; i < n*n; i++ {
		f.SetIndex(i, f.AtIndex(i)+delta.AtIndex(i))
	}
	for i := 0; i < n*n; i++ {
		x, y := f.XY(i)
		saturateCell(f, x, y)
	}

	steps := int(math.Round(p.Duration))
	if steps <= 0 {
		return nil
	}
	decay := math.Pow(0.01, 1/float64(steps))
	return stepper.NewResidual(delta, decay, steps)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
