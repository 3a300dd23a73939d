// Package params defines the simulation's tunable Parameters, their
// valid ranges, and the partial-override / preset machinery used to
// update them without clearing history.
package params

import (
	"fmt"

	"github.com/fieldsim/engine/internal/diag"
)

// Mode selects a named pattern-family flavour for the operator bank.
type Mode string

const (
	ModeStandard      Mode = "standard"
	ModeQuasicrystal  Mode = "quasicrystal"
	ModeCriticality   Mode = "criticality"
	ModeFractal       Mode = "fractal"
	ModeSoliton       Mode = "soliton"
	ModeCosmicWeb     Mode = "cosmicweb"
)

// Parameters is the hot-path configuration read every step. Fields mirror
// spec.md §3 exactly, including default values and valid ranges.
type Parameters struct {
	GridSize           int
	Dt                 float64
	CurvatureGain      float64
	CouplingRadius     float64
	CouplingWeight     float64
	AttractorStrength  float64
	RedistributionRate float64
	WK, WT, WC, WA, WR float64
	Mode               Mode
}

// Default returns the spec.md §3 default Parameters.
func Default() Parameters {
	return Parameters{
		GridSize:           300,
		Dt:                 0.05,
		CurvatureGain:      2.0,
		CouplingRadius:     1.0,
		CouplingWeight:     0.7,
		AttractorStrength:  3.0,
		RedistributionRate: 0.2,
		WK:                 1,
		WT:                 1,
		WC:                 1,
		WA:                 1,
		WR:                 1,
		Mode:               ModeStandard,
	}
}

// Range describes an inclusive [Min, Max] bound for a numeric field.
type Range struct{ Min, Max float64 }

var (
	gridSizeRange           = Range{50, 500}
	dtRange                 = Range{0.01, 0.2}
	curvatureGainRange      = Range{0.1, 10}
	couplingRadiusRange     = Range{0.5, 5}
	couplingWeightRange     = Range{0, 1}
	attractorStrengthRange  = Range{0.1, 10}
	redistributionRateRange = Range{0, 1}
	weightRange             = Range{0, 5}
)

func clampF(v float64, r Range) (float64, bool) {
	if v < r.Min {
		return r.Min, true
	}
	if v > r.Max {
		return r.Max, true
	}
	return v, false
}

func clampI(v int, r Range) (int, bool) {
	f, changed := clampF(float64(v), r)
	return int(f), changed
}

var validModes = map[Mode]bool{
	ModeStandard: true, ModeQuasicrystal: true, ModeCriticality: true,
	ModeFractal: true, ModeSoliton: true, ModeCosmicWeb: true,
}

// Clamp silently clamps every out-of-range field into its valid range per
// spec.md §7 ("Range violation ... silently clamp, record a one-line
// diagnostic"), returning the clamped copy and whether anything changed.
func (p Parameters) Clamp() (Parameters, bool) {
	out := p
	changed := false

	if v, c := clampI(out.GridSize, gridSizeRange); c {
		out.GridSize, changed = v, true
		diag.Logf("params: gridSize clamped to %d", v)
	}
	if v, c := clampF(out.Dt, dtRange); c {
		out.Dt, changed = v, true
		diag.Logf("params: dt clamped to %f", v)
	}
	if v, c := clampF(out.CurvatureGain, curvatureGainRange); c {
		out.CurvatureGain, changed = v, true
		diag.Logf("params: curvatureGain clamped to %f", v)
	}
	if v, c := clampF(out.CouplingRadius, couplingRadiusRange); c {
		out.CouplingRadius, changed = v, true
		diag.Logf("params: couplingRadius clamped to %f", v)
	}
	if v, c := clampF(out.CouplingWeight, couplingWeightRange); c {
		out.CouplingWeight, changed = v, true
		diag.Logf("params: couplingWeight clamped to %f", v)
	}
	if v, c := clampF(out.AttractorStrength, attractorStrengthRange); c {
		out.AttractorStrength, changed = v, true
		diag.Logf("params: attractorStrength clamped to %f", v)
	}
	if v, c := clampF(out.RedistributionRate, redistributionRateRange); c {
		out.RedistributionRate, changed = v, true
		diag.Logf("params: redistributionRate clamped to %f", v)
	}
	for _, w := range []*float64{&out.WK, &out.WT, &out.WC, &out.WA, &out.WR} {
		if v, c := clampF(*w, weightRange); c {
			*w, changed = v, true
			diag.Logf("params: operator weight clamped to %f", v)
		}
	}
	if !validModes[out.Mode] {
		diag.Logf("params: unknown mode %q, falling back to standard", out.Mode)
		out.Mode = ModeStandard
		changed = true
	}
	return out, changed
}

// Validate reports whether p is already within range, without clamping.
func (p Parameters) Validate() error {
	clamped, changed := p.Clamp()
	if changed {
		return fmt.Errorf("parameters out of range, nearest valid value: %+v", clamped)
	}
	return nil
}

// Overrides is a partial update to Parameters: nil fields are left
// untouched, mirroring the teacher's TuningConfig pointer-field style
// so SetParams(partial) never clobbers unrelated sliders.
type Overrides struct {
	GridSize           *int
	Dt                 *float64
	CurvatureGain      *float64
	CouplingRadius     *float64
	CouplingWeight     *float64
	AttractorStrength  *float64
	RedistributionRate *float64
	WK, WT, WC, WA, WR *float64
	Mode               *Mode
}

// Apply returns p with every non-nil field in o applied, then clamped.
func (p Parameters) Apply(o Overrides) Parameters {
	out := p
	if o.GridSize != nil {
		out.GridSize = *o.GridSize
	}
	if o.Dt != nil {
		out.Dt = *o.Dt
	}
	if o.CurvatureGain != nil {
		out.CurvatureGain = *o.CurvatureGain
	}
	if o.CouplingRadius != nil {
		out.CouplingRadius = *o.CouplingRadius
	}
	if o.CouplingWeight != nil {
		out.CouplingWeight = *o.CouplingWeight
	}
	if o.AttractorStrength != nil {
		out.AttractorStrength = *o.AttractorStrength
	}
	if o.RedistributionRate != nil {
		out.RedistributionRate = *o.RedistributionRate
	}
	if o.WK != nil {
		out.WK = *o.WK
	}
	if o.WT != nil {
		out.WT = *o.WT
	}
	if o.WC != nil {
		out.WC = *o.WC
	}
	if o.WA != nil {
		out.WA = *o.WA
	}
	if o.WR != nil {
		out.WR = *o.WR
	}
	if o.Mode != nil {
		out.Mode = *o.Mode
	}
	clamped, _ := out.Clamp()
	return clamped
}

// Builder constructs a validated Parameters value with chainable With*
// setters, mirroring the teacher's BackgroundConfig builder.
type Builder struct {
	p Parameters
}

// NewBuilder starts from the spec.md defaults.
func NewBuilder() *Builder {
	return &Builder{p: Default()}
}

func (b *Builder) WithGridSize(n int) *Builder               { b.p.GridSize = n; return b }
func (b *Builder) WithDt(dt float64) *Builder                 { b.p.Dt = dt; return b }
func (b *Builder) WithCurvatureGain(g float64) *Builder       { b.p.CurvatureGain = g; return b }
func (b *Builder) WithCouplingRadius(r float64) *Builder      { b.p.CouplingRadius = r; return b }
func (b *Builder) WithCouplingWeight(w float64) *Builder      { b.p.CouplingWeight = w; return b }
func (b *Builder) WithAttractorStrength(s float64) *Builder   { b.p.AttractorStrength = s; return b }
func (b *Builder) WithRedistributionRate(r float64) *Builder  { b.p.RedistributionRate = r; return b }
func (b *Builder) WithWeights(wk, wt, wc, wa, wr float64) *Builder {
	b.p.WK, b.p.WT, b.p.WC, b.p.WA, b.p.WR = wk, wt, wc, wa, wr
	return b
}
func (b *Builder) WithMode(m Mode) *Builder { b.p.Mode = m; return b }

// Build returns the clamped Parameters value.
func (b *Builder) Build() Parameters {
	clamped, _ := b.p.Clamp()
	return clamped
}
