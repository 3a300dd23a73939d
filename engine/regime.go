package engine

import (
	"github.com/fieldsim/engine/internal/signature"
)

// Regime is the qualitative label derived from Signature and
// TrendMetrics (GLOSSARY: "a thin classifier over the core's outputs,
// not part of the core").
type Regime string

const (
	RegimeStable        Regime = "Stable"
	RegimeDrifting      Regime = "Drifting"
	RegimeReconfiguring Regime = "Reconfiguring"
	RegimeCritical      Regime = "Critical"
)

// classifyRegime derives a Regime from the current Signature and
// TrendMetrics. It is implementation-defined thresholding: the source's
// dual classifier pages diverged (spec.md Design Notes), and §4.4/§6 give
// no literal regime cutoffs, so this mirrors the stable/borderline/
// unstable split already pinned for TrendMetrics.
func classifyRegime(sig signature.Signature, tm signature.TrendMetrics) Regime {
	switch {
	case tm.UnstableFrames > tm.StableFrames && tm.UnstableFrames > tm.BorderlineFrames:
		return RegimeCritical
	case tm.BasinMergeRate > 0.1:
		return RegimeReconfiguring
	case (tm.SlopeEnergy > 0 && tm.SlopeEnergy > 0.01) || (tm.SlopeVariance > 0 && tm.SlopeVariance > 0.01):
		return RegimeDrifting
	default:
		return RegimeStable
	}
}
