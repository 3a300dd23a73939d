// Package events detects and logs structural events in the field's
// evolution (spec.md §4.5): basin merges/splits, curvature spikes,
// variance instability, and phase transitions.
package events

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fieldsim/engine/internal/signature"
)

// Kind is one of the five detectable structural event kinds.
type Kind int

const (
	BasinMerge Kind = iota
	BasinSplit
	CurvatureSpike
	VarianceInstability
	PhaseTransition
)

func (k Kind) String() string {
	switch k {
	case BasinMerge:
		return "basin_merge"
	case BasinSplit:
		return "basin_split"
	case CurvatureSpike:
		return "curvature_spike"
	case VarianceInstability:
		return "variance_instability"
	case PhaseTransition:
		return "phase_transition"
	default:
		return "unknown"
	}
}

// Location is an optional grid coordinate an event is anchored to.
type Location struct {
	X, Y int
}

// StructuralEvent is one logged occurrence (spec.md §3).
type StructuralEvent struct {
	ID          string
	Step        int64
	Kind        Kind
	Description string
	Location    *Location
}

// LogCapacity is the bounded append-only event log's maximum size
// (spec.md §4.5: oldest entries evicted first once full).
const LogCapacity = 10000

// Detection thresholds per spec.md §4.5.
const (
	curvatureSpikeFactor     = 1.5
	varianceRelativeJump     = 0.4
	varianceWindow           = 12
	phaseTransitionVariance  = 0.25
	phaseTransitionMinDelta  = 0.01
	curvatureRollingWindow   = 60
)

// Log is the bounded, append-only structural event history.
type Log struct {
	entries []StructuralEvent
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{entries: make([]StructuralEvent, 0, LogCapacity)}
}

// Append adds e to the log, evicting the oldest entry if full.
func (l *Log) Append(e StructuralEvent) {
	if len(l.entries) >= LogCapacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, e)
}

// All returns every entry currently in the log, oldest first.
func (l *Log) All() []StructuralEvent {
	out := make([]StructuralEvent, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries currently held.
func (l *Log) Len() int { return len(l.entries) }

// Detector compares successive Signature snapshots and emits
// StructuralEvents for the transitions spec.md §4.5 defines.
type Detector struct {
	have          bool
	prev          signature.Signature
	curvatureHist []float64 // rolling window, most recent last
	varianceHist  []float64 // last varianceWindow samples, most recent last
}

// NewDetector returns an empty Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect compares sig against the previously seen signature and returns
// zero or more StructuralEvents for step. The detector then remembers sig
// for the next call.
func (d *Detector) Detect(step int64, sig signature.Signature) []StructuralEvent {
	rollingMaxCurvature := d.pushCurvature(sig.GlobalCurvature)
	oldestVariance, haveOldest := d.pushVariance(sig.TensionVariance)

	if !d.have {
		d.have = true
		d.prev = sig
		return nil
	}

	var out []StructuralEvent
	prev := d.prev
	d.prev = sig

	delta := sig.BasinCount - prev.BasinCount
	switch {
	case delta <= -1:
		out = append(out, newEvent(step, BasinMerge, fmt.Sprintf("basin count dropped from %d to %d", prev.BasinCount, sig.BasinCount)))
	case delta >= 1:
		out = append(out, newEvent(step, BasinSplit, fmt.Sprintf("basin count rose from %d to %d", prev.BasinCount, sig.BasinCount)))
	}

	if rollingMaxCurvature > 0 && sig.GlobalCurvature > curvatureSpikeFactor*rollingMaxCurvature {
		out = append(out, newEvent(step, CurvatureSpike, fmt.Sprintf("global curvature %.4f exceeded 1.5x its rolling max %.4f", sig.GlobalCurvature, rollingMaxCurvature)))
	}

	if haveOldest && oldestVariance > 0 {
		rel := abs(sig.TensionVariance-oldestVariance) / oldestVariance
		if rel > varianceRelativeJump {
			out = append(out, newEvent(step, VarianceInstability, fmt.Sprintf("tension variance changed %.1f%% within %d steps", rel*100, varianceWindow)))
		}
	}

	if sig.TensionVariance > phaseTransitionVariance && abs(sig.TensionVariance-prev.TensionVariance) > phaseTransitionMinDelta {
		out = append(out, newEvent(step, PhaseTransition, fmt.Sprintf("tension variance %.4f with active drift", sig.TensionVariance)))
	}

	return out
}

// pushCurvature records c into the rolling curvature window (capacity
// curvatureRollingWindow) and returns the window's maximum BEFORE c was
// added, so the current sample is judged against prior history only.
func (d *Detector) pushCurvature(c float64) float64 {
	var max float64
	for _, v := range d.curvatureHist {
		if v > max {
			max = v
		}
	}
	d.curvatureHist = append(d.curvatureHist, c)
	if len(d.curvatureHist) > curvatureRollingWindow {
		d.curvatureHist = d.curvatureHist[1:]
	}
	return max
}

// pushVariance records v into a fixed-length window of the last
// varianceWindow samples and returns the oldest sample that was evicted
// or (if the window isn't full yet) the oldest sample currently held.
func (d *Detector) pushVariance(v float64) (oldest float64, ok bool) {
	d.varianceHist = append(d.varianceHist, v)
	if len(d.varianceHist) > varianceWindow {
		oldest = d.varianceHist[0]
		d.varianceHist = d.varianceHist[1:]
		return oldest, true
	}
	if len(d.varianceHist) > 0 {
		return d.varianceHist[0], true
	}
	return 0, false
}

func newEvent(step int64, kind Kind, description string) StructuralEvent {
	return StructuralEvent{
		ID:          uuid.NewString(),
		Step:        step,
		Kind:        kind,
		Description: description,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
