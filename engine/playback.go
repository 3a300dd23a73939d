package engine

import (
	"github.com/fieldsim/engine/internal/basin"
	"github.com/fieldsim/engine/internal/derived"
	"github.com/fieldsim/engine/internal/field"
	"github.com/fieldsim/engine/internal/history"
	"github.com/fieldsim/engine/internal/params"
)

// Playing reports whether the engine is currently scrubbing history
// instead of stepping the live field.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.Playing()
}

// SeekToFrame enters playback at logical history index i (clamped).
func (e *Engine) SeekToFrame(i int) (history.FrameSnapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.SeekToFrame(i)
}

// StepBackward moves the playback cursor one frame earlier.
func (e *Engine) StepBackward() (history.FrameSnapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.StepBackward()
}

// ExitPlayback snaps the cursor to the live head and resumes live
// stepping from the current field state (spec.md §4.6).
func (e *Engine) ExitPlayback() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hist.ExitPlayback()
}

// PlaybackField reconstructs the Field for the snapshot the cursor
// currently points at, or the live field if not in playback.
func (e *Engine) PlaybackField() *field.Field {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, ok := e.hist.Current()
	if !ok {
		return e.field.Clone()
	}
	f := field.New(snap.Width)
	for i, v := range snap.Grid {
		f.SetIndex(i, v)
	}
	return f
}

// PlaybackBasinMap recomputes the basin map from the snapshot the cursor
// currently points at, per spec.md §4.6 ("getBasinMap return values
// recomputed from that grid").
func (e *Engine) PlaybackBasinMap() *basin.Map {
	f := e.PlaybackField()
	return basin.Label(f)
}

// PlaybackParams returns the Parameters recorded in the snapshot the
// cursor currently points at, so a host UI can resync its sliders while
// scrubbing (spec.md §4.6: "the snapshot's Parameters also become
// observable"). ok is false when not in playback.
func (e *Engine) PlaybackParams() (params.Parameters, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, ok := e.hist.Current()
	if !ok {
		return params.Parameters{}, false
	}
	return snap.Params, true
}

// PlaybackDerivedField recomputes the requested derived map from the
// snapshot the cursor currently points at, using the snapshot's own
// Parameters rather than the live ones, per spec.md §4.6 ("getDerivedField
// return values recomputed from that grid").
func (e *Engine) PlaybackDerivedField(t derived.Type) *derived.Map {
	f := e.PlaybackField()
	p, ok := e.PlaybackParams()
	if !ok {
		p = e.Params()
	}
	return derived.NewComputer().Compute(t, f, p)
}
