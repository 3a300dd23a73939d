// Package engine is the single opaque handle spec.md §4.9 and §6
// describe: it owns the field, parameters, stepper, perturbation
// residual queue, basin/derived caches, signature tracker, event log,
// history ring buffer, and PRNG, and exposes the read/write surface a
// host (CLI, UI, batch runner) drives one tick at a time.
package engine

import (
	"sync"

	"github.com/fieldsim/engine/internal/basin"
	"github.com/fieldsim/engine/internal/derived"
	"github.com/fieldsim/engine/internal/diag"
	"github.com/fieldsim/engine/internal/events"
	"github.com/fieldsim/engine/internal/field"
	"github.com/fieldsim/engine/internal/history"
	"github.com/fieldsim/engine/internal/params"
	"github.com/fieldsim/engine/internal/perturb"
	"github.com/fieldsim/engine/internal/probe"
	"github.com/fieldsim/engine/internal/rng"
	"github.com/fieldsim/engine/internal/signature"
	"github.com/fieldsim/engine/internal/stepper"
)

// StepResult is the value delivered to subscribers and returned by
// StepOnce: one step's observable summary.
type StepResult struct {
	Step      int64
	Unstable  bool
	Hash      string
	Signature signature.Signature
	Events    []events.StructuralEvent
}

// Engine is the field-simulation driver (spec.md §4.9).
type Engine struct {
	mu sync.Mutex

	seed   uint32
	rng    *rng.Mulberry32
	params params.Parameters

	field   *field.Field
	stepper *stepper.Stepper

	basinMap *basin.Map
	derived  *derived.Computer

	tracker  *signature.Tracker
	detector *events.Detector
	eventLog *events.Log

	hist *history.History

	step    int64
	running bool

	subscribers []chan StepResult
}

// New creates an Engine seeded with s and configured with p (clamped).
func New(seed uint32, p params.Parameters) *Engine {
	p, _ = p.Clamp()
	e := &Engine{
		seed:     seed,
		rng:      rng.New(seed),
		params:   p,
		field:    field.New(p.GridSize),
		stepper:  stepper.New(p.GridSize),
		derived:  derived.NewComputer(),
		tracker:  signature.NewTracker(signature.DefaultWindow),
		detector: events.NewDetector(),
		eventLog: events.NewLog(),
		hist:     history.New(),
	}
	e.seedField()
	e.recomputeCaches()
	return e
}

// seedField fills the field with small PRNG noise, the engine's initial
// condition (spec.md §4.8: the PRNG is used "for initialisation").
func (e *Engine) seedField() {
	for i := 0; i < e.field.Len(); i++ {
		e.field.SetIndex(i, float32(e.rng.Range(-0.05, 0.05)))
	}
}

// recomputeCaches refreshes the basin map and invalidates derived-field
// caching; called after every mutation of the field.
func (e *Engine) recomputeCaches() {
	e.basinMap = basin.Label(e.field)
	e.derived.Invalidate()
}

// Start marks the engine as running. The Driver is cooperative: Start
// only flips a flag a host-driven loop checks; it does not spawn a
// goroutine (spec.md §5: "single-threaded cooperative ... driven by a
// host-provided tick").
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
}

// Stop clears the running flag; an in-flight StepOnce still completes
// (spec.md §5 cancellation policy).
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

// Running reports whether the engine is in the running state.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// StepOnce advances the simulation by one step and returns its result.
// If the engine is currently in playback mode, it moves the playback
// cursor one frame forward instead of advancing the live field; once the
// cursor steps past the newest snapshot, playback exits and the live field
// is stepped in the same call (spec.md §4.6).
func (e *Engine) StepOnce() StepResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hist.Playing() {
		snap, ok := e.hist.StepForward()
		if ok && e.hist.Playing() {
			return e.playbackResult(snap)
		}
		// forward step exited playback; fall through to live stepping
	}

	outcome := e.stepper.Step(e.field, e.params)
	e.step++
	e.recomputeCaches()

	sig := signature.Compute(e.field, e.basinMap)
	evs := e.detector.Detect(e.step, sig)
	for _, ev := range evs {
		e.eventLog.Append(ev)
	}

	e.tracker.Push(signature.FrameSample{
		Energy:          signature.Energy(e.field),
		Variance:        signature.Variance(e.field),
		Curvature:       sig.GlobalCurvature,
		Gradient:        signature.PeakGradient(e.field),
		BasinCount:      sig.BasinCount,
		StabilityMetric: sig.StabilityMetric,
	})

	var marker *events.Kind
	if len(evs) > 0 {
		k := evs[0].Kind
		marker = &k
	}
	e.hist.Record(history.FrameSnapshot{
		Step:        e.step,
		Grid:        append([]float32(nil), e.field.Values()...),
		Width:       e.field.N(),
		Params:      e.params,
		Signature:   sig,
		EventMarker: marker,
	})

	if outcome.Unstable {
		diag.Logf("engine: step %d reset %d non-finite cells", e.step, outcome.ResetCount)
	}

	res := StepResult{Step: e.step, Unstable: outcome.Unstable, Hash: FrameHash(e.step, e.field), Signature: sig, Events: evs}
	e.publish(res)
	return res
}

func (e *Engine) playbackResult(snap history.FrameSnapshot) StepResult {
	f := field.New(snap.Width)
	for i, v := range snap.Grid {
		f.SetIndex(i, v)
	}
	return StepResult{Step: snap.Step, Hash: FrameHash(snap.Step, f), Signature: snap.Signature}
}

// Reset reinitialises the engine with a new seed and parameters, clearing
// history (spec.md §4.6: "only an explicit reset" clears history).
func (e *Engine) Reset(seed uint32, p params.Parameters) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, _ = p.Clamp()
	e.seed = seed
	e.rng = rng.New(seed)
	e.params = p
	e.field = field.New(p.GridSize)
	e.stepper = stepper.New(p.GridSize)
	e.derived = derived.NewComputer()
	e.tracker = signature.NewTracker(signature.DefaultWindow)
	e.detector = events.NewDetector()
	e.eventLog = events.NewLog()
	e.hist.Reset()
	e.step = 0
	e.seedField()
	e.recomputeCaches()
}

// SetParams applies a partial override to the live parameters. Parameter
// changes never clear history (spec.md §4.6).
func (e *Engine) SetParams(o params.Overrides) {
	e.mu.Lock()
	defer e.mu.Unlock()

	newParams := e.params.Apply(o)
	if o.GridSize != nil && newParams.GridSize != *o.GridSize {
		// Apply clamped an out-of-range size; the resize is rejected and
		// the prior grid kept (spec.md §7).
		diag.Logf("engine: rejected grid resize to %d, keeping %d", *o.GridSize, e.params.GridSize)
		newParams.GridSize = e.params.GridSize
	}
	if newParams.GridSize != e.params.GridSize {
		// grid resize reallocates the field; the overlapping top-left
		// region of the prior cell values is carried over.
		resized := field.New(newParams.GridSize)
		copyOverlap(resized, e.field)
		e.field = resized
		e.stepper.Resize(newParams.GridSize)
		e.recomputeCaches()
	}
	e.params = newParams
}

// copyOverlap copies the overlapping top-left region of src into dst
// when a grid resize changes N.
func copyOverlap(dst, src *field.Field) {
	n := dst.N()
	if src.N() < n {
		n = src.N()
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
}

// Perturb applies a perturbation kernel at (x, y), enqueueing any
// resulting residual with the stepper.
func (e *Engine) Perturb(kind perturb.Kind, x, y int, p perturb.Params) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := perturb.Apply(kind, e.field, x, y, p, e.rng)
	if r != nil {
		e.stepper.Residual.Add(r)
	}
	e.recomputeCaches()
}

// Field returns a defensive copy of the live field.
func (e *Engine) Field() *field.Field {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.field.Clone()
}

// Step returns the current step counter.
func (e *Engine) Step() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step
}

// Params returns the live parameters.
func (e *Engine) Params() params.Parameters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// Signature computes the current field's Signature.
func (e *Engine) Signature() signature.Signature {
	e.mu.Lock()
	defer e.mu.Unlock()
	return signature.Compute(e.field, e.basinMap)
}

// DerivedField returns the requested derived map for the live field.
func (e *Engine) DerivedField(t derived.Type) *derived.Map {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.derived.Compute(t, e.field, e.params)
}

// BasinMap returns the live basin labelling.
func (e *Engine) BasinMap() *basin.Map {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.basinMap
}

// Probe reads diagnostic data at a single cell.
func (e *Engine) Probe(x, y int) probe.Data {
	e.mu.Lock()
	defer e.mu.Unlock()
	return probe.Compute(e.field, e.basinMap, e.params, x, y)
}

// Events returns every structural event currently retained in the log.
func (e *Engine) Events() []events.StructuralEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eventLog.All()
}

// TrendMetrics returns the current rolling-window trend aggregate.
func (e *Engine) TrendMetrics() signature.TrendMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Latest()
}
