package stepper

import "github.com/fieldsim/engine/internal/field"

// Residual is a pending perturbation effect that the Stepper re-applies
// across subsequent steps with a decay curve (spec.md §4.7, Design Notes:
// "Perturbation residuals ... modelled as a small queue of pending-decay
// fields the Stepper adds at the start of each step").
type Residual struct {
	Delta          *field.Field
	Decay          float64 // multiplicative factor applied to magnitude each step
	StepsRemaining int
	magnitude      float64
}

// NewResidual creates a residual with full initial magnitude (1.0).
func NewResidual(delta *field.Field, decay float64, steps int) *Residual {
	return &Residual{Delta: delta, Decay: decay, StepsRemaining: steps, magnitude: 1.0}
}

// ResidualQueue holds pending perturbation residuals, applied and decayed
// once per step. It never escapes the engine (Design Notes).
type ResidualQueue struct {
	pending []*Residual
}

// Add enqueues a new residual.
func (q *ResidualQueue) Add(r *Residual) {
	q.pending = append(q.pending, r)
}

// Len reports the number of pending residuals.
func (q *ResidualQueue) Len() int { return len(q.pending) }

// Apply adds every pending residual's current-magnitude delta into f,
// then decays and evicts expired residuals.
func (q *ResidualQueue) Apply(f *field.Field) {
	if len(q.pending) == 0 {
		return
	}
	n := f.N()
	live := q.pending[:0]
	for _, r := range q.pending {
		if r.Delta.N() == n {
			for i := 0; i < n*n; i++ {
				f.SetIndex(i, f.AtIndex(i)+float32(r.magnitude)*r.Delta.AtIndex(i))
			}
		}
		r.magnitude *= r.Decay
		r.StepsRemaining--
		if r.StepsRemaining > 0 {
			live = append(live, r)
		}
	}
	q.pending = live
}
