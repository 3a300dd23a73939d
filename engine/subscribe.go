package engine

// subscriberCapacity is the bounded single-consumer channel size (spec.md
// Design Notes: "a bounded single-consumer channel ... invoked at the end
// of each step").
const subscriberCapacity = 1

// Subscribe registers an observer that receives a StepResult at the end
// of every step. The channel has capacity 1; if the consumer falls
// behind, the oldest pending value is dropped in favour of the newest
// (spec.md Design Notes: consumers are cheap copy-out readers, so no
// back-pressure is required). The returned func unregisters the observer.
func (e *Engine) Subscribe() (<-chan StepResult, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan StepResult, subscriberCapacity)
	e.subscribers = append(e.subscribers, ch)

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, c := range e.subscribers {
			if c == ch {
				e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// publish delivers res to every subscriber, non-blocking with
// drop-oldest semantics. Callers must hold e.mu.
func (e *Engine) publish(res StepResult) {
	for _, ch := range e.subscribers {
		select {
		case ch <- res:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- res:
			default:
			}
		}
	}
}
