package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// Compile-time check: Validator implements domain.LifecycleValidator.
var _ domain.LifecycleValidator = (*Validator)(nil)

// events converts domain.Transitions into looplab/fsm EventDesc format.
// Transitions sharing an event and destination collapse into one EventDesc
// with multiple source states.
var events = buildEvents()

func buildEvents() []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range domain.Transitions {
		k := key{event: string(t.Event), dst: string(t.Dst)}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Validator implements domain.LifecycleValidator using looplab/fsm.
// It creates a short-lived FSM instance per Apply call, initialized with
// the entity's current lifecycle state, because looplab/fsm tracks the
// current state internally.
type Validator struct{}

// New creates a new FSM-backed lifecycle validator.
func New() *Validator {
	return &Validator{}
}

// Apply checks if the given event is valid from the current lifecycle state
// and returns the destination state. Returns a domain.TransitionError if
// the event cannot follow the current state.
func (v *Validator) Apply(ctx context.Context, current domain.Lifecycle, event domain.EventType) (domain.Lifecycle, error) {
	machine := loopfsm.NewFSM(string(current), events, nil)

	if err := machine.Event(ctx, string(event)); err != nil {
		// UPDATED keeps a live entity live; looplab reports that as NoTransitionError.
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &noTransition) && noTransition.Err == nil {
			return current, nil
		}

		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) {
			return "", &domain.TransitionError{
				Event:   event,
				Current: current,
			}
		}
		return "", err
	}

	return domain.Lifecycle(machine.Current()), nil
}
