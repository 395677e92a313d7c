package domain

// Lifecycle is the state of an entity as observed from its event stream.
type Lifecycle string

const (
	LifecycleAbsent  Lifecycle = "absent"
	LifecycleLive    Lifecycle = "live"
	LifecycleDeleted Lifecycle = "deleted"
)

// Transition defines a valid step in an entity's event stream:
// an event of type Event moves the entity from Src to Dst.
type Transition struct {
	Event EventType
	Src   Lifecycle
	Dst   Lifecycle
}

// Transitions defines every valid ordering of events for a single entity key.
// This is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventCreated, Src: LifecycleAbsent, Dst: LifecycleLive},
	{Event: EventUpdated, Src: LifecycleLive, Dst: LifecycleLive},
	{Event: EventDeleted, Src: LifecycleLive, Dst: LifecycleDeleted},
}
