package konke

import "context"

// Entity is anything exposed to HomeKit for a Konke device
type Entity interface {
	UniqueID() string
	Name() string
	Available() bool
	Update(ctx context.Context) error
}

// Switchable is an entity with on/off state
type Switchable interface {
	Entity
	IsOn() bool
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
}

// State is the visible state of a switchable entity
type State int

const (
	StateUnknown State = iota
	StateOff
	StateOn
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "off"
	case StateOn:
		return "on"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// stateOf derives the visible state. Unavailable wins over the last known
// value, which is kept and shown again once the device comes back.
func stateOf(f *Facade, on bool) State {
	switch {
	case !f.Available():
		return StateUnavailable
	case !f.Refreshed():
		return StateUnknown
	case on:
		return StateOn
	default:
		return StateOff
	}
}
