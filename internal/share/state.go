package share

import "fmt"

// State is the progress of a single share operation.
type State int

const (
	StateIdle State = iota
	StateSaving
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSaving:
		return "saving"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type event int

const (
	evEncodeLocal event = iota // store unavailable, encode straight into the URL
	evSave                     // remote create started
	evSaved                    // remote create succeeded
	evFallback                 // remote create failed or was denied, encoded locally
)

func (e event) String() string {
	switch e {
	case evEncodeLocal:
		return "encode-local"
	case evSave:
		return "save"
	case evSaved:
		return "saved"
	case evFallback:
		return "fallback"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// next is the whole transition table. Ready is terminal: every share runs its own flow.
func next(s State, e event) (State, error) {
	switch s {
	case StateIdle:
		switch e {
		case evEncodeLocal:
			return StateReady, nil
		case evSave:
			return StateSaving, nil
		}
	case StateSaving:
		switch e {
		case evSaved, evFallback:
			return StateReady, nil
		}
	}
	return s, fmt.Errorf("share: invalid transition %s --%s-->", s, e)
}
