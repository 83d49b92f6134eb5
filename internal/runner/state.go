package runner

import "fmt"

// State is a runner lifecycle state
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	// StateCompleting guards against re-entrant completion
	StateCompleting
	StateCompleted
)

var stateNames = map[State]string{
	StateNotStarted: "not_started",
	StateInProgress: "in_progress",
	StateCompleting: "completing",
	StateCompleted:  "completed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
