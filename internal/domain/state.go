package domain

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidState is returned when a state value is out of range.
var ErrInvalidState = errors.New("invalid card state")

// State is the learning stage of a card. The zero value is StateNew, so
// an absent or unparsable stored state degrades to New.
type State int

const (
	StateNew        State = iota // Never reviewed.
	StateLearning                // In the initial sub-day learning steps.
	StateReview                  // In the long-term review cycle.
	StateRelearning              // Lapsed out of Review, relearning.
)

var (
	stateNames = [...]string{
		StateNew:        "New",
		StateLearning:   "Learning",
		StateReview:     "Review",
		StateRelearning: "Relearning",
	}
	stateByName = map[string]State{
		"New":        StateNew,
		"Learning":   StateLearning,
		"Review":     StateReview,
		"Relearning": StateRelearning,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = State(0)
	_ json.Marshaler           = State(0)
	_ json.Unmarshaler         = (*State)(nil)
	_ encoding.TextMarshaler   = State(0)
	_ encoding.TextUnmarshaler = (*State)(nil)
)

// IsValid reports whether s is one of the four named states.
func (s State) IsValid() bool {
	return s >= StateNew && s <= StateRelearning
}

// String returns the name of the state ("New", "Learning", "Review",
// "Relearning"). For invalid values it returns "State(n)".
func (s State) String() string {
	if s.IsValid() {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState converts a stored state name back into a State. Unknown
// names return StateNew and ErrInvalidState so a corrupt record can
// degrade instead of aborting a collection pass.
func ParseState(name string) (State, error) {
	v, ok := stateByName[name]
	if !ok {
		return StateNew, fmt.Errorf("%w: %q", ErrInvalidState, name)
	}
	return v, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	v, ok := stateByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidState, text)
	}
	*s = v
	return nil
}

// MarshalJSON implements json.Marshaler. State serializes as a JSON string.
func (s State) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (s *State) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidState, data)
	}
	return s.UnmarshalText([]byte(str))
}
