/*
Package vmstate contains the states a NeoVM execution can end up in, as
reported by RPC servers.
*/
package vmstate

import (
	"errors"
	"strings"
)

// State of the VM. It's a set of flags, but only None, Halt and Fault are
// ever reported for finished executions.
type State uint8

// Available States.
const (
	// None is the running state of the VM.
	None State = 0
	// Halt is a stopped state of the VM, the program completed successfully.
	Halt State = 1
	// Fault is a stopped state of the VM, execution ended with an error.
	Fault State = 2
	// Break is a suspended state of the VM.
	Break State = 4
)

// ErrInvalidState is returned for unknown state strings.
var ErrInvalidState = errors.New("invalid state")

// HasFlag checks for State flag presence.
func (s State) HasFlag(f State) bool {
	return s&f != 0
}

// String implements the fmt.Stringer interface.
func (s State) String() string {
	if s == None {
		return "NONE"
	}

	ss := make([]string, 0, 3)
	if s.HasFlag(Halt) {
		ss = append(ss, "HALT")
	}
	if s.HasFlag(Fault) {
		ss = append(ss, "FAULT")
	}
	if s.HasFlag(Break) {
		ss = append(ss, "BREAK")
	}
	return strings.Join(ss, ", ")
}

// FromString converts a string into the State.
func FromString(s string) (st State, err error) {
	if s = strings.TrimSpace(s); s == "NONE" {
		return None, nil
	}

	ss := strings.Split(s, ",")
	for _, state := range ss {
		switch state = strings.TrimSpace(state); state {
		case "HALT":
			st |= Halt
		case "FAULT":
			st |= Fault
		case "BREAK":
			st |= Break
		default:
			return 0, ErrInvalidState
		}
	}
	return
}

// MarshalJSON implements the json.Marshaler interface.
func (s State) MarshalJSON() (data []byte, err error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *State) UnmarshalJSON(data []byte) (err error) {
	l := len(data)
	if l < 2 || data[0] != '"' || data[l-1] != '"' {
		return ErrInvalidState
	}

	*s, err = FromString(string(data[1 : l-1]))
	return
}
