package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// WitnessScope represents set of witness flags for Transaction signer.
type WitnessScope byte

const (
	// None specifies that no contract was witnessed. Only sign the transaction.
	None WitnessScope = 0
	// CalledByEntry witness is only valid in entry script and ones directly called by it.
	// No params is needed, as the witness/permission/signature given on first invocation will
	// automatically expire if entering deeper internal invokes. This can be default safe
	// choice for native NEO/GAS (previously used on Neo 2 as "attach" mode).
	CalledByEntry WitnessScope = 0x01
	// CustomContracts define custom hash for contract-specific.
	CustomContracts WitnessScope = 0x10
	// CustomGroups define custom pubkey for group members.
	CustomGroups WitnessScope = 0x20
	// Rules is a set of conditions with boolean operators.
	Rules WitnessScope = 0x40
	// Global allows this witness in all contexts (default Neo2 behavior).
	// This cannot be combined with other flags.
	Global WitnessScope = 0x80
)

// FeeOnly is an alias for None, such signer can only pay fees.
const FeeOnly = None

// ErrInvalidScope is returned for unknown or inconsistent witness scopes.
var ErrInvalidScope = errors.New("invalid witness scope")

var scopeNames = []struct {
	s    WitnessScope
	name string
}{
	{CalledByEntry, "CalledByEntry"},
	{CustomContracts, "CustomContracts"},
	{CustomGroups, "CustomGroups"},
	{Rules, "WitnessRules"},
}

// IsValid checks whether s only contains known flags and Global is not
// combined with anything else.
func (s WitnessScope) IsValid() bool {
	if s&^(CalledByEntry|CustomContracts|CustomGroups|Rules|Global) != 0 {
		return false
	}
	return s&Global == 0 || s == Global
}

// ScopesFromString converts string of comma-separated scopes to a set of scopes
// (case-sensitive). String can combine several scopes, e.g. be any of: 'Global',
// 'CalledByEntry,CustomGroups' etc. In case of an empty string an error will be
// returned.
func ScopesFromString(s string) (WitnessScope, error) {
	var result WitnessScope
	scopes := strings.Split(s, ",")
	for i, scope := range scopes {
		scopes[i] = strings.TrimSpace(scope)
	}
	var isGlobal bool
	for _, scopeStr := range scopes {
		var (
			scope WitnessScope
			found bool
		)
		switch scopeStr {
		case "Global":
			scope, found = Global, true
		case "None":
			scope, found = None, true
		case "Rules":
			scope, found = Rules, true
		default:
			for _, sn := range scopeNames {
				if sn.name == scopeStr {
					scope, found = sn.s, true
					break
				}
			}
		}
		if !found {
			return result, fmt.Errorf("%w: %v", ErrInvalidScope, scopeStr)
		}
		if isGlobal && scope != Global || scope == Global && result != None {
			return result, fmt.Errorf("%w: Global scope can not be combined with other scopes", ErrInvalidScope)
		}
		result |= scope
		if scope == Global {
			isGlobal = true
		}
	}
	return result, nil
}

// String implements the fmt.Stringer interface. It uses `, ` to separate
// scope names.
func (s WitnessScope) String() string {
	switch s {
	case None:
		return "None"
	case Global:
		return "Global"
	}
	var res []string
	for _, sn := range scopeNames {
		if s&sn.s != 0 {
			res = append(res, sn.name)
		}
	}
	if rest := s &^ (CalledByEntry | CustomContracts | CustomGroups | Rules); rest != 0 {
		res = append(res, fmt.Sprintf("0x%02x", byte(rest)))
	}
	return strings.Join(res, ", ")
}

// MarshalJSON implements the json.Marshaler interface.
func (s WitnessScope) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *WitnessScope) UnmarshalJSON(data []byte) error {
	var js string
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	scopes, err := ScopesFromString(js)
	if err != nil {
		return err
	}
	*s = scopes
	return nil
}
