package validator

import (
	"strings"
)

// Attributes is a set of transaction fields the Validator can check and fix.
type Attributes byte

// Fields that can be validated.
const (
	None            Attributes = 0
	ValidUntilBlock Attributes = 1 << 0
	SystemFee       Attributes = 1 << 1
	NetworkFee      Attributes = 1 << 2
	Script          Attributes = 1 << 3
	All                        = ValidUntilBlock | SystemFee | NetworkFee | Script
)

var attrNames = []struct {
	a    Attributes
	name string
}{
	{ValidUntilBlock, "ValidUntilBlock"},
	{SystemFee, "SystemFee"},
	{NetworkFee, "NetworkFee"},
	{Script, "Script"},
}

// Union returns a set containing fields of both sets.
func (a Attributes) Union(b Attributes) Attributes {
	return a | b
}

// Intersect returns a set containing fields present in both sets.
func (a Attributes) Intersect(b Attributes) Attributes {
	return a & b
}

// Has checks whether all fields of b are in a.
func (a Attributes) Has(b Attributes) bool {
	return a&b == b
}

// String implements the fmt.Stringer interface.
func (a Attributes) String() string {
	switch a {
	case None:
		return "None"
	case All:
		return "All"
	}
	var names []string
	for _, n := range attrNames {
		if a.Has(n.a) {
			names = append(names, n.name)
		}
	}
	if rest := a &^ All; rest != 0 {
		names = append(names, "Unknown")
	}
	return strings.Join(names, "|")
}
