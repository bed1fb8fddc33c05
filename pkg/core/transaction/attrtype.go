package transaction

import "fmt"

// AttrType represents the purpose of the attribute.
type AttrType uint8

// List of valid attribute types.
const (
	HighPriority    AttrType = 1
	OracleResponseT AttrType = 0x11 // OracleResponse
	NotValidBeforeT AttrType = 0x20 // NotValidBefore
	ConflictsT      AttrType = 0x21 // Conflicts
	NotaryAssistedT AttrType = 0x22 // NotaryAssisted
)

var attrTypeNames = map[AttrType]string{
	HighPriority:    "HighPriority",
	OracleResponseT: "OracleResponse",
	NotValidBeforeT: "NotValidBefore",
	ConflictsT:      "Conflicts",
	NotaryAssistedT: "NotaryAssisted",
}

// String implements the fmt.Stringer interface.
func (t AttrType) String() string {
	if s, ok := attrTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("AttrType(%d)", t)
}

// IsValid checks whether t is a known attribute type.
func (t AttrType) IsValid() bool {
	_, ok := attrTypeNames[t]
	return ok
}

// allowMultiple checks whether several attributes of this type can be
// attached to the same transaction.
func (t AttrType) allowMultiple() bool {
	return t == ConflictsT
}

func attrTypeFromString(s string) (AttrType, bool) {
	for t, name := range attrTypeNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}
