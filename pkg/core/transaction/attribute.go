package transaction

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neotx/pkg/io"
)

// ErrInvalidAttrType is returned for unknown attribute types.
var ErrInvalidAttrType = errors.New("invalid attribute type")

// Attribute represents a Transaction attribute.
type Attribute struct {
	Type  AttrType
	Value AttrValue
}

// AttrValue represents a Transaction Attribute value.
type AttrValue interface {
	io.Serializable
	// toJSONMap is used for embedded attribute values fields into the
	// attribute object.
	toJSONMap(map[string]any)
	// Copy returns a deep copy of the attribute value.
	Copy() AttrValue
}

// attrJSON is used for JSON I/O of Attribute.
type attrJSON struct {
	Type string `json:"type"`
}

// DecodeBinary implements the io.Serializable interface.
func (attr *Attribute) DecodeBinary(br *io.BinReader) {
	attr.Type = AttrType(br.ReadB())
	if br.Err != nil {
		return
	}

	var val AttrValue
	switch attr.Type {
	case HighPriority:
		attr.Value = nil
		return
	case OracleResponseT:
		val = new(OracleResponse)
	case NotValidBeforeT:
		val = new(NotValidBefore)
	case ConflictsT:
		val = new(Conflicts)
	case NotaryAssistedT:
		val = new(NotaryAssisted)
	default:
		br.Err = fmt.Errorf("%w: 0x%02x", ErrInvalidAttrType, byte(attr.Type))
		return
	}
	val.DecodeBinary(br)
	attr.Value = val
}

// EncodeBinary implements the io.Serializable interface.
func (attr *Attribute) EncodeBinary(bw *io.BinWriter) {
	bw.WriteB(byte(attr.Type))
	switch attr.Type {
	case HighPriority:
	case OracleResponseT, NotValidBeforeT, ConflictsT, NotaryAssistedT:
		if attr.Value == nil {
			bw.Err = fmt.Errorf("no value for %s attribute", attr.Type)
			return
		}
		attr.Value.EncodeBinary(bw)
	default:
		bw.Err = fmt.Errorf("%w: 0x%02x", ErrInvalidAttrType, byte(attr.Type))
	}
}

// Copy creates a deep copy of the Attribute.
func (attr *Attribute) Copy() *Attribute {
	cp := &Attribute{Type: attr.Type}
	if attr.Value != nil {
		cp.Value = attr.Value.Copy()
	}
	return cp
}

// MarshalJSON implements the json.Marshaler interface.
func (attr *Attribute) MarshalJSON() ([]byte, error) {
	m := map[string]any{"type": attr.Type.String()}
	if attr.Value != nil {
		attr.Value.toJSONMap(m)
	}
	return json.Marshal(m)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (attr *Attribute) UnmarshalJSON(data []byte) error {
	aj := new(attrJSON)
	err := json.Unmarshal(data, aj)
	if err != nil {
		return err
	}
	typ, ok := attrTypeFromString(aj.Type)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidAttrType, aj.Type)
	}
	attr.Type = typ
	switch typ {
	case HighPriority:
		attr.Value = nil
		return nil
	case OracleResponseT:
		attr.Value = new(OracleResponse)
	case NotValidBeforeT:
		attr.Value = new(NotValidBefore)
	case ConflictsT:
		attr.Value = new(Conflicts)
	case NotaryAssistedT:
		attr.Value = new(NotaryAssisted)
	}
	// It's OK to unmarshal the whole object again, values only pick their
	// own fields.
	return json.Unmarshal(data, attr.Value)
}
