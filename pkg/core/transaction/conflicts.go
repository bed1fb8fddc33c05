package transaction

import (
	"github.com/nspcc-dev/neotx/pkg/io"
	"github.com/nspcc-dev/neotx/pkg/util"
)

// Conflicts represents attribute for conflicting transactions.
type Conflicts struct {
	Hash util.Uint256 `json:"hash"`
}

// DecodeBinary implements the io.Serializable interface.
func (c *Conflicts) DecodeBinary(br *io.BinReader) {
	br.ReadBytes(c.Hash[:])
}

// EncodeBinary implements the io.Serializable interface.
func (c *Conflicts) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(c.Hash[:])
}

func (c *Conflicts) toJSONMap(m map[string]any) {
	m["hash"] = c.Hash
}

// Copy implements the AttrValue interface.
func (c *Conflicts) Copy() AttrValue {
	return &Conflicts{Hash: c.Hash}
}
