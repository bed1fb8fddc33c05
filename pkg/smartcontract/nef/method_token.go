/*
Package nef contains the parts of NEO Executable Format used by transaction
scripts. Method tokens are the static contract call references CALLT
instructions point to.
*/
package nef

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neotx/pkg/io"
	"github.com/nspcc-dev/neotx/pkg/smartcontract/callflag"
	"github.com/nspcc-dev/neotx/pkg/util"
)

// maxMethodLength is the maximum length of method name.
const maxMethodLength = 32

var (
	errInvalidMethodName = errors.New("method name should't start with '_'")
	errInvalidCallFlag   = errors.New("invalid call flag")
	errMethodTooLong     = errors.New("method name is too long")
)

// MethodToken is contract method description.
type MethodToken struct {
	// Hash is contract hash.
	Hash util.Uint160 `json:"hash"`
	// Method is method name.
	Method string `json:"method"`
	// ParamCount is method parameter count.
	ParamCount uint16 `json:"paramcount"`
	// HasReturn is true if method returns value.
	HasReturn bool `json:"hasreturnvalue"`
	// CallFlag is a set of call flags the method will be called with.
	CallFlag callflag.CallFlag `json:"callflags"`
}

// methodTokenAux is used to reject invalid tokens on JSON decoding.
type methodTokenAux MethodToken

// IsValid checks method name and call flags of the token.
func (t *MethodToken) IsValid() error {
	switch {
	case len(t.Method) > maxMethodLength:
		return errMethodTooLong
	case strings.HasPrefix(t.Method, "_"):
		return errInvalidMethodName
	case !t.CallFlag.IsValid():
		return errInvalidCallFlag
	}
	return nil
}

// EncodeBinary implements io.Serializable.
func (t *MethodToken) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(t.Hash[:])
	w.WriteString(t.Method)
	w.WriteU16LE(t.ParamCount)
	w.WriteBool(t.HasReturn)
	w.WriteB(byte(t.CallFlag))
}

// DecodeBinary implements io.Serializable.
func (t *MethodToken) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(t.Hash[:])
	t.Method = r.ReadString(maxMethodLength)
	if r.Err == nil && strings.HasPrefix(t.Method, "_") {
		r.Err = errInvalidMethodName
		return
	}
	t.ParamCount = r.ReadU16LE()
	t.HasReturn = r.ReadBool()
	t.CallFlag = callflag.CallFlag(r.ReadB())
	if r.Err == nil && !t.CallFlag.IsValid() {
		r.Err = errInvalidCallFlag
	}
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *MethodToken) UnmarshalJSON(data []byte) error {
	aux := new(methodTokenAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	tok := MethodToken(*aux)
	if err := tok.IsValid(); err != nil {
		return fmt.Errorf("invalid method token: %w", err)
	}
	*t = tok
	return nil
}
