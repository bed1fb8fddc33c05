package result

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/vm/stackitem"
	"github.com/nspcc-dev/neotx/pkg/vm/vmstate"
)

// Invoke represents a code invocation result and is used by several RPC calls
// that invoke functions, scripts and generic bytecode.
type Invoke struct {
	State          string
	GasConsumed    int64
	Script         []byte
	Stack          []stackitem.Item
	FaultException string
	Transaction    *transaction.Transaction
	Session        uuid.UUID
}

type invokeAux struct {
	State          string          `json:"state"`
	GasConsumed    int64           `json:"gasconsumed,string"`
	Script         []byte          `json:"script"`
	Stack          json.RawMessage `json:"stack"`
	FaultException *string         `json:"exception"`
	Transaction    []byte          `json:"tx,omitempty"`
	Session        string          `json:"session,omitempty"`
}

// iteratorInterfaceName is a string used to mark Iterator inside the InteropInterface.
const iteratorInterfaceName = "IIterator"

type iteratorAux struct {
	Type      string            `json:"type"`
	Interface string            `json:"interface,omitempty"`
	ID        string            `json:"id,omitempty"`
	Value     []json.RawMessage `json:"iterator,omitempty"`
	Truncated bool              `json:"truncated,omitempty"`
}

// Iterator represents a VM iterator identifier. ID is set if the server
// supports sessions, Values holds in-place expanded items otherwise.
type Iterator struct {
	ID        *uuid.UUID
	Values    []stackitem.Item
	Truncated bool
}

// VMState returns the execution state as a vmstate.State. Unknown strings
// are reported as vmstate.None.
func (r *Invoke) VMState() vmstate.State {
	st, err := vmstate.FromString(r.State)
	if err != nil {
		return vmstate.None
	}
	return st
}

// HasFaulted returns true if the invocation ended with FAULT (or anything
// but HALT, which is the same for the caller).
func (r *Invoke) HasFaulted() bool {
	return r.VMState() != vmstate.Halt
}

// MarshalJSON implements the json.Marshaler.
func (r Iterator) MarshalJSON() ([]byte, error) {
	var iaux iteratorAux
	iaux.Type = stackitem.InteropT.String()
	if r.ID != nil {
		iaux.Interface = iteratorInterfaceName
		iaux.ID = r.ID.String()
	}
	if r.Values != nil {
		value := make([]json.RawMessage, len(r.Values))
		for i := range r.Values {
			var err error
			value[i], err = stackitem.ToJSONWithTypes(r.Values[i])
			if err != nil {
				return nil, err
			}
		}
		iaux.Value = value
	}
	iaux.Truncated = r.Truncated
	return json.Marshal(iaux)
}

// UnmarshalJSON implements the json.Unmarshaler.
func (r *Iterator) UnmarshalJSON(data []byte) error {
	iteratorAux := new(iteratorAux)
	err := json.Unmarshal(data, iteratorAux)
	if err != nil {
		return err
	}
	if len(iteratorAux.Interface) != 0 {
		if iteratorAux.Interface != iteratorInterfaceName {
			return fmt.Errorf("unknown InteropInterface: %s", iteratorAux.Interface)
		}
		var iID uuid.UUID
		iID, err = uuid.Parse(iteratorAux.ID)
		if err != nil {
			return fmt.Errorf("failed to unmarshal iterator ID: %w", err)
		}
		r.ID = &iID
	}
	if iteratorAux.Value != nil {
		r.Values = make([]stackitem.Item, len(iteratorAux.Value))
		for j := range r.Values {
			r.Values[j], err = stackitem.FromJSONWithTypes(iteratorAux.Value[j])
			if err != nil {
				return fmt.Errorf("failed to unmarshal iterator values: %w", err)
			}
		}
	}
	r.Truncated = iteratorAux.Truncated
	return nil
}

// MarshalJSON implements the json.Marshaler.
func (r Invoke) MarshalJSON() ([]byte, error) {
	var (
		st       json.RawMessage
		err      error
		faultSep string
		arr      = make([]json.RawMessage, len(r.Stack))
	)
	if len(r.FaultException) != 0 {
		faultSep = " / "
	}
	for i := range arr {
		var data []byte

		iter, ok := r.Stack[i].Value().(Iterator)
		if (r.Stack[i].Type() == stackitem.InteropT) && ok {
			data, err = json.Marshal(iter)
		} else {
			data, err = stackitem.ToJSONWithTypes(r.Stack[i])
		}
		if err != nil {
			r.FaultException += fmt.Sprintf("%sjson error: %v", faultSep, err)
			break
		}
		arr[i] = data
	}

	if err == nil {
		st, err = json.Marshal(arr)
		if err != nil {
			return nil, err
		}
	}
	var txbytes []byte
	if r.Transaction != nil {
		txbytes = r.Transaction.Bytes()
	}
	var sessionID string
	if r.Session != (uuid.UUID{}) {
		sessionID = r.Session.String()
	}
	aux := &invokeAux{
		GasConsumed: r.GasConsumed,
		Script:      r.Script,
		State:       r.State,
		Stack:       st,
		Transaction: txbytes,
		Session:     sessionID,
	}
	if len(r.FaultException) != 0 {
		aux.FaultException = &r.FaultException
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements the json.Unmarshaler.
func (r *Invoke) UnmarshalJSON(data []byte) error {
	var err error
	aux := new(invokeAux)
	if err = json.Unmarshal(data, aux); err != nil {
		return err
	}
	if len(aux.Session) != 0 {
		r.Session, err = uuid.Parse(aux.Session)
		if err != nil {
			return fmt.Errorf("failed to parse session ID: %w", err)
		}
	}
	var arr []json.RawMessage
	if err = json.Unmarshal(aux.Stack, &arr); err == nil {
		st := make([]stackitem.Item, len(arr))
		for i := range arr {
			st[i], err = stackitem.FromJSONWithTypes(arr[i])
			if err != nil {
				break
			}
			if st[i].Type() == stackitem.InteropT {
				var iter = Iterator{}
				err = json.Unmarshal(arr[i], &iter)
				if err != nil {
					break
				}
				st[i] = stackitem.NewInterop(iter)
			}
		}
		if err != nil {
			return fmt.Errorf("failed to unmarshal stack: %w", err)
		}
		r.Stack = st
	}
	var tx *transaction.Transaction
	if len(aux.Transaction) != 0 {
		tx, err = transaction.NewTransactionFromBytes(aux.Transaction)
		if err != nil {
			return err
		}
	}
	r.GasConsumed = aux.GasConsumed
	r.Script = aux.Script
	r.State = aux.State
	if aux.FaultException != nil {
		r.FaultException = *aux.FaultException
	}
	r.Transaction = tx
	return nil
}
