/*
Package policy allows to work with the native PolicyContract contract via RPC.

Only safe methods are provided, they're the ones fee calculation depends on.
*/
package policy

import (
	"fmt"

	"github.com/nspcc-dev/neotx/pkg/core/native/nativehashes"
	"github.com/nspcc-dev/neotx/pkg/neorpc/result"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/util"
)

// Invoker is used by ContractReader to call various methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
	Run(script []byte) (*result.Invoke, error)
}

// Hash stores the hash of the native PolicyContract contract.
var Hash = nativehashes.Policy

// FeeInformation is a pair of network settings every fee calculation needs.
type FeeInformation struct {
	// FeePerByte is the per-byte network fee in GAS fractions.
	FeePerByte int64
	// ExecFeeFactor is the multiplier applied to opcode and interop prices.
	ExecFeeFactor int64
}

// ContractReader provides an interface to call read-only PolicyContract
// contract's methods.
type ContractReader struct {
	invoker Invoker
}

// NewReader creates an instance of ContractReader that can be used to read
// data from the contract.
func NewReader(invoker Invoker) *ContractReader {
	return &ContractReader{invoker}
}

// GetExecFeeFactor returns current execution fee factor used by the network.
// This setting affects all executions of all transactions.
func (c *ContractReader) GetExecFeeFactor() (int64, error) {
	return unwrap.Int64(c.invoker.Call(Hash, "getExecFeeFactor"))
}

// GetFeePerByte returns current minimal per-byte network fee value which
// affects all transactions on the network.
func (c *ContractReader) GetFeePerByte() (int64, error) {
	return unwrap.Int64(c.invoker.Call(Hash, "getFeePerByte"))
}

// GetStoragePrice returns current per-byte storage price. Any contract saving
// data to the storage pays for it according to this value.
func (c *ContractReader) GetStoragePrice() (int64, error) {
	return unwrap.Int64(c.invoker.Call(Hash, "getStoragePrice"))
}

// IsBlocked checks if the given account is blocked in the PolicyContract.
func (c *ContractReader) IsBlocked(account util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(Hash, "isBlocked", account))
}

// GetFeeInformation returns fee per byte and execution fee factor. Both are
// fetched with a single invocation.
func (c *ContractReader) GetFeeInformation() (*FeeInformation, error) {
	script, err := FeeInformationScript()
	if err != nil {
		return nil, err
	}
	inv, err := c.invoker.Run(script)
	items, err := unwrap.Items(inv, err, 2)
	if err != nil {
		return nil, err
	}
	feePerByte, err := unwrap.ItemToInt64(items[0])
	if err != nil {
		return nil, fmt.Errorf("fee per byte: %w", err)
	}
	factor, err := unwrap.ItemToInt64(items[1])
	if err != nil {
		return nil, fmt.Errorf("exec fee factor: %w", err)
	}
	return &FeeInformation{
		FeePerByte:    feePerByte,
		ExecFeeFactor: factor,
	}, nil
}

// FeeInformationScript returns the script used by GetFeeInformation. It
// leaves fee per byte and execution fee factor on the stack, in this order.
func FeeInformationScript() ([]byte, error) {
	b := smartcontract.NewBuilder()
	b.InvokeMethod(Hash, "getFeePerByte")
	b.InvokeMethod(Hash, "getExecFeeFactor")
	return b.Script()
}
