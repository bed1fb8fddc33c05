/*
Package nativehashes contains hashes of the native contracts the transaction
engine talks to. They're the same for every network.
*/
package nativehashes

import (
	"github.com/nspcc-dev/neotx/pkg/crypto/hash"
	"github.com/nspcc-dev/neotx/pkg/io"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm/emit"
	"github.com/nspcc-dev/neotx/pkg/vm/opcode"
)

// Names of the native contracts.
const (
	NeoName    = "NeoToken"
	GasName    = "GasToken"
	PolicyName = "PolicyContract"
)

// Hashes of the native contracts.
var (
	Neo    = CreateNativeContractHash(NeoName)
	Gas    = CreateNativeContractHash(GasName)
	Policy = CreateNativeContractHash(PolicyName)
)

// CreateContractHash creates a deployed contract hash from the transaction
// sender, NEF checksum and the contract name.
func CreateContractHash(sender util.Uint160, checksum uint32, name string) util.Uint160 {
	w := io.NewBufBinWriter()
	emit.Opcodes(w.BinWriter, opcode.ABORT)
	emit.Bytes(w.BinWriter, sender.BytesBE())
	emit.Int(w.BinWriter, int64(checksum))
	emit.String(w.BinWriter, name)
	if w.Err != nil {
		panic(w.Err)
	}
	return hash.Hash160(w.Bytes())
}

// CreateNativeContractHash calculates the hash of the native contract with
// the given name.
func CreateNativeContractHash(name string) util.Uint160 {
	return CreateContractHash(util.Uint160{}, 0, name)
}
