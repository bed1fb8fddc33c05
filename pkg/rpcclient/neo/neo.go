/*
Package neo provides an RPC-based wrapper for the NEOToken contract.

Safe methods are encapsulated into ContractReader structure while voting and
GAS claiming are represented as scripts that can be added to any transaction.
*/
package neo

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neotx/pkg/core/native/nativehashes"
	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm/stackitem"
)

// Invoker is used by ContractReader to perform read-only calls.
type Invoker interface {
	nep17.Invoker
}

// ContractReader represents safe (read-only) methods of NEO. It can be
// used to query various data.
type ContractReader struct {
	nep17.TokenReader

	invoker Invoker
}

// Candidate is a registered candidate with its vote count.
type Candidate struct {
	PublicKey *keys.PublicKey
	Votes     *big.Int
}

// Hash stores the hash of the native NEOToken contract.
var Hash = nativehashes.Neo

// NewReader creates an instance of ContractReader to get data from the NEO
// contract.
func NewReader(invoker Invoker) *ContractReader {
	return &ContractReader{*nep17.NewReader(invoker, Hash), invoker}
}

// GetCandidates returns the list of candidates with their vote count. The
// contract only returns up to 256 candidates in response to this method.
func (c *ContractReader) GetCandidates() ([]Candidate, error) {
	arr, err := unwrap.Array(c.invoker.Call(Hash, "getCandidates"))
	if err != nil {
		return nil, err
	}
	return itemsToCandidates(arr)
}

// GetGasPerBlock returns the amount of GAS generated in each block.
func (c *ContractReader) GetGasPerBlock() (int64, error) {
	return unwrap.Int64(c.invoker.Call(Hash, "getGasPerBlock"))
}

// UnclaimedGas allows to calculate the amount of GAS that will be generated if
// any NEO state change ("claim") is to happen for the given account at the given
// block number.
func (c *ContractReader) UnclaimedGas(account util.Uint160, end uint32) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(Hash, "unclaimedGas", account, end))
}

func itemsToCandidates(arr []stackitem.Item) ([]Candidate, error) {
	res := make([]Candidate, len(arr))
	for i, itm := range arr {
		str, ok := itm.Value().([]stackitem.Item)
		if !ok {
			return nil, fmt.Errorf("item #%d is not a structure", i)
		}
		if len(str) != 2 {
			return nil, fmt.Errorf("item #%d has wrong length", i)
		}
		b, err := str[0].TryBytes()
		if err != nil {
			return nil, fmt.Errorf("item #%d has wrong key: %w", i, err)
		}
		k, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return nil, fmt.Errorf("item #%d has wrong key: %w", i, err)
		}
		votes, err := str[1].TryInteger()
		if err != nil {
			return nil, fmt.Errorf("item #%d has wrong votes: %w", i, err)
		}
		res[i] = Candidate{PublicKey: k, Votes: votes}
	}
	return res, nil
}

// AddVote appends `vote` invocation for the given account to the Builder.
// Nil voteTo removes the vote. The script fails if the vote is not accepted.
func AddVote(b *smartcontract.Builder, account util.Uint160, voteTo *keys.PublicKey) {
	var to any
	if voteTo != nil {
		to = voteTo
	}
	b.InvokeWithAssert(Hash, "vote", account, to)
}

// AddClaimGas appends a zero NEO transfer from the account to itself to the
// Builder, this makes the contract distribute unclaimed GAS to the account.
func AddClaimGas(b *smartcontract.Builder, account util.Uint160) error {
	return nep17.AddTransfer(b, Hash, nep17.TransferParameters{
		From:   account,
		To:     account,
		Amount: big.NewInt(0),
	})
}
