/*
Package txbuilder assembles unsigned transactions from contract calls.

Builder collects script fragments, signers, attributes and empty witnesses
(verification scripts without signatures) that are needed to calculate the
network fee before the transaction is signed. It doesn't talk to the network,
fees and ValidUntilBlock are expected to be set (or fixed) by the validator.

Witnesses are kept sorted by script hash and nodes check witness i against
signer i, so Build orders signers by account hash as well. This makes the
signer with the lowest hash the sender paying fees, unless SetFeeAccount is
used. The fee account is kept first then and Build fails with
transaction.ErrWitnessOrder if its witness can't be the first one.
*/
package txbuilder

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/wallet"
)

// ErrEmptyScript is returned from Build when no calls were added.
var ErrEmptyScript = errors.New("no contract calls")

// ContractCall is a single contract method invocation.
type ContractCall struct {
	Contract util.Uint160
	Method   string
	Params   []any
	// Assert adds an ASSERT after the call, the method must return a
	// Boolean then.
	Assert bool
}

// Builder creates unsigned transactions. It's not thread-safe.
type Builder struct {
	script     *smartcontract.Builder
	calls      int
	err        error
	nonce      *uint32
	systemFee  int64
	networkFee int64
	vub        uint32
	feeAccount *util.Uint160
	attributes []transaction.Attribute
	signers    []transaction.Signer
	witnesses  []transaction.Witness
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{script: smartcontract.NewBuilder()}
}

// AddContractCall appends calls to the transaction script.
func (b *Builder) AddContractCall(calls ...ContractCall) *Builder {
	for _, c := range calls {
		if c.Assert {
			b.script.InvokeWithAssert(c.Contract, c.Method, c.Params...)
		} else {
			b.script.InvokeMethod(c.Contract, c.Method, c.Params...)
		}
		b.calls++
	}
	return b
}

// AddScript appends an arbitrary script fragment produced by some other
// package (nep17, neo) to the transaction script.
func (b *Builder) AddScript(f func(*smartcontract.Builder) error) *Builder {
	if err := f(b.script); err != nil {
		b.setErr(err)
		return b
	}
	b.calls++
	return b
}

// AddNep17Transfer adds a token transfer from the account, the account is
// added as a CalledByEntry signer along with its empty witness.
func (b *Builder) AddNep17Transfer(from *wallet.Account, to util.Uint160, token util.Uint160, amount *big.Int, data any) *Builder {
	p := nep17.TransferParameters{From: from.ScriptHash(), To: to, Amount: amount, Data: data}
	b.AddScript(func(sb *smartcontract.Builder) error {
		return nep17.AddTransfer(sb, token, p)
	})
	return b.AddSigners(transaction.Signer{
		Account: from.ScriptHash(),
		Scopes:  transaction.CalledByEntry,
	}).AddEmptyWitness(from)
}

// AddSigners adds signers to the transaction, signers of accounts already
// present are merged into existing ones.
func (b *Builder) AddSigners(signers ...transaction.Signer) *Builder {
	for i := range signers {
		if err := b.addSigner(signers[i]); err != nil {
			b.setErr(err)
		}
	}
	return b
}

func (b *Builder) addSigner(s transaction.Signer) error {
	for i := range b.signers {
		if b.signers[i].Account.Equals(s.Account) {
			return b.signers[i].Merge(&s)
		}
	}
	b.signers = append(b.signers, *s.Copy())
	return nil
}

// SetFeeAccount makes the account the sender (the first signer) of the
// transaction. If it's not a signer yet, it's added with fee-only scope and
// an empty witness.
func (b *Builder) SetFeeAccount(acc *wallet.Account) *Builder {
	h := acc.ScriptHash()
	b.feeAccount = &h
	for i := range b.signers {
		if b.signers[i].Account.Equals(h) {
			if i > 0 {
				s := b.signers[i]
				copy(b.signers[1:i+1], b.signers[:i])
				b.signers[0] = s
			}
			return b
		}
	}
	b.signers = append([]transaction.Signer{{
		Account: h,
		Scopes:  transaction.FeeOnly,
	}}, b.signers...)
	return b.AddEmptyWitness(acc)
}

// AddAttributes adds transaction attributes.
func (b *Builder) AddAttributes(attrs ...transaction.Attribute) *Builder {
	for i := range attrs {
		b.attributes = append(b.attributes, *attrs[i].Copy())
	}
	return b
}

// AddEmptyWitness adds a witness with the verification script of the
// account and no invocation script, it's required to calculate the network
// fee. Witnesses with the same verification script are added once.
func (b *Builder) AddEmptyWitness(acc *wallet.Account) *Builder {
	for i := range b.witnesses {
		if bytes.Equal(b.witnesses[i].VerificationScript, acc.Contract.Script) {
			return b
		}
	}
	b.witnesses = append(b.witnesses, transaction.Witness{
		InvocationScript:   []byte{},
		VerificationScript: bytes.Clone(acc.Contract.Script),
	})
	return b
}

// SetNonce sets the transaction nonce, it's random by default.
func (b *Builder) SetNonce(nonce uint32) *Builder {
	b.nonce = &nonce
	return b
}

// SetSystemFee sets the system fee.
func (b *Builder) SetSystemFee(fee int64) *Builder {
	b.systemFee = fee
	return b
}

// SetNetworkFee sets the network fee.
func (b *Builder) SetNetworkFee(fee int64) *Builder {
	b.networkFee = fee
	return b
}

// SetValidUntilBlock sets ValidUntilBlock.
func (b *Builder) SetValidUntilBlock(vub uint32) *Builder {
	b.vub = vub
	return b
}

// Build returns the transaction. The Builder can't be used after that. The
// first error encountered while adding things is returned here.
func (b *Builder) Build() (*transaction.Transaction, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.calls == 0 {
		return nil, ErrEmptyScript
	}
	script, err := b.script.Script()
	if err != nil {
		return nil, fmt.Errorf("failed to build script: %w", err)
	}
	tx := transaction.New(script, b.systemFee)
	if b.nonce != nil {
		tx.Nonce = *b.nonce
	}
	tx.NetworkFee = b.networkFee
	tx.ValidUntilBlock = b.vub
	tx.Attributes = append(tx.Attributes, b.attributes...)
	tx.Signers = append(tx.Signers, b.signers...)
	b.sortSigners(tx.Signers)
	for _, w := range b.witnesses {
		tx.AddWitness(w)
	}
	if len(tx.Scripts) == len(tx.Signers) {
		if err := tx.CheckWitnessOrder(); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// sortSigners orders signers by account hash, the fee account (if set) stays
// first.
func (b *Builder) sortSigners(signers []transaction.Signer) {
	rest := signers
	if b.feeAccount != nil && len(signers) != 0 && signers[0].Account.Equals(*b.feeAccount) {
		rest = signers[1:]
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].Account.Less(rest[j].Account)
	})
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}
