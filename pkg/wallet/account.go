package wallet

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/nspcc-dev/neotx/pkg/crypto/hash"
	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/encoding/address"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/util"
)

// Account represents a NEO account. It holds the private key (if known)
// along with the verification script of the account.
type Account struct {
	// NEO private key, nil for watch-only accounts.
	privateKey *keys.PrivateKey

	// NEO public address.
	Address string `json:"address"`

	// Label is a label the user had made for this account.
	Label string `json:"label"`

	// Contract is a Contract object which describes the details of the contract.
	Contract *Contract `json:"contract"`
}

// Contract represents the verification contract of the Account.
type Contract struct {
	// Script is the verification script.
	Script []byte `json:"script"`

	// Signatures is the number of signatures needed to satisfy the script.
	Signatures int `json:"signatures"`
}

// contract is an intermediate struct used for json unmarshalling.
type contract struct {
	// Script is a hex-encoded script of the contract.
	Script string `json:"script"`

	// Signatures is the number of signatures needed to satisfy the script.
	Signatures int `json:"signatures"`
}

// ScriptHash returns the hash of contract's script.
func (c Contract) ScriptHash() util.Uint160 {
	return hash.Hash160(c.Script)
}

// MarshalJSON implements json.Marshaler interface.
func (c Contract) MarshalJSON() ([]byte, error) {
	return json.Marshal(contract{
		Script:     hex.EncodeToString(c.Script),
		Signatures: c.Signatures,
	})
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (c *Contract) UnmarshalJSON(data []byte) error {
	var cc contract

	if err := json.Unmarshal(data, &cc); err != nil {
		return err
	}

	script, err := hex.DecodeString(cc.Script)
	if err != nil {
		return err
	}

	c.Script = script
	c.Signatures = cc.Signatures
	return nil
}

// NewAccount creates a new Account with a random generated PrivateKey.
func NewAccount() (*Account, error) {
	priv, err := keys.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(priv), nil
}

// NewAccountFromWIF creates a new Account from the given WIF.
func NewAccountFromWIF(wif string) (*Account, error) {
	privKey, err := keys.NewPrivateKeyFromWIF(wif)
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(privKey), nil
}

// NewAccountFromPrivateKey creates a standard signature Account from the
// given PrivateKey.
func NewAccountFromPrivateKey(p *keys.PrivateKey) *Account {
	return &Account{
		privateKey: p,
		Address:    p.Address(),
		Contract: &Contract{
			Script:     p.PublicKey().GetVerificationScript(),
			Signatures: 1,
		},
	}
}

// NewMultisigAccount creates a watch-only m-out-of-n multisignature account,
// keys are sorted the same way the network does it.
func NewMultisigAccount(m int, pubs keys.PublicKeys) (*Account, error) {
	script, err := smartcontract.CreateDefaultMultiSigRedeemScript(m, pubs)
	if err != nil {
		return nil, err
	}
	return &Account{
		Address: address.Uint160ToString(hash.Hash160(script)),
		Contract: &Contract{
			Script:     script,
			Signatures: m,
		},
	}, nil
}

// PrivateKey returns private key corresponding to the account.
func (a *Account) PrivateKey() *keys.PrivateKey {
	return a.privateKey
}

// ScriptHash returns the script hash (account) corresponding to the Account.
func (a *Account) ScriptHash() util.Uint160 {
	return a.Contract.ScriptHash()
}

// CanSign returns true when the account has a private key to sign with.
func (a *Account) CanSign() bool {
	return a.privateKey != nil
}

// ConvertMultisig sets a's contract to multisig contract with m sufficient signatures.
func (a *Account) ConvertMultisig(m int, pubs keys.PublicKeys) error {
	if a.privateKey == nil {
		return errors.New("watch-only account can't be converted")
	}
	var (
		found bool
		own   = a.privateKey.PublicKey().Bytes()
	)
	for i := range pubs {
		if bytes.Equal(own, pubs[i].Bytes()) {
			found = true
			break
		}
	}

	if !found {
		return errors.New("own public key was not found among multisig keys")
	}

	script, err := smartcontract.CreateDefaultMultiSigRedeemScript(m, pubs)
	if err != nil {
		return err
	}

	a.Address = address.Uint160ToString(hash.Hash160(script))
	a.Contract = &Contract{
		Script:     script,
		Signatures: m,
	}
	return nil
}

// SignTx signs the message if the verification script is the one of the
// account, see KeySigner for details.
func (a *Account) SignTx(msg []byte, verificationScript []byte) ([]byte, error) {
	if a.privateKey == nil {
		return nil, ErrNoKey
	}
	if !bytes.Equal(verificationScript, a.Contract.Script) {
		return nil, ErrNoKey
	}
	return NewKeySigner(a.privateKey).SignTx(msg, verificationScript)
}
