package transaction

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/nspcc-dev/neotx/pkg/crypto/hash"
	"github.com/nspcc-dev/neotx/pkg/encoding/address"
	"github.com/nspcc-dev/neotx/pkg/io"
	"github.com/nspcc-dev/neotx/pkg/util"
)

const (
	// MaxScriptLength is the limit for transaction's script length.
	MaxScriptLength = math.MaxUint16
	// MaxTransactionSize is the upper limit size in bytes that a transaction can reach. It is
	// set to be 102400.
	MaxTransactionSize = 102400
	// MaxAttributes is maximum number of attributes including signers that can be contained
	// within a transaction. It is set to be 16.
	MaxAttributes = 16
)

// Various transaction format errors.
var (
	ErrInvalidVersion     = errors.New("only version 0 is supported")
	ErrNegativeSystemFee  = errors.New("negative system fee")
	ErrNegativeNetworkFee = errors.New("negative network fee")
	ErrTooBigFees         = errors.New("too big fees: int64 overflow")
	ErrEmptySigners       = errors.New("signers array should contain sender")
	ErrNonUniqueSigners   = errors.New("transaction signers should be unique")
	ErrTooManyAttributes  = errors.New("too many attributes and signers")
	ErrInvalidAttribute   = errors.New("invalid attribute")
	ErrEmptyScript        = errors.New("no script")
	ErrTooBigScript       = errors.New("too big script")
	ErrTooManyWitnesses   = errors.New("too many witnesses")
	ErrWitnessOrder       = errors.New("witnesses don't match signers")
)

// Transaction is a process recorded in the NEO blockchain.
type Transaction struct {
	// Incremented every time the structure is changed, currently 0.
	Version uint8

	// Random number to avoid hash collision.
	Nonce uint32

	// Fee to be burned.
	SystemFee int64

	// Fee to be distributed to consensus nodes.
	NetworkFee int64

	// Maximum blockchain height exceeding which
	// transaction should fail verification.
	ValidUntilBlock uint32

	// Code to run in NeoVM for this transaction.
	Script []byte

	// Transaction attributes.
	Attributes []Attribute

	// Transaction signers list (starts with Sender).
	Signers []Signer

	// The scripts that come with this transaction, sorted by verification
	// script hash.
	Scripts []Witness
}

// NewTransactionFromBytes decodes byte array into *Transaction.
func NewTransactionFromBytes(b []byte) (*Transaction, error) {
	tx := &Transaction{}
	r := io.NewBinReaderFromBuf(b)
	tx.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Len() != 0 {
		return nil, errors.New("additional data after the transaction")
	}
	return tx, nil
}

// New returns a new transaction to execute given script and pay given system
// fee. Nonce is random.
func New(script []byte, gas int64) *Transaction {
	return &Transaction{
		Version:    0,
		Nonce:      rand.Uint32(),
		Script:     script,
		SystemFee:  gas,
		Attributes: []Attribute{},
		Signers:    []Signer{},
		Scripts:    []Witness{},
	}
}

// Hash returns the hash of the transaction: double SHA-256 of its unsigned
// serialization. It's calculated on every call, so any field change is
// reflected immediately.
func (t *Transaction) Hash() util.Uint256 {
	buf := io.NewBufBinWriter()
	t.EncodeHashableFields(buf.BinWriter)
	if buf.Err != nil {
		panic(fmt.Errorf("failed to encode transaction: %w", buf.Err))
	}
	return hash.DoubleSha256(buf.Bytes())
}

// GetSignedPart returns a part of the transaction which must be signed for
// the given network: 4-byte LE magic followed by the transaction hash.
func (t *Transaction) GetSignedPart(magic uint32) []byte {
	return hash.NetMessage(magic, t.Hash())
}

// GetSignedHash returns a SHA-256 hash of GetSignedPart, that's what
// signatures actually sign.
func (t *Transaction) GetSignedHash(magic uint32) util.Uint256 {
	return hash.Sha256(t.GetSignedPart(magic))
}

// HasAttribute returns true iff t has an attribute of type typ.
func (t *Transaction) HasAttribute(typ AttrType) bool {
	for i := range t.Attributes {
		if t.Attributes[i].Type == typ {
			return true
		}
	}
	return false
}

// GetAttributes returns the list of transaction's attributes of the given type.
// Returns nil in case if attributes not found.
func (t *Transaction) GetAttributes(typ AttrType) []Attribute {
	var result []Attribute
	for _, attr := range t.Attributes {
		if attr.Type == typ {
			result = append(result, attr)
		}
	}
	return result
}

// Sender returns the sender of the transaction which is always on the first place
// in the transaction's signers list.
func (t *Transaction) Sender() util.Uint160 {
	if len(t.Signers) == 0 {
		panic("transaction does not have signers")
	}
	return t.Signers[0].Account
}

// HasSigner returns true in case if hash is present in the list of signers.
func (t *Transaction) HasSigner(hash util.Uint160) bool {
	for _, h := range t.Signers {
		if h.Account.Equals(hash) {
			return true
		}
	}
	return false
}

// AddSigner appends s to the list of signers, signers with an account
// already present in the list are merged into the existing one.
func (t *Transaction) AddSigner(s Signer) error {
	for i := range t.Signers {
		if t.Signers[i].Account.Equals(s.Account) {
			return t.Signers[i].Merge(&s)
		}
	}
	t.Signers = append(t.Signers, *s.Copy())
	return nil
}

// AddWitness inserts w keeping the witness list sorted by verification
// script hash. A witness with the same verification script replaces the
// existing one.
func (t *Transaction) AddWitness(w Witness) {
	h := w.ScriptHash()
	i := sort.Search(len(t.Scripts), func(i int) bool {
		return !t.Scripts[i].ScriptHash().Less(h)
	})
	if i < len(t.Scripts) && t.Scripts[i].ScriptHash().Equals(h) {
		t.Scripts[i] = w
		return
	}
	t.Scripts = append(t.Scripts, Witness{})
	copy(t.Scripts[i+1:], t.Scripts[i:])
	t.Scripts[i] = w
}

// WitnessFor returns a pointer to the witness with the given verification
// script hash or nil if there is none.
func (t *Transaction) WitnessFor(account util.Uint160) *Witness {
	for i := range t.Scripts {
		if t.Scripts[i].ScriptHash().Equals(account) {
			return &t.Scripts[i]
		}
	}
	return nil
}

// CheckWitnessOrder checks that there is a witness for every signer and
// that witness i belongs to signer i, nodes verify them pairwise. Witnesses
// without a verification script (deployed contract accounts) are not
// matched.
func (t *Transaction) CheckWitnessOrder() error {
	if len(t.Scripts) != len(t.Signers) {
		return fmt.Errorf("%w: %d witnesses for %d signers", ErrWitnessOrder, len(t.Scripts), len(t.Signers))
	}
	for i := range t.Scripts {
		if len(t.Scripts[i].VerificationScript) == 0 {
			continue
		}
		if h := t.Scripts[i].ScriptHash(); !h.Equals(t.Signers[i].Account) {
			return fmt.Errorf("%w: witness %d is %s, signer is %s", ErrWitnessOrder,
				i, h.StringLE(), t.Signers[i].Account.StringLE())
		}
	}
	return nil
}

// decodeHashableFields decodes the fields that are used for signing the
// transaction, which are all fields except the scripts.
func (t *Transaction) decodeHashableFields(br *io.BinReader) {
	t.Version = uint8(br.ReadB())
	t.Nonce = br.ReadU32LE()
	t.SystemFee = int64(br.ReadU64LE())
	t.NetworkFee = int64(br.ReadU64LE())
	t.ValidUntilBlock = br.ReadU32LE()
	io.ReadArray(br, &t.Signers, MaxAttributes)
	if br.Err != nil {
		return
	}
	io.ReadArray(br, &t.Attributes, MaxAttributes-len(t.Signers))
	if br.Err != nil {
		return
	}
	t.Script = br.ReadVarBytes(MaxScriptLength)
	if br.Err == nil {
		br.Err = t.isValid()
	}
}

func (t *Transaction) decodeBinaryNoSize(br *io.BinReader) {
	t.decodeHashableFields(br)
	if br.Err != nil {
		return
	}
	io.ReadArray(br, &t.Scripts, len(t.Signers))
}

// DecodeBinary implements the Serializable interface.
func (t *Transaction) DecodeBinary(br *io.BinReader) {
	t.decodeBinaryNoSize(br)
	if br.Err == nil && t.Size() > MaxTransactionSize {
		br.Err = fmt.Errorf("too big transaction (%d > %d)", t.Size(), MaxTransactionSize)
	}
}

// EncodeBinary implements the Serializable interface.
func (t *Transaction) EncodeBinary(bw *io.BinWriter) {
	t.EncodeHashableFields(bw)
	io.WriteArray(bw, t.Scripts)
}

// EncodeHashableFields encodes the fields that are not used for
// signing the transaction, which are all fields except the scripts.
func (t *Transaction) EncodeHashableFields(bw *io.BinWriter) {
	bw.WriteB(byte(t.Version))
	bw.WriteU32LE(t.Nonce)
	bw.WriteU64LE(uint64(t.SystemFee))
	bw.WriteU64LE(uint64(t.NetworkFee))
	bw.WriteU32LE(t.ValidUntilBlock)
	io.WriteArray(bw, t.Signers)
	io.WriteArray(bw, t.Attributes)
	bw.WriteVarBytes(t.Script)
}

// Bytes converts the transaction to []byte.
func (t *Transaction) Bytes() []byte {
	buf := io.NewBufBinWriter()
	t.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return nil
	}
	return buf.Bytes()
}

// Size returns size of the serialized transaction.
func (t *Transaction) Size() int {
	return t.UnsignedSize() + io.GetSize(witnessList(t.Scripts))
}

// UnsignedSize returns size of the serialized transaction without witnesses.
func (t *Transaction) UnsignedSize() int {
	return io.GetSize(hashableFields{t})
}

type hashableFields struct {
	t *Transaction
}

func (h hashableFields) EncodeBinary(w *io.BinWriter) {
	h.t.EncodeHashableFields(w)
}

type witnessList []Witness

func (l witnessList) EncodeBinary(w *io.BinWriter) {
	io.WriteArray(w, []Witness(l))
}

// Copy creates a deep copy of the Transaction, including all slice fields.
func (t *Transaction) Copy() *Transaction {
	if t == nil {
		return nil
	}
	cp := *t
	if t.Script != nil {
		cp.Script = append([]byte(nil), t.Script...)
	}
	if t.Attributes != nil {
		cp.Attributes = make([]Attribute, len(t.Attributes))
		for i := range t.Attributes {
			cp.Attributes[i] = *t.Attributes[i].Copy()
		}
	}
	if t.Signers != nil {
		cp.Signers = make([]Signer, len(t.Signers))
		for i := range t.Signers {
			cp.Signers[i] = *t.Signers[i].Copy()
		}
	}
	if t.Scripts != nil {
		cp.Scripts = make([]Witness, len(t.Scripts))
		for i := range t.Scripts {
			cp.Scripts[i] = t.Scripts[i].Copy()
		}
	}
	return &cp
}

// isValid checks whether decoded/unmarshalled transaction has all fields valid.
func (t *Transaction) isValid() error {
	if t.Version > 0 {
		return ErrInvalidVersion
	}
	if t.SystemFee < 0 {
		return ErrNegativeSystemFee
	}
	if t.NetworkFee < 0 {
		return ErrNegativeNetworkFee
	}
	if t.NetworkFee+t.SystemFee < t.SystemFee {
		return ErrTooBigFees
	}
	if len(t.Signers) == 0 {
		return ErrEmptySigners
	}
	if len(t.Attributes)+len(t.Signers) > MaxAttributes {
		return ErrTooManyAttributes
	}
	for i := 0; i < len(t.Signers); i++ {
		if err := t.Signers[i].isValid(); err != nil {
			return fmt.Errorf("signer #%d: %w", i, err)
		}
		for j := i + 1; j < len(t.Signers); j++ {
			if t.Signers[i].Account.Equals(t.Signers[j].Account) {
				return ErrNonUniqueSigners
			}
		}
	}
	attrs := map[AttrType]bool{}
	for i := range t.Attributes {
		typ := t.Attributes[i].Type
		if !typ.allowMultiple() {
			if attrs[typ] {
				return fmt.Errorf("%w: multiple '%s' attributes", ErrInvalidAttribute, typ.String())
			}
			attrs[typ] = true
		}
	}
	if len(t.Script) == 0 {
		return ErrEmptyScript
	}
	if len(t.Script) > MaxScriptLength {
		return ErrTooBigScript
	}
	if len(t.Scripts) > len(t.Signers) {
		return ErrTooManyWitnesses
	}
	return nil
}

// Validate checks the transaction format invariants.
func (t *Transaction) Validate() error {
	return t.isValid()
}

// transactionJSON is a wrapper for Transaction and
// used for correct marhalling of transaction.Data.
type transactionJSON struct {
	TxID            util.Uint256 `json:"hash"`
	Size            int          `json:"size"`
	Version         uint8        `json:"version"`
	Nonce           uint32       `json:"nonce"`
	Sender          string       `json:"sender"`
	SystemFee       int64        `json:"sysfee,string"`
	NetworkFee      int64        `json:"netfee,string"`
	ValidUntilBlock uint32       `json:"validuntilblock"`
	Attributes      []Attribute  `json:"attributes"`
	Signers         []Signer     `json:"signers"`
	Script          []byte       `json:"script"`
	Scripts         []Witness    `json:"witnesses"`
}

// MarshalJSON implements the json.Marshaler interface.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	tx := transactionJSON{
		TxID:            t.Hash(),
		Size:            t.Size(),
		Version:         t.Version,
		Nonce:           t.Nonce,
		ValidUntilBlock: t.ValidUntilBlock,
		Attributes:      t.Attributes,
		Signers:         t.Signers,
		Script:          t.Script,
		Scripts:         t.Scripts,
		SystemFee:       t.SystemFee,
		NetworkFee:      t.NetworkFee,
	}
	if len(t.Signers) > 0 {
		tx.Sender = address.Uint160ToString(t.Sender())
	}
	if tx.Attributes == nil {
		tx.Attributes = []Attribute{}
	}
	if tx.Signers == nil {
		tx.Signers = []Signer{}
	}
	if tx.Scripts == nil {
		tx.Scripts = []Witness{}
	}
	return json.Marshal(tx)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	tx := new(transactionJSON)
	if err := json.Unmarshal(data, tx); err != nil {
		return err
	}
	t.Version = tx.Version
	t.Nonce = tx.Nonce
	t.ValidUntilBlock = tx.ValidUntilBlock
	t.Attributes = tx.Attributes
	t.Signers = tx.Signers
	t.Scripts = tx.Scripts
	t.SystemFee = tx.SystemFee
	t.NetworkFee = tx.NetworkFee
	t.Script = tx.Script
	if t.Hash() != tx.TxID {
		return errors.New("txid doesn't match transaction hash")
	}
	if t.Size() != tx.Size {
		return errors.New("'size' doesn't match transaction size")
	}

	return t.isValid()
}

// ToBase64 returns the base64 encoding of the serialized transaction, the
// form sendrawtransaction expects.
func (t *Transaction) ToBase64() string {
	return base64.StdEncoding.EncodeToString(t.Bytes())
}
