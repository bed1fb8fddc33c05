package keys

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nspcc-dev/neotx/pkg/core/interop/interopnames"
	"github.com/nspcc-dev/neotx/pkg/crypto/hash"
	"github.com/nspcc-dev/neotx/pkg/encoding/address"
	"github.com/nspcc-dev/neotx/pkg/io"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm/opcode"
)

// coordLen is the number of bytes in serialized X or Y coordinate.
const coordLen = 32

// SignatureLen is the length of a standard signature for 256-bit EC key.
const SignatureLen = 64

// PublicKeyLen is the length of a compressed public key.
const PublicKeyLen = 33

// Errors returned on public key decoding.
var (
	ErrInvalidKeyFormat = errors.New("invalid key size/prefix")
	ErrNotOnCurve       = errors.New("encoded point is not on the P256 curve")
)

// PublicKeys is a list of public keys.
type PublicKeys []*PublicKey

func (keys PublicKeys) Len() int      { return len(keys) }
func (keys PublicKeys) Swap(i, j int) { keys[i], keys[j] = keys[j], keys[i] }
func (keys PublicKeys) Less(i, j int) bool {
	return keys[i].Cmp(keys[j]) == -1
}

// DecodeBytes decodes PublicKeys from the given slice of bytes.
func (keys *PublicKeys) DecodeBytes(data []byte) error {
	b := io.NewBinReaderFromBuf(data)
	var ks []PublicKey
	io.ReadArray(b, &ks)
	if b.Err != nil {
		return b.Err
	}
	res := make(PublicKeys, len(ks))
	for i := range ks {
		res[i] = &ks[i]
	}
	*keys = res
	return nil
}

// Bytes encodes PublicKeys to the new slice of bytes.
func (keys *PublicKeys) Bytes() []byte {
	buf := io.NewBufBinWriter()
	buf.WriteVarUint(uint64(len(*keys)))
	for _, k := range *keys {
		k.EncodeBinary(buf.BinWriter)
	}
	if buf.Err != nil {
		panic(buf.Err)
	}
	return buf.Bytes()
}

// Contains checks whether the passed param is contained in PublicKeys.
func (keys PublicKeys) Contains(pKey *PublicKey) bool {
	return slices.ContainsFunc(keys, pKey.Equal)
}

// Copy returns a shallow copy of the PublicKeys slice. It creates a new slice
// with the same elements, but does not perform a deep copy of the elements
// themselves.
func (keys PublicKeys) Copy() PublicKeys {
	if keys == nil {
		return nil
	}
	return slices.Clone(keys)
}

// Unique returns a set of public keys preserving the original order.
func (keys PublicKeys) Unique() PublicKeys {
	unique := PublicKeys{}
	for _, publicKey := range keys {
		if !unique.Contains(publicKey) {
			unique = append(unique, publicKey)
		}
	}
	return unique
}

// PublicKey represents a secp256r1 public key and provides a high level
// API around the X/Y point.
type PublicKey ecdsa.PublicKey

// Equal returns true in case public keys are equal.
func (p *PublicKey) Equal(key *PublicKey) bool {
	return p.Cmp(key) == 0
}

// Cmp compares two keys, infinity is less than any other key.
func (p *PublicKey) Cmp(key *PublicKey) int {
	switch {
	case p.IsInfinity() && key.IsInfinity():
		return 0
	case p.IsInfinity():
		return -1
	case key.IsInfinity():
		return 1
	}
	xCmp := p.X.Cmp(key.X)
	if xCmp != 0 {
		return xCmp
	}
	return p.Y.Cmp(key.Y)
}

// NewPublicKeyFromString returns a public key created from the
// given hex string public key representation in compressed form.
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return NewPublicKeyFromBytes(b)
}

// NewPublicKeyFromBytes returns a secp256r1 public key created from b given
// in compressed (or uncompressed) form.
func NewPublicKeyFromBytes(b []byte) (*PublicKey, error) {
	pubKey := new(PublicKey)
	if err := pubKey.DecodeBytes(b); err != nil {
		return nil, err
	}
	return pubKey, nil
}

// NewSecp256k1PublicKeyFromBytes returns a secp256k1 public key created from
// b given in compressed (or uncompressed) form. Such keys can't be used in
// verification scripts, but they're accepted by the System.Crypto
// signature checks of some contracts.
func NewSecp256k1PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	pk, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	return &PublicKey{
		Curve: secp256k1.S256(),
		X:     pk.X(),
		Y:     pk.Y(),
	}, nil
}

// Bytes returns the compressed byte representation of the public key.
func (p *PublicKey) Bytes() []byte {
	if p.IsInfinity() {
		return []byte{0x00}
	}

	var (
		res    = make([]byte, 1+coordLen)
		prefix = byte(0x03)
	)

	if p.Y.Bit(0) == 0 {
		prefix = byte(0x02)
	}
	res[0] = prefix
	p.X.FillBytes(res[1:])
	return res
}

// UncompressedBytes returns the uncompressed byte representation of the key.
func (p *PublicKey) UncompressedBytes() []byte {
	if p.IsInfinity() {
		return []byte{0x00}
	}
	res := make([]byte, 1+2*coordLen)
	res[0] = 0x04
	p.X.FillBytes(res[1 : 1+coordLen])
	p.Y.FillBytes(res[1+coordLen:])
	return res
}

// decodeCompressedY performs decompression of Y coordinate for the given X
// and Y's least significant bit on the secp256r1 curve:
// y = sqrt(x³ - 3x + b mod p).
func decodeCompressedY(x *big.Int, ylsb uint, curve elliptic.Curve) (*big.Int, error) {
	cp := curve.Params()
	xCubed := new(big.Int).Exp(x, big.NewInt(3), cp.P)
	threeX := new(big.Int).Mul(x, big.NewInt(3))
	ySquared := xCubed.Sub(xCubed, threeX)
	ySquared.Add(ySquared, cp.B)
	ySquared.Mod(ySquared, cp.P)
	y := new(big.Int).ModSqrt(ySquared, cp.P)
	if y == nil {
		return nil, errors.New("error computing Y for compressed point")
	}
	if y.Bit(0) != ylsb {
		y.Neg(y)
		y.Mod(y, cp.P)
	}
	return y, nil
}

// DecodeBytes decodes a PublicKey from the given slice of bytes, the whole
// slice must be used.
func (p *PublicKey) DecodeBytes(data []byte) error {
	b := io.NewBinReaderFromBuf(data)
	p.DecodeBinary(b)
	if b.Err != nil {
		return b.Err
	}
	if b.Len() != 0 {
		return ErrInvalidKeyFormat
	}
	return nil
}

// DecodeBinary decodes a PublicKey from the given BinReader.
func (p *PublicKey) DecodeBinary(r *io.BinReader) {
	var x, y *big.Int

	prefix := r.ReadB()
	if r.Err != nil {
		return
	}

	p256 := elliptic.P256()
	p256Params := p256.Params()
	switch prefix {
	case 0x00:
		// Infinity.
		*p = PublicKey{}
		return
	case 0x02, 0x03:
		xbytes := make([]byte, coordLen)
		r.ReadBytes(xbytes)
		if r.Err != nil {
			return
		}
		x = new(big.Int).SetBytes(xbytes)
		if x.Cmp(p256Params.P) >= 0 {
			r.Err = ErrNotOnCurve
			return
		}
		var err error
		y, err = decodeCompressedY(x, uint(prefix&0x1), p256)
		if err != nil {
			r.Err = err
			return
		}
	case 0x04:
		xbytes := make([]byte, coordLen)
		ybytes := make([]byte, coordLen)
		r.ReadBytes(xbytes)
		r.ReadBytes(ybytes)
		if r.Err != nil {
			return
		}
		x = new(big.Int).SetBytes(xbytes)
		y = new(big.Int).SetBytes(ybytes)
		if x.Cmp(p256Params.P) >= 0 || y.Cmp(p256Params.P) >= 0 || !p256.IsOnCurve(x, y) {
			r.Err = ErrNotOnCurve
			return
		}
	default:
		r.Err = fmt.Errorf("%w: prefix %d", ErrInvalidKeyFormat, prefix)
		return
	}
	p.Curve = p256
	p.X, p.Y = x, y
}

// EncodeBinary encodes a PublicKey to the given BinWriter.
func (p *PublicKey) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(p.Bytes())
}

// GetVerificationScript returns NEO VM bytecode with CheckSig command for the
// public key.
func (p *PublicKey) GetVerificationScript() []byte {
	b := p.Bytes()
	script := make([]byte, 0, 2+len(b)+5)
	script = append(script, byte(opcode.PUSHDATA1), byte(len(b)))
	script = append(script, b...)
	script = append(script, byte(opcode.SYSCALL))
	return binary.LittleEndian.AppendUint32(script, interopnames.ToID([]byte(interopnames.SystemCryptoCheckSig)))
}

// GetScriptHash returns a Hash160 of verification script for the key.
func (p *PublicKey) GetScriptHash() util.Uint160 {
	return hash.Hash160(p.GetVerificationScript())
}

// Address returns a base58-encoded NEO-specific address based on the key hash.
func (p *PublicKey) Address() string {
	return address.Uint160ToString(p.GetScriptHash())
}

// Verify returns true if the signature is valid for the given hash and
// public key.
func (p *PublicKey) Verify(signature []byte, hash []byte) bool {
	if p.IsInfinity() || len(signature) != SignatureLen {
		return false
	}
	rBytes := new(big.Int).SetBytes(signature[0:32])
	sBytes := new(big.Int).SetBytes(signature[32:64])
	pk := ecdsa.PublicKey(*p)
	return ecdsa.Verify(&pk, hash, rBytes, sBytes)
}

// IsInfinity checks if the key is infinite (null, basically).
func (p *PublicKey) IsInfinity() bool {
	return p.X == nil && p.Y == nil
}

// StringCompressed returns the hex string representation of the public key
// in its compressed form.
func (p *PublicKey) StringCompressed() string {
	return hex.EncodeToString(p.Bytes())
}

// String implements the Stringer interface.
func (p *PublicKey) String() string {
	return p.StringCompressed()
}

// MarshalJSON implements the json.Marshaler interface.
func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(p.Bytes()))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	return p.DecodeBytes(b)
}

// IsValidBytes checks whether b holds a valid compressed public key.
func IsValidBytes(b []byte) bool {
	if len(b) != PublicKeyLen {
		return false
	}
	k, err := NewPublicKeyFromBytes(b)
	return err == nil && bytes.Equal(k.Bytes(), b)
}
