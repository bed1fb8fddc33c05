package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neotx/pkg/crypto/hash"
	"github.com/nspcc-dev/neotx/pkg/encoding/base58"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/rfc6979"
)

// WIFVersion is the version byte used for WIF-encoded private keys.
const WIFVersion = 0x80

// PrivateKey represents a NEO private key and provides a high level API around
// ecdsa.PrivateKey.
type PrivateKey struct {
	ecdsa.PrivateKey
}

// NewPrivateKey creates a new random secp256r1 private key.
func NewPrivateKey() (*PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{*priv}, nil
}

// NewPrivateKeyFromHex returns a secp256r1 PrivateKey created from the
// given hex string.
func NewPrivateKeyFromHex(str string) (*PrivateKey, error) {
	b, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	return NewPrivateKeyFromBytes(b)
}

// NewPrivateKeyFromBytes returns a secp256r1 PrivateKey from the given
// 32-byte slice.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf(
			"invalid byte length: expected %d bytes got %d", 32, len(b),
		)
	}
	var (
		c = elliptic.P256()
		d = new(big.Int).SetBytes(b)
	)
	if d.Sign() == 0 || d.Cmp(c.Params().N) >= 0 {
		return nil, errors.New("invalid private key value")
	}

	x, y := c.ScalarBaseMult(b)

	return &PrivateKey{
		ecdsa.PrivateKey{
			PublicKey: ecdsa.PublicKey{
				Curve: c,
				X:     x,
				Y:     y,
			},
			D: d,
		},
	}, nil
}

// NewPrivateKeyFromWIF returns a NEO PrivateKey from the given
// WIF (wallet import format).
func NewPrivateKeyFromWIF(wif string) (*PrivateKey, error) {
	b, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, err
	}
	if len(b) != 34 || b[0] != WIFVersion || b[33] != 0x01 {
		return nil, errors.New("invalid WIF format")
	}
	return NewPrivateKeyFromBytes(b[1:33])
}

// WIF returns the (wallet import format) of the PrivateKey, always for
// compressed public key.
func (p *PrivateKey) WIF() string {
	b := make([]byte, 0, 34)
	b = append(b, WIFVersion)
	b = append(b, p.Bytes()...)
	b = append(b, 0x01)
	return base58.CheckEncode(b)
}

// PublicKey derives the public key from the private key.
func (p *PrivateKey) PublicKey() *PublicKey {
	result := PublicKey(p.PrivateKey.PublicKey)
	return &result
}

// Address derives the public NEO address that is coupled with the private key, and
// returns it as a string.
func (p *PrivateKey) Address() string {
	return p.PublicKey().Address()
}

// GetScriptHash returns verification script hash for the public key associated with
// the private key.
func (p *PrivateKey) GetScriptHash() util.Uint160 {
	return p.PublicKey().GetScriptHash()
}

// Sign signs arbitrary length data using the private key. It uses SHA256 to
// calculate hash and then SignHash to create a signature (so you can save on
// hash calculation if you already have it).
func (p *PrivateKey) Sign(data []byte) []byte {
	return p.SignHash(hash.Sha256(data))
}

// SignHash signs a particular hash with the private key deterministically
// (RFC 6979).
func (p *PrivateKey) SignHash(digest util.Uint256) []byte {
	r, s := rfc6979.SignECDSA(&p.PrivateKey, digest[:], sha256.New)
	return getSignatureSlice(r, s)
}

func getSignatureSlice(r, s *big.Int) []byte {
	signature := make([]byte, SignatureLen)
	r.FillBytes(signature[:SignatureLen/2])
	s.FillBytes(signature[SignatureLen/2:])
	return signature
}

// String implements the stringer interface.
func (p *PrivateKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// Bytes returns the underlying bytes of the PrivateKey.
func (p *PrivateKey) Bytes() []byte {
	result := make([]byte, 32)
	p.D.FillBytes(result)
	return result
}
