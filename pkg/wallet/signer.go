package wallet

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/vm"
)

// ErrNoKey is returned when the signer has no key for the verification script.
var ErrNoKey = errors.New("no key for verification script")

// Signer is the transaction signing capability. SignTx gets the message to
// be signed (network magic and transaction hash) and the verification script
// of the witness being signed, it returns a 64-byte signature. Implementations
// may block (hardware or remote signers).
type Signer interface {
	SignTx(msg []byte, verificationScript []byte) ([]byte, error)
}

// MultiSigner is implemented by signers able to provide all signatures for
// multisignature witnesses at once.
type MultiSigner interface {
	Signer
	// SignMultiTx returns signatures ordered the same way public keys are
	// ordered in the verification script.
	SignMultiTx(msg []byte, verificationScript []byte) ([][]byte, error)
}

// SignerFunc is an adapter allowing to use functions as Signer.
type SignerFunc func(msg []byte, verificationScript []byte) ([]byte, error)

// SignTx implements the Signer interface.
func (f SignerFunc) SignTx(msg []byte, verificationScript []byte) ([]byte, error) {
	return f(msg, verificationScript)
}

// KeySigner signs with local private keys. It only signs standard signature
// and multisignature witnesses containing its keys.
type KeySigner struct {
	keys []*keys.PrivateKey
}

// NewKeySigner creates a KeySigner with the given keys.
func NewKeySigner(ks ...*keys.PrivateKey) *KeySigner {
	return &KeySigner{keys: ks}
}

// SignTx implements the Signer interface. For multisignature scripts the
// first matching key is used.
func (s *KeySigner) SignTx(msg []byte, verificationScript []byte) ([]byte, error) {
	switch shape := vm.ClassifyWitness(verificationScript).(type) {
	case vm.SignatureShape:
		if k := s.keyFor(shape.PublicKey); k != nil {
			return k.Sign(msg), nil
		}
	case vm.MultiSigShape:
		for _, pub := range shape.PublicKeys {
			if k := s.keyFor(pub); k != nil {
				return k.Sign(msg), nil
			}
		}
	}
	return nil, ErrNoKey
}

// SignMultiTx implements the MultiSigner interface. It returns exactly as
// many signatures as the script needs or an error if there are not enough
// keys.
func (s *KeySigner) SignMultiTx(msg []byte, verificationScript []byte) ([][]byte, error) {
	shape, ok := vm.ClassifyWitness(verificationScript).(vm.MultiSigShape)
	if !ok {
		return nil, fmt.Errorf("%w: not a multisignature script", ErrNoKey)
	}
	var sigs = make([][]byte, 0, shape.Threshold)
	for _, pub := range shape.PublicKeys {
		if k := s.keyFor(pub); k != nil {
			sigs = append(sigs, k.Sign(msg))
			if len(sigs) == shape.Threshold {
				return sigs, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %d out of %d signatures available", ErrNoKey, len(sigs), shape.Threshold)
}

func (s *KeySigner) keyFor(pub []byte) *keys.PrivateKey {
	for _, k := range s.keys {
		if bytes.Equal(k.PublicKey().Bytes(), pub) {
			return k
		}
	}
	return nil
}
