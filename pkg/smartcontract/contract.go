package smartcontract

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nspcc-dev/neotx/pkg/core/interop/interopnames"
	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/io"
	"github.com/nspcc-dev/neotx/pkg/vm"
	"github.com/nspcc-dev/neotx/pkg/vm/emit"
	"github.com/nspcc-dev/neotx/pkg/vm/opcode"
)

// Errors returned by the multisignature script functions.
var (
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrNotMultiSig      = errors.New("not a multisignature verification script")
	ErrInvalidSignature = errors.New("invalid signature")
)

// CreateMultiSigRedeemScript creates an "m out of n" type verification script
// where n is the length of publicKeys. Keys are used in the given order, see
// CreateDefaultMultiSigRedeemScript for the network-standard sorted variant.
func CreateMultiSigRedeemScript(m int, publicKeys keys.PublicKeys) ([]byte, error) {
	if m < 1 {
		return nil, fmt.Errorf("%w: param m cannot be smaller than 1, got %d", ErrInvalidThreshold, m)
	}
	if m > len(publicKeys) {
		return nil, fmt.Errorf("%w: length of the signatures (%d) is higher then the number of public keys", ErrInvalidThreshold, m)
	}
	if len(publicKeys) > vm.MaxMultisigKeys {
		return nil, fmt.Errorf("public key count %d exceeds maximum of %d", len(publicKeys), vm.MaxMultisigKeys)
	}

	buf := io.NewBufBinWriter()
	emit.Int(buf.BinWriter, int64(m))
	for i, pubKey := range publicKeys {
		if pubKey == nil || pubKey.IsInfinity() {
			return nil, fmt.Errorf("%w: key #%d", ErrInvalidPublicKey, i)
		}
		emit.Bytes(buf.BinWriter, pubKey.Bytes())
	}
	emit.Int(buf.BinWriter, int64(len(publicKeys)))
	emit.Syscall(buf.BinWriter, interopnames.SystemCryptoCheckMultisig)
	if buf.Err != nil {
		return nil, buf.Err
	}
	return buf.Bytes(), nil
}

// CreateMultiSigRedeemScriptFromBytes is the same as CreateMultiSigRedeemScript,
// but accepts encoded keys. Every key must be a valid compressed public key,
// otherwise no script is produced.
func CreateMultiSigRedeemScriptFromBytes(m int, publicKeys [][]byte) ([]byte, error) {
	pubs := make(keys.PublicKeys, len(publicKeys))
	for i := range publicKeys {
		if !keys.IsValidBytes(publicKeys[i]) {
			return nil, fmt.Errorf("%w: key #%d", ErrInvalidPublicKey, i)
		}
		pub, err := keys.NewPublicKeyFromBytes(publicKeys[i])
		if err != nil {
			return nil, fmt.Errorf("%w: key #%d: %v", ErrInvalidPublicKey, i, err)
		}
		pubs[i] = pub
	}
	return CreateMultiSigRedeemScript(m, pubs)
}

// CreateDefaultMultiSigRedeemScript creates an "m out of n" type verification
// script with keys sorted the way the network does it for standard multisig
// accounts. The given slice is not modified.
func CreateDefaultMultiSigRedeemScript(m int, publicKeys keys.PublicKeys) ([]byte, error) {
	pubs := publicKeys.Copy()
	for i := range pubs {
		if pubs[i] == nil {
			return nil, fmt.Errorf("%w: key #%d", ErrInvalidPublicKey, i)
		}
	}
	sort.Sort(pubs)
	return CreateMultiSigRedeemScript(m, pubs)
}

// CreateSignatureRedeemScript creates a single-key verification script.
func CreateSignatureRedeemScript(key *keys.PublicKey) []byte {
	return key.GetVerificationScript()
}

// ParseMultiSigThreshold returns the number of signatures required by the
// given multisignature verification script.
func ParseMultiSigThreshold(script []byte) (int, error) {
	m, _, ok := vm.ParseMultiSigContract(script)
	if !ok {
		return 0, ErrNotMultiSig
	}
	return m, nil
}

// ParseMultiSigPublicKeys returns the keys of the given multisignature
// verification script in the script order.
func ParseMultiSigPublicKeys(script []byte) (keys.PublicKeys, error) {
	_, pubs, ok := vm.ParseMultiSigContract(script)
	if !ok {
		return nil, ErrNotMultiSig
	}
	res := make(keys.PublicKeys, len(pubs))
	for i := range pubs {
		pub, err := keys.NewPublicKeyFromBytes(pubs[i])
		if err != nil {
			return nil, fmt.Errorf("%w: key #%d: %v", ErrInvalidPublicKey, i, err)
		}
		res[i] = pub
	}
	return res, nil
}

// ExtractSignatures returns signatures pushed by the given invocation
// script in the push order.
func ExtractSignatures(invocation []byte) ([][]byte, error) {
	instrs, err := vm.Disassemble(invocation)
	if err != nil {
		return nil, err
	}
	res := make([][]byte, 0, len(instrs))
	for _, instr := range instrs {
		if instr.Op != opcode.PUSHDATA1 || len(instr.Param) != keys.SignatureLen {
			return nil, fmt.Errorf("%w: unexpected %s at %d", ErrInvalidSignature, instr.Op, instr.Offset)
		}
		res = append(res, instr.Param)
	}
	return res, nil
}

// CreateSignatureInvocationScript creates an invocation script pushing the
// given signature.
func CreateSignatureInvocationScript(sig []byte) ([]byte, error) {
	return CreateMultiSigInvocationScript([][]byte{sig})
}

// CreateMultiSigInvocationScript creates an invocation script pushing the
// given signatures in order.
func CreateMultiSigInvocationScript(sigs [][]byte) ([]byte, error) {
	buf := io.NewBufBinWriter()
	for i := range sigs {
		if len(sigs[i]) != keys.SignatureLen {
			return nil, fmt.Errorf("%w: signature #%d has %d bytes", ErrInvalidSignature, i, len(sigs[i]))
		}
		emit.Bytes(buf.BinWriter, sigs[i])
	}
	return buf.Bytes(), nil
}
