/*
Package fee contains the execution price tables and the network fee
calculation for standard witnesses.
*/
package fee

import (
	"github.com/nspcc-dev/neotx/pkg/io"
	"github.com/nspcc-dev/neotx/pkg/vm"
	"github.com/nspcc-dev/neotx/pkg/vm/emit"
	"github.com/nspcc-dev/neotx/pkg/vm/opcode"
)

// ECDSAVerifyPrice is a gas price of a single verification.
const ECDSAVerifyPrice = 1 << 15

// signatureInvocationSize is the size of PUSHDATA1 with a 64-byte signature.
const signatureInvocationSize = 66

// NetworkFeeForSignature returns the verification cost of a single-key
// witness for the given execution fee factor.
func NetworkFeeForSignature(base int64) int64 {
	return Opcode(base, opcode.PUSHDATA1, opcode.PUSHDATA1) + base*ECDSAVerifyPrice
}

// NetworkFeeForMultiSig returns the verification cost of an m-out-of-n
// multisignature witness for the given execution fee factor.
func NetworkFeeForMultiSig(base int64, m, n int) int64 {
	return calculateMultisig(base, m) + calculateMultisig(base, n) + base*ECDSAVerifyPrice*int64(n)
}

// SizeForSignatureWitness returns the serialized size of a signed
// single-key witness with the given verification script.
func SizeForSignatureWitness(script []byte) int {
	return 1 + signatureInvocationSize + io.GetVarBytesSize(script)
}

// SizeForMultiSigWitness returns the serialized size of a witness with m
// signatures and the given verification script.
func SizeForMultiSigWitness(script []byte, m int) int {
	sizeInv := signatureInvocationSize * m
	return io.GetVarSize(sizeInv) + sizeInv + io.GetVarBytesSize(script)
}

// Calculate returns network fee and witness size for the given verification
// script. Both are zero for scripts that are neither signature nor
// multisignature ones, their cost can't be derived locally.
func Calculate(base int64, script []byte) (int64, int) {
	netFee, size, _ := CalculateShape(base, vm.ClassifyWitness(script), script)
	return netFee, size
}

// CalculateShape is the same as Calculate, but accepts already classified
// witness shape. It returns false for vm.UnknownShape.
func CalculateShape(base int64, shape vm.WitnessShape, script []byte) (int64, int, bool) {
	switch s := shape.(type) {
	case vm.SignatureShape:
		return NetworkFeeForSignature(base), SizeForSignatureWitness(script), true
	case vm.MultiSigShape:
		return NetworkFeeForMultiSig(base, s.Threshold, s.Keys()), SizeForMultiSigWitness(script, s.Threshold), true
	default:
		// We can support more contract types in the future.
		return 0, 0, false
	}
}

func calculateMultisig(base int64, n int) int64 {
	result := Opcode(base, opcode.PUSHDATA1) * int64(n)
	bw := io.NewBufBinWriter()
	emit.Int(bw.BinWriter, int64(n))
	// it's a hack because prices of small PUSH* opcodes are equal
	result += Opcode(base, opcode.Opcode(bw.Bytes()[0]))
	return result
}
