/*
Package hash contains wrappers for the hash functions used by the network:
SHA-256, RIPEMD-160 and their combinations.
*/
package hash

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/nspcc-dev/neotx/pkg/util"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is a part of the address scheme.
)

// Sha256 hashes the incoming byte slice using the sha256 algorithm.
func Sha256(data []byte) util.Uint256 {
	return sha256.Sum256(data)
}

// DoubleSha256 performs sha256 twice on the given data.
func DoubleSha256(data []byte) util.Uint256 {
	h1 := Sha256(data)
	return Sha256(h1[:])
}

// RipeMD160 performs the RIPEMD160 hash algorithm on the given data.
func RipeMD160(data []byte) util.Uint160 {
	var hash util.Uint160
	hasher := ripemd160.New()
	_, _ = hasher.Write(data)
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// Hash160 performs sha256 and then ripemd160 on the given data, that's how
// script hashes are calculated.
func Hash160(data []byte) util.Uint160 {
	h1 := Sha256(data)
	return RipeMD160(h1[:])
}

// Checksum returns the checksum for a given piece of data using sha256 twice
// as the hash algorithm.
func Checksum(data []byte) []byte {
	hash := DoubleSha256(data)
	return hash[:4]
}

// NetSha256 calculates network-specific hash of the given hash: it's a
// SHA-256 of the 4-byte LE network magic followed by the hash itself.
func NetSha256(net uint32, h util.Uint256) util.Uint256 {
	return Sha256(NetMessage(net, h))
}

// NetMessage returns the signed part of some hashable data for the given
// network: magic LE || hash.
func NetMessage(net uint32, h util.Uint256) []byte {
	b := make([]byte, 4+util.Uint256Size)
	binary.LittleEndian.PutUint32(b, net)
	copy(b[4:], h[:])
	return b
}
