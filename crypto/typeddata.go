// EIP-712 typed structured data hashing.
//
// A typed-data digest binds a struct to a signing domain:
//
//	digest      = keccak256(0x19 || 0x01 || domainSeparator || hashStruct(message))
//	hashStruct  = keccak256(typeHash || encodeData(fields))
//	typeHash    = keccak256(encodeType)
//
// Every atomic field is encoded as one 32-byte word; dynamic string and bytes
// fields are replaced by their Keccak-256 hash.
package crypto

import (
	"github.com/holiman/uint256"

	"github.com/secrethandler/secrethandler/core/types"
)

// EIP712DomainType is the encodeType of the domain struct with the four
// fields name, version, chainId and verifyingContract.
const EIP712DomainType = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"

var eip712DomainTypeHash = TypeHash(EIP712DomainType)

// TypeHash returns keccak256 of an encodeType string.
func TypeHash(encodeType string) types.Hash {
	return Keccak256Hash([]byte(encodeType))
}

// Uint256Word encodes v as a 32-byte big-endian word. A nil value encodes
// as zero.
func Uint256Word(v *uint256.Int) []byte {
	if v == nil {
		return make([]byte, 32)
	}
	w := v.Bytes32()
	return w[:]
}

// Uint64Word encodes v as a 32-byte big-endian word.
func Uint64Word(v uint64) []byte {
	return Uint256Word(uint256.NewInt(v))
}

// AddressWord left-pads an address to a 32-byte word.
func AddressWord(a types.Address) []byte {
	w := make([]byte, 32)
	copy(w[12:], a[:])
	return w
}

// StringWord encodes a dynamic string field as its Keccak-256 hash.
func StringWord(s string) []byte {
	return Keccak256([]byte(s))
}

// HashStruct computes keccak256(typeHash || words...). Each word must
// already be 32 bytes.
func HashStruct(typeHash types.Hash, words ...[]byte) types.Hash {
	data := make([][]byte, 0, len(words)+1)
	data = append(data, typeHash[:])
	data = append(data, words...)
	return Keccak256Hash(data...)
}

// DomainSeparator computes the EIP-712 domain separator for the canonical
// four-field domain.
func DomainSeparator(name, version string, chainID *uint256.Int, verifyingContract types.Address) types.Hash {
	return HashStruct(eip712DomainTypeHash,
		StringWord(name),
		StringWord(version),
		Uint256Word(chainID),
		AddressWord(verifyingContract),
	)
}

// TypedDataHash returns the digest that is signed for a struct hash under a
// domain separator.
func TypedDataHash(domainSeparator, structHash types.Hash) types.Hash {
	return Keccak256Hash([]byte{0x19, 0x01}, domainSeparator[:], structHash[:])
}
